package team_sdk

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cydxin/team-sdk/response"
	"github.com/gin-gonic/gin"
)

// -------------------- 房间（ChatRoom）相关接口 --------------------

// GinHandleListRooms 全量房间目录
// @Summary 全量房间目录
// @Description 所有房间（含未加入的），按创建时间升序
// @Tags 房间
// @Produce json
// @Success 200 {object} response.Response{data=[]service.RoomDTO} "查询成功"
// @Security BearerAuth
// @Router /room/list [get]
func (c *TeamEngine) GinHandleListRooms(ctx *gin.Context) {
	rooms, err := c.DirService.ListRooms()
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(rooms))
}

// GinHandleListJoinedRooms 已加入房间
// @Summary 已加入房间
// @Description 当前用户加入的房间，带消息数
// @Tags 房间
// @Produce json
// @Success 200 {object} response.Response{data=[]service.JoinedRoomDTO} "查询成功"
// @Security BearerAuth
// @Router /room/joined [get]
func (c *TeamEngine) GinHandleListJoinedRooms(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}
	rooms, err := c.MemberService.ListJoinedRooms(uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(rooms))
}

// GinHandleCreateRoom 创建房间
// @Summary 创建房间
// @Description 管理员创建房间并自动加入，name/open_code 必填
// @Tags 房间
// @Accept json
// @Produce json
// @Success 200 {object} response.Response{data=service.RoomDTO} "创建成功"
// @Failure 400 {object} response.Response "参数错误"
// @Security BearerAuth
// @Router /room/create [post]
func (c *TeamEngine) GinHandleCreateRoom(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}

	var req struct {
		Name     string `json:"name"`
		OpenCode string `json:"open_code"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	room, err := c.DirService.CreateRoom(uid, req.Name, req.OpenCode)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(room))
}

// GinHandleDeleteRoom 删除房间
// @Summary 删除房间
// @Description 管理员删除房间，成员关系/消息/事件级联删除
// @Tags 房间
// @Accept json
// @Produce json
// @Success 200 {object} response.Response "删除成功"
// @Security BearerAuth
// @Router /room/delete [post]
func (c *TeamEngine) GinHandleDeleteRoom(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}

	var req struct {
		RoomID string `json:"room_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	if err := c.DirService.DeleteRoom(uid, req.RoomID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleJoinRoom 口令加入房间
// @Summary 口令加入房间
// @Description 按口令解析房间并加入。无匹配返回 10004，重复加入返回 10005
// @Tags 房间
// @Accept json
// @Produce json
// @Success 200 {object} response.Response{data=service.RoomDTO} "加入成功"
// @Security BearerAuth
// @Router /room/join [post]
func (c *TeamEngine) GinHandleJoinRoom(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	room, err := c.MemberService.JoinRoomByCode(uid, req.Code)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(room))
}

// GinHandleListMessages 房间消息
// @Summary 房间消息
// @Description 房间全量消息按时间升序；带 after(RFC3339) 时只取增量，轮询用
// @Tags 房间
// @Produce json
// @Param room_id query string true "房间 ID"
// @Param after query string false "RFC3339 时间戳，只取这之后的消息"
// @Success 200 {object} response.Response{data=[]service.MessageDTO} "查询成功"
// @Security BearerAuth
// @Router /room/messages [get]
func (c *TeamEngine) GinHandleListMessages(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}
	roomID := strings.TrimSpace(ctx.Query("room_id"))
	if roomID == "" {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "room_id is required"))
		return
	}

	joined, err := c.MemberService.IsRoomMember(roomID, uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if !joined {
		ctx.JSON(http.StatusOK, response.Error(response.CodePermissionDeny, "not a room member"))
		return
	}

	if afterStr := strings.TrimSpace(ctx.Query("after")); afterStr != "" {
		after, perr := time.Parse(time.RFC3339Nano, afterStr)
		if perr != nil {
			ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid after timestamp"))
			return
		}
		msgs, err := c.MsgService.ListAfter(roomID, after)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, response.Success(msgs))
		return
	}

	msgs, err := c.MsgService.List(roomID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(msgs))
}

// GinHandleSendMessage 发消息（HTTP 入口，WS 之外的兜底）
// @Summary 发消息
// @Description 正文 trim 后为空静默忽略，返回成功但 data 为空
// @Tags 房间
// @Accept json
// @Produce json
// @Success 200 {object} response.Response{data=service.MessageDTO} "发送成功"
// @Security BearerAuth
// @Router /room/send [post]
func (c *TeamEngine) GinHandleSendMessage(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}

	var req struct {
		RoomID string `json:"room_id"`
		Text   string `json:"text"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	joined, err := c.MemberService.IsRoomMember(req.RoomID, uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if !joined {
		ctx.JSON(http.StatusOK, response.Error(response.CodePermissionDeny, "not a room member"))
		return
	}

	msg, err := c.MsgService.Append(req.RoomID, uid, req.Text)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(msg))
}

// GinHandleListScopeEvents 作用域事件增量拉取
// @Summary 作用域事件增量拉取
// @Description 按 after_id 拉某作用域的事件，轮询/断线补偿用
// @Tags 房间
// @Produce json
// @Param scope_type query string true "作用域类型 room/calendar/notice"
// @Param scope_id query string true "作用域 ID"
// @Param after_id query uint64 false "事件游标"
// @Success 200 {object} response.Response{data=[]service.ScopeEventDTO} "查询成功"
// @Security BearerAuth
// @Router /events [get]
func (c *TeamEngine) GinHandleListScopeEvents(ctx *gin.Context) {
	if _, ok := uidFromGin(ctx); !ok {
		return
	}

	scopeType := strings.TrimSpace(ctx.Query("scope_type"))
	scopeID := strings.TrimSpace(ctx.Query("scope_id"))
	if scopeType == "" || scopeID == "" {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "scope_type and scope_id are required"))
		return
	}

	var afterID uint64
	if s := strings.TrimSpace(ctx.Query("after_id")); s != "" {
		id, perr := strconv.ParseUint(s, 10, 64)
		if perr != nil {
			ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid after_id"))
			return
		}
		afterID = id
	}

	events, err := c.EventService.ListScopeEvents(scopeType, scopeID, afterID, 0)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(events))
}
