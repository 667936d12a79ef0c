package team_sdk

import (
	"net/http"

	"github.com/cydxin/team-sdk/response"
	"github.com/gin-gonic/gin"
)

// -------------------- 公告板（Notice）相关接口 --------------------

// GinHandleListNotices 公告列表
// @Summary 公告列表
// @Description 置顶的在前，各组内按发布时间倒序
// @Tags 公告
// @Produce json
// @Success 200 {object} response.Response{data=[]service.NoticeDTO} "查询成功"
// @Security BearerAuth
// @Router /notice/list [get]
func (c *TeamEngine) GinHandleListNotices(ctx *gin.Context) {
	if _, ok := uidFromGin(ctx); !ok {
		return
	}
	notices, err := c.NoticeService.List()
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(notices))
}

// GinHandleCreateNotice 发布公告
// @Summary 发布公告
// @Description 管理员发布公告。标题/正文 trim 后为空静默忽略
// @Tags 公告
// @Accept json
// @Produce json
// @Success 200 {object} response.Response{data=service.NoticeDTO} "发布成功"
// @Security BearerAuth
// @Router /notice/create [post]
func (c *TeamEngine) GinHandleCreateNotice(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	notice, err := c.NoticeService.Create(uid, req.Title, req.Content)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(notice))
}

// GinHandleToggleNoticePin 置顶开关
// @Summary 置顶开关
// @Description 管理员翻转公告置顶状态，连按两次回到原状态
// @Tags 公告
// @Accept json
// @Produce json
// @Success 200 {object} response.Response{data=service.NoticeDTO} "操作成功"
// @Security BearerAuth
// @Router /notice/pin [post]
func (c *TeamEngine) GinHandleToggleNoticePin(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}

	var req struct {
		NoticeID string `json:"notice_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	notice, err := c.NoticeService.TogglePin(uid, req.NoticeID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(notice))
}

// GinHandleDeleteNotice 删除公告
// @Summary 删除公告
// @Description 管理员删除公告
// @Tags 公告
// @Accept json
// @Produce json
// @Success 200 {object} response.Response "删除成功"
// @Security BearerAuth
// @Router /notice/delete [post]
func (c *TeamEngine) GinHandleDeleteNotice(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}

	var req struct {
		NoticeID string `json:"notice_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	if err := c.NoticeService.Delete(uid, req.NoticeID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}
