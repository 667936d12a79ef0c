package team_sdk

import (
	"net/http"
	"strings"

	"github.com/cydxin/team-sdk/response"
	"github.com/cydxin/team-sdk/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 用户（User）相关接口 --------------------

// GinHandleGetUserInfo 获取用户信息
// @Summary 获取用户信息
// @Description 根据 user_id 查询用户详情，不传 user_id 则查当前登录用户
// @Tags 用户
// @Accept json
// @Produce json
// @Param user_id query string false "账号 (不传则查自己)"
// @Success 200 {object} response.Response{data=service.UserDTO} "查询成功"
// @Failure 401 {object} response.Response "未登录"
// @Security BearerAuth
// @Router /user/info [get]
func (c *TeamEngine) GinHandleGetUserInfo(ctx *gin.Context) {
	targetID := strings.TrimSpace(ctx.Query("user_id"))
	if targetID == "" {
		uid, ok := uidFromGin(ctx)
		if !ok {
			return
		}
		targetID = uid
	}

	u, err := c.UserService.GetUser(targetID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(u))
}

// GinHandleListUsers 用户列表
// @Summary 用户列表
// @Description 全部账号，按创建时间升序。仅管理员
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response{data=[]service.UserDTO} "查询成功"
// @Failure 401 {object} response.Response "未登录"
// @Security BearerAuth
// @Router /user/list [get]
func (c *TeamEngine) GinHandleListUsers(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}
	users, err := c.UserService.ListUsers(uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(users))
}

// GinHandleCreateUser 创建账号
// @Summary 创建账号
// @Description 管理员开新账号：账号 + 显示名
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body object{id=string,name=string} true "账号信息"
// @Success 200 {object} response.Response{data=service.UserDTO} "创建成功"
// @Failure 400 {object} response.Response "参数错误"
// @Security BearerAuth
// @Router /user/create [post]
func (c *TeamEngine) GinHandleCreateUser(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}

	var req struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	u, err := c.UserService.CreateUser(uid, req.ID, req.Name)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(u))
}

// GinHandleDeleteUser 删除账号
// @Summary 删除账号
// @Description 管理员删除账号，附带清理其成员关系与会话。种子管理员删除是静默 no-op
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body object{id=string} true "账号"
// @Success 200 {object} response.Response "删除成功"
// @Security BearerAuth
// @Router /user/delete [post]
func (c *TeamEngine) GinHandleDeleteUser(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	if err := c.UserService.DeleteUser(ctx.Request.Context(), uid, req.ID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleUpdateProfile 更新个人资料
// @Summary 更新个人资料
// @Description 显示名为空保留原值，头像原样覆盖
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body service.UpdateProfileReq true "资料"
// @Success 200 {object} response.Response{data=service.UserDTO} "更新成功"
// @Security BearerAuth
// @Router /user/profile [post]
func (c *TeamEngine) GinHandleUpdateProfile(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}

	var req service.UpdateProfileReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	u, err := c.UserService.UpdateProfile(uid, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(u))
}
