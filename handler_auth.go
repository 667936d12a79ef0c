package team_sdk

import (
	"net/http"

	"github.com/cydxin/team-sdk/response"
	"github.com/cydxin/team-sdk/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 鉴权（Auth）相关接口 --------------------

// GinHandleLogin 登录
// @Summary 登录
// @Description 共享访问码 + 账号登录。码错返回 10002，码对但账号不存在返回 10003
// @Tags 鉴权
// @Accept json
// @Produce json
// @Param req body service.LoginReq true "登录信息"
// @Success 200 {object} response.Response{data=service.LoginResp} "登录成功"
// @Failure 400 {object} response.Response "参数错误"
// @Router /auth/login [post]
func (c *TeamEngine) GinHandleLogin(ctx *gin.Context) {
	var req service.LoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	resp, err := c.UserService.Authenticate(ctx.Request.Context(), req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(resp))
}

// GinHandleLogout 登出
// @Summary 登出
// @Description 注销当前会话（Redis + 本地槽位），无条件成功
// @Tags 鉴权
// @Accept json
// @Produce json
// @Success 200 {object} response.Response "登出成功"
// @Security BearerAuth
// @Router /auth/logout [post]
func (c *TeamEngine) GinHandleLogout(ctx *gin.Context) {
	token, _ := ctx.Get("token")
	tokenStr, _ := token.(string)

	if err := c.AuthService.EndSession(ctx.Request.Context(), tokenStr); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleCurrentUser 当前登录用户
// @Summary 当前登录用户
// @Tags 鉴权
// @Produce json
// @Success 200 {object} response.Response{data=service.UserDTO} "查询成功"
// @Failure 401 {object} response.Response "未登录"
// @Security BearerAuth
// @Router /auth/me [get]
func (c *TeamEngine) GinHandleCurrentUser(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}
	u, err := c.UserService.GetUser(uid)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(u))
}

// GinHandleWS WebSocket 升级入口（走鉴权中间件后调用）
// @Summary WebSocket 连接
// @Description 升级为 WebSocket，之后按 message.Req 收发
// @Tags 鉴权
// @Router /ws [get]
func (c *TeamEngine) GinHandleWS(ctx *gin.Context) {
	uid, ok := uidFromGin(ctx)
	if !ok {
		return
	}
	c.ServeWS(ctx.Writer, ctx.Request, uid)
}
