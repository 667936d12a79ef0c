package team_sdk

import (
	"errors"
	"net/http"

	"github.com/cydxin/team-sdk/response"
	"github.com/cydxin/team-sdk/service"
	"github.com/gin-gonic/gin"
)

// uidFromGin 从 gin.Context 取当前登录用户（配合 GinAuthMiddleware）。
// 取不到时已写好 401 响应，调用方直接 return。
func uidFromGin(ctx *gin.Context) (string, bool) {
	v, exists := ctx.Get("user_id")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found in context"))
		return "", false
	}
	uid, ok := v.(string)
	if !ok || uid == "" {
		ctx.JSON(http.StatusInternalServerError, response.Error(response.CodeInternalError, "invalid user_id type"))
		return "", false
	}
	return uid, true
}

// errCodeOf 业务错误 -> 业务状态码
func errCodeOf(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCode):
		return response.CodeInvalidCode
	case errors.Is(err, service.ErrAccountNotFound):
		return response.CodeAccountNotFound
	case errors.Is(err, service.ErrCodeNotFound):
		return response.CodeCodeNotFound
	case errors.Is(err, service.ErrAlreadyJoined):
		return response.CodeAlreadyJoined
	case errors.Is(err, service.ErrPermissionDenied):
		return response.CodePermissionDeny
	case errors.Is(err, service.ErrValidation):
		return response.CodeParamError
	case errors.Is(err, service.ErrUserExists):
		return response.CodeParamError
	case errors.Is(err, service.ErrScopeNotFound):
		return response.CodeScopeNotFound
	case errors.Is(err, service.ErrSessionNotFound):
		return response.CodeTokenInvalid
	default:
		return response.CodeInternalError
	}
}

// writeServiceError 业务层统一 HTTP 200 + 业务码
func writeServiceError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusOK, response.Error(errCodeOf(err), err.Error()))
}
