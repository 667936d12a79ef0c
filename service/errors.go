package service

import "errors"

// 业务错误：调用方用 errors.Is 判断，HTTP 层映射为 response 业务码。
// 除此之外的错误一律视为后端透传错误（BackendError）。
var (
	// ErrInvalidCode 共享访问码不匹配（先于账号查找判定）
	ErrInvalidCode = errors.New("invalid code")
	// ErrAccountNotFound 访问码正确但账号不存在
	ErrAccountNotFound = errors.New("account not found")

	// ErrCodeNotFound 加入口令没有匹配到任何房间/日历
	ErrCodeNotFound = errors.New("code not found")
	// ErrAlreadyJoined 已经加入过该房间/日历
	ErrAlreadyJoined = errors.New("already joined")

	// ErrPermissionDenied 非管理员执行管理员专属操作
	ErrPermissionDenied = errors.New("permission denied")
	// ErrValidation 必填字段为空（trim 之后）
	ErrValidation = errors.New("required field missing")
	// ErrScopeNotFound 目标房间/日历不存在（可能已被删除）
	ErrScopeNotFound = errors.New("scope not found")
	// ErrUserExists 账号已被占用
	ErrUserExists = errors.New("id already exists")

	// ErrSessionNotFound 会话不存在或已过期
	ErrSessionNotFound = errors.New("session not found")
)
