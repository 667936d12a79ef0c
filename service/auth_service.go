package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// AuthService 提供"鉴权核心能力"，供调用方自建中间件/拦截器使用。
// - 解析 token（Bearer 优先，其次 query）
// - 校验 token -> userID（Redis 会话，或设备本地槽位兜底）
// - 注销 token / 注销用户全部会话
//
// 注意：这里只管"会话是否有效"。登录本身（共享访问码 + 账号）在 UserService。
// Gin 等框架的中间件建议作为单独适配层，内部调用该 service。
type AuthService struct {
	sessions *SessionService
	local    CurrentSessionStore
}

func NewAuthService(sessions *SessionService, local CurrentSessionStore) *AuthService {
	return &AuthService{sessions: sessions, local: local}
}

// ExtractToken 从 HTTP 请求中提取 token：优先 Authorization: Bearer，其次 query: token。
func (a *AuthService) ExtractToken(r *http.Request) string {
	if r == nil {
		return ""
	}

	// Authorization: Bearer <token>
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if ah != "" {
		parts := strings.SplitN(ah, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// query: ?token=xxx
	q := r.URL.Query().Get("token")
	return strings.TrimSpace(q)
}

// Authenticate 根据 token 获取 userID。
// Redis 未配置时退回设备本地槽位：token 必须与槽位中的一致。
func (a *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("missing token")
	}

	if a.sessions != nil && a.sessions.rdb != nil {
		return a.sessions.GetUserIDByToken(ctx, token)
	}

	if a.local != nil {
		sess, err := a.local.Get(ctx)
		if err != nil {
			return "", err
		}
		if sess.Token != token {
			return "", ErrSessionNotFound
		}
		return sess.UserID, nil
	}

	return "", fmt.Errorf("no session backend configured")
}

// AuthenticateRequest 从请求里抽 token 并鉴权。
func (a *AuthService) AuthenticateRequest(ctx context.Context, r *http.Request) (string, string, error) {
	t := a.ExtractToken(r)
	uid, err := a.Authenticate(ctx, t)
	return uid, t, err
}

// EndSession 无条件结束会话：token 对应的 Redis 会话与本地槽位都清掉。
// token 无效也算成功，结束一个不存在的会话没有副作用。
func (a *AuthService) EndSession(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if a.sessions != nil && a.sessions.rdb != nil && token != "" {
		if err := a.sessions.RevokeSession(ctx, token); err != nil {
			return err
		}
	}
	if a.local != nil {
		return a.local.Clear(ctx)
	}
	return nil
}

// RevokeAllSessionsByUser 注销用户全部会话（删除用户时调用）。
func (a *AuthService) RevokeAllSessionsByUser(ctx context.Context, userID string) error {
	if a.sessions == nil || a.sessions.rdb == nil {
		return nil
	}
	return a.sessions.RevokeAllSessionsByUser(ctx, userID)
}

// RefreshSessionTTL 对 token 续期（滑动过期，可选能力）。
func (a *AuthService) RefreshSessionTTL(ctx context.Context, token string, ttl time.Duration) error {
	if a.sessions == nil || a.sessions.rdb == nil {
		return nil
	}
	return a.sessions.RefreshSessionTTL(ctx, token, ttl)
}
