package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// 默认会话过期时间
	defaultSessionTTL = 7 * 24 * time.Hour
)

// Session 一次已登录的会话：token 是随机不透明字符串，不携带任何用户信息。
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionService 专门负责会话 token 的生成、存储、校验与注销。
// Redis Key 设计：
// - team:session:{token} -> userID (String, TTL)
// - team:user_sessions:{userID} -> Set(token1, token2, ...) (Set, 可选 TTL)
//
// 这样可以：
// - 单 token 注销：DEL sessionKey + SREM userSet
// - 全端注销：SMEMBERS userSet 再批量 DEL sessionKey
// - 支持多设备登录/多 token
type SessionService struct {
	rdb *redis.Client
}

func NewSessionService(rdb *redis.Client) *SessionService {
	return &SessionService{rdb: rdb}
}

func (s *SessionService) ensure() error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis client is nil")
	}
	return nil
}

func (s *SessionService) sessionKey(token string) string {
	return "team:session:" + token
}

func (s *SessionService) userSessionsKey(userID string) string {
	return "team:user_sessions:" + userID
}

// GenerateToken 生成一个随机 token（不包含任何用户信息）。
func (s *SessionService) GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// StoreSession 保存 token -> userID 映射，并把 token 加入 user 的会话集合。
func (s *SessionService) StoreSession(ctx context.Context, token string, userID string, ttl time.Duration) error {
	if err := s.ensure(); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.sessionKey(token), userID, ttl)
	pipe.SAdd(ctx, s.userSessionsKey(userID), token)
	// user session set 的 TTL 不是必须；这里设置为略大于 token TTL，方便自动清理
	pipe.Expire(ctx, s.userSessionsKey(userID), ttl+24*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

// GetUserIDByToken 根据 token 取 userID。
func (s *SessionService) GetUserIDByToken(ctx context.Context, token string) (string, error) {
	if err := s.ensure(); err != nil {
		return "", err
	}
	val, err := s.rdb.Get(ctx, s.sessionKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrSessionNotFound
		}
		return "", err
	}
	return val, nil
}

// RefreshSessionTTL 对 token 续期（滑动过期，可选能力）。
func (s *SessionService) RefreshSessionTTL(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.ensure(); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	uid, err := s.GetUserIDByToken(ctx, token)
	if err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Expire(ctx, s.sessionKey(token), ttl)
	pipe.Expire(ctx, s.userSessionsKey(uid), ttl+24*time.Hour)
	_, err = pipe.Exec(ctx)
	return err
}

// RevokeSession 注销单个会话（无论 token 是否存在都成功）。
func (s *SessionService) RevokeSession(ctx context.Context, token string) error {
	if err := s.ensure(); err != nil {
		return err
	}
	uid, err := s.GetUserIDByToken(ctx, token)
	if err == nil {
		_ = s.rdb.SRem(ctx, s.userSessionsKey(uid), token).Err()
	}
	return s.rdb.Del(ctx, s.sessionKey(token)).Err()
}

// ListUserSessions 列出用户所有 token（用于全端注销）。
func (s *SessionService) ListUserSessions(ctx context.Context, userID string) ([]string, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return s.rdb.SMembers(ctx, s.userSessionsKey(userID)).Result()
}

// RevokeAllSessionsByUser 注销用户全部会话（删除用户时调用）。
func (s *SessionService) RevokeAllSessionsByUser(ctx context.Context, userID string) error {
	if err := s.ensure(); err != nil {
		return err
	}
	tokens, err := s.ListUserSessions(ctx, userID)
	if err != nil {
		// 如果 set 不存在，视为没有会话
		if err == redis.Nil {
			return nil
		}
		return err
	}
	if len(tokens) == 0 {
		_ = s.rdb.Del(ctx, s.userSessionsKey(userID)).Err()
		return nil
	}

	pipe := s.rdb.TxPipeline()
	for _, t := range tokens {
		pipe.Del(ctx, s.sessionKey(t))
	}
	pipe.Del(ctx, s.userSessionsKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}
