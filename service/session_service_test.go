package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestSessionService_StoreAndGet(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewSessionService(rdb)
	ctx := context.Background()

	token, err := svc.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	if err := svc.StoreSession(ctx, token, "bob", time.Hour); err != nil {
		t.Fatalf("StoreSession: %v", err)
	}

	uid, err := svc.GetUserIDByToken(ctx, token)
	if err != nil {
		t.Fatalf("GetUserIDByToken: %v", err)
	}
	if uid != "bob" {
		t.Fatalf("expected bob, got %q", uid)
	}
}

func TestSessionService_UnknownToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewSessionService(rdb)

	_, err := svc.GetUserIDByToken(context.Background(), "no-such-token")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

// 注销不存在的 token 也算成功
func TestSessionService_RevokeIsIdempotent(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewSessionService(rdb)
	ctx := context.Background()

	token, _ := svc.GenerateToken()
	if err := svc.StoreSession(ctx, token, "bob", time.Hour); err != nil {
		t.Fatalf("StoreSession: %v", err)
	}

	if err := svc.RevokeSession(ctx, token); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}
	if _, err := svc.GetUserIDByToken(ctx, token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after revoke, got %v", err)
	}
	// 再注销一次
	if err := svc.RevokeSession(ctx, token); err != nil {
		t.Fatalf("RevokeSession second: %v", err)
	}
}

func TestSessionService_RevokeAllByUser(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewSessionService(rdb)
	ctx := context.Background()

	// 同一用户两个设备
	t1, _ := svc.GenerateToken()
	t2, _ := svc.GenerateToken()
	_ = svc.StoreSession(ctx, t1, "bob", time.Hour)
	_ = svc.StoreSession(ctx, t2, "bob", time.Hour)

	tokens, err := svc.ListUserSessions(ctx, "bob")
	if err != nil {
		t.Fatalf("ListUserSessions: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(tokens))
	}

	if err := svc.RevokeAllSessionsByUser(ctx, "bob"); err != nil {
		t.Fatalf("RevokeAllSessionsByUser: %v", err)
	}
	for _, tok := range []string{t1, t2} {
		if _, err := svc.GetUserIDByToken(ctx, tok); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound for %q, got %v", tok, err)
		}
	}
}
