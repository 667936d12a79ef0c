package service

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestAuthService_ExtractToken_BearerFirst(t *testing.T) {
	a := NewAuthService(nil, nil)

	req := &http.Request{Header: make(http.Header), URL: &url.URL{RawQuery: "token=q"}}
	req.Header.Set("Authorization", "Bearer headerToken")

	got := a.ExtractToken(req)
	if got != "headerToken" {
		t.Fatalf("expected headerToken, got %q", got)
	}
}

func TestAuthService_ExtractToken_QueryFallback(t *testing.T) {
	a := NewAuthService(nil, nil)

	u, _ := url.Parse("http://example.com/path?token=queryToken")
	req := &http.Request{Header: make(http.Header), URL: u}

	got := a.ExtractToken(req)
	if got != "queryToken" {
		t.Fatalf("expected queryToken, got %q", got)
	}
}

func TestAuthService_Authenticate_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := NewSessionService(rdb)
	a := NewAuthService(sessions, nil)
	ctx := context.Background()

	token, _ := sessions.GenerateToken()
	if err := sessions.StoreSession(ctx, token, "bob", time.Hour); err != nil {
		t.Fatalf("StoreSession: %v", err)
	}

	uid, err := a.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if uid != "bob" {
		t.Fatalf("expected bob, got %q", uid)
	}
}

// Redis 未配置时退回设备本地槽位
func TestAuthService_Authenticate_LocalSlotFallback(t *testing.T) {
	store := NewFileSessionStore(t.TempDir() + "/session.json")
	ctx := context.Background()
	if err := store.Set(ctx, &Session{Token: "local-token", UserID: "bob", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("store.Set: %v", err)
	}

	a := NewAuthService(nil, store)

	uid, err := a.Authenticate(ctx, "local-token")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if uid != "bob" {
		t.Fatalf("expected bob, got %q", uid)
	}

	// 不一致的 token 拒绝
	if _, err := a.Authenticate(ctx, "other"); err == nil {
		t.Fatalf("expected error for mismatched token")
	}
}

// 结束会话无条件成功，且清掉本地槽位
func TestAuthService_EndSession_ClearsLocalSlot(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := NewSessionService(rdb)
	store := NewFileSessionStore(t.TempDir() + "/session.json")
	a := NewAuthService(sessions, store)
	ctx := context.Background()

	token, _ := sessions.GenerateToken()
	_ = sessions.StoreSession(ctx, token, "bob", time.Hour)
	_ = store.Set(ctx, &Session{Token: token, UserID: "bob", CreatedAt: time.Now()})

	if err := a.EndSession(ctx, token); err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	if _, err := a.Authenticate(ctx, token); err == nil {
		t.Fatalf("expected error after EndSession")
	}
	if _, err := store.Get(ctx); err == nil {
		t.Fatalf("expected empty local slot after EndSession")
	}

	// 无效 token 也成功
	if err := a.EndSession(ctx, "never-existed"); err != nil {
		t.Fatalf("EndSession with unknown token: %v", err)
	}
}
