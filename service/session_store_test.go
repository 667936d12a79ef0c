package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileSessionStore_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileSessionStore(path)
	ctx := context.Background()

	// 空槽位
	if _, err := store.Get(ctx); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on empty slot, got %v", err)
	}

	want := &Session{Token: "tok", UserID: "bob", CreatedAt: time.Now()}
	if err := store.Set(ctx, want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != "bob" || got.Token != "tok" {
		t.Fatalf("unexpected session: %#v", got)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := store.Get(ctx); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after clear, got %v", err)
	}
	// 重复 Clear 也成功
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear second: %v", err)
	}
}

// 槽位内容损坏时当作未登录，而不是报错卡死调用方
func TestFileSessionStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	store := NewFileSessionStore(path)

	if _, err := store.Get(context.Background()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for corrupt slot, got %v", err)
	}
}

// Set(nil) 等价于 Clear
func TestFileSessionStore_SetNilClears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileSessionStore(path)
	ctx := context.Background()

	_ = store.Set(ctx, &Session{Token: "tok", UserID: "bob"})
	if err := store.Set(ctx, nil); err != nil {
		t.Fatalf("Set(nil): %v", err)
	}
	if _, err := store.Get(ctx); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected empty slot, got %v", err)
	}
}
