package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// CurrentSessionStore 抽象"当前会话"槽位：谁在这台设备上登录着。
// 取代全局可变的 current user：会话对象由调用方显式传递，
// 槽位本身只负责 get/set/clear。
//
// 两种实现：
// - FileSessionStore：设备本地 JSON 文件，进程重启后仍在，仅本机可见
// - SessionService（Redis）：多设备服务端部署用，token 维度
type CurrentSessionStore interface {
	Get(ctx context.Context) (*Session, error)
	Set(ctx context.Context, sess *Session) error
	Clear(ctx context.Context) error
}

// FileSessionStore 设备本地会话槽位：单个 JSON 文件保存一条 Session。
// 对应"浏览器 localStorage 里的 current user"这种宿主形态。
type FileSessionStore struct {
	mu   sync.Mutex
	path string
}

// NewFileSessionStore path 为空时默认使用 用户配置目录/team-sdk/session.json。
func NewFileSessionStore(path string) *FileSessionStore {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = "."
		}
		path = filepath.Join(dir, "team-sdk", "session.json")
	}
	return &FileSessionStore{path: path}
}

func (s *FileSessionStore) Get(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// 槽位内容损坏时当作未登录处理，不让调用方卡死
		return nil, ErrSessionNotFound
	}
	if sess.UserID == "" {
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

func (s *FileSessionStore) Set(ctx context.Context, sess *Session) error {
	if sess == nil {
		return s.Clear(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear 无条件清空槽位；槽位本来就是空也算成功。
func (s *FileSessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
