package team_sdk

import (
	"time"

	"github.com/cydxin/team-sdk/service"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type ServiceConfig struct {
	Debug bool
}

type Config struct {
	DB          *gorm.DB
	RDB         *redis.Client
	TablePrefix string
	Service     ServiceConfig

	// AccessCode 共享访问码（登录第一道门），Plain/Hash 二选一
	AccessCode service.AccessCodeConfig

	// SeedAdminID / SeedAdminName 种子管理员，启动时不存在就创建
	SeedAdminID   string
	SeedAdminName string

	// LocalStore 当前会话槽（单用户客户端场景，可选）。
	// 不配且 SessionFilePath 为空时不启用本地槽。
	LocalStore      service.CurrentSessionStore
	SessionFilePath string

	// PollInterval 轮询订阅的拉取间隔，默认 2 秒
	PollInterval time.Duration
}

type Option func(*Config)

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

func WithTablePrefix(prefix string) Option {
	return func(c *Config) {
		c.TablePrefix = prefix
	}
}

func WithRDB(RDB *redis.Client) Option {
	return func(c *Config) {
		c.RDB = RDB
	}
}

func WithServiceDebug(debug bool) Option {
	return func(c *Config) {
		c.Service.Debug = debug
	}
}

// WithAccessCode 配置明文共享访问码
func WithAccessCode(code string) Option {
	return func(c *Config) {
		c.AccessCode.Plain = code
	}
}

// WithAccessCodeHash 配置 bcrypt 哈希形式的共享访问码
func WithAccessCodeHash(hash string) Option {
	return func(c *Config) {
		c.AccessCode.Hash = hash
	}
}

// WithSeedAdmin 配置种子管理员账号
func WithSeedAdmin(id, name string) Option {
	return func(c *Config) {
		c.SeedAdminID = id
		c.SeedAdminName = name
	}
}

// WithLocalSessionStore 注入自定义当前会话槽
func WithLocalSessionStore(store service.CurrentSessionStore) Option {
	return func(c *Config) {
		c.LocalStore = store
	}
}

// WithSessionFile 用 JSON 文件做当前会话槽，path 为空用系统默认位置
func WithSessionFile(path string) Option {
	return func(c *Config) {
		c.SessionFilePath = path
	}
}

// WithPollInterval 配置轮询订阅间隔
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		c.PollInterval = d
	}
}
