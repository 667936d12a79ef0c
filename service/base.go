package service

import (
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Service 基础服务，包含数据库和配置
type Service struct {
	DB          *gorm.DB
	RDB         *redis.Client
	TablePrefix string
	// WsNotifier 用于发送 WebSocket 通知的回调函数
	// 避免循环依赖，通过函数注入的方式
	WsNotifier func(userID string, message []byte)
	// WsBroadcast 全站广播回调，公告板这类全局作用域用它推送
	WsBroadcast func(message []byte)

	// Events 作用域事件服务（统一落库 + WS 推送 + HTTP 增量拉取）
	Events *EventService
}

// Table 获取带前缀的表名
func (s *Service) Table(name string) *gorm.DB {
	return s.DB.Table(name)
}
