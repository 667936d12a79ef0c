package team_sdk

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/cydxin/team-sdk/message"
	"github.com/cydxin/team-sdk/middleware"
	model "github.com/cydxin/team-sdk/models"
	"github.com/cydxin/team-sdk/service"
	"github.com/gin-gonic/gin"
)

type TeamEngine struct {
	config *Config

	UserService     *service.UserService
	AuthService     *service.AuthService // 鉴权服务
	DirService      *service.DirectoryService
	MemberService   *service.MembershipService
	MsgService      *service.MessageService
	ScheduleService *service.ScheduleService
	NoticeService   *service.NoticeService
	EventService    *service.EventService
	WsServer        *WsServer
}

var (
	Instance *TeamEngine
	once     sync.Once
)

// NewEngine 创建实例
// 使用选项模式传入配置，Option回调
func NewEngine(opts ...Option) *TeamEngine {
	once.Do(func() {
		c := &Config{
			TablePrefix:   "team_", // Default
			SeedAdminID:   "123.com",
			SeedAdminName: "Admin",
			PollInterval:  defaultPollInterval,
		}
		for _, opt := range opts {
			opt(c)
		}

		Instance = &TeamEngine{config: c}

		// 初始化 WS
		Instance.WsServer = NewWsServer()
		go Instance.WsServer.Run()

		// 当前会话槽：注入的优先，其次按文件路径建一个
		localStore := c.LocalStore
		if localStore == nil && c.SessionFilePath != "" {
			localStore = service.NewFileSessionStore(c.SessionFilePath)
		}

		// 初始化基础 Service，注入 WS 回调
		baseService := &service.Service{
			DB:          c.DB,
			RDB:         c.RDB,
			TablePrefix: c.TablePrefix,
			WsNotifier:  Instance.WsServer.SendToUser,
			WsBroadcast: Instance.WsServer.Broadcast,
		}
		baseService.Events = service.NewEventService(baseService)

		// 初始化各个 Service
		Instance.EventService = baseService.Events
		Instance.UserService = service.NewUserService(baseService, service.UserServiceConfig{
			AccessCode:  c.AccessCode,
			SeedAdminID: c.SeedAdminID,
			LocalStore:  localStore,
		})
		Instance.DirService = service.NewDirectoryService(baseService)
		Instance.MemberService = service.NewMembershipService(baseService, Instance.DirService)
		Instance.MsgService = service.NewMessageService(baseService, Instance.DirService, Instance.MemberService)
		Instance.ScheduleService = service.NewScheduleService(baseService, Instance.DirService, Instance.MemberService)
		Instance.NoticeService = service.NewNoticeService(baseService)
		Instance.AuthService = service.NewAuthService(service.NewSessionService(c.RDB), localStore)

		// 迁移表
		if err := Instance.AutoMigrate(); err != nil {
			log.Printf("AutoMigrate failed: %v", err)
		}

		// 种子管理员
		if err := Instance.UserService.EnsureSeedAdmin(c.SeedAdminName); err != nil {
			log.Printf("EnsureSeedAdmin failed: %v", err)
		}

		//  使用闭包处理消息
		Instance.WsServer.onMessage = func(client *Client, msg []byte) {
			var req message.Req
			if err := json.Unmarshal(msg, &req); err != nil {
				log.Printf("Invalid message format: %v", err)
				return
			}
			if req.Type != "" && req.Type != message.WsTypeMessage {
				return
			}

			ack := message.Ack{Type: message.WsTypeAck, PacketID: req.PacketID, SendTo: req.SendTo}

			// WS 入口先做成员校验，HTTP 入口由 handler 校验
			joined, err := Instance.MemberService.IsRoomMember(req.SendTo, client.UserID)
			if err != nil || !joined {
				ack.Msg = "not a room member"
				if b, merr := json.Marshal(ack); merr == nil {
					Instance.WsServer.SendToUser(client.UserID, b)
				}
				return
			}

			savedMsg, err := Instance.MsgService.Append(req.SendTo, client.UserID, req.SendContent)
			if err != nil {
				log.Printf("Failed to save message: %v", err)
				ack.Msg = err.Error()
				if b, merr := json.Marshal(ack); merr == nil {
					Instance.WsServer.SendToUser(client.UserID, b)
				}
				return
			}
			if savedMsg == nil {
				// 空白正文，静默忽略
				return
			}

			ack.OK = true
			ack.ID = savedMsg.ID
			if b, merr := json.Marshal(ack); merr == nil {
				Instance.WsServer.SendToUser(client.UserID, b)
			}
			// 成员推送由 MsgService.Append 里的事件发布完成，发送者收 ack 即可
		}

	})

	return Instance
}

func (c *TeamEngine) AutoMigrate() error {
	db := c.config.DB
	log.Println("AutoMigrate...")
	return db.AutoMigrate(
		&model.User{},
		&model.ChatRoom{},
		&model.ChatMessage{},
		&model.CalendarSpace{},
		&model.Schedule{},
		&model.Notice{},
		&model.UserJoinedRoom{},
		&model.UserJoinedCalendar{},
		&model.ScopeEvent{},
	)
}

/*
*	提供的HTTP接口在此处，也可以直接自己写controller然后调用service
*	推荐自己写controller，因为这样更灵活
 */

// ServeWS 处理 WebSocket 请求，需要传入 userID
func (c *TeamEngine) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := Instance.UserService.GetUser(userID)
	if err == nil && user != nil {
		c.WsServer.ServeWS(w, r, userID, user.Name)
		return
	}
	c.WsServer.ServeWS(w, r, userID, userID)
}

// HandleWS 返回 WebSocket 的Handler
func (c *TeamEngine) HandleWS(userID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.ServeWS(w, r, userID)
	}
}

// GinAuthMiddleware 返回配置好的 Gin 鉴权中间件
// 使用 TeamEngine 内部的 AuthService 和 Redis 配置
//
// 使用示例:
//
//	engine := team_sdk.NewEngine(...)
//	r := gin.Default()
//	r.Use(engine.GinAuthMiddleware(nil)) // 使用默认配置
//	// 或自定义配置
//	r.Use(engine.GinAuthMiddleware(&middleware.AuthOptions{
//	    HeaderKey: "X-Token",
//	    QueryKey: "access_token",
//	}))
func (c *TeamEngine) GinAuthMiddleware(opt *middleware.AuthOptions) gin.HandlerFunc {
	return middleware.GinAuthMiddleware(c.AuthService, opt)
}
