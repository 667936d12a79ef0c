package main

import (
	"log"
	"os"

	team_sdk "github.com/cydxin/team-sdk"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	// 0. 读取 .env（没有也不报错，直接用环境变量/默认值）
	_ = godotenv.Load()

	// 1. 初始化数据库连接
	dsn := getenv("TEAM_DSN", "root:password@tcp(127.0.0.1:3306)/team_db?charset=utf8mb4&parseTime=True&loc=Local")
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("数据库连接失败:", err)
	}

	// 2. Redis（Token 会话存储）
	rdb := redis.NewClient(&redis.Options{
		Addr:     getenv("TEAM_REDIS_ADDR", "127.0.0.1:6379"),
		Password: os.Getenv("TEAM_REDIS_PASSWORD"),
	})

	// 3. 初始化 Team Engine（单例模式，全局只需调用一次）
	engine := team_sdk.NewEngine(
		team_sdk.WithDB(db),
		team_sdk.WithRDB(rdb),
		team_sdk.WithTablePrefix("team_"),
		team_sdk.WithAccessCode(getenv("TEAM_ACCESS_CODE", "LIVER")),
		team_sdk.WithSeedAdmin(getenv("TEAM_ADMIN_ID", "123.com"), getenv("TEAM_ADMIN_NAME", "Admin")),
	)

	// 4. 创建 Gin 路由
	r := gin.Default()

	// 设置 CORS（如果需要）
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// 注册 Swagger UI
	team_sdk.RegisterSwagger(r, "/swagger/*any")

	// 5. 登录不走鉴权
	r.POST("/api/v1/auth/login", engine.GinHandleLogin)

	// 6. WebSocket 连接路由（token 走 query）
	// 客户端连接：ws://localhost:8080/ws?token=xxx
	r.GET("/ws", engine.GinAuthMiddleware(nil), engine.GinHandleWS)

	// 7. API 路由组（鉴权中间件）
	api := r.Group("/api/v1", engine.GinAuthMiddleware(nil))

	// 鉴权模块
	authAPI := api.Group("/auth")
	{
		authAPI.POST("/logout", engine.GinHandleLogout)
		authAPI.GET("/me", engine.GinHandleCurrentUser)
	}

	// 用户模块
	userAPI := api.Group("/user")
	{
		userAPI.GET("/info", engine.GinHandleGetUserInfo)
		userAPI.GET("/list", engine.GinHandleListUsers)
		userAPI.POST("/create", engine.GinHandleCreateUser)
		userAPI.POST("/delete", engine.GinHandleDeleteUser)
		userAPI.POST("/profile", engine.GinHandleUpdateProfile)
	}

	// 房间模块
	roomAPI := api.Group("/room")
	{
		roomAPI.GET("/list", engine.GinHandleListRooms)
		roomAPI.GET("/joined", engine.GinHandleListJoinedRooms)
		roomAPI.POST("/create", engine.GinHandleCreateRoom)
		roomAPI.POST("/delete", engine.GinHandleDeleteRoom)
		roomAPI.POST("/join", engine.GinHandleJoinRoom)
		roomAPI.GET("/messages", engine.GinHandleListMessages)
		roomAPI.POST("/send", engine.GinHandleSendMessage)
	}

	// 日历模块
	calendarAPI := api.Group("/calendar")
	{
		calendarAPI.GET("/list", engine.GinHandleListCalendars)
		calendarAPI.GET("/joined", engine.GinHandleListJoinedCalendars)
		calendarAPI.POST("/create", engine.GinHandleCreateCalendar)
		calendarAPI.POST("/delete", engine.GinHandleDeleteCalendar)
		calendarAPI.POST("/join", engine.GinHandleJoinCalendar)
		calendarAPI.GET("/schedules", engine.GinHandleListSchedules)
		calendarAPI.POST("/schedule/add", engine.GinHandleAddSchedule)
		calendarAPI.POST("/schedule/delete", engine.GinHandleDeleteSchedule)
	}

	// 公告模块
	noticeAPI := api.Group("/notice")
	{
		noticeAPI.GET("/list", engine.GinHandleListNotices)
		noticeAPI.POST("/create", engine.GinHandleCreateNotice)
		noticeAPI.POST("/pin", engine.GinHandleToggleNoticePin)
		noticeAPI.POST("/delete", engine.GinHandleDeleteNotice)
	}

	// 事件增量拉取（轮询端用）
	api.GET("/events", engine.GinHandleListScopeEvents)

	// 8. 启动服务器
	log.Println("Team Server 启动在 :8080")
	log.Println("Swagger UI: http://localhost:8080/swagger/index.html")
	log.Println("WebSocket 地址: ws://localhost:8080/ws?token=YOUR_TOKEN")
	if err := r.Run(":8080"); err != nil {
		log.Fatal("服务器启动失败:", err)
	}
}
