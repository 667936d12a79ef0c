package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	prefix = "team_"
)

// User 用户表
// ID 是用户自选的登录账号（如 "bob" / "123.com"），直接作为主键。
// 登录凭证是全局共享的访问码，用户本身没有独立密码（产品层面的已知限制，见 AuthService）。
type User struct {
	ID        string `gorm:"primarykey;size:100"` // 用户自选账号，对外即登录 ID
	Name      string `gorm:"size:100;not null"`   // 显示名
	IsAdmin   bool   `gorm:"default:false;index"` // 管理员标记，约定全局只有一个种子管理员
	Avatar    string `gorm:"size:500"`            // 头像 URI，可为空
	CreatedAt time.Time
	UpdatedAt time.Time

	// 关联关系
	JoinedRooms     []UserJoinedRoom     `gorm:"foreignKey:UserID"`
	JoinedCalendars []UserJoinedCalendar `gorm:"foreignKey:UserID"`
	Messages        []ChatMessage        `gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return prefix + "user"
}

// ChatRoom 聊天房间表
// OpenCode 是共享的加入口令。注意：不保证全表唯一，
// 冲突时按创建时间最早的记录优先解析（目录层约定）。
type ChatRoom struct {
	ID        string    `gorm:"primarykey;size:36"` // UUID
	Name      string    `gorm:"size:100;not null"`
	OpenCode  string    `gorm:"size:100;index;not null"` // 加入口令，非唯一索引
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	// 关联关系
	Members  []UserJoinedRoom `gorm:"foreignKey:RoomID"`
	Messages []ChatMessage    `gorm:"foreignKey:RoomID"`
}

func (ChatRoom) TableName() string {
	return prefix + "chat_room"
}

func (r *ChatRoom) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// CalendarSpace 共享日历表
// 与 ChatRoom 同构：名称 + 加入口令，内容是日程而不是消息。
type CalendarSpace struct {
	ID        string    `gorm:"primarykey;size:36"` // UUID
	Name      string    `gorm:"size:100;not null"`
	OpenCode  string    `gorm:"size:100;index;not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	// 关联关系
	Members   []UserJoinedCalendar `gorm:"foreignKey:CalendarID"`
	Schedules []Schedule           `gorm:"foreignKey:CalendarID"`
}

func (CalendarSpace) TableName() string {
	return prefix + "calendar_space"
}

func (c *CalendarSpace) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// ChatMessage 聊天消息表
// 只追加，不修改：UserName 是发送时刻的显示名快照，之后改名不回填。
// 排序以 created_at 升序为准，id 仅做同刻插入的次序兜底。
type ChatMessage struct {
	ID        string    `gorm:"primarykey;size:36"` // UUID
	RoomID    string    `gorm:"size:36;index;not null"`
	UserID    string    `gorm:"size:100;index;not null"`
	UserName  string    `gorm:"size:100;not null"` // 发送时刻的显示名快照
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`

	// 关联关系
	Room ChatRoom `gorm:"foreignKey:RoomID"`
	User User     `gorm:"foreignKey:UserID"`
}

func (ChatMessage) TableName() string {
	return prefix + "chat_message"
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// Schedule 日程表
// Date 是 "YYYY-MM-DD" 的日历日字符串，没有时间分量；按字符串精确匹配分组。
type Schedule struct {
	ID          string `gorm:"primarykey;size:36"` // UUID
	CalendarID  string `gorm:"size:36;index;not null"`
	Title       string `gorm:"size:200;not null"`
	Date        string `gorm:"size:10;index;not null"` // "YYYY-MM-DD"
	Description string `gorm:"size:500"`
	CreatedAt   time.Time

	// 关联关系
	Calendar CalendarSpace `gorm:"foreignKey:CalendarID"`
}

func (Schedule) TableName() string {
	return prefix + "schedule"
}

func (s *Schedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// Notice 公告表
// 全局公告板，不挂在某个房间下。展示顺序：置顶优先，其次按创建时间倒序。
// 除置顶开关外不可修改，只能删除。
type Notice struct {
	ID         string    `gorm:"primarykey;size:36"` // UUID
	Title      string    `gorm:"size:200;not null"`
	Content    string    `gorm:"type:text;not null"`
	Pinned     bool      `gorm:"default:false;index"`
	AuthorName string    `gorm:"size:100;not null"` // 发布时刻的显示名快照
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

func (Notice) TableName() string {
	return prefix + "notice"
}

func (n *Notice) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

// UserJoinedRoom 用户-房间成员关系表
// 纯关系记录，存在即"已加入"。只会通过口令匹配成功而增长，
// 只在房间删除（级联）时收缩。
type UserJoinedRoom struct {
	ID        uint64 `gorm:"primarykey"`
	UserID    string `gorm:"size:100;index:idx_user_room,unique;not null"`
	RoomID    string `gorm:"size:36;index:idx_user_room,unique;not null"`
	CreatedAt time.Time

	// 关联关系
	User User     `gorm:"foreignKey:UserID"`
	Room ChatRoom `gorm:"foreignKey:RoomID"`
}

func (UserJoinedRoom) TableName() string {
	return prefix + "user_joined_room"
}

// UserJoinedCalendar 用户-日历成员关系表
type UserJoinedCalendar struct {
	ID         uint64 `gorm:"primarykey"`
	UserID     string `gorm:"size:100;index:idx_user_calendar,unique;not null"`
	CalendarID string `gorm:"size:36;index:idx_user_calendar,unique;not null"`
	CreatedAt  time.Time

	// 关联关系
	User     User          `gorm:"foreignKey:UserID"`
	Calendar CalendarSpace `gorm:"foreignKey:CalendarID"`
}

func (UserJoinedCalendar) TableName() string {
	return prefix + "user_joined_calendar"
}

// ScopeEvent 作用域事件表（事件只存一份）
// 用于：
// - WS 即时推送的消息体来源
// - 轮询/新设备通过 HTTP 按 after_id 增量拉取
//
// Scope = 事件所属的房间/日历/公告板，ScopeType 区分三者。
type ScopeEvent struct {
	ID        uint64         `gorm:"primarykey"`
	ScopeType string         `gorm:"size:16;index:idx_scope,priority:1;not null"` // room / calendar / notice
	ScopeID   string         `gorm:"size:36;index:idx_scope,priority:2;not null"`
	ActorID   string         `gorm:"size:100;index;not null"`
	EventType string         `gorm:"size:64;index;not null"`
	Payload   datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time      `gorm:"index"`

	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ScopeEvent) TableName() string { return prefix + "scope_event" }
