package cons

// 作用域类型（scope_type）
const (
	ScopeRoom     = "room"
	ScopeCalendar = "calendar"
	ScopeNotice   = "notice"
)

// NoticeBoardID 公告板是全局唯一的，作用域 ID 固定
const NoticeBoardID = "board"

// 统一的房间/日历作用域事件类型（event_type）
const (
	EventRoomMessageCreated     = "room.message.created"      // 新消息
	EventRoomMemberJoined       = "room.member.joined"        // 成员通过口令加入房间
	EventRoomDeleted            = "room.deleted"              // 房间删除（级联）
	EventCalendarMemberJoined   = "calendar.member.joined"    // 成员通过口令加入日历
	EventCalendarDeleted        = "calendar.deleted"          // 日历删除（级联）
	EventScheduleCreated        = "calendar.schedule.created" // 新日程
	EventScheduleDeleted        = "calendar.schedule.deleted" // 日程删除
)

// 公告板事件
const (
	EventNoticeCreated = "notice.created"
	EventNoticePinned  = "notice.pinned" // 置顶开关翻转（payload 带最终状态）
	EventNoticeDeleted = "notice.deleted"
)
