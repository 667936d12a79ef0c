package message

// WS 上行消息类型
const (
	WsTypeMessage = "message" // 默认：发送消息
)

// WS 下行消息类型
const (
	WsTypeAck   = "ack"   // 上行回执
	WsTypeEvent = "event" // 作用域事件推送（新消息/新日程/公告等）
)
