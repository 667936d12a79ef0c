package message

// Req WS 上行消息
type Req struct {
	Type        string `json:"type"`         // WS 消息类型：message/...
	SendTo      string `json:"send_to"`      // 房间 ID
	SendContent string `json:"send_content"` // 消息正文
	PacketID    string `json:"packet_id"`    // 包ID，客户端匹配回执用
}

// Ack 服务端对上行消息的回执
type Ack struct {
	Type     string `json:"type"`              // ack
	PacketID string `json:"packet_id"`         // 对应上行的包ID
	OK       bool   `json:"ok"`                // 是否入库成功
	Msg      string `json:"msg,omitempty"`     // 失败原因
	ID       string `json:"id,omitempty"`      // 入库后的消息 ID
	SendTo   string `json:"send_to,omitempty"` // 房间 ID
}
