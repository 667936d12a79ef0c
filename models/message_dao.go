package models

import (
	"time"

	"gorm.io/gorm"
)

// MessageDAO 封装 ChatMessage 相关的数据库操作
type MessageDAO struct {
	db *gorm.DB
}

// NewMessageDAO 创建 MessageDAO 实例
func NewMessageDAO(db *gorm.DB) *MessageDAO {
	return &MessageDAO{db: db}
}

// Create 创建消息
func (dao *MessageDAO) Create(msg *ChatMessage) error {
	return dao.db.Create(msg).Error
}

// FindByID 根据ID查找消息
func (dao *MessageDAO) FindByID(id string) (*ChatMessage, error) {
	var msg ChatMessage
	err := dao.db.Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindByRoomID 获取房间消息列表，按时间升序（同刻按 id 兜底）
func (dao *MessageDAO) FindByRoomID(roomID string) ([]ChatMessage, error) {
	var messages []ChatMessage
	err := dao.db.Where("room_id = ?", roomID).
		Order("created_at asc").
		Order("id asc").
		Find(&messages).Error
	return messages, err
}

// FindByRoomIDAfter 获取某时刻之后的新消息（轮询订阅用）
func (dao *MessageDAO) FindByRoomIDAfter(roomID string, after time.Time) ([]ChatMessage, error) {
	var messages []ChatMessage
	err := dao.db.Where("room_id = ? AND created_at > ?", roomID, after).
		Order("created_at asc").
		Order("id asc").
		Find(&messages).Error
	return messages, err
}

// FindByRoomIDFrom 获取某时刻（含同刻）起的消息。
// 轮询游标用 >= 重叠拉取，同一毫秒先后落库的消息不会漏，由调用方按 id 去重。
func (dao *MessageDAO) FindByRoomIDFrom(roomID string, from time.Time) ([]ChatMessage, error) {
	var messages []ChatMessage
	err := dao.db.Where("room_id = ? AND created_at >= ?", roomID, from).
		Order("created_at asc").
		Order("id asc").
		Find(&messages).Error
	return messages, err
}

// CountByRoomID 房间内消息数
func (dao *MessageDAO) CountByRoomID(roomID string) (int64, error) {
	var count int64
	err := dao.db.Model(&ChatMessage{}).Where("room_id = ?", roomID).Count(&count).Error
	return count, err
}

// DeleteByRoomID 删除房间全部消息（房间级联删除用）
func (dao *MessageDAO) DeleteByRoomID(tx *gorm.DB, roomID string) error {
	return tx.Where("room_id = ?", roomID).Delete(&ChatMessage{}).Error
}
