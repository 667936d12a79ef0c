package service

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/cydxin/team-sdk/cons"
	"github.com/cydxin/team-sdk/models"
	"gorm.io/gorm"
)

// DirectoryService 房间/日历目录：全量列表、管理员建删。
// listAll 永远不按成员关系过滤：口令加入要对着全量目录解析，而不是已加入的子集。
type DirectoryService struct {
	*Service
}

func NewDirectoryService(s *Service) *DirectoryService {
	log.Println("NewDirectoryService")
	return &DirectoryService{Service: s}
}

// RoomDTO 房间目录项
type RoomDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OpenCode  string    `json:"open_code"`
	CreatedAt time.Time `json:"created_at"`
}

// CalendarDTO 日历目录项
type CalendarDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OpenCode  string    `json:"open_code"`
	CreatedAt time.Time `json:"created_at"`
}

func toRoomDTO(r *models.ChatRoom) *RoomDTO {
	if r == nil {
		return nil
	}
	return &RoomDTO{ID: r.ID, Name: r.Name, OpenCode: r.OpenCode, CreatedAt: r.CreatedAt}
}

func toCalendarDTO(c *models.CalendarSpace) *CalendarDTO {
	if c == nil {
		return nil
	}
	return &CalendarDTO{ID: c.ID, Name: c.Name, OpenCode: c.OpenCode, CreatedAt: c.CreatedAt}
}

// ListRooms 全量房间目录（不过滤成员关系）
func (s *DirectoryService) ListRooms() ([]RoomDTO, error) {
	var rooms []models.ChatRoom
	if err := s.DB.Order("created_at asc").Find(&rooms).Error; err != nil {
		return nil, err
	}
	out := make([]RoomDTO, 0, len(rooms))
	for i := range rooms {
		out = append(out, *toRoomDTO(&rooms[i]))
	}
	return out, nil
}

// ListCalendars 全量日历目录
func (s *DirectoryService) ListCalendars() ([]CalendarDTO, error) {
	var cals []models.CalendarSpace
	if err := s.DB.Order("created_at asc").Find(&cals).Error; err != nil {
		return nil, err
	}
	out := make([]CalendarDTO, 0, len(cals))
	for i := range cals {
		out = append(out, *toCalendarDTO(&cals[i]))
	}
	return out, nil
}

// GetRoomByID 按 ID 查房间，不存在返回 ErrScopeNotFound
func (s *DirectoryService) GetRoomByID(roomID string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := s.DB.Where("id = ?", roomID).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScopeNotFound
		}
		return nil, err
	}
	return &room, nil
}

// GetCalendarByID 按 ID 查日历，不存在返回 ErrScopeNotFound
func (s *DirectoryService) GetCalendarByID(calendarID string) (*models.CalendarSpace, error) {
	var cal models.CalendarSpace
	if err := s.DB.Where("id = ?", calendarID).First(&cal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScopeNotFound
		}
		return nil, err
	}
	return &cal, nil
}

// FindRoomByCode 按口令解析房间。
// open_code 不保证唯一：撞码时按创建时间最早的记录优先（既定的保守决策）。
func (s *DirectoryService) FindRoomByCode(code string) (*models.ChatRoom, error) {
	code = strings.TrimSpace(code)
	var room models.ChatRoom
	err := s.DB.Where("open_code = ?", code).Order("created_at asc").First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return &room, nil
}

// FindCalendarByCode 按口令解析日历，撞码规则同 FindRoomByCode。
func (s *DirectoryService) FindCalendarByCode(code string) (*models.CalendarSpace, error) {
	code = strings.TrimSpace(code)
	var cal models.CalendarSpace
	err := s.DB.Where("open_code = ?", code).Order("created_at asc").First(&cal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return &cal, nil
}

// CreateRoom 管理员创建房间，同事务里把创建者自动加入。
func (s *DirectoryService) CreateRoom(actorID, name, code string) (*RoomDTO, error) {
	if err := requireAdmin(s.DB, actorID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)
	if name == "" || code == "" {
		return nil, ErrValidation
	}

	room := &models.ChatRoom{Name: name, OpenCode: code}

	tx := s.DB.Begin()
	defer tx.Rollback()

	if err := tx.Create(room).Error; err != nil {
		return nil, err
	}
	member := &models.UserJoinedRoom{UserID: actorID, RoomID: room.ID}
	if err := tx.Create(member).Error; err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return toRoomDTO(room), nil
}

// CreateCalendar 管理员创建日历，同事务里把创建者自动加入。
func (s *DirectoryService) CreateCalendar(actorID, name, code string) (*CalendarDTO, error) {
	if err := requireAdmin(s.DB, actorID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)
	if name == "" || code == "" {
		return nil, ErrValidation
	}

	cal := &models.CalendarSpace{Name: name, OpenCode: code}

	tx := s.DB.Begin()
	defer tx.Rollback()

	if err := tx.Create(cal).Error; err != nil {
		return nil, err
	}
	member := &models.UserJoinedCalendar{UserID: actorID, CalendarID: cal.ID}
	if err := tx.Create(member).Error; err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return toCalendarDTO(cal), nil
}

// DeleteRoom 管理员删除房间。
// 级联契约：成员关系、消息、该作用域的历史事件与房间本体在同一事务里一起删，
// 不留孤儿行。随后发布 room.deleted 事件（尽力而为），让在线成员立刻移除入口。
func (s *DirectoryService) DeleteRoom(actorID, roomID string) error {
	if err := requireAdmin(s.DB, actorID); err != nil {
		return err
	}
	room, err := s.GetRoomByID(roomID)
	if err != nil {
		return err
	}

	// 先取成员列表，删完还要通知他们
	var members []string
	_ = s.DB.Model(&models.UserJoinedRoom{}).Where("room_id = ?", roomID).
		Pluck("user_id", &members).Error

	tx := s.DB.Begin()
	defer tx.Rollback()

	if err := tx.Where("room_id = ?", roomID).Delete(&models.UserJoinedRoom{}).Error; err != nil {
		return err
	}
	if err := tx.Where("room_id = ?", roomID).Delete(&models.ChatMessage{}).Error; err != nil {
		return err
	}
	if s.Events != nil {
		if err := s.Events.DeleteByScope(tx, cons.ScopeRoom, roomID); err != nil {
			return err
		}
	}
	if err := tx.Where("id = ?", roomID).Delete(&models.ChatRoom{}).Error; err != nil {
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	if s.Events != nil {
		_, _ = s.Events.PublishScopeEvent(
			cons.ScopeRoom,
			roomID,
			actorID,
			cons.EventRoomDeleted,
			map[string]any{"name": room.Name},
			members,
			true,
		)
	}
	return nil
}

// DeleteCalendar 管理员删除日历，级联规则与 DeleteRoom 一致。
func (s *DirectoryService) DeleteCalendar(actorID, calendarID string) error {
	if err := requireAdmin(s.DB, actorID); err != nil {
		return err
	}
	cal, err := s.GetCalendarByID(calendarID)
	if err != nil {
		return err
	}

	var members []string
	_ = s.DB.Model(&models.UserJoinedCalendar{}).Where("calendar_id = ?", calendarID).
		Pluck("user_id", &members).Error

	tx := s.DB.Begin()
	defer tx.Rollback()

	if err := tx.Where("calendar_id = ?", calendarID).Delete(&models.UserJoinedCalendar{}).Error; err != nil {
		return err
	}
	if err := tx.Where("calendar_id = ?", calendarID).Delete(&models.Schedule{}).Error; err != nil {
		return err
	}
	if s.Events != nil {
		if err := s.Events.DeleteByScope(tx, cons.ScopeCalendar, calendarID); err != nil {
			return err
		}
	}
	if err := tx.Where("id = ?", calendarID).Delete(&models.CalendarSpace{}).Error; err != nil {
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	if s.Events != nil {
		_, _ = s.Events.PublishScopeEvent(
			cons.ScopeCalendar,
			calendarID,
			actorID,
			cons.EventCalendarDeleted,
			map[string]any{"name": cal.Name},
			members,
			true,
		)
	}
	return nil
}
