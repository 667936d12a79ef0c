package service

import (
	"errors"
	"log"

	"github.com/cydxin/team-sdk/cons"
	"github.com/cydxin/team-sdk/models"
	"gorm.io/gorm"
)

// MembershipService 成员关系：口令加入、已加入列表、成员查询。
// 加入是对着全量目录按口令解析的，和房间/日历自身的可见性无关。
type MembershipService struct {
	*Service
	directory *DirectoryService
}

func NewMembershipService(s *Service, directory *DirectoryService) *MembershipService {
	log.Println("NewMembershipService")
	return &MembershipService{Service: s, directory: directory}
}

// JoinedRoomDTO 已加入房间列表项，带消息数方便客户端展示
type JoinedRoomDTO struct {
	RoomDTO
	MessageCount int64 `json:"message_count"`
}

// JoinRoomByCode 按口令加入房间。
// 口令先 TrimSpace 再精确匹配；匹配不到返回 ErrCodeNotFound，
// 已是成员返回 ErrAlreadyJoined（加入不是幂等操作，重复要显式报错）。
func (s *MembershipService) JoinRoomByCode(userID, code string) (*RoomDTO, error) {
	room, err := s.directory.FindRoomByCode(code)
	if err != nil {
		return nil, err
	}

	joined, err := s.IsRoomMember(room.ID, userID)
	if err != nil {
		return nil, err
	}
	if joined {
		return nil, ErrAlreadyJoined
	}

	member := &models.UserJoinedRoom{UserID: userID, RoomID: room.ID}
	if err := s.DB.Create(member).Error; err != nil {
		return nil, err
	}

	if s.Events != nil {
		members, merr := s.RoomMemberIDs(room.ID)
		if merr == nil {
			_, _ = s.Events.PublishScopeEvent(
				cons.ScopeRoom,
				room.ID,
				userID,
				cons.EventRoomMemberJoined,
				map[string]any{"user_id": userID},
				members,
				false,
			)
		}
	}

	return toRoomDTO(room), nil
}

// JoinCalendarByCode 按口令加入日历，规则同 JoinRoomByCode。
func (s *MembershipService) JoinCalendarByCode(userID, code string) (*CalendarDTO, error) {
	cal, err := s.directory.FindCalendarByCode(code)
	if err != nil {
		return nil, err
	}

	joined, err := s.IsCalendarMember(cal.ID, userID)
	if err != nil {
		return nil, err
	}
	if joined {
		return nil, ErrAlreadyJoined
	}

	member := &models.UserJoinedCalendar{UserID: userID, CalendarID: cal.ID}
	if err := s.DB.Create(member).Error; err != nil {
		return nil, err
	}

	if s.Events != nil {
		members, merr := s.CalendarMemberIDs(cal.ID)
		if merr == nil {
			_, _ = s.Events.PublishScopeEvent(
				cons.ScopeCalendar,
				cal.ID,
				userID,
				cons.EventCalendarMemberJoined,
				map[string]any{"user_id": userID},
				members,
				false,
			)
		}
	}

	return toCalendarDTO(cal), nil
}

// ListJoinedRooms 当前用户已加入的房间，按房间创建时间升序，附带消息数。
func (s *MembershipService) ListJoinedRooms(userID string) ([]JoinedRoomDTO, error) {
	roomTable := models.ChatRoom{}.TableName()
	joinTable := models.UserJoinedRoom{}.TableName()

	var rooms []models.ChatRoom
	err := s.DB.Model(&models.ChatRoom{}).
		Joins("JOIN "+joinTable+" ujr ON ujr.room_id = "+roomTable+".id").
		Where("ujr.user_id = ?", userID).
		Order(roomTable + ".created_at asc").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}

	msgDao := models.NewMessageDAO(s.DB)
	out := make([]JoinedRoomDTO, 0, len(rooms))
	for i := range rooms {
		item := JoinedRoomDTO{RoomDTO: *toRoomDTO(&rooms[i])}
		if cnt, cerr := msgDao.CountByRoomID(rooms[i].ID); cerr == nil {
			item.MessageCount = cnt
		}
		out = append(out, item)
	}
	return out, nil
}

// ListJoinedCalendars 当前用户已加入的日历，按创建时间升序。
func (s *MembershipService) ListJoinedCalendars(userID string) ([]CalendarDTO, error) {
	calTable := models.CalendarSpace{}.TableName()
	joinTable := models.UserJoinedCalendar{}.TableName()

	var cals []models.CalendarSpace
	err := s.DB.Model(&models.CalendarSpace{}).
		Joins("JOIN "+joinTable+" ujc ON ujc.calendar_id = "+calTable+".id").
		Where("ujc.user_id = ?", userID).
		Order(calTable + ".created_at asc").
		Find(&cals).Error
	if err != nil {
		return nil, err
	}

	out := make([]CalendarDTO, 0, len(cals))
	for i := range cals {
		out = append(out, *toCalendarDTO(&cals[i]))
	}
	return out, nil
}

// IsRoomMember 判断用户是否在房间内
func (s *MembershipService) IsRoomMember(roomID, userID string) (bool, error) {
	var m models.UserJoinedRoom
	err := s.DB.Where("room_id = ? AND user_id = ?", roomID, userID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// IsCalendarMember 判断用户是否在日历内
func (s *MembershipService) IsCalendarMember(calendarID, userID string) (bool, error) {
	var m models.UserJoinedCalendar
	err := s.DB.Where("calendar_id = ? AND user_id = ?", calendarID, userID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RoomMemberIDs 房间全部成员 ID（WS 投递用）
func (s *MembershipService) RoomMemberIDs(roomID string) ([]string, error) {
	var ids []string
	err := s.DB.Model(&models.UserJoinedRoom{}).
		Where("room_id = ?", roomID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// CalendarMemberIDs 日历全部成员 ID
func (s *MembershipService) CalendarMemberIDs(calendarID string) ([]string, error) {
	var ids []string
	err := s.DB.Model(&models.UserJoinedCalendar{}).
		Where("calendar_id = ?", calendarID).
		Pluck("user_id", &ids).Error
	return ids, err
}
