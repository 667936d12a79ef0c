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

// MessageService 房间消息：追加与全量/增量读取。
// 消息是只追加的，没有编辑和删除（房间级联删除除外）。
type MessageService struct {
	*Service
	messageDao *models.MessageDAO
	userDao    *models.UserDAO
	membership *MembershipService
	directory  *DirectoryService
}

func NewMessageService(s *Service, directory *DirectoryService, membership *MembershipService) *MessageService {
	log.Println("NewMessageService")
	return &MessageService{
		Service:    s,
		messageDao: models.NewMessageDAO(s.DB),
		userDao:    models.NewUserDAO(s.DB),
		membership: membership,
		directory:  directory,
	}
}

// MessageDTO 消息对外结构
type MessageDTO struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func toMessageDTO(m *models.ChatMessage) *MessageDTO {
	if m == nil {
		return nil
	}
	return &MessageDTO{
		ID:        m.ID,
		RoomID:    m.RoomID,
		UserID:    m.UserID,
		UserName:  m.UserName,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

// Append 追加一条消息。
// 正文 TrimSpace 后为空按静默忽略处理，返回 (nil, nil)，不算错误；
// 房间不存在返回 ErrScopeNotFound。
// user_name 在写入时快照，用户之后改名不影响历史消息。
func (s *MessageService) Append(roomID, userID, text string) (*MessageDTO, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	if _, err := s.directory.GetRoomByID(roomID); err != nil {
		return nil, err
	}

	user, err := s.userDao.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	msg := &models.ChatMessage{
		RoomID:   roomID,
		UserID:   userID,
		UserName: user.Name,
		Text:     text,
	}
	if err := s.messageDao.Create(msg); err != nil {
		return nil, err
	}

	dto := toMessageDTO(msg)
	if s.Events != nil {
		members, merr := s.membership.RoomMemberIDs(roomID)
		if merr == nil {
			// 发送者自己本地已经回显，不再推
			_, _ = s.Events.PublishScopeEvent(
				cons.ScopeRoom,
				roomID,
				userID,
				cons.EventRoomMessageCreated,
				dto,
				members,
				false,
			)
		}
	}
	return dto, nil
}

// List 房间全量消息，按时间升序（旧的在前）。
func (s *MessageService) List(roomID string) ([]MessageDTO, error) {
	if _, err := s.directory.GetRoomByID(roomID); err != nil {
		return nil, err
	}
	msgs, err := s.messageDao.FindByRoomID(roomID)
	if err != nil {
		return nil, err
	}
	out := make([]MessageDTO, 0, len(msgs))
	for i := range msgs {
		out = append(out, *toMessageDTO(&msgs[i]))
	}
	return out, nil
}

// ListAfter 增量拉取某时刻之后的消息（轮询用）。
func (s *MessageService) ListAfter(roomID string, after time.Time) ([]MessageDTO, error) {
	msgs, err := s.messageDao.FindByRoomIDAfter(roomID, after)
	if err != nil {
		return nil, err
	}
	out := make([]MessageDTO, 0, len(msgs))
	for i := range msgs {
		out = append(out, *toMessageDTO(&msgs[i]))
	}
	return out, nil
}

// ListFrom 拉取某时刻（含同刻）起的消息，先确认房间还在。
// 供轮询订阅做重叠拉取：游标停在上一批最后一条的时刻，
// 同刻后写入的消息下个周期仍会返回，由订阅方按 id 去重。
func (s *MessageService) ListFrom(roomID string, from time.Time) ([]MessageDTO, error) {
	if _, err := s.directory.GetRoomByID(roomID); err != nil {
		return nil, err
	}
	msgs, err := s.messageDao.FindByRoomIDFrom(roomID, from)
	if err != nil {
		return nil, err
	}
	out := make([]MessageDTO, 0, len(msgs))
	for i := range msgs {
		out = append(out, *toMessageDTO(&msgs[i]))
	}
	return out, nil
}
