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

// NoticeService 公告板：全局单板，所有人可读，管理员增删/置顶。
type NoticeService struct {
	*Service
	userDao *models.UserDAO
}

func NewNoticeService(s *Service) *NoticeService {
	log.Println("NewNoticeService")
	return &NoticeService{Service: s, userDao: models.NewUserDAO(s.DB)}
}

// NoticeDTO 公告对外结构
type NoticeDTO struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Pinned     bool      `json:"pinned"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

func toNoticeDTO(n *models.Notice) *NoticeDTO {
	if n == nil {
		return nil
	}
	return &NoticeDTO{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		Pinned:     n.Pinned,
		AuthorName: n.AuthorName,
		CreatedAt:  n.CreatedAt,
	}
}

// Create 管理员发布公告。
// 标题或正文 TrimSpace 后为空按静默忽略处理，返回 (nil, nil)。
// author_name 在发布时快照。
func (s *NoticeService) Create(actorID, title, content string) (*NoticeDTO, error) {
	if err := requireAdmin(s.DB, actorID); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, nil
	}

	author, err := s.userDao.FindByID(actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	notice := &models.Notice{
		Title:      title,
		Content:    content,
		AuthorName: author.Name,
	}
	if err := s.DB.Create(notice).Error; err != nil {
		return nil, err
	}

	dto := toNoticeDTO(notice)
	if s.Events != nil {
		_, _ = s.Events.PublishBroadcastEvent(
			cons.ScopeNotice, cons.NoticeBoardID, actorID, cons.EventNoticeCreated, dto)
	}
	return dto, nil
}

// List 全部公告：置顶的在前，各组内新的在前。
func (s *NoticeService) List() ([]NoticeDTO, error) {
	var rows []models.Notice
	if err := s.DB.Order("pinned desc, created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]NoticeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toNoticeDTO(&rows[i]))
	}
	return out, nil
}

// TogglePin 管理员翻转置顶状态，返回翻转后的公告。
// 连按两次回到原状态，中间没有第三种状态。
func (s *NoticeService) TogglePin(actorID, noticeID string) (*NoticeDTO, error) {
	if err := requireAdmin(s.DB, actorID); err != nil {
		return nil, err
	}

	var notice models.Notice
	if err := s.DB.Where("id = ?", noticeID).First(&notice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScopeNotFound
		}
		return nil, err
	}

	notice.Pinned = !notice.Pinned
	if err := s.DB.Model(&models.Notice{}).Where("id = ?", noticeID).
		Update("pinned", notice.Pinned).Error; err != nil {
		return nil, err
	}

	dto := toNoticeDTO(&notice)
	if s.Events != nil {
		_, _ = s.Events.PublishBroadcastEvent(
			cons.ScopeNotice, cons.NoticeBoardID, actorID, cons.EventNoticePinned,
			map[string]any{"notice_id": notice.ID, "pinned": notice.Pinned})
	}
	return dto, nil
}

// Delete 管理员删除公告，不存在返回 ErrScopeNotFound。
func (s *NoticeService) Delete(actorID, noticeID string) error {
	if err := requireAdmin(s.DB, actorID); err != nil {
		return err
	}

	var notice models.Notice
	if err := s.DB.Where("id = ?", noticeID).First(&notice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScopeNotFound
		}
		return err
	}
	if err := s.DB.Where("id = ?", noticeID).Delete(&models.Notice{}).Error; err != nil {
		return err
	}

	if s.Events != nil {
		_, _ = s.Events.PublishBroadcastEvent(
			cons.ScopeNotice, cons.NoticeBoardID, actorID, cons.EventNoticeDeleted,
			map[string]any{"notice_id": noticeID})
	}
	return nil
}
