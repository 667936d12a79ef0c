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

// ScheduleService 日历日程：管理员增删，成员只读。
type ScheduleService struct {
	*Service
	directory  *DirectoryService
	membership *MembershipService
}

func NewScheduleService(s *Service, directory *DirectoryService, membership *MembershipService) *ScheduleService {
	log.Println("NewScheduleService")
	return &ScheduleService{Service: s, directory: directory, membership: membership}
}

// ScheduleDTO 日程对外结构，Date 统一 "YYYY-MM-DD"
type ScheduleDTO struct {
	ID          string    `json:"id"`
	CalendarID  string    `json:"calendar_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

func toScheduleDTO(sc *models.Schedule) *ScheduleDTO {
	if sc == nil {
		return nil
	}
	return &ScheduleDTO{
		ID:          sc.ID,
		CalendarID:  sc.CalendarID,
		Title:       sc.Title,
		Description: sc.Description,
		Date:        sc.Date,
		CreatedAt:   sc.CreatedAt,
	}
}

// Add 管理员添加日程。
// 标题 TrimSpace 后为空或日期为空按静默忽略处理，返回 (nil, nil)；
// 日期非空但不是 "YYYY-MM-DD" 返回 ErrValidation。
func (s *ScheduleService) Add(actorID, calendarID, title, description, date string) (*ScheduleDTO, error) {
	if err := requireAdmin(s.DB, actorID); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	date = strings.TrimSpace(date)
	if title == "" || date == "" {
		return nil, nil
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrValidation
	}

	if _, err := s.directory.GetCalendarByID(calendarID); err != nil {
		return nil, err
	}

	sc := &models.Schedule{
		CalendarID:  calendarID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Date:        date,
	}
	if err := s.DB.Create(sc).Error; err != nil {
		return nil, err
	}

	dto := toScheduleDTO(sc)
	if s.Events != nil {
		members, merr := s.membership.CalendarMemberIDs(calendarID)
		if merr == nil {
			_, _ = s.Events.PublishScopeEvent(
				cons.ScopeCalendar,
				calendarID,
				actorID,
				cons.EventScheduleCreated,
				dto,
				members,
				false,
			)
		}
	}
	return dto, nil
}

// List 日历全部日程，按日期升序，同日按创建时间升序。
func (s *ScheduleService) List(calendarID string) ([]ScheduleDTO, error) {
	if _, err := s.directory.GetCalendarByID(calendarID); err != nil {
		return nil, err
	}
	var rows []models.Schedule
	if err := s.DB.Where("calendar_id = ?", calendarID).
		Order("date asc, created_at asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ScheduleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toScheduleDTO(&rows[i]))
	}
	return out, nil
}

// ListOn 某一天的日程（date 精确匹配 "YYYY-MM-DD"）。
func (s *ScheduleService) ListOn(calendarID, date string) ([]ScheduleDTO, error) {
	var rows []models.Schedule
	if err := s.DB.Where("calendar_id = ? AND date = ?", calendarID, strings.TrimSpace(date)).
		Order("created_at asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ScheduleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toScheduleDTO(&rows[i]))
	}
	return out, nil
}

// Delete 管理员删除某条日程，不存在返回 ErrScopeNotFound。
func (s *ScheduleService) Delete(actorID, scheduleID string) error {
	if err := requireAdmin(s.DB, actorID); err != nil {
		return err
	}

	var sc models.Schedule
	if err := s.DB.Where("id = ?", scheduleID).First(&sc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScopeNotFound
		}
		return err
	}
	if err := s.DB.Where("id = ?", scheduleID).Delete(&models.Schedule{}).Error; err != nil {
		return err
	}

	if s.Events != nil {
		members, merr := s.membership.CalendarMemberIDs(sc.CalendarID)
		if merr == nil {
			_, _ = s.Events.PublishScopeEvent(
				cons.ScopeCalendar,
				sc.CalendarID,
				actorID,
				cons.EventScheduleDeleted,
				map[string]any{"schedule_id": sc.ID, "date": sc.Date},
				members,
				false,
			)
		}
	}
	return nil
}
