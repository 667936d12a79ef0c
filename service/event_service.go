package service

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/cydxin/team-sdk/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventService 统一处理作用域事件：房间/日历/公告板上发生的操作。
// 约定：先落库（事件只存一份），再尽力通过 WS 推送；
// 轮询端/新设备通过 HTTP 按 after_id 增量拉取，保证离线也能追上。
type EventService struct {
	*Service
}

func NewEventService(s *Service) *EventService {
	return &EventService{Service: s}
}

// ScopeEventDTO 事件对外结构（WS 推送体与 HTTP 拉取共用）
type ScopeEventDTO struct {
	ID        uint64          `json:"id"`
	ScopeType string          `json:"scope_type"`
	ScopeID   string          `json:"scope_id"`
	ActorID   string          `json:"actor_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func toScopeEventDTO(e *models.ScopeEvent) *ScopeEventDTO {
	if e == nil {
		return nil
	}
	return &ScopeEventDTO{
		ID:        e.ID,
		ScopeType: e.ScopeType,
		ScopeID:   e.ScopeID,
		ActorID:   e.ActorID,
		EventType: e.EventType,
		Payload:   json.RawMessage(e.Payload),
		CreatedAt: e.CreatedAt,
	}
}

// PublishScopeEvent 创建一条作用域事件，并投递给 members。
// includeActor=是否也推给操作者（部分事件操作者也想立刻看到，例如置顶公告）。
// WS 推送是尽力而为：落库成功即认为发布成功。
func (s *EventService) PublishScopeEvent(scopeType, scopeID, actorID, eventType string, payload any, members []string, includeActor bool) (*models.ScopeEvent, error) {
	if scopeType == "" || scopeID == "" {
		return nil, errors.New("scope is required")
	}
	if actorID == "" {
		return nil, errors.New("actor_id is required")
	}
	if eventType == "" {
		return nil, errors.New("event_type is required")
	}

	// 序列化 payload
	var pl datatypes.JSON
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		pl = b
	}

	evt := &models.ScopeEvent{
		ScopeType: scopeType,
		ScopeID:   scopeID,
		ActorID:   actorID,
		EventType: eventType,
		Payload:   pl,
		CreatedAt: time.Now(),
	}
	if err := s.DB.Create(evt).Error; err != nil {
		return nil, err
	}

	// 投递目标去重，按需排除操作者
	uniq := make(map[string]struct{}, len(members)+1)
	clean := make([]string, 0, len(members)+1)
	for _, uid := range members {
		if uid == "" {
			continue
		}
		if !includeActor && uid == actorID {
			continue
		}
		if _, ok := uniq[uid]; ok {
			continue
		}
		uniq[uid] = struct{}{}
		clean = append(clean, uid)
	}
	if includeActor {
		if _, ok := uniq[actorID]; !ok {
			clean = append(clean, actorID)
		}
	}

	if s.WsNotifier != nil && len(clean) > 0 {
		body, err := json.Marshal(struct {
			Type  string        `json:"type"`
			Event ScopeEventDTO `json:"event"`
		}{Type: "event", Event: *toScopeEventDTO(evt)})
		if err == nil {
			for _, uid := range clean {
				s.WsNotifier(uid, body)
			}
		}
	}

	return evt, nil
}

// PublishBroadcastEvent 创建一条作用域事件并全站广播。
// 公告板没有成员关系，所有在线连接都收；落库成功即认为发布成功。
func (s *EventService) PublishBroadcastEvent(scopeType, scopeID, actorID, eventType string, payload any) (*models.ScopeEvent, error) {
	evt, err := s.PublishScopeEvent(scopeType, scopeID, actorID, eventType, payload, nil, false)
	if err != nil {
		return nil, err
	}
	if s.WsBroadcast != nil {
		body, merr := json.Marshal(struct {
			Type  string        `json:"type"`
			Event ScopeEventDTO `json:"event"`
		}{Type: "event", Event: *toScopeEventDTO(evt)})
		if merr == nil {
			s.WsBroadcast(body)
		}
	}
	return evt, nil
}

// ListScopeEvents 按 after_id 增量拉取某作用域的事件（轮询/补偿用）。
func (s *EventService) ListScopeEvents(scopeType, scopeID string, afterID uint64, limit int) ([]ScopeEventDTO, error) {
	if scopeType == "" || scopeID == "" {
		return nil, errors.New("scope is required")
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	var rows []models.ScopeEvent
	if err := s.DB.Model(&models.ScopeEvent{}).
		Where("scope_type = ? AND scope_id = ? AND id > ?", scopeType, scopeID, afterID).
		Order("id asc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]ScopeEventDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toScopeEventDTO(&rows[i]))
	}
	return out, nil
}

// DeleteByScope 删除某作用域的全部事件（作用域级联删除时在同一事务里调用）。
func (s *EventService) DeleteByScope(tx *gorm.DB, scopeType, scopeID string) error {
	return tx.Where("scope_type = ? AND scope_id = ?", scopeType, scopeID).
		Delete(&models.ScopeEvent{}).Error
}
