package team_sdk

import (
	"context"
	"log"
	"time"

	"github.com/cydxin/team-sdk/service"
)

// defaultPollInterval 轮询订阅的默认拉取间隔
const defaultPollInterval = 2 * time.Second

// FeedSubscription 订阅句柄，Close 幂等。
// 两种实现：WS 在线推送（hub 投递）和这里的定时轮询兜底。
type FeedSubscription interface {
	Close()
}

type pollSubscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *pollSubscription) Close() {
	s.cancel()
	<-s.done
}

// SubscribeRoomMessages 轮询订阅房间消息。
// 从 since 之后开始，每个周期把新消息按时间顺序逐条回调，不重不漏：
// 游标推进到最后一条的 CreatedAt 后用 >= 重叠拉取，
// 同一毫秒后写入的消息下个周期补上，已投递的按 id 去重。
// 房间被删除后拉取报错，订阅自动停止。
func (e *TeamEngine) SubscribeRoomMessages(ctx context.Context, roomID string, since time.Time, fn func(msg service.MessageDTO)) FeedSubscription {
	interval := e.config.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &pollSubscription{cancel: cancel, done: make(chan struct{})}
	cursor := since

	go func() {
		defer close(sub.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		// seen 记录游标同刻已投递的消息 id；首个周期用严格 > 起步，之后重叠拉取
		var seen map[string]struct{}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				var msgs []service.MessageDTO
				var err error
				if seen == nil {
					msgs, err = e.MsgService.ListAfter(roomID, cursor)
				} else {
					msgs, err = e.MsgService.ListFrom(roomID, cursor)
				}
				if err != nil {
					log.Printf("poll room %s failed: %v", roomID, err)
					return
				}
				if seen == nil {
					seen = map[string]struct{}{}
				}
				for _, m := range msgs {
					if _, ok := seen[m.ID]; ok {
						continue
					}
					fn(m)
					if m.CreatedAt.After(cursor) {
						cursor = m.CreatedAt
						seen = map[string]struct{}{m.ID: {}}
					} else {
						seen[m.ID] = struct{}{}
					}
				}
			}
		}
	}()
	return sub
}

// SubscribeScopeEvents 轮询订阅作用域事件（日程/公告/成员变动等）。
// 以事件自增 ID 为游标，天然不重不漏。
func (e *TeamEngine) SubscribeScopeEvents(ctx context.Context, scopeType, scopeID string, afterID uint64, fn func(evt service.ScopeEventDTO)) FeedSubscription {
	interval := e.config.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &pollSubscription{cancel: cancel, done: make(chan struct{})}
	cursor := afterID

	go func() {
		defer close(sub.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				events, err := e.EventService.ListScopeEvents(scopeType, scopeID, cursor, 0)
				if err != nil {
					log.Printf("poll events %s/%s failed: %v", scopeType, scopeID, err)
					return
				}
				for _, evt := range events {
					fn(evt)
					if evt.ID > cursor {
						cursor = evt.ID
					}
				}
			}
		}
	}()
	return sub
}
