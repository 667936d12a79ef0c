package team_sdk

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cydxin/team-sdk/service"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// newFeedTestEngine 只装配轮询订阅用到的服务，短间隔让用例跑得快
func newFeedTestEngine(t *testing.T) (*TeamEngine, sqlmock.Sqlmock, func()) {
	t.Helper()

	sqldb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqldb, SkipInitializeWithVersion: true}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		_ = sqldb.Close()
		t.Fatalf("gorm.Open: %v", err)
	}

	base := &service.Service{DB: db, TablePrefix: "team_"}
	dir := service.NewDirectoryService(base)
	e := &TeamEngine{
		config:       &Config{PollInterval: 5 * time.Millisecond},
		DirService:   dir,
		MsgService:   service.NewMessageService(base, dir, service.NewMembershipService(base, dir)),
		EventService: service.NewEventService(base),
	}
	return e, mock, func() { _ = sqldb.Close() }
}

// 同一毫秒先后落库的消息不能漏投，也不能重投；房间删除后订阅自动停止
func TestSubscribeRoomMessages_SameInstantNotDropped(t *testing.T) {
	e, mock, closeDB := newFeedTestEngine(t)
	defer closeDB()

	since := time.Now().Add(-time.Second).Truncate(time.Millisecond)
	at := since.Add(time.Second)
	cols := []string{"id", "room_id", "user_id", "user_name", "text", "created_at"}

	// 第一个周期严格 > 起步，只看到 m1
	mock.ExpectQuery("SELECT \\* FROM `team_chat_message` WHERE room_id = \\? AND created_at > \\?").
		WithArgs("room-1", since).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("m1", "room-1", "bob", "Bob", "first", at))
	// 第二个周期 >= 重叠拉取：m1 已投递要去重，同刻晚写入的 m2 补上
	mock.ExpectQuery("SELECT \\* FROM `team_chat_room` WHERE id = \\?").
		WithArgs("room-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("room-1", "General"))
	mock.ExpectQuery("SELECT \\* FROM `team_chat_message` WHERE room_id = \\? AND created_at >= \\?").
		WithArgs("room-1", at).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("m1", "room-1", "bob", "Bob", "first", at).
			AddRow("m2", "room-1", "carol", "Carol", "same instant", at))
	// 第三个周期房间没了，拉取报错，订阅退出
	mock.ExpectQuery("SELECT \\* FROM `team_chat_room` WHERE id = \\?").
		WithArgs("room-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	got := make(chan service.MessageDTO, 8)
	sub := e.SubscribeRoomMessages(context.Background(), "room-1", since, func(m service.MessageDTO) { got <- m })

	for _, want := range []string{"m1", "m2"} {
		select {
		case m := <-got:
			if m.ID != want {
				t.Fatalf("expected %s, got %s", want, m.ID)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}

	ps := sub.(*pollSubscription)
	select {
	case <-ps.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("subscription did not stop after room deletion")
	}
	select {
	case m := <-got:
		t.Fatalf("unexpected extra delivery: %#v", m)
	default:
	}

	// 自然停止后 Close 依然安全
	sub.Close()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

// 事件订阅按自增 id 推进游标；Close 可以重复调用
func TestSubscribeScopeEvents_CursorAdvance(t *testing.T) {
	e, mock, closeDB := newFeedTestEngine(t)
	defer closeDB()

	cols := []string{"id", "scope_type", "scope_id", "actor_id", "event_type"}
	mock.ExpectQuery("SELECT \\* FROM `team_scope_event` WHERE \\(scope_type = \\? AND scope_id = \\? AND id > \\?\\)").
		WithArgs("room", "room-1", uint64(0), 50).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(uint64(1), "room", "room-1", "bob", "room.member.joined"))
	mock.ExpectQuery("SELECT \\* FROM `team_scope_event` WHERE \\(scope_type = \\? AND scope_id = \\? AND id > \\?\\)").
		WithArgs("room", "room-1", uint64(1), 50).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(uint64(2), "room", "room-1", "carol", "room.message.created"))

	got := make(chan service.ScopeEventDTO, 8)
	sub := e.SubscribeScopeEvents(context.Background(), "room", "room-1", 0, func(evt service.ScopeEventDTO) { got <- evt })

	for _, want := range []uint64{1, 2} {
		select {
		case evt := <-got:
			if evt.ID != want {
				t.Fatalf("expected event %d, got %d", want, evt.ID)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", want)
		}
	}

	sub.Close()
	sub.Close()
}
