package service

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newTestScheduleService(t *testing.T) (*ScheduleService, sqlmock.Sqlmock, func()) {
	t.Helper()
	gormDB, mock, sqlDB := newMockDB(t)
	base := &Service{DB: gormDB, TablePrefix: "team_"}
	dir := NewDirectoryService(base)
	member := NewMembershipService(base, dir)
	return NewScheduleService(base, dir, member), mock, func() { _ = sqlDB.Close() }
}

func TestScheduleService_Add_RequiresAdmin(t *testing.T) {
	svc, mock, closeDB := newTestScheduleService(t)
	defer closeDB()

	expectAdminCheck(mock, "bob", false)

	_, err := svc.Add("bob", "cal-1", "standup", "", "2026-09-01")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

// 空白标题/日期静默忽略
func TestScheduleService_Add_BlankIsNoop(t *testing.T) {
	svc, mock, closeDB := newTestScheduleService(t)
	defer closeDB()

	expectAdminCheck(mock, "123.com", true)

	item, err := svc.Add("123.com", "cal-1", "   ", "", "2026-09-01")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil schedule, got %#v", item)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestScheduleService_Add_InvalidDate(t *testing.T) {
	svc, mock, closeDB := newTestScheduleService(t)
	defer closeDB()

	expectAdminCheck(mock, "123.com", true)

	_, err := svc.Add("123.com", "cal-1", "standup", "", "01/09/2026")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestScheduleService_Add_Success(t *testing.T) {
	svc, mock, closeDB := newTestScheduleService(t)
	defer closeDB()

	expectAdminCheck(mock, "123.com", true)

	mock.ExpectQuery("SELECT \\* FROM `team_calendar_space` WHERE id = \\?").
		WithArgs("cal-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "open_code"}).
			AddRow("cal-1", "Team", "CAL1"))

	mock.ExpectExec("INSERT INTO `team_schedule`").
		WillReturnResult(sqlmock.NewResult(1, 1))

	item, err := svc.Add("123.com", "cal-1", " standup ", " daily sync ", "2026-09-01")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if item.Title != "standup" || item.Date != "2026-09-01" {
		t.Fatalf("unexpected schedule: %#v", item)
	}
	if item.ID == "" {
		t.Fatalf("expected generated schedule id")
	}
}

// 列表按日期升序，同日按创建时间升序
func TestScheduleService_List_Order(t *testing.T) {
	svc, mock, closeDB := newTestScheduleService(t)
	defer closeDB()

	mock.ExpectQuery("SELECT \\* FROM `team_calendar_space` WHERE id = \\?").
		WithArgs("cal-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("cal-1", "Team"))

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "calendar_id", "title", "date", "created_at"}).
		AddRow("s1", "cal-1", "early", "2026-09-01", now).
		AddRow("s2", "cal-1", "late", "2026-09-02", now)
	mock.ExpectQuery("SELECT \\* FROM `team_schedule` WHERE calendar_id = \\? ORDER BY date asc, created_at asc").
		WithArgs("cal-1").
		WillReturnRows(rows)

	items, err := svc.List("cal-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].ID != "s1" {
		t.Fatalf("unexpected order: %#v", items)
	}
}

// 按天精确匹配
func TestScheduleService_ListOn(t *testing.T) {
	svc, mock, closeDB := newTestScheduleService(t)
	defer closeDB()

	rows := sqlmock.NewRows([]string{"id", "calendar_id", "title", "date"}).
		AddRow("s1", "cal-1", "standup", "2026-09-01")
	mock.ExpectQuery("SELECT \\* FROM `team_schedule` WHERE calendar_id = \\? AND date = \\?").
		WithArgs("cal-1", "2026-09-01").
		WillReturnRows(rows)

	items, err := svc.ListOn("cal-1", " 2026-09-01 ")
	if err != nil {
		t.Fatalf("ListOn: %v", err)
	}
	if len(items) != 1 || items[0].ID != "s1" {
		t.Fatalf("unexpected result: %#v", items)
	}
}
