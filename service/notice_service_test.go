package service

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newTestNoticeService(t *testing.T) (*NoticeService, sqlmock.Sqlmock, func()) {
	t.Helper()
	gormDB, mock, sqlDB := newMockDB(t)
	return NewNoticeService(&Service{DB: gormDB, TablePrefix: "team_"}), mock, func() { _ = sqlDB.Close() }
}

func TestNoticeService_Create_RequiresAdmin(t *testing.T) {
	svc, mock, closeDB := newTestNoticeService(t)
	defer closeDB()

	expectAdminCheck(mock, "bob", false)

	_, err := svc.Create("bob", "title", "content")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

// 空白标题/正文静默忽略，不落库
func TestNoticeService_Create_BlankIsNoop(t *testing.T) {
	svc, mock, closeDB := newTestNoticeService(t)
	defer closeDB()

	expectAdminCheck(mock, "123.com", true)

	n, err := svc.Create("123.com", "   ", "content")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n != nil {
		t.Fatalf("expected nil notice, got %#v", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNoticeService_Create_SnapshotsAuthorName(t *testing.T) {
	svc, mock, closeDB := newTestNoticeService(t)
	defer closeDB()

	expectAdminCheck(mock, "123.com", true)

	mock.ExpectQuery("SELECT \\* FROM `team_user` WHERE id = \\?").
		WithArgs("123.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_admin"}).
			AddRow("123.com", "Admin", true))

	mock.ExpectExec("INSERT INTO `team_notice`").
		WillReturnResult(sqlmock.NewResult(1, 1))

	n, err := svc.Create("123.com", " 停机通知 ", " 周五晚维护 ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.AuthorName != "Admin" {
		t.Fatalf("expected author snapshot Admin, got %q", n.AuthorName)
	}
	if n.Title != "停机通知" || n.Content != "周五晚维护" {
		t.Fatalf("expected trimmed fields, got %#v", n)
	}
}

// 置顶开关：连按两次回到原状态
func TestNoticeService_TogglePin_DoubleToggle(t *testing.T) {
	svc, mock, closeDB := newTestNoticeService(t)
	defer closeDB()

	now := time.Now()

	// 第一次：false -> true
	expectAdminCheck(mock, "123.com", true)
	mock.ExpectQuery("SELECT \\* FROM `team_notice` WHERE id = \\?").
		WithArgs("n1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "pinned", "author_name", "created_at"}).
			AddRow("n1", "t", "c", false, "Admin", now))
	mock.ExpectExec("UPDATE `team_notice` SET").
		WillReturnResult(sqlmock.NewResult(1, 1))

	n, err := svc.TogglePin("123.com", "n1")
	if err != nil {
		t.Fatalf("TogglePin 1: %v", err)
	}
	if !n.Pinned {
		t.Fatalf("expected pinned=true after first toggle")
	}

	// 第二次：true -> false
	expectAdminCheck(mock, "123.com", true)
	mock.ExpectQuery("SELECT \\* FROM `team_notice` WHERE id = \\?").
		WithArgs("n1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "pinned", "author_name", "created_at"}).
			AddRow("n1", "t", "c", true, "Admin", now))
	mock.ExpectExec("UPDATE `team_notice` SET").
		WillReturnResult(sqlmock.NewResult(1, 1))

	n, err = svc.TogglePin("123.com", "n1")
	if err != nil {
		t.Fatalf("TogglePin 2: %v", err)
	}
	if n.Pinned {
		t.Fatalf("expected pinned=false after second toggle")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNoticeService_TogglePin_NotFound(t *testing.T) {
	svc, mock, closeDB := newTestNoticeService(t)
	defer closeDB()

	expectAdminCheck(mock, "123.com", true)
	mock.ExpectQuery("SELECT \\* FROM `team_notice` WHERE id = \\?").
		WithArgs("gone", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.TogglePin("123.com", "gone")
	if !errors.Is(err, ErrScopeNotFound) {
		t.Fatalf("expected ErrScopeNotFound, got %v", err)
	}
}

// 列表顺序：置顶的在前，各组内新的在前
func TestNoticeService_List_PinnedFirst(t *testing.T) {
	svc, mock, closeDB := newTestNoticeService(t)
	defer closeDB()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "pinned", "created_at"}).
		AddRow("n2", "pinned one", true, now.Add(-time.Hour)).
		AddRow("n3", "newest", false, now).
		AddRow("n1", "older", false, now.Add(-2*time.Hour))
	mock.ExpectQuery("SELECT \\* FROM `team_notice` ORDER BY pinned desc, created_at desc").
		WillReturnRows(rows)

	notices, err := svc.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notices) != 3 || notices[0].ID != "n2" {
		t.Fatalf("unexpected order: %#v", notices)
	}
}
