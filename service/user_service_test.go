package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newTestUserService(t *testing.T) (*UserService, sqlmock.Sqlmock, func()) {
	t.Helper()
	gormDB, mock, sqlDB := newMockDB(t)
	us := NewUserService(&Service{DB: gormDB, RDB: nil, TablePrefix: "team_"}, UserServiceConfig{
		AccessCode:  AccessCodeConfig{Plain: "LIVER"},
		SeedAdminID: "123.com",
	})
	return us, mock, func() { _ = sqlDB.Close() }
}

// 码错必须先于账号判定：错误的访问码不应产生任何数据库查询
func TestUserService_Authenticate_CodeGateFirst(t *testing.T) {
	us, mock, closeDB := newTestUserService(t)
	defer closeDB()

	_, err := us.Authenticate(context.Background(), LoginReq{ID: "nobody", Code: "WRONG"})
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestUserService_Authenticate_AccountNotFound(t *testing.T) {
	us, mock, closeDB := newTestUserService(t)
	defer closeDB()

	mock.ExpectQuery("SELECT \\* FROM `team_user` WHERE id = \\?").
		WithArgs("nobody", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_admin"}))

	_, err := us.Authenticate(context.Background(), LoginReq{ID: "nobody", Code: "LIVER"})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestUserService_Authenticate_Success(t *testing.T) {
	us, mock, closeDB := newTestUserService(t)
	defer closeDB()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "is_admin", "avatar", "created_at", "updated_at"}).
		AddRow("bob", "Bob", false, "", now, now)
	mock.ExpectQuery("SELECT \\* FROM `team_user` WHERE id = \\?").
		WithArgs("bob", 1).
		WillReturnRows(rows)

	resp, err := us.Authenticate(context.Background(), LoginReq{ID: "bob", Code: "LIVER"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if resp.User.ID != "bob" || resp.User.Name != "Bob" {
		t.Fatalf("unexpected user: %#v", resp.User)
	}
	// 没配 Redis 也要签发 token，会话由本地槽位承载
	if resp.Token == "" {
		t.Fatalf("expected a token without redis, got empty")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

// 访问码输入两侧空白应被剔除
func TestUserService_Authenticate_TrimsCode(t *testing.T) {
	us, mock, closeDB := newTestUserService(t)
	defer closeDB()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "is_admin", "created_at", "updated_at"}).
		AddRow("bob", "Bob", false, now, now)
	mock.ExpectQuery("SELECT \\* FROM `team_user` WHERE id = \\?").
		WithArgs("bob", 1).
		WillReturnRows(rows)

	if _, err := us.Authenticate(context.Background(), LoginReq{ID: " bob ", Code: "  LIVER  "}); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
}

// 无 Redis 端到端：登录签发的 token 落在本地槽位，后续鉴权必须能通过
func TestUserService_Authenticate_LocalSlotLoginThenAuth(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	store := NewFileSessionStore(t.TempDir() + "/session.json")
	us := NewUserService(&Service{DB: gormDB, TablePrefix: "team_"}, UserServiceConfig{
		AccessCode: AccessCodeConfig{Plain: "LIVER"},
		LocalStore: store,
	})

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "is_admin", "created_at", "updated_at"}).
		AddRow("bob", "Bob", false, now, now)
	mock.ExpectQuery("SELECT \\* FROM `team_user` WHERE id = \\?").
		WithArgs("bob", 1).
		WillReturnRows(rows)

	resp, err := us.Authenticate(context.Background(), LoginReq{ID: "bob", Code: "LIVER"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a token without redis, got empty")
	}

	auth := NewAuthService(NewSessionService(nil), store)
	uid, err := auth.Authenticate(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("auth with issued token: %v", err)
	}
	if uid != "bob" {
		t.Fatalf("expected uid bob, got %q", uid)
	}
}

func TestUserService_CreateUser_RequiresAdmin(t *testing.T) {
	us, mock, closeDB := newTestUserService(t)
	defer closeDB()

	expectAdminCheck(mock, "bob", false)

	_, err := us.CreateUser("bob", "carol", "Carol")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	us, mock, closeDB := newTestUserService(t)
	defer closeDB()

	expectAdminCheck(mock, "123.com", true)

	_, err := us.CreateUser("123.com", "   ", "Carol")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// 种子管理员删除是静默 no-op，不出错也不动数据库
func TestUserService_DeleteUser_SeedAdminIsNoop(t *testing.T) {
	us, mock, closeDB := newTestUserService(t)
	defer closeDB()

	expectAdminCheck(mock, "123.com", true)

	if err := us.DeleteUser(context.Background(), "123.com", "123.com"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
