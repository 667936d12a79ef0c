package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/cydxin/team-sdk/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AccessCodeConfig 共享访问码配置。
// Plain 与 Hash 二选一：Hash 是 bcrypt 哈希，适合不想把明文写进配置的宿主。
// 无论哪种形式，它都是一个全进程共享的口令，不是按用户的真实鉴权，
// 只做粗粒度准入。这是产品既定行为，不要在这里"顺手修掉"。
type AccessCodeConfig struct {
	Plain string
	Hash  string
}

type UserService struct {
	*Service
	userDao        *models.UserDAO
	sessionService *SessionService
	localStore     CurrentSessionStore
	accessCode     AccessCodeConfig
	seedAdminID    string
	sessionTTL     time.Duration
}

// UserServiceConfig UserService 的装配参数（由 engine 注入）
type UserServiceConfig struct {
	AccessCode  AccessCodeConfig
	SeedAdminID string
	LocalStore  CurrentSessionStore
}

func NewUserService(s *Service, cfg UserServiceConfig) *UserService {
	log.Println("NewUserService")
	return &UserService{
		Service:        s,
		userDao:        models.NewUserDAO(s.DB),
		sessionService: NewSessionService(s.RDB),
		localStore:     cfg.LocalStore,
		accessCode:     cfg.AccessCode,
		seedAdminID:    cfg.SeedAdminID,
		sessionTTL:     defaultSessionTTL,
	}
}

// --- types ---

type UserDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LoginReq struct {
	ID   string `json:"id"`   // 用户自选账号
	Code string `json:"code"` // 共享访问码
}

type LoginResp struct {
	Token string  `json:"token,omitempty"`
	User  UserDTO `json:"user"`
}

type UpdateProfileReq struct {
	Name   string `json:"name"`   // 为空保留原值
	Avatar string `json:"avatar"` // 原样覆盖，传空即清除
}

func toUserDTO(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		IsAdmin:   u.IsAdmin,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// checkAccessCode 共享访问码校验。
// 配了 bcrypt 哈希就用哈希比对，否则对明文做常数时间比较。
func (s *UserService) checkAccessCode(code string) error {
	code = strings.TrimSpace(code)
	if s.accessCode.Hash != "" {
		if bcrypt.CompareHashAndPassword([]byte(s.accessCode.Hash), []byte(code)) != nil {
			return ErrInvalidCode
		}
		return nil
	}
	if s.accessCode.Plain == "" {
		return ErrInvalidCode
	}
	if subtle.ConstantTimeCompare([]byte(s.accessCode.Plain), []byte(code)) != 1 {
		return ErrInvalidCode
	}
	return nil
}

// EnsureSeedAdmin 种子管理员不存在时创建（engine 启动时调用）。
func (s *UserService) EnsureSeedAdmin(name string) error {
	if s.seedAdminID == "" {
		return nil
	}
	admin := &models.User{ID: s.seedAdminID, Name: name, IsAdmin: true}
	return s.DB.Where(models.User{ID: s.seedAdminID}).FirstOrCreate(admin).Error
}

// Authenticate 登录：先校验共享访问码，再查账号。
// 判定顺序是契约：码错 -> ErrInvalidCode，码对但账号不存在 -> ErrAccountNotFound。
// 成功后把会话写入 Redis（配了 RDB 时）并更新设备本地槽位（配了 localStore 时）。
func (s *UserService) Authenticate(ctx context.Context, req LoginReq) (*LoginResp, error) {
	if err := s.checkAccessCode(req.Code); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(req.ID)
	u, err := s.userDao.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	resp := &LoginResp{User: *toUserDTO(u)}

	// 无论有没有 Redis 都签发 token：没有 Redis 时由设备本地槽位承载会话，
	// 后续请求仍然靠同一个 token 鉴权。
	token, err := s.sessionService.GenerateToken()
	if err != nil {
		return nil, err
	}
	sess := &Session{Token: token, UserID: u.ID, CreatedAt: time.Now()}
	resp.Token = token
	if s.RDB != nil {
		if err := s.sessionService.StoreSession(ctx, token, u.ID, s.sessionTTL); err != nil {
			return nil, err
		}
	}
	if s.localStore != nil {
		if err := s.localStore.Set(ctx, sess); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// GetUser 按账号取用户
func (s *UserService) GetUser(id string) (*UserDTO, error) {
	u, err := s.userDao.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return toUserDTO(u), nil
}

// ListUsers 全部用户列表（管理员专属）
func (s *UserService) ListUsers(actorID string) ([]UserDTO, error) {
	if err := requireAdmin(s.DB, actorID); err != nil {
		return nil, err
	}
	users, err := s.userDao.ListAll()
	if err != nil {
		return nil, err
	}
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, *toUserDTO(&users[i]))
	}
	return out, nil
}

// CreateUser 管理员创建账号。账号与显示名 trim 后必填，账号不可重复。
func (s *UserService) CreateUser(actorID, id, name string) (*UserDTO, error) {
	if err := requireAdmin(s.DB, actorID); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return nil, ErrValidation
	}

	exists, err := s.userDao.ExistsByID(id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	u := &models.User{ID: id, Name: name, IsAdmin: false}
	if err := s.userDao.Create(u); err != nil {
		return nil, err
	}
	return toUserDTO(u), nil
}

// DeleteUser 管理员删除账号。
// 种子管理员受保护：删它是静默 no-op，不报错（与原行为一致）。
// 同事务清掉该用户的成员关系，会话在外层通过 AuthService 注销。
func (s *UserService) DeleteUser(ctx context.Context, actorID, id string) error {
	if err := requireAdmin(s.DB, actorID); err != nil {
		return err
	}
	if id == s.seedAdminID {
		return nil
	}

	tx := s.DB.Begin()
	defer tx.Rollback()

	if err := tx.Where("user_id = ?", id).Delete(&models.UserJoinedRoom{}).Error; err != nil {
		return err
	}
	if err := tx.Where("user_id = ?", id).Delete(&models.UserJoinedCalendar{}).Error; err != nil {
		return err
	}
	if err := tx.Where("id = ?", id).Delete(&models.User{}).Error; err != nil {
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	if s.RDB != nil {
		_ = s.sessionService.RevokeAllSessionsByUser(ctx, id)
	}
	return nil
}

// UpdateProfile 更新个人资料。Name 为空保留原值；Avatar 原样覆盖。
func (s *UserService) UpdateProfile(userID string, req UpdateProfileReq) (*UserDTO, error) {
	u, err := s.userDao.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = u.Name
	}
	if err := s.userDao.UpdateFields(userID, map[string]any{
		"name":   name,
		"avatar": req.Avatar,
	}); err != nil {
		return nil, err
	}

	fresh, err := s.userDao.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return toUserDTO(fresh), nil
}

// requireAdmin 管理员权限检查，非管理员返回 ErrPermissionDenied。
func requireAdmin(db *gorm.DB, userID string) error {
	var u models.User
	if err := db.Select("id, is_admin").Where("id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionDenied
		}
		return err
	}
	if !u.IsAdmin {
		return ErrPermissionDenied
	}
	return nil
}
