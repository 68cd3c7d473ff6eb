package service

import (
	"errors"
	"fmt"
	"strings"

	"datastd-go/internal/errs"
	"datastd-go/internal/model"
	"datastd-go/internal/repository"
	"datastd-go/pkg/hash"
	"datastd-go/pkg/log"
	"datastd-go/pkg/token"

	"gorm.io/gorm"
)

// 首次启动时写入的默认管理员账号。
const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin"
)

// UserService 接口定义了用户相关的业务操作。
type UserService interface {
	Register(username, password string) (*model.User, error)
	// Login 校验凭证并签发 access/refresh token。
	Login(username, password string) (accessToken, refreshToken string, err error)
	GetProfile(username string) (*model.User, error)
	ListUsers() ([]model.User, error)
	UpdateUserRole(id uint, role string) (*model.User, error)
	DeleteUser(id uint) error
	// EnsureDefaultAdmin 在用户表中不存在 admin 时创建默认管理员。
	EnsureDefaultAdmin() error
}

type userService struct {
	userRepo repository.UserRepository
	jwt      *token.JWTManager
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository, jwt *token.JWTManager) UserService {
	return &userService{userRepo: userRepo, jwt: jwt}
}

// Register 注册一个普通用户，用户名库内唯一。
func (s *userService) Register(username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errs.NewValidation("用户名和密码不能为空")
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, errs.NewValidation(fmt.Sprintf("用户名 [%s] 已被占用", username))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username: username,
		Password: hashed,
		Role:     "USER",
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 校验用户名密码，成功后签发双 token。
func (s *userService) Login(username, password string) (string, string, error) {
	user, err := s.userRepo.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", errs.NewValidation("用户名或密码错误")
	}
	if err != nil {
		return "", "", err
	}
	if !hash.CheckPassword(password, user.Password) {
		return "", "", errs.NewValidation("用户名或密码错误")
	}

	accessToken, err := s.jwt.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.jwt.GenerateRefreshToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// GetProfile 根据用户名查询用户信息。
func (s *userService) GetProfile(username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: 用户 %s", errs.ErrNotFound, username)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers 返回所有用户。
func (s *userService) ListUsers() ([]model.User, error) {
	return s.userRepo.FindAll()
}

// UpdateUserRole 更新用户角色，仅接受 ADMIN/USER。
func (s *userService) UpdateUserRole(id uint, role string) (*model.User, error) {
	if role != "ADMIN" && role != "USER" {
		return nil, errs.NewValidation("角色只能为 ADMIN 或 USER")
	}
	user, err := s.userRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: 用户 ID %d", errs.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser 删除用户。
func (s *userService) DeleteUser(id uint) error {
	if _, err := s.userRepo.FindByID(id); errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: 用户 ID %d", errs.ErrNotFound, id)
	} else if err != nil {
		return err
	}
	return s.userRepo.Delete(id)
}

// EnsureDefaultAdmin 保证系统至少有一个可登录的管理员。
// 默认口令仅用于首次部署，上线后应立即修改。
func (s *userService) EnsureDefaultAdmin() error {
	if _, err := s.userRepo.FindByUsername(defaultAdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := hash.HashPassword(defaultAdminPassword)
	if err != nil {
		return err
	}
	admin := &model.User{
		Username: defaultAdminUsername,
		Password: hashed,
		Role:     "ADMIN",
	}
	if err := s.userRepo.Create(admin); err != nil {
		return err
	}
	log.Warnf("[UserService] 已创建默认管理员账号 '%s', 请尽快修改默认密码", defaultAdminUsername)
	return nil
}
