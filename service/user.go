package service

import (
	"context"
	"errors"
	"strings"

	"smartbudget/models"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 72 // bcrypt 上限
)

var validate = validator.New()

// UserService 注册、登录与用户信息
type UserService struct {
	db   *gorm.DB
	cost int
}

// NewUserService 创建用户服务
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, cost: bcrypt.DefaultCost}
}

// Signup 注册新用户，邮箱唯一
func (s *UserService) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	name, err := requiredText("name", name, 255)
	if err != nil {
		return nil, err
	}
	email, err = normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, invalidInput("password must be at least 6 characters")
	}
	if len(password) > MaxPasswordLength {
		return nil, invalidInput("password must be at most 72 bytes")
	}

	db := s.db.WithContext(ctx)
	var existing models.User
	err = db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageFault("failed to check email", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, storageFault("failed to hash password", err)
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
	}
	if err := db.Create(&user).Error; err != nil {
		// 并发注册时先检查会放行，由唯一索引兜底
		if isDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, storageFault("failed to create user", err)
	}
	return &user, nil
}

// Authenticate 校验邮箱和密码；用户不存在与密码错误返回同一错误
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalidInput("email and password are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storageFault("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Get 按ID读取用户
func (s *UserService) Get(ctx context.Context, userID uint) (*models.User, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}

	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storageFault("failed to load user", err)
	}
	return &user, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalidInput("email is required")
	}
	if err := validate.Var(email, "email,max=255"); err != nil {
		return "", invalidInput("invalid email format")
	}
	return email, nil
}
