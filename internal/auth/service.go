package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/croftlabs/farmops/internal/config"
	"github.com/croftlabs/farmops/internal/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials covers both unknown users and wrong passwords, so the
// login response never reveals which one it was.
var ErrInvalidCredentials = errors.New("invalid username or password")

type Service struct {
	db     *gorm.DB
	cfg    config.JWTConfig
	logger *zap.Logger
}

func NewService(db *gorm.DB, cfg config.JWTConfig, logger *zap.Logger) *Service {
	return &Service{db: db, cfg: cfg, logger: logger}
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// Login checks the password and issues a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var user User
	err := s.db.WithContext(ctx).Where("username = ? AND status = ?", username, "active").First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.logger.Warn("failed login attempt", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	expire := s.cfg.AccessTokenExpire
	if expire <= 0 {
		expire = 24 * time.Hour
	}
	expiresAt := time.Now().Add(expire)

	claims := middleware.JWTClaims{
		UserID: user.ID,
		Name:   user.DisplayName,
		Email:  user.Email,
		Roles:  []string{user.Role},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("username", username))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: &user}, nil
}

// GetUser loads one account by id.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type CreateUserReq struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// CreateUser registers an account. Admin-only at the route level.
func (s *Service) CreateUser(ctx context.Context, req CreateUserReq) (*User, error) {
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	role := req.Role
	if role == "" {
		role = RoleStaff
	}
	if role != RoleAdmin && role != RoleStaff {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           strings.ReplaceAll(uuid.New().String(), "-", ""),
		Username:     req.Username,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		Email:        req.Email,
		Role:         role,
		Status:       "active",
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// EnsureAdmin seeds the initial admin account when the users table is empty.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := s.CreateUser(ctx, CreateUserReq{
		Username:    username,
		Password:    password,
		DisplayName: "Administrator",
		Role:        RoleAdmin,
	})
	if err == nil {
		s.logger.Info("seeded initial admin account", zap.String("username", username))
	}
	return err
}
