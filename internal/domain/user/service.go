// internal/domain/user/service.go
package user

import (
	"fmt"
	"time"

	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles operator account business logic
type Service struct {
	db       *gorm.DB
	config   *config.Config
	jwt      *auth.JWTManager
	password *auth.PasswordManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:       db,
		config:   cfg,
		jwt:      auth.NewJWTManager(cfg),
		password: auth.NewPasswordManager(cfg),
	}
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token pair
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// Login verifies credentials and issues a token pair
func (s *Service) Login(req *LoginRequest) (*LoginResponse, error) {
	var account User
	if err := s.db.Where("email = ? AND is_active = ?", req.Email, true).First(&account).Error; err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	if err := s.password.VerifyPassword(req.Password, account.Password); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	accessToken, err := s.jwt.GenerateAccessToken(account.ID, account.Email, account.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now()
	s.db.Model(&account).Update("last_login_at", &now)

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &account,
	}, nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(id uint) (*User, error) {
	var account User
	if err := s.db.Where("id = ?", id).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &account, nil
}
