package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"communityapp/internal/logger"
	"communityapp/internal/model"
	"communityapp/internal/repository"
	"communityapp/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=20"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// AuthResult is a user plus a freshly issued token.
type AuthResult struct {
	User  *model.User
	Token string
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	ChangePassword(ctx context.Context, userID uint, req ChangePasswordRequest) error
	Authenticate(ctx context.Context, token string) (*model.User, error)
	EnsureAdmin(ctx context.Context, username, email, password string) (*model.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	taken, err := s.userRepo.ExistsByUsernameOrEmail(ctx, req.Username, req.Email, 0)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	if taken {
		return nil, model.NewConflictError("User already exists")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, model.NewInternalError(err)
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Avatar:   model.DefaultAvatar,
		Role:     model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, writeErr(err, "User already exists")
	}

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NewAuthenticationError("Invalid email or password")
		}
		return nil, model.NewInternalError(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, model.NewAuthenticationError("Invalid email or password")
	}

	return s.issue(user)
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, req ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return model.NewValidationError("All fields are required")
	}
	if req.NewPassword != req.ConfirmPassword {
		return model.NewValidationError("New password and confirm password do not match")
	}
	if len(req.NewPassword) < 6 || len(req.NewPassword) > 100 {
		return model.NewValidationError("Password must be 6 to 100 characters")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return lookupErr(err, "User not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		return model.NewAuthenticationError("Current password is incorrect")
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return model.NewInternalError(err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return model.NewInternalError(err)
	}
	return nil
}

// Authenticate resolves a bearer token to a live user.
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, model.NewAuthenticationError("Not authorized, token failed")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NewAuthenticationError("Not authorized, user not found")
		}
		return nil, model.NewInternalError(err)
	}
	return user, nil
}

// EnsureAdmin returns the first admin account, creating one when none exists.
func (s *authService) EnsureAdmin(ctx context.Context, username, email, password string) (*model.User, error) {
	admin, err := s.userRepo.FindFirstAdmin(ctx)
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	admin = &model.User{
		Username: username,
		Email:    email,
		Password: hash,
		Avatar:   model.DefaultAvatar,
		Bio:      "Site administrator",
		Role:     model.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return nil, err
	}
	logger.Info("admin account created", zap.String("username", username))
	return admin, nil
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, err := util.GenerateToken(user.ID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
