package service

import (
	"context"
	"strings"

	"communityapp/internal/model"
	"communityapp/internal/repository"
)

// UpdateProfileRequest carries the editable profile fields. Counters and role
// are not editable.
type UpdateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=20"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Avatar   *string `json:"avatar" binding:"omitempty,max=500"`
	Bio      *string `json:"bio" binding:"omitempty,max=200"`
}

type UserService interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	UpdateProfile(ctx context.Context, id uint, req UpdateProfileRequest) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "User not found")
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "User not found")
	}

	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if req.Username != nil || req.Email != nil {
		taken, err := s.userRepo.ExistsByUsernameOrEmail(ctx, user.Username, user.Email, user.ID)
		if err != nil {
			return nil, model.NewInternalError(err)
		}
		if taken {
			return nil, model.NewConflictError("Username or email already in use")
		}
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, writeErr(err, "Username or email already in use")
	}
	return user, nil
}
