package service

import (
	"context"
	"errors"
	"fmt"

	"communityapp/internal/model"
	"communityapp/internal/repository"
	"communityapp/internal/util"

	"gorm.io/gorm"
)

type FollowRequest struct {
	FollowingID util.ID `json:"following_id"`
}

type FollowService interface {
	Follow(ctx context.Context, followerID, followingID uint) (*model.Follow, error)
	Unfollow(ctx context.Context, followerID, followingID uint) error
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	Followers(ctx context.Context, userID uint, page util.Page) ([]model.UserSummary, int64, error)
	Following(ctx context.Context, userID uint, page util.Page) ([]model.UserSummary, int64, error)
}

type followService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	notifier   NotificationService
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	notifier NotificationService,
) FollowService {
	return &followService{
		followRepo: followRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

func (s *followService) Follow(ctx context.Context, followerID, followingID uint) (*model.Follow, error) {
	if followingID == 0 {
		return nil, model.NewValidationError("following_id is required")
	}
	if followerID == followingID {
		return nil, model.NewValidationError("You cannot follow yourself")
	}

	exists, err := s.userRepo.Exists(ctx, followingID)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	if !exists {
		return nil, model.NewNotFoundError("User not found")
	}

	already, err := s.followRepo.Exists(ctx, followerID, followingID)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	if already {
		return nil, model.NewConflictError("Already following")
	}

	follow, err := s.followRepo.Create(ctx, followerID, followingID)
	if err != nil {
		// Lost a race with a concurrent identical follow.
		return nil, writeErr(err, "Already following")
	}

	name := displayName(ctx, s.userRepo, followerID)
	notify(ctx, s.notifier, &model.Notification{
		UserID:   followingID,
		SenderID: uintPtr(followerID),
		Type:     model.NotificationTypeNewFollower,
		Title:    "New follower",
		Message:  fmt.Sprintf("%s started following you", name),
		TargetID: uintPtr(followerID),
	})

	return follow, nil
}

func (s *followService) Unfollow(ctx context.Context, followerID, followingID uint) error {
	if err := s.followRepo.Delete(ctx, followerID, followingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.NewNotFoundError("Follow record not found")
		}
		return model.NewInternalError(err)
	}
	return nil
}

func (s *followService) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	ok, err := s.followRepo.Exists(ctx, followerID, followingID)
	if err != nil {
		return false, model.NewInternalError(err)
	}
	return ok, nil
}

func (s *followService) Followers(ctx context.Context, userID uint, page util.Page) ([]model.UserSummary, int64, error) {
	follows, total, err := s.followRepo.ListFollowers(ctx, userID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, model.NewInternalError(err)
	}
	users := make([]model.UserSummary, 0, len(follows))
	for _, f := range follows {
		if f.Follower != nil {
			users = append(users, *f.Follower)
		}
	}
	return users, total, nil
}

func (s *followService) Following(ctx context.Context, userID uint, page util.Page) ([]model.UserSummary, int64, error) {
	follows, total, err := s.followRepo.ListFollowing(ctx, userID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, model.NewInternalError(err)
	}
	users := make([]model.UserSummary, 0, len(follows))
	for _, f := range follows {
		if f.Following != nil {
			users = append(users, *f.Following)
		}
	}
	return users, total, nil
}
