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

type LikeRequest struct {
	TargetID   util.ID `json:"target_id" form:"target_id"`
	TargetType string  `json:"target_type" form:"target_type"`
}

type LikeService interface {
	Like(ctx context.Context, userID uint, req LikeRequest) (*model.Like, error)
	Unlike(ctx context.Context, userID uint, req LikeRequest) error
	IsLiked(ctx context.Context, userID uint, req LikeRequest) (bool, error)
}

type likeService struct {
	likeRepo    repository.LikeRepository
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	notifier    NotificationService
}

func NewLikeService(
	likeRepo repository.LikeRepository,
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	notifier NotificationService,
) LikeService {
	return &likeService{
		likeRepo:    likeRepo,
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		notifier:    notifier,
	}
}

// likeTarget is the resolved owner of a like and what a cached view of it
// depends on.
type likeTarget struct {
	kind     model.LikeTarget
	ownerID  uint
	resource *model.Resource
}

func (s *likeService) parse(req LikeRequest) (model.LikeTarget, error) {
	if req.TargetID == 0 || req.TargetType == "" {
		return "", model.NewValidationError("target_id and target_type are required")
	}
	target, err := model.ParseLikeTarget(req.TargetType)
	if err != nil {
		return "", model.NewValidationError("target_type must be post or comment")
	}
	return target, nil
}

func (s *likeService) resolve(ctx context.Context, targetID uint, target model.LikeTarget) (*likeTarget, error) {
	notFound := fmt.Sprintf("%s not found", target.Label())

	switch target {
	case model.TargetTypePost:
		post, err := s.postRepo.FindByID(ctx, targetID)
		if err != nil {
			return nil, lookupErr(err, notFound)
		}
		return &likeTarget{kind: target, ownerID: post.AuthorID}, nil
	case model.TargetTypeComment:
		comment, err := s.commentRepo.FindByID(ctx, targetID)
		if err != nil {
			return nil, lookupErr(err, notFound)
		}
		resource := comment.Resource()
		return &likeTarget{kind: target, ownerID: comment.AuthorID, resource: &resource}, nil
	}
	return nil, model.NewValidationError("target_type must be post or comment")
}

func (s *likeService) Like(ctx context.Context, userID uint, req LikeRequest) (*model.Like, error) {
	kind, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	target, err := s.resolve(ctx, uint(req.TargetID), kind)
	if err != nil {
		return nil, err
	}

	already, err := s.likeRepo.Exists(ctx, userID, uint(req.TargetID), kind)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	if already {
		return nil, model.NewConflictError("Already liked")
	}

	like, err := s.likeRepo.Create(ctx, userID, uint(req.TargetID), kind)
	if err != nil {
		return nil, writeErr(err, "Already liked")
	}
	s.invalidate(ctx, target)

	notifType := model.NotificationTypePostLiked
	if kind == model.TargetTypeComment {
		notifType = model.NotificationTypeCommentLiked
	}
	notify(ctx, s.notifier, &model.Notification{
		UserID:   target.ownerID,
		SenderID: uintPtr(userID),
		Type:     notifType,
		Title:    "New like",
		Message:  fmt.Sprintf("%s liked your %s", displayName(ctx, s.userRepo, userID), kind),
		TargetID: uintPtr(uint(req.TargetID)),
	})

	return like, nil
}

func (s *likeService) Unlike(ctx context.Context, userID uint, req LikeRequest) error {
	kind, err := s.parse(req)
	if err != nil {
		return err
	}

	if err := s.likeRepo.Delete(ctx, userID, uint(req.TargetID), kind); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.NewNotFoundError("Like not found")
		}
		return model.NewInternalError(err)
	}

	if kind == model.TargetTypeComment {
		if target, err := s.resolve(ctx, uint(req.TargetID), kind); err == nil {
			s.invalidate(ctx, target)
		}
	}
	return nil
}

func (s *likeService) IsLiked(ctx context.Context, userID uint, req LikeRequest) (bool, error) {
	kind, err := s.parse(req)
	if err != nil {
		return false, err
	}
	ok, err := s.likeRepo.Exists(ctx, userID, uint(req.TargetID), kind)
	if err != nil {
		return false, model.NewInternalError(err)
	}
	return ok, nil
}

// invalidate drops cached comment trees that embed the target's likes_count.
func (s *likeService) invalidate(ctx context.Context, target *likeTarget) {
	if target.resource != nil {
		s.commentRepo.InvalidateTree(ctx, *target.resource)
	}
}
