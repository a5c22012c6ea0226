package service

import (
	"context"
	"errors"

	"communityapp/internal/model"
	"communityapp/internal/repository"

	"gorm.io/gorm"
)

type FavoriteService interface {
	Add(ctx context.Context, userID, postID uint) (*model.Favorite, error)
	Remove(ctx context.Context, userID, postID uint) error
	List(ctx context.Context, userID uint) ([]model.Post, error)
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	postRepo     repository.PostRepository
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepository, postRepo repository.PostRepository) FavoriteService {
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		postRepo:     postRepo,
	}
}

func (s *favoriteService) Add(ctx context.Context, userID, postID uint) (*model.Favorite, error) {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		return nil, lookupErr(err, "帖子不存在")
	}

	already, err := s.favoriteRepo.Exists(ctx, userID, postID)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	if already {
		return nil, model.NewConflictError("已经收藏过该帖子")
	}

	fav, err := s.favoriteRepo.Create(ctx, userID, postID)
	if err != nil {
		return nil, writeErr(err, "已经收藏过该帖子")
	}
	return fav, nil
}

func (s *favoriteService) Remove(ctx context.Context, userID, postID uint) error {
	if err := s.favoriteRepo.Delete(ctx, userID, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.NewNotFoundError("未收藏该帖子")
		}
		return model.NewInternalError(err)
	}
	return nil
}

func (s *favoriteService) List(ctx context.Context, userID uint) ([]model.Post, error) {
	posts, err := s.favoriteRepo.ListPosts(ctx, userID)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	return posts, nil
}
