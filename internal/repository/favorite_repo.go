package repository

import (
	"context"

	"communityapp/internal/model"

	"gorm.io/gorm"
)

type FavoriteRepository interface {
	Create(ctx context.Context, userID, postID uint) (*model.Favorite, error)
	Delete(ctx context.Context, userID, postID uint) error
	Exists(ctx context.Context, userID, postID uint) (bool, error)
	ListPosts(ctx context.Context, userID uint) ([]model.Post, error)
	FavoritedPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(ctx context.Context, userID, postID uint) (*model.Favorite, error) {
	fav := &model.Favorite{UserID: userID, PostID: postID}
	if err := r.db.WithContext(ctx).Create(fav).Error; err != nil {
		return nil, translateWriteError(err)
	}
	return fav, nil
}

// Delete returns gorm.ErrRecordNotFound when the post was not favorited.
func (r *favoriteRepository) Delete(ctx context.Context, userID, postID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&model.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

// ListPosts returns the user's favorited posts, most recently favorited first.
func (r *favoriteRepository) ListPosts(ctx context.Context, userID uint) ([]model.Post, error) {
	var favorites []model.Favorite
	err := r.db.WithContext(ctx).
		Preload("Post").
		Preload("Post.Author").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}

	posts := make([]model.Post, 0, len(favorites))
	for _, f := range favorites {
		if f.Post == nil {
			continue
		}
		p := *f.Post
		p.IsFavorite = true
		posts = append(posts, p)
	}
	return posts, nil
}

func (r *favoriteRepository) FavoritedPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
