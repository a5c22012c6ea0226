package repository

import (
	"context"

	"communityapp/internal/model"

	"gorm.io/gorm"
)

type FollowRepository interface {
	Create(ctx context.Context, followerID, followingID uint) (*model.Follow, error)
	Delete(ctx context.Context, followerID, followingID uint) error
	Exists(ctx context.Context, followerID, followingID uint) (bool, error)
	ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]model.Follow, int64, error)
	ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]model.Follow, int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts the edge and bumps both users' counters in one transaction.
// A duplicate edge returns ErrDuplicate and leaves counters untouched.
func (r *followRepository) Create(ctx context.Context, followerID, followingID uint) (*model.Follow, error) {
	follow := &model.Follow{FollowerID: followerID, FollowingID: followingID}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(follow).Error; err != nil {
			return translateWriteError(err)
		}
		if err := tx.Model(&model.User{}).Where("id = ?", followerID).
			UpdateColumn("following_count", increment("following_count")).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", followingID).
			UpdateColumn("followers_count", increment("followers_count")).Error
	})
	if err != nil {
		return nil, err
	}
	return follow, nil
}

// Delete removes the edge and decrements both counters, floored at zero.
// It returns gorm.ErrRecordNotFound when no edge exists.
func (r *followRepository) Delete(ctx context.Context, followerID, followingID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&model.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Model(&model.User{}).Where("id = ?", followerID).
			UpdateColumn("following_count", decrement("following_count")).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", followingID).
			UpdateColumn("followers_count", decrement("followers_count")).Error
	})
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]model.Follow, int64, error) {
	return r.list(ctx, "following_id", "Follower", userID, limit, offset)
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]model.Follow, int64, error) {
	return r.list(ctx, "follower_id", "Following", userID, limit, offset)
}

func (r *followRepository) list(ctx context.Context, column, preload string, userID uint, limit, offset int) ([]model.Follow, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&model.Follow{}).Where(column+" = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var follows []model.Follow
	err := r.db.WithContext(ctx).Preload(preload).
		Where(column+" = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&follows).Error
	if err != nil {
		return nil, 0, err
	}
	return follows, total, nil
}
