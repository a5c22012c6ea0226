package repository

import (
	"context"
	"fmt"

	"communityapp/internal/model"

	"gorm.io/gorm"
)

type LikeRepository interface {
	Create(ctx context.Context, userID, targetID uint, target model.LikeTarget) (*model.Like, error)
	Delete(ctx context.Context, userID, targetID uint, target model.LikeTarget) error
	Exists(ctx context.Context, userID, targetID uint, target model.LikeTarget) (bool, error)
	CountByTarget(ctx context.Context, targetID uint, target model.LikeTarget) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Create inserts the like and increments the target's likes_count in one
// transaction.
func (r *likeRepository) Create(ctx context.Context, userID, targetID uint, target model.LikeTarget) (*model.Like, error) {
	table := target.Table()
	if table == "" {
		return nil, fmt.Errorf("unknown like target %q", target)
	}

	like := &model.Like{UserID: userID, TargetID: targetID, TargetType: target}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(like).Error; err != nil {
			return translateWriteError(err)
		}
		return tx.Table(table).Where("id = ?", targetID).
			UpdateColumn("likes_count", increment("likes_count")).Error
	})
	if err != nil {
		return nil, err
	}
	return like, nil
}

// Delete removes the like and decrements likes_count, floored at zero.
// It returns gorm.ErrRecordNotFound when no like exists.
func (r *likeRepository) Delete(ctx context.Context, userID, targetID uint, target model.LikeTarget) error {
	table := target.Table()
	if table == "" {
		return fmt.Errorf("unknown like target %q", target)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND target_id = ? AND target_type = ?", userID, targetID, target).
			Delete(&model.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Table(table).Where("id = ?", targetID).
			UpdateColumn("likes_count", decrement("likes_count")).Error
	})
}

func (r *likeRepository) Exists(ctx context.Context, userID, targetID uint, target model.LikeTarget) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND target_id = ? AND target_type = ?", userID, targetID, target).
		Count(&count).Error
	return count > 0, err
}

func (r *likeRepository) CountByTarget(ctx context.Context, targetID uint, target model.LikeTarget) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("target_id = ? AND target_type = ?", targetID, target).
		Count(&count).Error
	return count, err
}

// deleteLikesOn removes every like pointing at the given targets. Used by
// cascades inside an outer transaction.
func deleteLikesOn(tx *gorm.DB, target model.LikeTarget, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Where("target_type = ? AND target_id IN ?", target, ids).Delete(&model.Like{}).Error
}
