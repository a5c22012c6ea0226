package repository

import (
	"context"
	"fmt"
	"time"

	"communityapp/internal/logger"
	"communityapp/internal/model"
	"communityapp/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, id uint) (*model.Comment, error)
	FindTree(ctx context.Context, resource model.Resource) ([]model.Comment, error)
	Delete(ctx context.Context, comment *model.Comment) (int64, error)
	InvalidateTree(ctx context.Context, resource model.Resource)
}

type commentRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	commentTreeCachePrefix = "comment:tree:"
	commentCacheExpiration = 5 * time.Minute
)

func NewCommentRepository(db *gorm.DB, redis *util.RedisClient) CommentRepository {
	return &commentRepository{db: db, redis: redis}
}

// Create creates a new comment and invalidates the resource's cached tree
func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	r.InvalidateTree(ctx, comment.Resource())
	return nil
}

func (r *commentRepository) FindByID(ctx context.Context, id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindTree returns top-level comments newest first, each with its replies
// oldest first.
func (r *commentRepository) FindTree(ctx context.Context, resource model.Resource) ([]model.Comment, error) {
	column, err := resourceColumn(resource)
	if err != nil {
		return nil, err
	}

	cacheKey := treeCacheKey(resource)
	if r.redis != nil {
		var cached []model.Comment
		if err := r.redis.GetJSON(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	comments := []model.Comment{}
	err = r.db.WithContext(ctx).
		Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Replies.Author").
		Where(column+" = ? AND parent_comment_id IS NULL", resource.ID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if err := r.redis.Set(ctx, cacheKey, comments, commentCacheExpiration); err != nil {
			logger.Warn("cache comment tree failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return comments, nil
}

// Delete removes a reply, or a top-level comment together with all of its
// replies, along with likes on the removed rows. It returns the number of
// comment rows deleted.
func (r *commentRepository) Delete(ctx context.Context, comment *model.Comment) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []uint{comment.ID}

		if comment.IsTopLevel() {
			var replyIDs []uint
			if err := tx.Model(&model.Comment{}).
				Where("parent_comment_id = ?", comment.ID).
				Pluck("id", &replyIDs).Error; err != nil {
				return err
			}

			res := tx.Where("parent_comment_id = ?", comment.ID).Delete(&model.Comment{})
			if res.Error != nil {
				return res.Error
			}
			deleted += res.RowsAffected
			ids = append(ids, replyIDs...)
		}

		res := tx.Delete(&model.Comment{}, comment.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		deleted += res.RowsAffected

		return deleteLikesOn(tx, model.TargetTypeComment, ids)
	})
	if err != nil {
		return 0, err
	}

	r.InvalidateTree(ctx, comment.Resource())
	return deleted, nil
}

func (r *commentRepository) InvalidateTree(ctx context.Context, resource model.Resource) {
	if r.redis == nil || resource.Kind == "" {
		return
	}
	if err := r.redis.Delete(ctx, treeCacheKey(resource)); err != nil {
		logger.Warn("invalidate comment tree failed", zap.String("resource", resource.Kind), zap.Uint("id", resource.ID), zap.Error(err))
	}
}

func treeCacheKey(resource model.Resource) string {
	return fmt.Sprintf("%s%s:%d", commentTreeCachePrefix, resource.Kind, resource.ID)
}

func resourceColumn(resource model.Resource) (string, error) {
	switch resource.Kind {
	case model.ResourcePost:
		return "post_id", nil
	case model.ResourceProduct:
		return "product_id", nil
	}
	return "", fmt.Errorf("unknown comment resource %q", resource.Kind)
}

// deleteCommentsOn removes every comment on a resource and the likes on
// those comments. Used inside post and product deletes.
func deleteCommentsOn(tx *gorm.DB, resource model.Resource) error {
	column, err := resourceColumn(resource)
	if err != nil {
		return err
	}

	var ids []uint
	if err := tx.Model(&model.Comment{}).Where(column+" = ?", resource.ID).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if err := deleteLikesOn(tx, model.TargetTypeComment, ids); err != nil {
		return err
	}
	return tx.Where(column+" = ?", resource.ID).Delete(&model.Comment{}).Error
}
