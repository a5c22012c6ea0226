package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"communityapp/internal/model"
	"communityapp/internal/util"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	FindByUserID(ctx context.Context, userID uint, limit, offset int) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkAsRead(ctx context.Context, id, userID uint) error
	MarkAllAsRead(ctx context.Context, userID uint) error
}

type notificationRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	notificationCountCachePrefix = "notification:unread:"
	notificationCacheExpiration  = 10 * time.Minute
)

func NewNotificationRepository(db *gorm.DB, redis *util.RedisClient) NotificationRepository {
	return &notificationRepository{db: db, redis: redis}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return err
	}
	r.invalidateCountCache(ctx, notification.UserID)
	return nil
}

func (r *notificationRepository) FindByUserID(ctx context.Context, userID uint, limit, offset int) ([]model.Notification, error) {
	notifications := []model.Notification{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	key := r.countCacheKey(userID)
	if r.redis != nil {
		if cached, err := r.redis.Get(ctx, key); err == nil {
			if n, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return n, nil
			}
		}
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	if r.redis != nil {
		_ = r.redis.Set(ctx, key, strconv.FormatInt(count, 10), notificationCacheExpiration)
	}
	return count, nil
}

// MarkAsRead returns gorm.ErrRecordNotFound when the notification does not
// belong to userID.
func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidateCountCache(ctx, userID)
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return err
	}
	r.invalidateCountCache(ctx, userID)
	return nil
}

func (r *notificationRepository) countCacheKey(userID uint) string {
	return fmt.Sprintf("%s%d", notificationCountCachePrefix, userID)
}

func (r *notificationRepository) invalidateCountCache(ctx context.Context, userID uint) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Delete(ctx, r.countCacheKey(userID))
}
