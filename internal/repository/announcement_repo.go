package repository

import (
	"context"
	"time"

	"communityapp/internal/logger"
	"communityapp/internal/model"
	"communityapp/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AnnouncementRepository interface {
	ListActive(ctx context.Context) ([]model.Announcement, error)
	FindByID(ctx context.Context, id uint) (*model.Announcement, error)
	Create(ctx context.Context, announcement *model.Announcement) error
	Update(ctx context.Context, announcement *model.Announcement) error
	Delete(ctx context.Context, id uint) error
}

type announcementRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	activeAnnouncementsCacheKey = "announcements:active"
	announcementCacheExpiration = 10 * time.Minute
)

func NewAnnouncementRepository(db *gorm.DB, redis *util.RedisClient) AnnouncementRepository {
	return &announcementRepository{db: db, redis: redis}
}

func (r *announcementRepository) ListActive(ctx context.Context) ([]model.Announcement, error) {
	if r.redis != nil {
		var cached []model.Announcement
		if err := r.redis.GetJSON(ctx, activeAnnouncementsCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	announcements := []model.Announcement{}
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Find(&announcements).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if err := r.redis.Set(ctx, activeAnnouncementsCacheKey, announcements, announcementCacheExpiration); err != nil {
			logger.Warn("cache announcements failed", zap.Error(err))
		}
	}
	return announcements, nil
}

func (r *announcementRepository) FindByID(ctx context.Context, id uint) (*model.Announcement, error) {
	var a model.Announcement
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *announcementRepository) Create(ctx context.Context, announcement *model.Announcement) error {
	if err := r.db.WithContext(ctx).Create(announcement).Error; err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *announcementRepository) Update(ctx context.Context, announcement *model.Announcement) error {
	if err := r.db.WithContext(ctx).Save(announcement).Error; err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *announcementRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Announcement{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidate(ctx)
	return nil
}

func (r *announcementRepository) invalidate(ctx context.Context) {
	if r.redis == nil {
		return
	}
	if err := r.redis.Delete(ctx, activeAnnouncementsCacheKey); err != nil {
		logger.Warn("invalidate announcements failed", zap.Error(err))
	}
}
