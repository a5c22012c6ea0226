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

type BannerRepository interface {
	ListActive(ctx context.Context) ([]model.Banner, error)
	FindByID(ctx context.Context, id uint) (*model.Banner, error)
	Create(ctx context.Context, banner *model.Banner) error
	Update(ctx context.Context, banner *model.Banner) error
	Delete(ctx context.Context, id uint) error
}

type bannerRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	activeBannersCacheKey = "banners:active"
	bannerCacheExpiration = 30 * time.Minute
)

func NewBannerRepository(db *gorm.DB, redis *util.RedisClient) BannerRepository {
	return &bannerRepository{db: db, redis: redis}
}

// ListActive returns active banners by display order, read through the cache.
func (r *bannerRepository) ListActive(ctx context.Context) ([]model.Banner, error) {
	if r.redis != nil {
		var cached []model.Banner
		if err := r.redis.GetJSON(ctx, activeBannersCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	banners := []model.Banner{}
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&banners).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if err := r.redis.Set(ctx, activeBannersCacheKey, banners, bannerCacheExpiration); err != nil {
			logger.Warn("cache banners failed", zap.Error(err))
		}
	}
	return banners, nil
}

func (r *bannerRepository) FindByID(ctx context.Context, id uint) (*model.Banner, error) {
	var banner model.Banner
	if err := r.db.WithContext(ctx).First(&banner, id).Error; err != nil {
		return nil, err
	}
	return &banner, nil
}

func (r *bannerRepository) Create(ctx context.Context, banner *model.Banner) error {
	if err := r.db.WithContext(ctx).Create(banner).Error; err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *bannerRepository) Update(ctx context.Context, banner *model.Banner) error {
	if err := r.db.WithContext(ctx).Save(banner).Error; err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *bannerRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Banner{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidate(ctx)
	return nil
}

func (r *bannerRepository) invalidate(ctx context.Context) {
	if r.redis == nil {
		return
	}
	if err := r.redis.Delete(ctx, activeBannersCacheKey); err != nil {
		logger.Warn("invalidate banners failed", zap.Error(err))
	}
}
