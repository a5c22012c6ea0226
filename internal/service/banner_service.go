package service

import (
	"context"
	"strings"

	"communityapp/internal/model"
	"communityapp/internal/repository"
)

type CreateBannerRequest struct {
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
	LinkURL  string `json:"linkUrl"`
	Order    int    `json:"order"`
}

type UpdateBannerRequest struct {
	Title    *string `json:"title"`
	ImageURL *string `json:"imageUrl"`
	LinkURL  *string `json:"linkUrl"`
	Order    *int    `json:"order"`
	IsActive *bool   `json:"isActive"`
}

type BannerService interface {
	ListActive(ctx context.Context) ([]model.Banner, error)
	Create(ctx context.Context, req CreateBannerRequest) (*model.Banner, error)
	Update(ctx context.Context, id uint, req UpdateBannerRequest) (*model.Banner, error)
	Delete(ctx context.Context, id uint) error
}

type bannerService struct {
	bannerRepo repository.BannerRepository
}

func NewBannerService(bannerRepo repository.BannerRepository) BannerService {
	return &bannerService{bannerRepo: bannerRepo}
}

func (s *bannerService) ListActive(ctx context.Context) ([]model.Banner, error) {
	banners, err := s.bannerRepo.ListActive(ctx)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	return banners, nil
}

func (s *bannerService) Create(ctx context.Context, req CreateBannerRequest) (*model.Banner, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.ImageURL) == "" || strings.TrimSpace(req.LinkURL) == "" {
		return nil, model.NewValidationError("标题、图片URL和链接URL不能为空")
	}

	banner := &model.Banner{
		Title:    strings.TrimSpace(req.Title),
		ImageURL: strings.TrimSpace(req.ImageURL),
		LinkURL:  strings.TrimSpace(req.LinkURL),
		Order:    req.Order,
		IsActive: true,
	}
	if err := s.bannerRepo.Create(ctx, banner); err != nil {
		return nil, model.NewInternalError(err)
	}
	return banner, nil
}

func (s *bannerService) Update(ctx context.Context, id uint, req UpdateBannerRequest) (*model.Banner, error) {
	banner, err := s.bannerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Banner不存在")
	}

	if req.Title != nil && *req.Title != "" {
		banner.Title = *req.Title
	}
	if req.ImageURL != nil && *req.ImageURL != "" {
		banner.ImageURL = *req.ImageURL
	}
	if req.LinkURL != nil && *req.LinkURL != "" {
		banner.LinkURL = *req.LinkURL
	}
	if req.Order != nil {
		banner.Order = *req.Order
	}
	if req.IsActive != nil {
		banner.IsActive = *req.IsActive
	}

	if err := s.bannerRepo.Update(ctx, banner); err != nil {
		return nil, model.NewInternalError(err)
	}
	return banner, nil
}

func (s *bannerService) Delete(ctx context.Context, id uint) error {
	if err := s.bannerRepo.Delete(ctx, id); err != nil {
		return lookupErr(err, "Banner不存在")
	}
	return nil
}
