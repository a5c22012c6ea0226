package service

import (
	"context"
	"strings"

	"communityapp/internal/model"
	"communityapp/internal/repository"
)

type CreateAnnouncementRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type UpdateAnnouncementRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	IsActive *bool   `json:"isActive"`
}

type AnnouncementService interface {
	ListActive(ctx context.Context) ([]model.Announcement, error)
	Create(ctx context.Context, req CreateAnnouncementRequest) (*model.Announcement, error)
	Update(ctx context.Context, id uint, req UpdateAnnouncementRequest) (*model.Announcement, error)
	Delete(ctx context.Context, id uint) error
}

type announcementService struct {
	announcementRepo repository.AnnouncementRepository
}

func NewAnnouncementService(announcementRepo repository.AnnouncementRepository) AnnouncementService {
	return &announcementService{announcementRepo: announcementRepo}
}

func (s *announcementService) ListActive(ctx context.Context) ([]model.Announcement, error) {
	list, err := s.announcementRepo.ListActive(ctx)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	return list, nil
}

func (s *announcementService) Create(ctx context.Context, req CreateAnnouncementRequest) (*model.Announcement, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return nil, model.NewValidationError("标题和内容不能为空")
	}

	announcement := &model.Announcement{
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		IsActive: true,
	}
	if err := s.announcementRepo.Create(ctx, announcement); err != nil {
		return nil, model.NewInternalError(err)
	}
	return announcement, nil
}

func (s *announcementService) Update(ctx context.Context, id uint, req UpdateAnnouncementRequest) (*model.Announcement, error) {
	announcement, err := s.announcementRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "公告不存在")
	}

	if req.Title != nil && *req.Title != "" {
		announcement.Title = *req.Title
	}
	if req.Content != nil && *req.Content != "" {
		announcement.Content = *req.Content
	}
	if req.IsActive != nil {
		announcement.IsActive = *req.IsActive
	}

	if err := s.announcementRepo.Update(ctx, announcement); err != nil {
		return nil, model.NewInternalError(err)
	}
	return announcement, nil
}

func (s *announcementService) Delete(ctx context.Context, id uint) error {
	if err := s.announcementRepo.Delete(ctx, id); err != nil {
		return lookupErr(err, "公告不存在")
	}
	return nil
}
