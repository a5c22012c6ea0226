package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"communityapp/internal/model"
	"communityapp/internal/repository"
	"communityapp/internal/util"

	"gorm.io/gorm"
)

// CategoryOption is a select-list entry.
type CategoryOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func categoryOptions(values []string) []CategoryOption {
	options := make([]CategoryOption, 0, len(values))
	for _, v := range values {
		options = append(options, CategoryOption{Label: v, Value: v})
	}
	return options
}

// ImageInput carries new images for a post or product. Files win over URLs;
// when both are nil the current images are kept.
type ImageInput struct {
	Files []*util.FileData
	URLs  []string
}

func (in ImageInput) provided() bool {
	return len(in.Files) > 0 || in.URLs != nil
}

type CreatePostRequest struct {
	Title    string   `json:"title" form:"title"`
	Content  string   `json:"content" form:"content"`
	Category string   `json:"category" form:"category"`
	Images   []string `json:"images" form:"-"`
}

type UpdatePostRequest struct {
	Title    *string  `json:"title" form:"title"`
	Content  *string  `json:"content" form:"content"`
	Category *string  `json:"category" form:"category"`
	Images   []string `json:"images" form:"-"`
}

type PostService interface {
	CreatePost(ctx context.Context, userID uint, req CreatePostRequest, files []*util.FileData) (*model.Post, error)
	GetPostByID(ctx context.Context, postID, viewerID uint) (*model.Post, error)
	ListPosts(ctx context.Context, viewerID uint, category string, page util.Page) ([]model.Post, int64, error)
	ListUserPosts(ctx context.Context, authorID uint, page util.Page) ([]model.Post, int64, error)
	UpdatePost(ctx context.Context, userID, postID uint, req UpdatePostRequest, files []*util.FileData) (*model.Post, error)
	DeletePost(ctx context.Context, userID, postID uint) error
	Categories() []CategoryOption
}

type postService struct {
	postRepo     repository.PostRepository
	favoriteRepo repository.FavoriteRepository
	uploads      UploadService
}

func NewPostService(
	postRepo repository.PostRepository,
	favoriteRepo repository.FavoriteRepository,
	uploads UploadService,
) PostService {
	return &postService{
		postRepo:     postRepo,
		favoriteRepo: favoriteRepo,
		uploads:      uploads,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID uint, req CreatePostRequest, files []*util.FileData) (*model.Post, error) {
	title := strings.TrimSpace(req.Title)
	if err := validatePostTitle(title); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, model.NewValidationError("Content is required")
	}

	category := req.Category
	if category == "" {
		category = model.DefaultPostCategory
	}
	if !model.IsValidPostCategory(category) {
		return nil, model.NewValidationError("Invalid post category")
	}

	images, err := resolveImages(ctx, s.uploads, ImageInput{Files: files, URLs: req.Images}, nil)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:    title,
		Content:  req.Content,
		AuthorID: userID,
		Images:   images,
		Category: category,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, model.NewInternalError(err)
	}

	created, err := s.postRepo.FindByID(ctx, post.ID)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	return created, nil
}

// GetPostByID counts a view on every call, including the author's own.
func (s *postService) GetPostByID(ctx context.Context, postID, viewerID uint) (*model.Post, error) {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		return nil, lookupErr(err, "Post not found")
	}
	if err := s.postRepo.IncrementViews(ctx, postID); err != nil {
		return nil, model.NewInternalError(err)
	}

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, lookupErr(err, "Post not found")
	}

	if viewerID != 0 {
		fav, err := s.favoriteRepo.Exists(ctx, viewerID, postID)
		if err != nil {
			return nil, model.NewInternalError(err)
		}
		post.IsFavorite = fav
	}
	return post, nil
}

func (s *postService) ListPosts(ctx context.Context, viewerID uint, category string, page util.Page) ([]model.Post, int64, error) {
	posts, total, err := s.postRepo.List(ctx, repository.PostFilter{Category: category}, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, model.NewInternalError(err)
	}

	if viewerID != 0 && len(posts) > 0 {
		ids := make([]uint, len(posts))
		for i := range posts {
			ids[i] = posts[i].ID
		}
		marks, err := s.favoriteRepo.FavoritedPostIDs(ctx, viewerID, ids)
		if err != nil {
			return nil, 0, model.NewInternalError(err)
		}
		for i := range posts {
			posts[i].IsFavorite = marks[posts[i].ID]
		}
	}
	return posts, total, nil
}

func (s *postService) ListUserPosts(ctx context.Context, authorID uint, page util.Page) ([]model.Post, int64, error) {
	posts, total, err := s.postRepo.List(ctx, repository.PostFilter{AuthorID: authorID}, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, model.NewInternalError(err)
	}
	return posts, total, nil
}

func (s *postService) UpdatePost(ctx context.Context, userID, postID uint, req UpdatePostRequest, files []*util.FileData) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, lookupErr(err, "Post not found")
	}
	if post.AuthorID != userID {
		return nil, model.NewForbiddenError("Not authorized to update this post")
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title := strings.TrimSpace(*req.Title)
		if err := validatePostTitle(title); err != nil {
			return nil, err
		}
		post.Title = title
	}
	if req.Content != nil && strings.TrimSpace(*req.Content) != "" {
		post.Content = *req.Content
	}
	if req.Category != nil && *req.Category != "" {
		if !model.IsValidPostCategory(*req.Category) {
			return nil, model.NewValidationError("Invalid post category")
		}
		post.Category = *req.Category
	}

	images, err := resolveImages(ctx, s.uploads, ImageInput{Files: files, URLs: req.Images}, post.Images)
	if err != nil {
		return nil, err
	}
	post.Images = images

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, model.NewInternalError(err)
	}

	updated, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	return updated, nil
}

func (s *postService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return lookupErr(err, "Post not found")
	}
	if post.AuthorID != userID {
		return model.NewForbiddenError("Not authorized to delete this post")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.NewNotFoundError("Post not found")
		}
		return model.NewInternalError(err)
	}
	return nil
}

func (s *postService) Categories() []CategoryOption {
	return categoryOptions(model.PostCategories)
}

func validatePostTitle(title string) error {
	if title == "" {
		return model.NewValidationError("Title is required")
	}
	if utf8.RuneCountInString(title) > 100 {
		return model.NewValidationError("Title must be at most 100 characters")
	}
	return nil
}

// resolveImages stores uploaded files, or describes URL images, or keeps
// current when nothing new was given.
func resolveImages(ctx context.Context, uploads UploadService, in ImageInput, current model.ImageList) (model.ImageList, error) {
	if !in.provided() {
		if current == nil {
			return model.ImageList{}, nil
		}
		return current, nil
	}
	if len(in.Files) > 0 {
		return uploads.UploadAll(ctx, in.Files, MaxPostImages)
	}
	if len(in.URLs) > MaxPostImages {
		return nil, model.NewValidationError("At most 6 images are allowed")
	}
	return uploads.ImagesFromURLs(in.URLs), nil
}
