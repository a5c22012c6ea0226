package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"communityapp/internal/model"
	"communityapp/internal/repository"

	"gorm.io/gorm"
)

const maxCommentLength = 500

type CommentService interface {
	CreateComment(ctx context.Context, userID uint, req CreateCommentRequest) (*model.Comment, error)
	GetTree(ctx context.Context, resource model.Resource) ([]model.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID uint) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	productRepo repository.ProductRepository
	notifier    NotificationService
}

type CreateCommentRequest struct {
	Content         string `json:"content" binding:"required"`
	PostID          *uint  `json:"postId"`
	ProductID       *uint  `json:"productId"`
	ParentCommentID *uint  `json:"parentCommentId"`
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	productRepo repository.ProductRepository,
	notifier NotificationService,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		userRepo:    userRepo,
		postRepo:    postRepo,
		productRepo: productRepo,
		notifier:    notifier,
	}
}

func (s *commentService) CreateComment(ctx context.Context, userID uint, req CreateCommentRequest) (*model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.NewValidationError("评论内容不能为空")
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, model.NewValidationError("评论内容不能超过500个字符")
	}

	resource, ownerID, err := s.resolveResource(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.ParentCommentID != nil && *req.ParentCommentID == 0 {
		req.ParentCommentID = nil
	}

	var parent *model.Comment
	if req.ParentCommentID != nil {
		parent, err = s.commentRepo.FindByID(ctx, *req.ParentCommentID)
		if err != nil {
			return nil, lookupErr(err, "父评论不存在")
		}
		if parent.Resource() != resource {
			return nil, model.NewValidationError("父评论不属于此资源")
		}
		if !parent.IsTopLevel() {
			return nil, model.NewValidationError("不能回复二级评论")
		}
	}

	comment := &model.Comment{
		Content:         content,
		AuthorID:        userID,
		ParentCommentID: req.ParentCommentID,
	}
	switch resource.Kind {
	case model.ResourcePost:
		comment.PostID = uintPtr(resource.ID)
	case model.ResourceProduct:
		comment.ProductID = uintPtr(resource.ID)
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, model.NewInternalError(err)
	}

	created, err := s.commentRepo.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, model.NewInternalError(err)
	}

	s.notifyCreated(ctx, created, parent, ownerID)
	return created, nil
}

// resolveResource checks that exactly one target is named and that it exists,
// returning it with its owner.
func (s *commentService) resolveResource(ctx context.Context, req CreateCommentRequest) (model.Resource, uint, error) {
	hasPost := req.PostID != nil && *req.PostID != 0
	hasProduct := req.ProductID != nil && *req.ProductID != 0

	switch {
	case hasPost && hasProduct:
		return model.Resource{}, 0, model.NewValidationError("postId和productId只能提供一个")
	case hasPost:
		post, err := s.postRepo.FindByID(ctx, *req.PostID)
		if err != nil {
			return model.Resource{}, 0, lookupErr(err, "帖子不存在")
		}
		return model.Resource{Kind: model.ResourcePost, ID: post.ID}, post.AuthorID, nil
	case hasProduct:
		product, err := s.productRepo.FindByID(ctx, *req.ProductID)
		if err != nil {
			return model.Resource{}, 0, lookupErr(err, "商品不存在")
		}
		return model.Resource{Kind: model.ResourceProduct, ID: product.ID}, product.AuthorID, nil
	}
	return model.Resource{}, 0, model.NewValidationError("请提供postId或productId")
}

func (s *commentService) notifyCreated(ctx context.Context, comment, parent *model.Comment, resourceOwnerID uint) {
	name := "Someone"
	if comment.Author != nil {
		name = comment.Author.Username
	}

	if parent != nil {
		notify(ctx, s.notifier, &model.Notification{
			UserID:   parent.AuthorID,
			SenderID: uintPtr(comment.AuthorID),
			Type:     model.NotificationTypeCommentReply,
			Title:    "New reply",
			Message:  fmt.Sprintf("%s replied to your comment", name),
			TargetID: uintPtr(comment.ID),
		})
		return
	}

	notify(ctx, s.notifier, &model.Notification{
		UserID:   resourceOwnerID,
		SenderID: uintPtr(comment.AuthorID),
		Type:     model.NotificationTypePostComment,
		Title:    "New comment",
		Message:  fmt.Sprintf("%s commented on your %s", name, comment.Resource().Kind),
		TargetID: uintPtr(comment.ID),
	})
}

func (s *commentService) GetTree(ctx context.Context, resource model.Resource) ([]model.Comment, error) {
	switch resource.Kind {
	case model.ResourcePost:
		if _, err := s.postRepo.FindByID(ctx, resource.ID); err != nil {
			return nil, lookupErr(err, "帖子不存在")
		}
	case model.ResourceProduct:
		if _, err := s.productRepo.FindByID(ctx, resource.ID); err != nil {
			return nil, lookupErr(err, "商品不存在")
		}
	default:
		return nil, model.NewValidationError("请提供postId或productId")
	}

	tree, err := s.commentRepo.FindTree(ctx, resource)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	return tree, nil
}

func (s *commentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return lookupErr(err, "评论不存在")
	}
	if comment.AuthorID != userID {
		return model.NewForbiddenError("无权删除此评论")
	}

	if _, err := s.commentRepo.Delete(ctx, comment); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.NewNotFoundError("评论不存在")
		}
		return model.NewInternalError(err)
	}
	return nil
}
