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

type CreateProductRequest struct {
	Title       string   `json:"title" form:"title"`
	Description string   `json:"description" form:"description"`
	Price       float64  `json:"price" form:"price"`
	Category    string   `json:"category" form:"category"`
	Status      string   `json:"status" form:"status"`
	Images      []string `json:"images" form:"-"`
}

type UpdateProductRequest struct {
	Title       *string  `json:"title" form:"title"`
	Description *string  `json:"description" form:"description"`
	Price       *float64 `json:"price" form:"price"`
	Category    *string  `json:"category" form:"category"`
	Status      *string  `json:"status" form:"status"`
	IsSold      *bool    `json:"isSold" form:"isSold"`
	Images      []string `json:"images" form:"-"`
}

type ProductService interface {
	CreateProduct(ctx context.Context, userID uint, req CreateProductRequest, files []*util.FileData) (*model.Product, error)
	GetProductByID(ctx context.Context, id uint) (*model.Product, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter, page util.Page) ([]model.Product, int64, error)
	UpdateProduct(ctx context.Context, userID, id uint, req UpdateProductRequest, files []*util.FileData) (*model.Product, error)
	DeleteProduct(ctx context.Context, userID, id uint) error
	Categories() []string
}

type productService struct {
	productRepo repository.ProductRepository
	uploads     UploadService
}

func NewProductService(productRepo repository.ProductRepository, uploads UploadService) ProductService {
	return &productService{
		productRepo: productRepo,
		uploads:     uploads,
	}
}

func (s *productService) CreateProduct(ctx context.Context, userID uint, req CreateProductRequest, files []*util.FileData) (*model.Product, error) {
	title := strings.TrimSpace(req.Title)
	if err := validateProductTitle(title); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, model.NewValidationError("商品描述不能为空")
	}
	if req.Price < model.MinProductPrice {
		return nil, model.NewValidationError("价格必须大于0")
	}

	category := req.Category
	if category == "" {
		category = model.DefaultProductCategory
	}
	if !model.IsValidProductCategory(category) {
		return nil, model.NewValidationError("无效的商品分类")
	}
	status := req.Status
	if status == "" {
		status = model.DefaultProductStatus
	}
	if !model.IsValidProductStatus(status) {
		return nil, model.NewValidationError("无效的商品成色")
	}

	images, err := resolveImages(ctx, s.uploads, ImageInput{Files: files, URLs: req.Images}, nil)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		Title:       title,
		Description: req.Description,
		Price:       req.Price,
		AuthorID:    userID,
		Images:      images,
		Category:    category,
		Status:      status,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, model.NewInternalError(err)
	}

	created, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	return created, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uint) (*model.Product, error) {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return nil, lookupErr(err, "二手商品不存在")
	}
	if err := s.productRepo.IncrementViews(ctx, id); err != nil {
		return nil, model.NewInternalError(err)
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "二手商品不存在")
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, filter repository.ProductFilter, page util.Page) ([]model.Product, int64, error) {
	products, total, err := s.productRepo.List(ctx, filter, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, model.NewInternalError(err)
	}
	return products, total, nil
}

func (s *productService) UpdateProduct(ctx context.Context, userID, id uint, req UpdateProductRequest, files []*util.FileData) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "二手商品不存在")
	}
	if product.AuthorID != userID {
		return nil, model.NewForbiddenError("无权限更新此商品")
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title := strings.TrimSpace(*req.Title)
		if err := validateProductTitle(title); err != nil {
			return nil, err
		}
		product.Title = title
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) != "" {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < model.MinProductPrice {
			return nil, model.NewValidationError("价格必须大于0")
		}
		product.Price = *req.Price
	}
	if req.Category != nil && *req.Category != "" {
		if !model.IsValidProductCategory(*req.Category) {
			return nil, model.NewValidationError("无效的商品分类")
		}
		product.Category = *req.Category
	}
	if req.Status != nil && *req.Status != "" {
		if !model.IsValidProductStatus(*req.Status) {
			return nil, model.NewValidationError("无效的商品成色")
		}
		product.Status = *req.Status
	}
	if req.IsSold != nil {
		product.IsSold = *req.IsSold
	}

	images, err := resolveImages(ctx, s.uploads, ImageInput{Files: files, URLs: req.Images}, product.Images)
	if err != nil {
		return nil, err
	}
	product.Images = images

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, model.NewInternalError(err)
	}

	updated, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	return updated, nil
}

func (s *productService) DeleteProduct(ctx context.Context, userID, id uint) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return lookupErr(err, "二手商品不存在")
	}
	if product.AuthorID != userID {
		return model.NewForbiddenError("无权限删除此商品")
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.NewNotFoundError("二手商品不存在")
		}
		return model.NewInternalError(err)
	}
	return nil
}

func (s *productService) Categories() []string {
	return append([]string(nil), model.ProductCategories...)
}

func validateProductTitle(title string) error {
	if title == "" {
		return model.NewValidationError("商品标题不能为空")
	}
	if utf8.RuneCountInString(title) > 100 {
		return model.NewValidationError("商品标题不能超过100个字符")
	}
	return nil
}
