package app

import (
	"net/http"
	"strconv"

	"communityapp/internal/middleware"
	"communityapp/internal/repository"
	"communityapp/internal/service"
	"communityapp/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	defaultProductPageSize = 10
	maxProductPageSize     = 50
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// CreateProduct POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	files, ok := bindWithImages(c, &req)
	if !ok {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), middleware.CurrentUserID(c), req, files)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "二手商品创建成功", product)
}

// GetProducts lists products filtered by category, isSold and userId
// GET /api/v1/products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	page := util.NewPage(
		util.QueryInt(c, "page", 1, 1, 0),
		util.QueryInt(c, "pageSize", defaultProductPageSize, 1, maxProductPageSize),
		defaultProductPageSize, maxProductPageSize,
	)

	filter := repository.ProductFilter{Category: c.Query("category")}
	if v, err := strconv.ParseBool(c.Query("isSold")); err == nil {
		filter.IsSold = &v
	}
	if v, err := strconv.ParseUint(c.Query("userId"), 10, 64); err == nil && v > 0 {
		filter.AuthorID = uint(v)
	}

	products, total, err := h.productService.ListProducts(c.Request.Context(), filter, page)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "获取二手商品列表成功", gin.H{
		"list": products,
		"pagination": gin.H{
			"current":    page.Page,
			"pageSize":   page.PageSize,
			"total":      total,
			"totalPages": page.Pages(total),
		},
	})
}

// GetProduct counts a view on every call
// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		util.BadRequest(c, "无效的商品ID")
		return
	}

	product, err := h.productService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "获取二手商品成功", product)
}

// UpdateProduct PUT /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		util.BadRequest(c, "无效的商品ID")
		return
	}

	var req service.UpdateProductRequest
	files, ok := bindWithImages(c, &req)
	if !ok {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), middleware.CurrentUserID(c), id, req, files)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "更新二手商品成功", product)
}

// DeleteProduct DELETE /api/v1/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		util.BadRequest(c, "无效的商品ID")
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "删除二手商品成功", gin.H{"id": id})
}

// GetCategories GET /api/v1/products/categories/list
func (h *ProductHandler) GetCategories(c *gin.Context) {
	util.SuccessResponse(c, http.StatusOK, "获取二手商品分类成功", h.productService.Categories())
}
