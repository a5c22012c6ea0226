package app

import (
	"net/http"

	"communityapp/internal/service"
	"communityapp/internal/util"

	"github.com/gin-gonic/gin"
)

type BannerHandler struct {
	bannerService service.BannerService
}

func NewBannerHandler(bannerService service.BannerService) *BannerHandler {
	return &BannerHandler{bannerService: bannerService}
}

// GetBanners GET /api/v1/banners
func (h *BannerHandler) GetBanners(c *gin.Context) {
	banners, err := h.bannerService.ListActive(c.Request.Context())
	if err != nil {
		util.HandleError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Banner列表获取成功", banners)
}

// CreateBanner POST /api/v1/banners (admin)
func (h *BannerHandler) CreateBanner(c *gin.Context) {
	var req service.CreateBannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ValidationMessage(err))
		return
	}

	banner, err := h.bannerService.Create(c.Request.Context(), req)
	if err != nil {
		util.HandleError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusCreated, "Banner创建成功", banner)
}

// UpdateBanner PUT /api/v1/banners/:id (admin)
func (h *BannerHandler) UpdateBanner(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		util.BadRequest(c, "无效的Banner ID")
		return
	}

	var req service.UpdateBannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ValidationMessage(err))
		return
	}

	banner, err := h.bannerService.Update(c.Request.Context(), id, req)
	if err != nil {
		util.HandleError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Banner更新成功", banner)
}

// DeleteBanner DELETE /api/v1/banners/:id (admin)
func (h *BannerHandler) DeleteBanner(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		util.BadRequest(c, "无效的Banner ID")
		return
	}

	if err := h.bannerService.Delete(c.Request.Context(), id); err != nil {
		util.HandleError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Banner删除成功", nil)
}
