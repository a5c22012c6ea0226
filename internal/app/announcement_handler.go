package app

import (
	"net/http"

	"communityapp/internal/service"
	"communityapp/internal/util"

	"github.com/gin-gonic/gin"
)

type AnnouncementHandler struct {
	announcementService service.AnnouncementService
}

func NewAnnouncementHandler(announcementService service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// GetAnnouncements GET /api/v1/announcements
func (h *AnnouncementHandler) GetAnnouncements(c *gin.Context) {
	announcements, err := h.announcementService.ListActive(c.Request.Context())
	if err != nil {
		util.HandleError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "公告列表获取成功", announcements)
}

// CreateAnnouncement POST /api/v1/announcements (admin)
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	var req service.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ValidationMessage(err))
		return
	}

	announcement, err := h.announcementService.Create(c.Request.Context(), req)
	if err != nil {
		util.HandleError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusCreated, "公告创建成功", announcement)
}

// UpdateAnnouncement PUT /api/v1/announcements/:id (admin)
func (h *AnnouncementHandler) UpdateAnnouncement(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		util.BadRequest(c, "无效的公告ID")
		return
	}

	var req service.UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ValidationMessage(err))
		return
	}

	announcement, err := h.announcementService.Update(c.Request.Context(), id, req)
	if err != nil {
		util.HandleError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "公告更新成功", announcement)
}

// DeleteAnnouncement DELETE /api/v1/announcements/:id (admin)
func (h *AnnouncementHandler) DeleteAnnouncement(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		util.BadRequest(c, "无效的公告ID")
		return
	}

	if err := h.announcementService.Delete(c.Request.Context(), id); err != nil {
		util.HandleError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "公告删除成功", nil)
}
