package app

import (
	"net/http"

	"communityapp/internal/middleware"
	"communityapp/internal/service"
	"communityapp/internal/util"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	likeService service.LikeService
}

func NewLikeHandler(likeService service.LikeService) *LikeHandler {
	return &LikeHandler{likeService: likeService}
}

// Like likes a post or comment
// POST /api/v1/likes
func (h *LikeHandler) Like(c *gin.Context) {
	var req service.LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ValidationMessage(err))
		return
	}

	like, err := h.likeService.Like(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Like created successfully", like)
}

// Unlike removes a like identified by query target_id and target_type
// DELETE /api/v1/likes
func (h *LikeHandler) Unlike(c *gin.Context) {
	var req service.LikeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		util.BadRequest(c, "target_id and target_type are required")
		return
	}

	if err := h.likeService.Unlike(c.Request.Context(), middleware.CurrentUserID(c), req); err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Like deleted successfully", nil)
}

// CheckLike reports whether the current user liked the target
// GET /api/v1/likes/check
func (h *LikeHandler) CheckLike(c *gin.Context) {
	var req service.LikeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		util.BadRequest(c, "target_id and target_type are required")
		return
	}

	liked, err := h.likeService.IsLiked(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Like status retrieved successfully", gin.H{"is_liked": liked})
}
