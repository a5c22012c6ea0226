package app

import (
	"context"
	"net/http"

	"communityapp/internal/middleware"
	"communityapp/internal/model"
	"communityapp/internal/service"
	"communityapp/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	defaultFollowPageSize = 10
	maxFollowPageSize     = 100
)

type FollowHandler struct {
	followService service.FollowService
}

func NewFollowHandler(followService service.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// Follow creates a follow edge from the current user
// POST /api/v1/follows
func (h *FollowHandler) Follow(c *gin.Context) {
	var req service.FollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ValidationMessage(err))
		return
	}

	follow, err := h.followService.Follow(c.Request.Context(), middleware.CurrentUserID(c), uint(req.FollowingID))
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Followed successfully", follow)
}

// Unfollow removes the follow edge to :id
// DELETE /api/v1/follows/:id
func (h *FollowHandler) Unfollow(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		util.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.followService.Unfollow(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Unfollowed successfully", nil)
}

// GetFollowers lists the users following :id
// GET /api/v1/follows/followers/:id
func (h *FollowHandler) GetFollowers(c *gin.Context) {
	h.list(c, "Followers retrieved successfully", h.followService.Followers)
}

// GetFollowing lists the users :id follows
// GET /api/v1/follows/following/:id
func (h *FollowHandler) GetFollowing(c *gin.Context) {
	h.list(c, "Following retrieved successfully", h.followService.Following)
}

func (h *FollowHandler) list(c *gin.Context, message string, fetch func(ctx context.Context, userID uint, page util.Page) ([]model.UserSummary, int64, error)) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		util.BadRequest(c, "Invalid user ID")
		return
	}

	page := util.NewPage(
		util.QueryInt(c, "page", 1, 1, 0),
		util.QueryInt(c, "pageSize", defaultFollowPageSize, 1, maxFollowPageSize),
		defaultFollowPageSize, maxFollowPageSize,
	)

	users, total, err := fetch(c.Request.Context(), id, page)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, message, gin.H{
		"list": users,
		"pagination": gin.H{
			"total":    total,
			"page":     page.Page,
			"pageSize": page.PageSize,
			"pages":    page.Pages(total),
		},
	})
}

// CheckFollowing reports whether the current user follows :id
// GET /api/v1/follows/check/:id
func (h *FollowHandler) CheckFollowing(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		util.BadRequest(c, "Invalid user ID")
		return
	}

	following, err := h.followService.IsFollowing(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Follow status retrieved successfully", gin.H{"is_following": following})
}
