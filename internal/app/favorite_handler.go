package app

import (
	"net/http"

	"communityapp/internal/middleware"
	"communityapp/internal/service"
	"communityapp/internal/util"

	"github.com/gin-gonic/gin"
)

type FavoriteHandler struct {
	favoriteService service.FavoriteService
}

func NewFavoriteHandler(favoriteService service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// AddFavorite POST /api/v1/favorites/:postId
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	postID, ok := util.ParseIDParam(c, "postId")
	if !ok {
		util.BadRequest(c, "无效的帖子ID")
		return
	}

	favorite, err := h.favoriteService.Add(c.Request.Context(), middleware.CurrentUserID(c), postID)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "收藏成功", favorite)
}

// RemoveFavorite DELETE /api/v1/favorites/:postId
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	postID, ok := util.ParseIDParam(c, "postId")
	if !ok {
		util.BadRequest(c, "无效的帖子ID")
		return
	}

	if err := h.favoriteService.Remove(c.Request.Context(), middleware.CurrentUserID(c), postID); err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "取消收藏成功", nil)
}

// GetFavorites GET /api/v1/favorites
func (h *FavoriteHandler) GetFavorites(c *gin.Context) {
	posts, err := h.favoriteService.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "获取收藏列表成功", posts)
}
