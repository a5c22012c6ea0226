package app

import (
	"net/http"

	"communityapp/internal/middleware"
	"communityapp/internal/model"
	"communityapp/internal/service"
	"communityapp/internal/util"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CreateComment handles comment and reply creation
// POST /api/v1/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req service.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, "评论内容不能为空")
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "评论创建成功", comment)
}

// GetPostComments GET /api/v1/comments/post/:postId
func (h *CommentHandler) GetPostComments(c *gin.Context) {
	h.tree(c, model.ResourcePost, "postId")
}

// GetProductComments GET /api/v1/comments/product/:productId
func (h *CommentHandler) GetProductComments(c *gin.Context) {
	h.tree(c, model.ResourceProduct, "productId")
}

func (h *CommentHandler) tree(c *gin.Context, kind, param string) {
	id, ok := util.ParseIDParam(c, param)
	if !ok {
		util.BadRequest(c, "无效的ID")
		return
	}

	comments, err := h.commentService.GetTree(c.Request.Context(), model.Resource{Kind: kind, ID: id})
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "获取评论成功", comments)
}

// DeleteComment deletes a comment and, for top-level comments, its replies
// DELETE /api/v1/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		util.BadRequest(c, "无效的评论ID")
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "评论删除成功", gin.H{"id": id})
}
