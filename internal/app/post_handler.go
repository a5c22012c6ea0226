package app

import (
	"net/http"

	"communityapp/internal/middleware"
	"communityapp/internal/service"
	"communityapp/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	defaultPostPageSize = 10
	maxPostPageSize     = 50
)

type PostHandler struct {
	postService service.PostService
}

func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// bindWithImages binds a JSON body, or a multipart form plus its "images"
// files.
func bindWithImages(c *gin.Context, req interface{}) ([]*util.FileData, bool) {
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(req); err != nil {
			util.BadRequest(c, util.ValidationMessage(err))
			return nil, false
		}
		return nil, true
	}

	if err := c.ShouldBind(req); err != nil {
		util.BadRequest(c, util.ValidationMessage(err))
		return nil, false
	}
	files, err := formFiles(c, "images")
	if err != nil {
		util.BadRequest(c, "Invalid multipart form")
		return nil, false
	}
	return files, true
}

func postPage(c *gin.Context) util.Page {
	return util.NewPage(
		util.QueryInt(c, "page", 1, 1, 0),
		util.QueryInt(c, "limit", defaultPostPageSize, 1, maxPostPageSize),
		defaultPostPageSize, maxPostPageSize,
	)
}

func postPagination(page util.Page, total int64) gin.H {
	return gin.H{
		"total": total,
		"page":  page.Page,
		"limit": page.PageSize,
		"pages": page.Pages(total),
	}
}

// CreatePost handles post creation
// POST /api/v1/posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req service.CreatePostRequest
	files, ok := bindWithImages(c, &req)
	if !ok {
		return
	}

	post, err := h.postService.CreatePost(c.Request.Context(), middleware.CurrentUserID(c), req, files)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Post created successfully", post)
}

// GetPosts lists posts, newest first
// GET /api/v1/posts
func (h *PostHandler) GetPosts(c *gin.Context) {
	page := postPage(c)
	posts, total, err := h.postService.ListPosts(c.Request.Context(), middleware.CurrentUserID(c), c.Query("category"), page)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Posts retrieved successfully", gin.H{
		"list":       posts,
		"pagination": postPagination(page, total),
	})
}

// GetUserPosts GET /api/v1/posts/user/:userId
func (h *PostHandler) GetUserPosts(c *gin.Context) {
	userID, ok := util.ParseIDParam(c, "userId")
	if !ok {
		util.BadRequest(c, "Invalid user ID")
		return
	}

	page := postPage(c)
	posts, total, err := h.postService.ListUserPosts(c.Request.Context(), userID, page)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User posts retrieved successfully", gin.H{
		"posts":      posts,
		"pagination": postPagination(page, total),
	})
}

// GetPost handles getting a post by ID. Every call counts a view.
// GET /api/v1/posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		util.BadRequest(c, "Invalid post ID")
		return
	}

	post, err := h.postService.GetPostByID(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Post retrieved successfully", post)
}

// UpdatePost PUT /api/v1/posts/:id
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		util.BadRequest(c, "Invalid post ID")
		return
	}

	var req service.UpdatePostRequest
	files, ok := bindWithImages(c, &req)
	if !ok {
		return
	}

	post, err := h.postService.UpdatePost(c.Request.Context(), middleware.CurrentUserID(c), id, req, files)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Post updated successfully", post)
}

// DeletePost DELETE /api/v1/posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		util.BadRequest(c, "Invalid post ID")
		return
	}

	if err := h.postService.DeletePost(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Post deleted successfully", gin.H{"id": id})
}

// GetCategories GET /api/v1/posts/categories/list
func (h *PostHandler) GetCategories(c *gin.Context) {
	util.SuccessResponse(c, http.StatusOK, "Post categories retrieved successfully", h.postService.Categories())
}
