package app

import (
	"net/http"

	"communityapp/internal/middleware"
	"communityapp/internal/model"
	"communityapp/internal/service"
	"communityapp/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func authResponse(user *model.User, token string) gin.H {
	return gin.H{
		"id":              user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"avatar":          user.Avatar,
		"bio":             user.Bio,
		"role":            user.Role,
		"followers_count": user.FollowersCount,
		"following_count": user.FollowingCount,
		"token":           token,
	}
}

// Register handles user registration
// POST /api/v1/users/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ValidationMessage(err))
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "User registered successfully", authResponse(result.User, result.Token))
}

// Login handles user login
// POST /api/v1/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ValidationMessage(err))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Login successful", authResponse(result.User, result.Token))
}

// ChangePassword handles password change for the current user
// PUT /api/v1/users/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ValidationMessage(err))
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), middleware.CurrentUserID(c), req); err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Password changed successfully", nil)
}
