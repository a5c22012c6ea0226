package middleware

import (
	"context"
	"strings"

	"communityapp/internal/model"
	"communityapp/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID = "userID"
	ContextUser   = "user"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Auth rejects requests without a valid token for an existing user and
// stores the user on the context.
func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			util.Unauthorized(c, "Not authorized, no token")
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if model.IsKind(err, model.KindAuthentication) {
				util.Unauthorized(c, "Not authorized, token failed")
				return
			}
			util.HandleError(c, err)
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth attaches the user when the token resolves and otherwise lets
// the request through anonymously.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := BearerToken(c); ok {
			if user, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

// Admin must run after Auth.
func Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			util.Unauthorized(c, "Not authorized, no token")
			return
		}
		if !user.IsAdmin() {
			util.Forbidden(c, "无权限执行此操作")
			return
		}
		c.Next()
	}
}

func setUser(c *gin.Context, user *model.User) {
	c.Set(ContextUserID, user.ID)
	c.Set(ContextUser, user)
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}

// CurrentUserID returns the authenticated user id, or 0 for anonymous requests.
func CurrentUserID(c *gin.Context) uint {
	if id, ok := c.Get(ContextUserID); ok {
		if uid, ok := id.(uint); ok {
			return uid
		}
	}
	return 0
}
