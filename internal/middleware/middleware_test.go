package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"communityapp/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth map[string]*model.User

func (s stubAuth) Authenticate(_ context.Context, token string) (*model.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, model.NewAuthenticationError("Not authorized, token failed")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Recovery())
	chain := append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c)})
	})
	r.GET("/", chain...)
	return r
}

func do(r http.Handler, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestAuth(t *testing.T) {
	auth := stubAuth{"good": {ID: 3, Role: model.RoleUser}}
	r := newEngine(Auth(auth))

	w, body := do(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, no token", body["message"])

	w, _ = do(r, "Token good")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = do(r, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, token failed", body["message"])
	assert.Equal(t, float64(401), body["code"])

	w, body = do(r, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), body["user_id"])
}

func TestOptionalAuth(t *testing.T) {
	r := newEngine(OptionalAuth(stubAuth{"good": {ID: 3}}))

	w, body := do(r, "Bearer bad")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), body["user_id"])

	_, body = do(r, "Bearer good")
	assert.Equal(t, float64(3), body["user_id"])
}

func TestAdmin(t *testing.T) {
	auth := stubAuth{
		"user":  {ID: 1, Role: model.RoleUser},
		"admin": {ID: 2, Role: model.RoleAdmin},
	}
	r := newEngine(Auth(auth), Admin())

	w, body := do(r, "Bearer user")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "无权限执行此操作", body["message"])

	w, _ = do(r, "Bearer admin")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("1.1.1.1"))

	now = now.Add(limiterIdleTTL + time.Second)
	rl.Allow("3.3.3.3")
	rl.mu.Lock()
	_, kept := rl.visitors["1.1.1.1"]
	rl.mu.Unlock()
	assert.False(t, kept)
}

func TestRateLimiterMiddleware(t *testing.T) {
	r := newEngine(NewRateLimiter(1, 1).Middleware())

	w, _ := do(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, body := do(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, float64(429), body["code"])
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(), Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w, body := do(r, "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server error", body["message"])
}
