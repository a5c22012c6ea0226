package app

import (
	"net/http"

	"communityapp/internal/middleware"
	"communityapp/internal/service"
	"communityapp/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	defaultNotificationPageSize = 20
	maxNotificationPageSize     = 100
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GetNotifications gets notifications for the current user
// GET /api/v1/notifications
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	page := util.NewPage(
		util.QueryInt(c, "page", 1, 1, 0),
		util.QueryInt(c, "limit", defaultNotificationPageSize, 1, maxNotificationPageSize),
		defaultNotificationPageSize, maxNotificationPageSize,
	)

	notifications, err := h.notificationService.List(c.Request.Context(), userID, page)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	unread, err := h.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Notifications retrieved successfully", gin.H{
		"list":        notifications,
		"unreadCount": unread,
	})
}

// GetUnreadCount GET /api/v1/notifications/unread/count
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	count, err := h.notificationService.UnreadCount(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Unread count retrieved successfully", gin.H{"unreadCount": count})
}

// MarkAsRead PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		util.BadRequest(c, "Invalid notification ID")
		return
	}

	if err := h.notificationService.MarkAsRead(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Notification marked as read", nil)
}

// MarkAllAsRead PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if err := h.notificationService.MarkAllAsRead(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "All notifications marked as read", nil)
}
