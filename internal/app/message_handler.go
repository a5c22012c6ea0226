package app

import (
	"net/http"

	"communityapp/internal/middleware"
	"communityapp/internal/service"
	"communityapp/internal/util"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// SendMessage sends a direct message and pushes it to the receiver
// POST /api/v1/messages
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, "接收者和消息内容不能为空")
		return
	}

	message, err := h.messageService.SendMessage(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "消息发送成功", message)
}

// GetConversation returns messages with :userId, oldest first
// GET /api/v1/messages/chat/:userId
func (h *MessageHandler) GetConversation(c *gin.Context) {
	peerID, ok := util.ParseIDParam(c, "userId")
	if !ok {
		util.BadRequest(c, "无效的用户ID")
		return
	}

	offset := util.QueryInt(c, "offset", 0, 0, 0)
	messages, err := h.messageService.GetConversation(c.Request.Context(), middleware.CurrentUserID(c), peerID, offset)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "聊天记录获取成功", messages)
}

// GetConversations GET /api/v1/messages/list
func (h *MessageHandler) GetConversations(c *gin.Context) {
	conversations, err := h.messageService.ListConversations(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "消息列表获取成功", conversations)
}

// GetUnreadCount GET /api/v1/messages/unread/count
func (h *MessageHandler) GetUnreadCount(c *gin.Context) {
	count, err := h.messageService.UnreadCount(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "未读消息数量获取成功", gin.H{"unreadCount": count})
}

// MarkAsRead PUT /api/v1/messages/:messageId/read
func (h *MessageHandler) MarkAsRead(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "messageId")
	if !ok {
		util.BadRequest(c, "无效的消息ID")
		return
	}

	if err := h.messageService.MarkAsRead(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "消息已标记为已读", nil)
}

// DeleteMessage DELETE /api/v1/messages/:messageId
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "messageId")
	if !ok {
		util.BadRequest(c, "无效的消息ID")
		return
	}

	if err := h.messageService.DeleteMessage(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "消息已删除", nil)
}
