package service

import (
	"context"
	"fmt"
	"strings"

	"communityapp/internal/model"
	"communityapp/internal/repository"
)

const conversationPageSize = 50

type SendMessageRequest struct {
	ReceiverID uint   `json:"receiverId" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

type MessageService interface {
	SendMessage(ctx context.Context, senderID uint, req SendMessageRequest) (*model.Message, error)
	GetConversation(ctx context.Context, userID, peerID uint, offset int) ([]model.Message, error)
	ListConversations(ctx context.Context, userID uint) ([]model.Conversation, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkAsRead(ctx context.Context, userID, messageID uint) error
	DeleteMessage(ctx context.Context, userID, messageID uint) error
	SetRealtime(rt Realtime)
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    NotificationService
	realtime    Realtime
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	notifier NotificationService,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

func (s *messageService) SetRealtime(rt Realtime) {
	s.realtime = rt
}

func (s *messageService) SendMessage(ctx context.Context, senderID uint, req SendMessageRequest) (*model.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.NewValidationError("消息内容不能为空")
	}

	exists, err := s.userRepo.Exists(ctx, req.ReceiverID)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	if !exists {
		return nil, model.NewNotFoundError("接收者不存在")
	}
	if senderID == req.ReceiverID {
		return nil, model.NewValidationError("不能给自己发送消息")
	}

	msg := &model.Message{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Content:    content,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, model.NewInternalError(err)
	}

	if s.realtime != nil {
		s.realtime.SendToUser(msg.ReceiverID, EventNewMessage, msg)
	}

	sender := "Someone"
	if msg.Sender != nil {
		sender = msg.Sender.Username
	}
	notify(ctx, s.notifier, &model.Notification{
		UserID:   msg.ReceiverID,
		SenderID: uintPtr(senderID),
		Type:     model.NotificationTypeNewMessage,
		Title:    "New message",
		Message:  fmt.Sprintf("%s sent you a message", sender),
		TargetID: uintPtr(msg.ID),
	})

	return msg, nil
}

// GetConversation returns up to 50 messages oldest first and marks the peer's
// messages to userID as read.
func (s *messageService) GetConversation(ctx context.Context, userID, peerID uint, offset int) ([]model.Message, error) {
	exists, err := s.userRepo.Exists(ctx, peerID)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	if !exists {
		return nil, model.NewNotFoundError("用户不存在")
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := s.messageRepo.GetConversation(ctx, userID, peerID, conversationPageSize, offset)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	if err := s.messageRepo.MarkConversationRead(ctx, userID, peerID); err != nil {
		return nil, model.NewInternalError(err)
	}
	return messages, nil
}

func (s *messageService) ListConversations(ctx context.Context, userID uint) ([]model.Conversation, error) {
	convs, err := s.messageRepo.ListConversations(ctx, userID)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	return convs, nil
}

func (s *messageService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.messageRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, model.NewInternalError(err)
	}
	return count, nil
}

func (s *messageService) MarkAsRead(ctx context.Context, userID, messageID uint) error {
	msg, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return lookupErr(err, "消息不存在")
	}
	if msg.ReceiverID != userID {
		return model.NewForbiddenError("无权标记此消息")
	}
	if err := s.messageRepo.MarkRead(ctx, messageID); err != nil {
		return model.NewInternalError(err)
	}
	return nil
}

func (s *messageService) DeleteMessage(ctx context.Context, userID, messageID uint) error {
	msg, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return lookupErr(err, "消息不存在")
	}
	if msg.SenderID != userID && msg.ReceiverID != userID {
		return model.NewForbiddenError("无权删除此消息")
	}
	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return lookupErr(err, "消息不存在")
	}
	return nil
}
