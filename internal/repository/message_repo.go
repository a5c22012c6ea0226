package repository

import (
	"context"

	"communityapp/internal/model"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	FindByID(ctx context.Context, id uint) (*model.Message, error)
	GetConversation(ctx context.Context, userID, peerID uint, limit, offset int) ([]model.Message, error)
	MarkConversationRead(ctx context.Context, receiverID, senderID uint) error
	MarkRead(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	CountUnread(ctx context.Context, receiverID uint) (int64, error)
	ListConversations(ctx context.Context, userID uint) ([]model.Conversation, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("Sender").Preload("Receiver").First(msg, msg.ID).Error
}

func (r *messageRepository) FindByID(ctx context.Context, id uint) (*model.Message, error) {
	var msg model.Message
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetConversation returns messages between two users oldest first.
func (r *messageRepository) GetConversation(ctx context.Context, userID, peerID uint, limit, offset int) ([]model.Message, error) {
	messages := []model.Message{}
	err := r.db.WithContext(ctx).Preload("Sender").Preload("Receiver").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, peerID, peerID, userID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) MarkConversationRead(ctx context.Context, receiverID, senderID uint) error {
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", receiverID, senderID, false).
		Update("is_read", true).Error
}

func (r *messageRepository) MarkRead(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.Message{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Message{}, id).Error
}

func (r *messageRepository) CountUnread(ctx context.Context, receiverID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Count(&count).Error
	return count, err
}

// ListConversations returns one entry per peer, most recent conversation first.
func (r *messageRepository) ListConversations(ctx context.Context, userID uint) ([]model.Conversation, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).Preload("Sender").Preload("Receiver").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	conversations := []model.Conversation{}
	index := make(map[uint]int)
	for i := range messages {
		msg := &messages[i]

		peerID, peer := msg.ReceiverID, msg.Receiver
		if msg.SenderID != userID {
			peerID, peer = msg.SenderID, msg.Sender
		}

		pos, seen := index[peerID]
		if !seen {
			index[peerID] = len(conversations)
			conversations = append(conversations, model.Conversation{User: peer, LastMessage: msg})
			pos = len(conversations) - 1
		}
		if msg.ReceiverID == userID && !msg.Read {
			conversations[pos].UnreadCount++
		}
	}
	return conversations, nil
}
