package model

import "time"

// Message is a direct message between two users.
type Message struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	SenderID   uint         `gorm:"not null;index:idx_message_pair" json:"sender_id"`
	ReceiverID uint         `gorm:"not null;index:idx_message_pair;index" json:"receiver_id"`
	Content    string       `gorm:"type:text;not null" json:"content"`
	Read       bool         `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	Sender     *UserSummary `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver   *UserSummary `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}

// Conversation is one row of the inbox: the peer, the latest message and
// how many of the peer's messages are still unread.
type Conversation struct {
	User        *UserSummary `json:"user"`
	LastMessage *Message     `json:"lastMessage"`
	UnreadCount int64        `json:"unreadCount"`
}
