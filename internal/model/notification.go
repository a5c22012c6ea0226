package model

import "time"

// Notification is a persisted social event shown in a user's inbox.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	SenderID  *uint     `gorm:"index" json:"sender_id,omitempty"`
	Type      string    `gorm:"type:varchar(50);not null" json:"type"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	TargetID  *uint     `json:"target_id,omitempty"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

const (
	NotificationTypeNewFollower  = "new_follower"
	NotificationTypePostLiked    = "post_liked"
	NotificationTypeCommentLiked = "comment_liked"
	NotificationTypePostComment  = "post_comment"
	NotificationTypeCommentReply = "comment_reply"
	NotificationTypeNewMessage   = "new_message"
)
