package model

import (
	"fmt"
	"time"
)

// Like targets are polymorphic, so there is no foreign key on target_id.
type Like struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_user_target" json:"user_id"`
	TargetID   uint       `gorm:"not null;uniqueIndex:idx_user_target;index:idx_target" json:"target_id"`
	TargetType LikeTarget `gorm:"type:varchar(20);not null;uniqueIndex:idx_user_target;index:idx_target" json:"target_type"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (Like) TableName() string {
	return "likes"
}

// LikeTarget selects which aggregate owns the likes_count a like drives.
type LikeTarget string

const (
	TargetTypePost    LikeTarget = "post"
	TargetTypeComment LikeTarget = "comment"
)

func ParseLikeTarget(s string) (LikeTarget, error) {
	switch t := LikeTarget(s); t {
	case TargetTypePost, TargetTypeComment:
		return t, nil
	default:
		return "", fmt.Errorf("unknown like target type %q", s)
	}
}

// Table returns the table holding the target's likes_count column.
func (t LikeTarget) Table() string {
	switch t {
	case TargetTypePost:
		return Post{}.TableName()
	case TargetTypeComment:
		return Comment{}.TableName()
	}
	return ""
}

// Label is the user-facing name used in not-found messages.
func (t LikeTarget) Label() string {
	switch t {
	case TargetTypePost:
		return "Post"
	case TargetTypeComment:
		return "Comment"
	}
	return "Target"
}
