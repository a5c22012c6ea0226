package model

import "time"

const DefaultPostCategory = "生活分享"

var PostCategories = []string{"生活分享", "求助", "通知", "活动", "其他"}

type Post struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	Title      string       `gorm:"type:varchar(100);not null" json:"title"`
	Content    string       `gorm:"type:text;not null" json:"content"`
	AuthorID   uint         `gorm:"not null;index" json:"author_id"`
	Images     ImageList    `json:"images"`
	LikesCount int          `gorm:"not null;default:0" json:"likes_count"`
	Category   string       `gorm:"type:varchar(20);not null;default:'生活分享';index" json:"category"`
	Views      int          `gorm:"not null;default:0" json:"views"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	Author     *UserSummary `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	// Per-viewer flag, never stored.
	IsFavorite bool `gorm:"-" json:"isFavorite"`
}

func (Post) TableName() string {
	return "posts"
}

func IsValidPostCategory(c string) bool {
	return contains(PostCategories, c)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
