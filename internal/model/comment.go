package model

import "time"

// Comment attaches to exactly one of a post or a product. Replies point at a
// top-level comment of the same resource, so trees are two levels deep.
type Comment struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	Content         string       `gorm:"type:varchar(500);not null" json:"content"`
	AuthorID        uint         `gorm:"not null;index" json:"author_id"`
	PostID          *uint        `gorm:"index" json:"post_id,omitempty"`
	ProductID       *uint        `gorm:"index" json:"product_id,omitempty"`
	ParentCommentID *uint        `gorm:"index" json:"parent_comment_id,omitempty"`
	LikesCount      int          `gorm:"not null;default:0" json:"likes_count"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	Author          *UserSummary `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Replies         []Comment    `gorm:"foreignKey:ParentCommentID" json:"replies,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) IsTopLevel() bool {
	return c.ParentCommentID == nil
}

// Resource identifies what a comment is attached to.
type Resource struct {
	Kind string
	ID   uint
}

const (
	ResourcePost    = "post"
	ResourceProduct = "product"
)

func (c *Comment) Resource() Resource {
	if c.PostID != nil {
		return Resource{Kind: ResourcePost, ID: *c.PostID}
	}
	if c.ProductID != nil {
		return Resource{Kind: ResourceProduct, ID: *c.ProductID}
	}
	return Resource{}
}
