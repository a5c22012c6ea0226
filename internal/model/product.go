package model

import "time"

const (
	DefaultProductCategory = "闲置"
	DefaultProductStatus   = "九成新"
	MinProductPrice        = 0.01
)

var (
	ProductCategories = []string{"闲置", "电子产品", "家居用品", "服装配饰", "书籍音像", "运动户外", "其他"}
	ProductStatuses   = []string{"全新", "九成新", "八成新", "七成新", "六成新及以下"}
)

// Product is a second-hand listing.
type Product struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"type:varchar(100);not null" json:"title"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Price       float64      `gorm:"type:decimal(10,2);not null" json:"price"`
	AuthorID    uint         `gorm:"not null;index" json:"author_id"`
	Images      ImageList    `json:"images"`
	Category    string       `gorm:"type:varchar(20);not null;default:'闲置';index" json:"category"`
	Status      string       `gorm:"type:varchar(20);not null;default:'九成新'" json:"status"`
	IsSold      bool         `gorm:"not null;default:false;index" json:"is_sold"`
	Views       int          `gorm:"not null;default:0" json:"views"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Author      *UserSummary `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

func IsValidProductCategory(c string) bool {
	return contains(ProductCategories, c)
}

func IsValidProductStatus(s string) bool {
	return contains(ProductStatuses, s)
}
