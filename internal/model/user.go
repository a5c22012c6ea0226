package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	DefaultAvatar = "https://api.dicebear.com/7.x/avataaars/svg?seed=default"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"type:varchar(255);not null" json:"-"`
	Avatar         string    `gorm:"type:varchar(500)" json:"avatar"`
	Bio            string    `gorm:"type:varchar(200)" json:"bio"`
	Role           string    `gorm:"type:varchar(10);not null;default:'user'" json:"role"`
	FollowersCount int       `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount int       `gorm:"not null;default:0" json:"following_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserSummary is the public author view embedded in posts, comments and lists.
type UserSummary struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

func (UserSummary) TableName() string {
	return "users"
}
