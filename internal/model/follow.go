package model

import "time"

type Follow struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	FollowerID  uint         `gorm:"not null;uniqueIndex:idx_follower_following" json:"follower_id"`
	FollowingID uint         `gorm:"not null;uniqueIndex:idx_follower_following;index" json:"following_id"`
	CreatedAt   time.Time    `gorm:"index" json:"created_at"`
	Follower    *UserSummary `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following   *UserSummary `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
}

func (Follow) TableName() string {
	return "follows"
}
