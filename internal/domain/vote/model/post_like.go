package model

import (
	"time"
)

// PostLike is one person's vote on one post. At most one row exists per
// (post, person) pair; a neutral vote is the absence of a row.
type PostLike struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PostID   string `gorm:"type:uuid;not null;uniqueIndex:idx_post_like" json:"postId"`
	PersonID string `gorm:"type:uuid;not null;uniqueIndex:idx_post_like" json:"personId"`
	// Score is 1 or -1; zero is never stored.
	Score     int16     `gorm:"not null" json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

func (PostLike) TableName() string {
	return "post_like"
}
