package model

import (
	"time"

	"fedforum/pkg/model"
)

// Post is a link-aggregation post, local or federated in.
type Post struct {
	model.BaseModel
	// ApID is the object's federation identity.
	ApID        string  `gorm:"size:255;not null;uniqueIndex" json:"apId"`
	Name        string  `gorm:"size:255;not null" json:"name"`
	URL         *string `gorm:"size:2048" json:"url"`
	Body        *string `gorm:"type:text" json:"body"`
	CreatorID   string  `gorm:"type:uuid;not null;index" json:"creatorId"`
	CommunityID string  `gorm:"type:uuid;not null;index" json:"communityId"`
	// Locked posts accept no new comments; only moderators may change it.
	Locked       bool       `gorm:"not null;default:false" json:"locked"`
	NSFW         bool       `gorm:"not null;default:false" json:"nsfw"`
	LanguageCode *string    `gorm:"size:20" json:"languageCode"`
	Published    *time.Time `json:"published"`
	Edited       *time.Time `json:"edited"`
	Local        bool       `gorm:"not null;default:false" json:"local"`
}

func (Post) TableName() string {
	return "post"
}

// PostRead is the per-person read marker, written as idempotent bookkeeping.
type PostRead struct {
	model.BaseModel
	PostID   string `gorm:"type:uuid;not null;uniqueIndex:idx_post_read" json:"postId"`
	PersonID string `gorm:"type:uuid;not null;uniqueIndex:idx_post_read" json:"personId"`
}

func (PostRead) TableName() string {
	return "post_read"
}
