package model

import (
	"fedforum/pkg/model"
)

// Community is a federated actor of kind Group that owns posts.
type Community struct {
	model.BaseModel
	Name  string `gorm:"size:255;not null" json:"name"`
	Title string `gorm:"size:255" json:"title"`
	// ActorURI is the canonical federation identity.
	ActorURI string `gorm:"size:255;not null;uniqueIndex" json:"actorUri"`
	InboxURI string `gorm:"size:255" json:"inboxUri"`
	Local    bool   `gorm:"not null;default:false" json:"local"`
	// Deleted is set by the community's own moderators, Removed by site admins.
	Deleted bool `gorm:"not null;default:false" json:"deleted"`
	Removed bool `gorm:"not null;default:false" json:"removed"`
}

func (Community) TableName() string {
	return "community"
}

// CommunityPersonBan records a moderator ban of a person from a community.
type CommunityPersonBan struct {
	model.BaseModel
	CommunityID string `gorm:"type:uuid;not null;uniqueIndex:idx_community_person_ban" json:"communityId"`
	PersonID    string `gorm:"type:uuid;not null;uniqueIndex:idx_community_person_ban" json:"personId"`
}

func (CommunityPersonBan) TableName() string {
	return "community_person_ban"
}
