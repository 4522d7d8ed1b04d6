package model

import (
	"fedforum/pkg/model"
)

// Person is a federated actor of kind Person, local or remote.
type Person struct {
	model.BaseModel
	Name string `gorm:"size:255;not null" json:"name"`
	// ActorURI is the canonical federation identity.
	ActorURI string `gorm:"size:255;not null;uniqueIndex" json:"actorUri"`
	InboxURI string `gorm:"size:255" json:"inboxUri"`
	Local    bool   `gorm:"not null;default:false" json:"local"`
	Admin    bool   `gorm:"not null;default:false" json:"admin"`
	Banned   bool   `gorm:"not null;default:false" json:"banned"`
}

func (Person) TableName() string {
	return "person"
}
