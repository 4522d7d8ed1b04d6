package repository

import (
	"context"

	"fedforum/internal/domain/community/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityRepository interface {
	GetByID(ctx context.Context, id string) (*model.Community, error)
	GetByActorURI(ctx context.Context, uri string) (*model.Community, error)
	UpsertRemote(ctx context.Context, community *model.Community) error
	IsBanned(ctx context.Context, personID, communityID string) (bool, error)
}

type communityRepository struct {
	db *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) GetByID(ctx context.Context, id string) (*model.Community, error) {
	var community model.Community
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&community).Error; err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *communityRepository) GetByActorURI(ctx context.Context, uri string) (*model.Community, error) {
	var community model.Community
	if err := r.db.WithContext(ctx).Where("actor_uri = ?", uri).First(&community).Error; err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *communityRepository) UpsertRemote(ctx context.Context, community *model.Community) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor_uri"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "title", "inbox_uri", "updated_at"}),
	}).Create(community).Error
}

func (r *communityRepository) IsBanned(ctx context.Context, personID, communityID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CommunityPersonBan{}).
		Where("person_id = ? AND community_id = ?", personID, communityID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
