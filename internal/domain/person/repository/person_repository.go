package repository

import (
	"context"

	"fedforum/internal/domain/person/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PersonRepository interface {
	GetByID(ctx context.Context, id string) (*model.Person, error)
	GetByActorURI(ctx context.Context, uri string) (*model.Person, error)
	// UpsertRemote stores a freshly dereferenced remote actor, keyed by
	// its canonical actor URI.
	UpsertRemote(ctx context.Context, person *model.Person) error
}

type personRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) PersonRepository {
	return &personRepository{db: db}
}

func (r *personRepository) GetByID(ctx context.Context, id string) (*model.Person, error) {
	var person model.Person
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *personRepository) GetByActorURI(ctx context.Context, uri string) (*model.Person, error) {
	var person model.Person
	if err := r.db.WithContext(ctx).Where("actor_uri = ?", uri).First(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *personRepository) UpsertRemote(ctx context.Context, person *model.Person) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor_uri"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "inbox_uri", "updated_at"}),
	}).Create(person).Error
}
