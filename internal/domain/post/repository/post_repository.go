package repository

import (
	"context"

	"fedforum/internal/domain/post/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository interface {
	GetByID(ctx context.Context, id string) (*model.Post, error)
	GetByApID(ctx context.Context, apID string) (*model.Post, error)
	// Upsert inserts or refreshes a post keyed by its federation identity.
	Upsert(ctx context.Context, post *model.Post) error
	// MarkRead records that the person has seen the post; repeat calls
	// are no-ops.
	MarkRead(ctx context.Context, personID, postID string) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByApID(ctx context.Context, apID string) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Where("ap_id = ?", apID).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Upsert(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ap_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "url", "body", "locked", "nsfw", "language_code", "edited", "updated_at",
		}),
	}).Create(post).Error
}

func (r *postRepository) MarkRead(ctx context.Context, personID, postID string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		DoNothing: true,
	}).Create(&model.PostRead{PostID: postID, PersonID: personID}).Error
}
