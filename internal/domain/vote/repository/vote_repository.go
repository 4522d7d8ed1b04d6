package repository

import (
	"context"

	"fedforum/internal/domain/vote/model"

	"gorm.io/gorm"
)

type VoteRepository interface {
	// Replace removes any existing vote row for (post, person) and, when
	// insert is true, writes a new row with the given score. Both steps
	// run in one transaction so concurrent submissions by the same person
	// cannot leave two surviving rows or resurrect a retracted vote.
	Replace(ctx context.Context, postID, personID string, score int16, insert bool) error
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Replace(ctx context.Context, postID, personID string, score int16, insert bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ? AND person_id = ?", postID, personID).
			Delete(&model.PostLike{}).Error; err != nil {
			return err
		}
		if insert {
			return tx.Create(&model.PostLike{
				PostID:   postID,
				PersonID: personID,
				Score:    score,
			}).Error
		}
		return nil
	})
}
