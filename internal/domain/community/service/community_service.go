package service

import (
	"context"
	"errors"

	"fedforum/internal/domain/community/model"
	"fedforum/internal/domain/community/repository"
)

var (
	// ErrActorBanned means the person is banned from the community.
	ErrActorBanned = errors.New("actor is banned from the community")
	// ErrCommunityUnavailable means the community is deleted or removed.
	ErrCommunityUnavailable = errors.New("community is deleted or removed")
)

// CommunityService exposes the authorization checks other domains run
// before mutating community-owned content.
type CommunityService interface {
	GetByID(ctx context.Context, id string) (*model.Community, error)
	// CheckBan fails with ErrActorBanned when the person may not act in
	// the community.
	CheckBan(ctx context.Context, personID, communityID string) error
	// CheckDeletedOrRemoved fails with ErrCommunityUnavailable when the
	// community no longer accepts activity.
	CheckDeletedOrRemoved(ctx context.Context, communityID string) error
}

type communityService struct {
	repo repository.CommunityRepository
}

func NewCommunityService(repo repository.CommunityRepository) CommunityService {
	return &communityService{repo: repo}
}

func (s *communityService) GetByID(ctx context.Context, id string) (*model.Community, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *communityService) CheckBan(ctx context.Context, personID, communityID string) error {
	banned, err := s.repo.IsBanned(ctx, personID, communityID)
	if err != nil {
		return err
	}
	if banned {
		return ErrActorBanned
	}
	return nil
}

func (s *communityService) CheckDeletedOrRemoved(ctx context.Context, communityID string) error {
	community, err := s.repo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if community.Deleted || community.Removed {
		return ErrCommunityUnavailable
	}
	return nil
}
