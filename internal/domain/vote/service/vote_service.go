package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	communityservice "fedforum/internal/domain/community/service"
	personrepository "fedforum/internal/domain/person/repository"
	postrepository "fedforum/internal/domain/post/repository"
	"fedforum/internal/domain/vote/repository"
	"fedforum/internal/pkg/config"
	"fedforum/internal/pkg/worker"
	"fedforum/pkg/metrics"

	"gorm.io/gorm"
)

var (
	// ErrDownvotesDisabled means the instance does not accept score -1.
	ErrDownvotesDisabled = errors.New("downvotes are disabled on this instance")
	// ErrPostNotFound means the vote target does not exist.
	ErrPostNotFound = errors.New("post not found")
	// ErrVoteWriteFailed wraps a storage failure during the vote replace.
	ErrVoteWriteFailed = errors.New("could not write vote")
)

// Submitter is the outbound hand-off the engine emits propagation events
// onto. Satisfied by worker.DeliveryQueue.
type Submitter interface {
	Submit(event worker.VoteEvent)
}

// VoteService applies like/dislike submissions to posts.
type VoteService interface {
	// ApplyVote applies the requested score for the person on the post.
	// A score of 0 retracts; 1 and -1 vote; anything else behaves as a
	// retraction but is still propagated with its original value.
	ApplyVote(ctx context.Context, personID, postID string, score int16, site config.SiteConfig) error
}

type voteService struct {
	votes       repository.VoteRepository
	posts       postrepository.PostRepository
	persons     personrepository.PersonRepository
	communities communityservice.CommunityService
	delivery    Submitter
	collector   *metrics.Collector
}

func NewVoteService(
	votes repository.VoteRepository,
	posts postrepository.PostRepository,
	persons personrepository.PersonRepository,
	communities communityservice.CommunityService,
	delivery Submitter,
	collector *metrics.Collector,
) VoteService {
	return &voteService{
		votes:       votes,
		posts:       posts,
		persons:     persons,
		communities: communities,
		delivery:    delivery,
		collector:   collector,
	}
}

func (s *voteService) ApplyVote(ctx context.Context, personID, postID string, score int16, site config.SiteConfig) error {
	// Don't do a downvote if the site has downvotes disabled.
	if score == -1 && !site.EnableDownvotes {
		return ErrDownvotesDisabled
	}

	person, err := s.persons.GetByID(ctx, personID)
	if err != nil {
		return err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if err := s.communities.CheckBan(ctx, person.ID, post.CommunityID); err != nil {
		return err
	}
	if err := s.communities.CheckDeletedOrRemoved(ctx, post.CommunityID); err != nil {
		return err
	}

	// Remove any existing vote and only store a new row for a recognized
	// direction; any other value reduces to a retraction.
	insert := score == 1 || score == -1
	if err := s.votes.Replace(ctx, post.ID, person.ID, score, insert); err != nil {
		return fmt.Errorf("%w: %v", ErrVoteWriteFailed, err)
	}

	if err := s.posts.MarkRead(ctx, person.ID, post.ID); err != nil {
		return err
	}

	community, err := s.communities.GetByID(ctx, post.CommunityID)
	if err != nil {
		return err
	}

	s.collector.VoteApplied(strconv.Itoa(int(score)))

	// Fire-and-forget propagation with the originally requested score.
	s.delivery.Submit(worker.VoteEvent{
		ObjectURI: post.ApID,
		Actor: worker.ActorRef{
			URI:   person.ActorURI,
			Inbox: person.InboxURI,
		},
		Community: worker.CommunityRef{
			URI:   community.ActorURI,
			Inbox: community.InboxURI,
			Local: community.Local,
		},
		Score: score,
	})

	return nil
}
