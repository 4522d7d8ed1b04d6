package service

import (
	"context"
	"testing"

	communitymodel "fedforum/internal/domain/community/model"
	communityservice "fedforum/internal/domain/community/service"
	personmodel "fedforum/internal/domain/person/model"
	postmodel "fedforum/internal/domain/post/model"
	"fedforum/internal/pkg/config"
	"fedforum/internal/pkg/worker"
	"fedforum/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockVoteRepository is a mock of VoteRepository
type MockVoteRepository struct {
	mock.Mock
}

func (m *MockVoteRepository) Replace(ctx context.Context, postID, personID string, score int16, insert bool) error {
	args := m.Called(ctx, postID, personID, score, insert)
	return args.Error(0)
}

// MockPostRepository is a mock of PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*postmodel.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*postmodel.Post), args.Error(1)
}

func (m *MockPostRepository) GetByApID(ctx context.Context, apID string) (*postmodel.Post, error) {
	args := m.Called(ctx, apID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*postmodel.Post), args.Error(1)
}

func (m *MockPostRepository) Upsert(ctx context.Context, post *postmodel.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) MarkRead(ctx context.Context, personID, postID string) error {
	args := m.Called(ctx, personID, postID)
	return args.Error(0)
}

// MockPersonRepository is a mock of PersonRepository
type MockPersonRepository struct {
	mock.Mock
}

func (m *MockPersonRepository) GetByID(ctx context.Context, id string) (*personmodel.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*personmodel.Person), args.Error(1)
}

func (m *MockPersonRepository) GetByActorURI(ctx context.Context, uri string) (*personmodel.Person, error) {
	args := m.Called(ctx, uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*personmodel.Person), args.Error(1)
}

func (m *MockPersonRepository) UpsertRemote(ctx context.Context, person *personmodel.Person) error {
	args := m.Called(ctx, person)
	return args.Error(0)
}

// MockCommunityService is a mock of CommunityService
type MockCommunityService struct {
	mock.Mock
}

func (m *MockCommunityService) GetByID(ctx context.Context, id string) (*communitymodel.Community, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*communitymodel.Community), args.Error(1)
}

func (m *MockCommunityService) CheckBan(ctx context.Context, personID, communityID string) error {
	args := m.Called(ctx, personID, communityID)
	return args.Error(0)
}

func (m *MockCommunityService) CheckDeletedOrRemoved(ctx context.Context, communityID string) error {
	args := m.Called(ctx, communityID)
	return args.Error(0)
}

// captureSubmitter records emitted propagation events.
type captureSubmitter struct {
	events []worker.VoteEvent
}

func (c *captureSubmitter) Submit(event worker.VoteEvent) {
	c.events = append(c.events, event)
}

type voteFixture struct {
	votes       *MockVoteRepository
	posts       *MockPostRepository
	persons     *MockPersonRepository
	communities *MockCommunityService
	delivery    *captureSubmitter
	service     VoteService
}

var testCollector = metrics.NewCollector()

func newVoteFixture() *voteFixture {
	f := &voteFixture{
		votes:       new(MockVoteRepository),
		posts:       new(MockPostRepository),
		persons:     new(MockPersonRepository),
		communities: new(MockCommunityService),
		delivery:    &captureSubmitter{},
	}
	f.service = NewVoteService(f.votes, f.posts, f.persons, f.communities, f.delivery, testCollector)
	return f
}

func (f *voteFixture) expectHappyReads() (*personmodel.Person, *postmodel.Post, *communitymodel.Community) {
	person := &personmodel.Person{
		ActorURI: "https://local.example/u/alice",
		InboxURI: "https://local.example/u/alice/inbox",
	}
	person.ID = "person-1"

	post := &postmodel.Post{
		ApID:        "https://local.example/post/1",
		CommunityID: "community-1",
	}
	post.ID = "post-1"

	community := &communitymodel.Community{
		ActorURI: "https://peer.example/c/golang",
		InboxURI: "https://peer.example/c/golang/inbox",
	}
	community.ID = "community-1"

	f.persons.On("GetByID", mock.Anything, "person-1").Return(person, nil)
	f.posts.On("GetByID", mock.Anything, "post-1").Return(post, nil)
	f.communities.On("CheckBan", mock.Anything, "person-1", "community-1").Return(nil)
	f.communities.On("CheckDeletedOrRemoved", mock.Anything, "community-1").Return(nil)
	f.communities.On("GetByID", mock.Anything, "community-1").Return(community, nil)
	return person, post, community
}

var siteWithDownvotes = config.SiteConfig{EnableDownvotes: true}

func TestApplyVote(t *testing.T) {
	t.Run("Upvote success", func(t *testing.T) {
		f := newVoteFixture()
		f.expectHappyReads()
		f.votes.On("Replace", mock.Anything, "post-1", "person-1", int16(1), true).Return(nil)
		f.posts.On("MarkRead", mock.Anything, "person-1", "post-1").Return(nil)

		err := f.service.ApplyVote(context.Background(), "person-1", "post-1", 1, siteWithDownvotes)

		assert.NoError(t, err)
		f.votes.AssertExpectations(t)
		f.posts.AssertExpectations(t)
		assert.Len(t, f.delivery.events, 1)
	})

	t.Run("Repeat upvote replaces, never stacks", func(t *testing.T) {
		f := newVoteFixture()
		f.expectHappyReads()
		f.votes.On("Replace", mock.Anything, "post-1", "person-1", int16(1), true).Return(nil).Twice()
		f.posts.On("MarkRead", mock.Anything, "person-1", "post-1").Return(nil)

		assert.NoError(t, f.service.ApplyVote(context.Background(), "person-1", "post-1", 1, siteWithDownvotes))
		assert.NoError(t, f.service.ApplyVote(context.Background(), "person-1", "post-1", 1, siteWithDownvotes))

		f.votes.AssertExpectations(t)
	})

	t.Run("Score zero retracts without insert", func(t *testing.T) {
		f := newVoteFixture()
		f.expectHappyReads()
		f.votes.On("Replace", mock.Anything, "post-1", "person-1", int16(0), false).Return(nil)
		f.posts.On("MarkRead", mock.Anything, "person-1", "post-1").Return(nil)

		err := f.service.ApplyVote(context.Background(), "person-1", "post-1", 0, siteWithDownvotes)

		assert.NoError(t, err)
		f.votes.AssertExpectations(t)
	})

	t.Run("Unrecognized score behaves as retraction but propagates as sent", func(t *testing.T) {
		f := newVoteFixture()
		f.expectHappyReads()
		f.votes.On("Replace", mock.Anything, "post-1", "person-1", int16(7), false).Return(nil)
		f.posts.On("MarkRead", mock.Anything, "person-1", "post-1").Return(nil)

		err := f.service.ApplyVote(context.Background(), "person-1", "post-1", 7, siteWithDownvotes)

		assert.NoError(t, err)
		assert.Len(t, f.delivery.events, 1)
		assert.Equal(t, int16(7), f.delivery.events[0].Score)
	})

	t.Run("Downvote rejected when disabled, nothing touched", func(t *testing.T) {
		f := newVoteFixture()

		err := f.service.ApplyVote(context.Background(), "person-1", "post-1", -1,
			config.SiteConfig{EnableDownvotes: false})

		assert.ErrorIs(t, err, ErrDownvotesDisabled)
		f.votes.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.posts.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.delivery.events)
	})

	t.Run("Missing post", func(t *testing.T) {
		f := newVoteFixture()
		person := &personmodel.Person{}
		person.ID = "person-1"
		f.persons.On("GetByID", mock.Anything, "person-1").Return(person, nil)
		f.posts.On("GetByID", mock.Anything, "post-1").Return(nil, gorm.ErrRecordNotFound)

		err := f.service.ApplyVote(context.Background(), "person-1", "post-1", 1, siteWithDownvotes)

		assert.ErrorIs(t, err, ErrPostNotFound)
		f.votes.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Banned actor", func(t *testing.T) {
		f := newVoteFixture()
		person := &personmodel.Person{}
		person.ID = "person-1"
		post := &postmodel.Post{CommunityID: "community-1"}
		post.ID = "post-1"
		f.persons.On("GetByID", mock.Anything, "person-1").Return(person, nil)
		f.posts.On("GetByID", mock.Anything, "post-1").Return(post, nil)
		f.communities.On("CheckBan", mock.Anything, "person-1", "community-1").
			Return(communityservice.ErrActorBanned)

		err := f.service.ApplyVote(context.Background(), "person-1", "post-1", 1, siteWithDownvotes)

		assert.ErrorIs(t, err, communityservice.ErrActorBanned)
		f.votes.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.delivery.events)
	})

	t.Run("Deleted community", func(t *testing.T) {
		f := newVoteFixture()
		person := &personmodel.Person{}
		person.ID = "person-1"
		post := &postmodel.Post{CommunityID: "community-1"}
		post.ID = "post-1"
		f.persons.On("GetByID", mock.Anything, "person-1").Return(person, nil)
		f.posts.On("GetByID", mock.Anything, "post-1").Return(post, nil)
		f.communities.On("CheckBan", mock.Anything, "person-1", "community-1").Return(nil)
		f.communities.On("CheckDeletedOrRemoved", mock.Anything, "community-1").
			Return(communityservice.ErrCommunityUnavailable)

		err := f.service.ApplyVote(context.Background(), "person-1", "post-1", 1, siteWithDownvotes)

		assert.ErrorIs(t, err, communityservice.ErrCommunityUnavailable)
		f.votes.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("End to end downvote emits one propagation event", func(t *testing.T) {
		f := newVoteFixture()
		person, post, community := f.expectHappyReads()
		f.votes.On("Replace", mock.Anything, "post-1", "person-1", int16(-1), true).Return(nil)
		f.posts.On("MarkRead", mock.Anything, "person-1", "post-1").Return(nil)

		err := f.service.ApplyVote(context.Background(), "person-1", "post-1", -1, siteWithDownvotes)

		assert.NoError(t, err)
		if assert.Len(t, f.delivery.events, 1) {
			event := f.delivery.events[0]
			assert.Equal(t, post.ApID, event.ObjectURI)
			assert.Equal(t, person.ActorURI, event.Actor.URI)
			assert.Equal(t, community.ActorURI, event.Community.URI)
			assert.Equal(t, int16(-1), event.Score)
		}
	})
}
