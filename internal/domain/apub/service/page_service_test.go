package service

import (
	"context"
	"testing"
	"time"

	"fedforum/internal/domain/apub/model"
	personmodel "fedforum/internal/domain/person/model"
	postmodel "fedforum/internal/domain/post/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

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

func boolPtr(b bool) *bool {
	return &b
}

func TestIsLockedChanged(t *testing.T) {
	lockedPost := &postmodel.Post{Locked: true}
	openPost := &postmodel.Post{Locked: false}

	cases := []struct {
		name        string
		oldPost     *postmodel.Post
		lookupErr   error
		newComments *bool
		want        bool
	}{
		{"Missing flag is an author edit", openPost, nil, nil, false},
		{"Failed lookup is an author edit", nil, gorm.ErrRecordNotFound, boolPtr(false), false},
		{"Unchanged open post", openPost, nil, boolPtr(true), false},
		{"Unchanged locked post", lockedPost, nil, boolPtr(false), false},
		{"Locking an open post is a mod action", openPost, nil, boolPtr(false), true},
		{"Unlocking a locked post is a mod action", lockedPost, nil, boolPtr(true), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsLockedChanged(tc.oldPost, tc.lookupErr, tc.newComments)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsModAction(t *testing.T) {
	mockPosts := new(MockPostRepository)
	service := NewPageService(mockPosts, nil, nil)

	page := pageAddressedTo("https://b.example")
	page.CommentsEnabled = boolPtr(false)

	mockPosts.On("GetByApID", mock.Anything, page.ID).
		Return(&postmodel.Post{Locked: false}, nil)

	assert.True(t, service.IsModAction(context.Background(), page))
	mockPosts.AssertExpectations(t)
}

func TestPageVerify(t *testing.T) {
	t.Run("Valid page verifies without mutation", func(t *testing.T) {
		mockPosts := new(MockPostRepository)
		mockDeref := new(MockDereferencer)
		resolver := NewCommunityResolver(mockDeref, time.Second, testCollector)
		service := NewPageService(mockPosts, resolver, mockDeref)

		page := pageAddressedTo("https://b.example")

		mockDeref.On("Person", mock.Anything, "https://peer.example/u/alice").
			Return(&personmodel.Person{ActorURI: "https://peer.example/u/alice"}, nil)
		mockDeref.On("Community", mock.Anything, "https://b.example").
			Return(testCommunity("https://b.example"), nil)

		err := service.Verify(context.Background(), page)

		assert.NoError(t, err)
		mockPosts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("Missing creator fails verify", func(t *testing.T) {
		mockPosts := new(MockPostRepository)
		service := NewPageService(mockPosts, nil, new(MockDereferencer))

		page := pageAddressedTo("https://b.example")
		page.AttributedTo = model.AttributedTo{Pair: []model.ActorEntry{
			{Kind: "Group", ID: "https://a.example"},
			{Kind: "Group", ID: "https://b.example"},
		}}

		err := service.Verify(context.Background(), page)
		assert.ErrorIs(t, err, model.ErrMissingCreator)
	})
}

func TestPageReceive(t *testing.T) {
	mockPosts := new(MockPostRepository)
	mockDeref := new(MockDereferencer)
	resolver := NewCommunityResolver(mockDeref, time.Second, testCollector)
	service := NewPageService(mockPosts, resolver, mockDeref)

	page := pageAddressedTo("https://b.example")
	name := "an interesting link"
	page.Name = &name
	page.CommentsEnabled = boolPtr(false)
	page.Sensitive = boolPtr(true)
	markdown := "text/markdown"
	page.Source = model.SkipError[model.Source]{Value: &model.Source{
		Content:   "hello *world*",
		MediaType: markdown,
	}}

	creator := &personmodel.Person{ActorURI: "https://peer.example/u/alice"}
	creator.ID = "person-1"
	community := testCommunity("https://b.example")
	community.ID = "community-1"

	mockDeref.On("Person", mock.Anything, "https://peer.example/u/alice").Return(creator, nil)
	mockDeref.On("Community", mock.Anything, "https://b.example").Return(community, nil)
	mockPosts.On("Upsert", mock.Anything, mock.AnythingOfType("*model.Post")).Return(nil)

	err := service.Receive(context.Background(), page)

	assert.NoError(t, err)
	mockPosts.AssertCalled(t, "Upsert", mock.Anything, mock.MatchedBy(func(p *postmodel.Post) bool {
		return p.ApID == page.ID &&
			p.CreatorID == "person-1" &&
			p.CommunityID == "community-1" &&
			p.Name == "an interesting link" &&
			p.Locked && p.NSFW &&
			p.Body != nil && *p.Body == "hello *world*"
	}))
}

func TestDispatcher(t *testing.T) {
	dispatcher := NewDispatcher(nil)

	t.Run("Unknown type rejected", func(t *testing.T) {
		_, err := dispatcher.Parse([]byte(`{"type":"Follow","id":"https://x.example/1"}`))
		assert.ErrorIs(t, err, ErrUnknownActivity)
	})

	t.Run("Garbage rejected as malformed", func(t *testing.T) {
		_, err := dispatcher.Parse([]byte(`{"type":`))
		assert.ErrorIs(t, err, model.ErrMalformedObject)
	})

	t.Run("Page dispatches to the page activity", func(t *testing.T) {
		raw := []byte(`{"type":"Note","id":"https://peer.example/post/1",` +
			`"attributedTo":"https://peer.example/u/alice","to":"https://b.example"}`)
		activity, err := dispatcher.Parse(raw)
		assert.NoError(t, err)
		assert.IsType(t, &pageActivity{}, activity)
	})
}
