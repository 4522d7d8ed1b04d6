package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fedforum/internal/domain/apub/model"
	communitymodel "fedforum/internal/domain/community/model"
	personmodel "fedforum/internal/domain/person/model"
	"fedforum/pkg/logger"
	"fedforum/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockDereferencer is a mock of Dereferencer
type MockDereferencer struct {
	mock.Mock
}

func (m *MockDereferencer) Community(ctx context.Context, uri string) (*communitymodel.Community, error) {
	args := m.Called(ctx, uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*communitymodel.Community), args.Error(1)
}

func (m *MockDereferencer) Person(ctx context.Context, uri string) (*personmodel.Person, error) {
	args := m.Called(ctx, uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*personmodel.Person), args.Error(1)
}

var testCollector = metrics.NewCollector()

func init() {
	logger.Init(true)
}

func testCommunity(actorURI string) *communitymodel.Community {
	return &communitymodel.Community{
		Name:     "golang",
		ActorURI: actorURI,
	}
}

func pageAddressedTo(to ...string) *model.Page {
	return &model.Page{
		Kind:         model.KindPage,
		ID:           "https://peer.example/post/1",
		AttributedTo: model.AttributedTo{Creator: "https://peer.example/u/alice"},
		To:           model.URIList(to),
	}
}

func TestResolve(t *testing.T) {
	t.Run("First successful candidate wins, later ones never tried", func(t *testing.T) {
		mockDeref := new(MockDereferencer)
		resolver := NewCommunityResolver(mockDeref, time.Second, testCollector)

		page := pageAddressedTo("https://a.example", "https://b.example", "https://c.example")

		mockDeref.On("Community", mock.Anything, "https://a.example").
			Return(nil, errors.New("connection refused"))
		mockDeref.On("Community", mock.Anything, "https://b.example").
			Return(testCommunity("https://b.example"), nil)

		community, err := resolver.Resolve(context.Background(), page)

		assert.NoError(t, err)
		assert.Equal(t, "https://b.example", community.ActorURI)
		mockDeref.AssertNotCalled(t, "Community", mock.Anything, "https://c.example")
		mockDeref.AssertExpectations(t)
	})

	t.Run("cc is scanned after to", func(t *testing.T) {
		mockDeref := new(MockDereferencer)
		resolver := NewCommunityResolver(mockDeref, time.Second, testCollector)

		page := pageAddressedTo("https://followers.example")
		page.CC = model.URIList{"https://group.example"}

		mockDeref.On("Community", mock.Anything, "https://followers.example").
			Return(nil, errors.New("not a community"))
		mockDeref.On("Community", mock.Anything, "https://group.example").
			Return(testCommunity("https://group.example"), nil)

		community, err := resolver.Resolve(context.Background(), page)

		assert.NoError(t, err)
		assert.Equal(t, "https://group.example", community.ActorURI)
		mockDeref.AssertExpectations(t)
	})

	t.Run("Exhausted addressing list fails", func(t *testing.T) {
		mockDeref := new(MockDereferencer)
		resolver := NewCommunityResolver(mockDeref, time.Second, testCollector)

		page := pageAddressedTo("https://a.example", "https://b.example")

		mockDeref.On("Community", mock.Anything, mock.Anything).
			Return(nil, errors.New("unreachable"))

		_, err := resolver.Resolve(context.Background(), page)
		assert.ErrorIs(t, err, ErrNoCommunityFound)
	})

	t.Run("Role-tagged attribution short-circuits to the group", func(t *testing.T) {
		mockDeref := new(MockDereferencer)
		resolver := NewCommunityResolver(mockDeref, time.Second, testCollector)

		page := pageAddressedTo("https://ignored.example")
		page.AttributedTo = model.AttributedTo{Pair: []model.ActorEntry{
			{Kind: "Person", ID: "https://peer.example/u/alice"},
			{Kind: "Group", ID: "https://peer.example/c/golang"},
		}}

		mockDeref.On("Community", mock.Anything, "https://peer.example/c/golang").
			Return(testCommunity("https://peer.example/c/golang"), nil)

		community, err := resolver.Resolve(context.Background(), page)

		assert.NoError(t, err)
		assert.Equal(t, "https://peer.example/c/golang", community.ActorURI)
		mockDeref.AssertNotCalled(t, "Community", mock.Anything, "https://ignored.example")
	})

	t.Run("Role-tagged attribution without group does not fall back", func(t *testing.T) {
		mockDeref := new(MockDereferencer)
		resolver := NewCommunityResolver(mockDeref, time.Second, testCollector)

		page := pageAddressedTo("https://a.example")
		page.AttributedTo = model.AttributedTo{Pair: []model.ActorEntry{
			{Kind: "Person", ID: "https://peer.example/u/alice"},
			{Kind: "Person", ID: "https://peer.example/u/bob"},
		}}

		_, err := resolver.Resolve(context.Background(), page)

		assert.ErrorIs(t, err, ErrNoCommunityFound)
		mockDeref.AssertNotCalled(t, "Community", mock.Anything, mock.Anything)
	})

	t.Run("Audience must match the resolved community", func(t *testing.T) {
		mockDeref := new(MockDereferencer)
		resolver := NewCommunityResolver(mockDeref, time.Second, testCollector)

		page := pageAddressedTo("https://b.example")
		audience := "https://elsewhere.example/c/other"
		page.Audience = &audience

		mockDeref.On("Community", mock.Anything, "https://b.example").
			Return(testCommunity("https://b.example"), nil)

		_, err := resolver.Resolve(context.Background(), page)
		assert.ErrorIs(t, err, ErrAudienceMismatch)
	})

	t.Run("Matching audience passes", func(t *testing.T) {
		mockDeref := new(MockDereferencer)
		resolver := NewCommunityResolver(mockDeref, time.Second, testCollector)

		page := pageAddressedTo("https://b.example")
		audience := "https://b.example"
		page.Audience = &audience

		mockDeref.On("Community", mock.Anything, "https://b.example").
			Return(testCommunity("https://b.example"), nil)

		community, err := resolver.Resolve(context.Background(), page)
		assert.NoError(t, err)
		assert.Equal(t, audience, community.ActorURI)
	})
}
