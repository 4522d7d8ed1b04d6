package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	communitymodel "fedforum/internal/domain/community/model"
	communityrepository "fedforum/internal/domain/community/repository"
	personmodel "fedforum/internal/domain/person/model"
	personrepository "fedforum/internal/domain/person/repository"
	"fedforum/pkg/cache"

	"gorm.io/gorm"
)

const acceptHeader = "application/activity+json"

// wireActor is the subset of a remote actor document we keep.
type wireActor struct {
	Type              string `json:"type"`
	ID                string `json:"id"`
	PreferredUsername string `json:"preferredUsername"`
	Name              string `json:"name"`
	Inbox             string `json:"inbox"`
}

// HTTPDereferencer resolves federation URIs to local representations: it
// tries the local store, then the redis cache, then a network fetch, and
// persists what it fetched.
type HTTPDereferencer struct {
	client      *http.Client
	cache       cache.CacheService
	communities communityrepository.CommunityRepository
	persons     personrepository.PersonRepository
	cacheTTL    time.Duration
}

func NewHTTPDereferencer(
	cacheService cache.CacheService,
	communities communityrepository.CommunityRepository,
	persons personrepository.PersonRepository,
	cacheTTL time.Duration,
) *HTTPDereferencer {
	return &HTTPDereferencer{
		// Per-call deadlines come from the caller's context; the client
		// timeout is only a safety net.
		client:      &http.Client{Timeout: 30 * time.Second},
		cache:       cacheService,
		communities: communities,
		persons:     persons,
		cacheTTL:    cacheTTL,
	}
}

// Community resolves a URI to a community, fetching remotely on miss.
func (d *HTTPDereferencer) Community(ctx context.Context, uri string) (*communitymodel.Community, error) {
	if local, err := d.communities.GetByActorURI(ctx, uri); err == nil {
		return local, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	actor, err := d.fetchActor(ctx, uri)
	if err != nil {
		return nil, err
	}
	if actor.Type != "Group" {
		return nil, fmt.Errorf("actor %s is a %s, not a Group", uri, actor.Type)
	}

	community := &communitymodel.Community{
		Name:     actor.PreferredUsername,
		Title:    actor.Name,
		ActorURI: actor.ID,
		InboxURI: actor.Inbox,
		Local:    false,
	}
	if err := d.communities.UpsertRemote(ctx, community); err != nil {
		return nil, err
	}
	return d.communities.GetByActorURI(ctx, actor.ID)
}

// Person resolves a URI to a person, fetching remotely on miss.
func (d *HTTPDereferencer) Person(ctx context.Context, uri string) (*personmodel.Person, error) {
	if local, err := d.persons.GetByActorURI(ctx, uri); err == nil {
		return local, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	actor, err := d.fetchActor(ctx, uri)
	if err != nil {
		return nil, err
	}
	if actor.Type != "Person" {
		return nil, fmt.Errorf("actor %s is a %s, not a Person", uri, actor.Type)
	}

	person := &personmodel.Person{
		Name:     actor.PreferredUsername,
		ActorURI: actor.ID,
		InboxURI: actor.Inbox,
		Local:    false,
	}
	if err := d.persons.UpsertRemote(ctx, person); err != nil {
		return nil, err
	}
	return d.persons.GetByActorURI(ctx, actor.ID)
}

// fetchActor pulls a remote actor document, going through the cache.
func (d *HTTPDereferencer) fetchActor(ctx context.Context, uri string) (*wireActor, error) {
	cacheKey := "actor:" + uri

	var cached wireActor
	if err := d.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dereference %s: unexpected status %d", uri, resp.StatusCode)
	}

	var actor wireActor
	if err := json.NewDecoder(resp.Body).Decode(&actor); err != nil {
		return nil, fmt.Errorf("dereference %s: %w", uri, err)
	}
	if actor.ID == "" {
		return nil, fmt.Errorf("dereference %s: actor document has no id", uri)
	}

	// Cache failures only cost a refetch later.
	_ = d.cache.Set(ctx, cacheKey, &actor, d.cacheTTL)

	return &actor, nil
}
