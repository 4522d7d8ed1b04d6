package service

import (
	"context"
	"errors"
	"time"

	"fedforum/internal/domain/apub/model"
	communitymodel "fedforum/internal/domain/community/model"
	personmodel "fedforum/internal/domain/person/model"
	"fedforum/pkg/logger"
	"fedforum/pkg/metrics"

	"go.uber.org/zap"
)

var (
	// ErrNoCommunityFound means no entry of the addressing list
	// dereferenced to a community.
	ErrNoCommunityFound = errors.New("no community found in addressing list")
	// ErrAudienceMismatch means the audience field names a different
	// community than the one the addressing resolved to.
	ErrAudienceMismatch = errors.New("audience does not match resolved community")
	// ErrDereferenceFailed surfaces a failed direct dereference.
	ErrDereferenceFailed = errors.New("could not dereference remote object")
)

// Dereferencer resolves a federation URI to its validated local
// representation, fetching and caching remote objects as needed.
type Dereferencer interface {
	Community(ctx context.Context, uri string) (*communitymodel.Community, error)
	Person(ctx context.Context, uri string) (*personmodel.Person, error)
}

// CommunityResolver determines the owning community of an object from its
// addressing fields.
type CommunityResolver struct {
	deref     Dereferencer
	timeout   time.Duration
	collector *metrics.Collector
}

func NewCommunityResolver(deref Dereferencer, timeout time.Duration, collector *metrics.Collector) *CommunityResolver {
	return &CommunityResolver{
		deref:     deref,
		timeout:   timeout,
		collector: collector,
	}
}

// Resolve finds the owning community of a page.
//
// When the attribution is the role-tagged pair, the "Group"-tagged entry
// is dereferenced directly and the addressing list is not consulted.
// Otherwise to and cc are scanned in order; each candidate gets its own
// bounded dereference attempt and individual failures move on to the next
// candidate. Exhaustion fails with ErrNoCommunityFound.
//
// If the object carries an audience, it must name the resolved
// community's canonical identity.
func (r *CommunityResolver) Resolve(ctx context.Context, page *model.Page) (*communitymodel.Community, error) {
	community, err := r.resolve(ctx, page)
	if err != nil {
		return nil, err
	}

	if page.Audience != nil && *page.Audience != community.ActorURI {
		return nil, ErrAudienceMismatch
	}
	return community, nil
}

func (r *CommunityResolver) resolve(ctx context.Context, page *model.Page) (*communitymodel.Community, error) {
	if groupURI, ok := page.AttributedTo.Group(); ok {
		community, err := r.dereference(ctx, groupURI)
		if err != nil {
			return nil, ErrDereferenceFailed
		}
		return community, nil
	}
	if len(page.AttributedTo.Pair) > 0 {
		// Role-tagged attribution without a group entry never falls back
		// to the addressing list.
		return nil, ErrNoCommunityFound
	}

	for _, candidate := range page.AddressingList() {
		community, err := r.dereference(ctx, candidate)
		if err != nil {
			// A single unreachable or non-community candidate is not
			// fatal; keep scanning.
			logger.Log.Debug("addressing candidate did not resolve",
				zap.String("uri", candidate),
				zap.Error(err))
			continue
		}
		return community, nil
	}
	return nil, ErrNoCommunityFound
}

func (r *CommunityResolver) dereference(ctx context.Context, uri string) (*communitymodel.Community, error) {
	derefCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	community, err := r.deref.Community(derefCtx, uri)
	if err != nil {
		r.collector.DereferenceResult("error")
		return nil, err
	}
	r.collector.DereferenceResult("ok")
	return community, nil
}
