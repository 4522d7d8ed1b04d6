package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fedforum/internal/domain/apub/model"
)

// ErrUnknownActivity means the payload discriminant matched no variant.
var ErrUnknownActivity = errors.New("unknown activity type")

// Activity is the two-phase contract every inbound activity implements.
// Verify runs only read-only checks; Receive performs the state mutation
// and must not be invoked unless Verify succeeded for the same payload.
// New activity variants plug in here without touching the dispatch core.
type Activity interface {
	Verify(ctx context.Context) error
	Receive(ctx context.Context) error
}

// Dispatcher maps an inbound payload's type discriminant onto the
// matching activity variant.
type Dispatcher struct {
	pages *PageService
}

func NewDispatcher(pages *PageService) *Dispatcher {
	return &Dispatcher{pages: pages}
}

// Parse constructs the activity for a raw payload, or fails structurally.
func (d *Dispatcher) Parse(raw []byte) (Activity, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedObject, err)
	}

	switch model.PageKind(probe.Type) {
	case model.KindPage, model.KindArticle, model.KindNote, model.KindVideo, model.KindEvent:
		page, err := model.ParsePage(raw)
		if err != nil {
			return nil, err
		}
		return &pageActivity{page: page, service: d.pages}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownActivity, probe.Type)
}

// pageActivity adapts a bare page object to the activity contract; some
// peers deliver posts this way through outboxes for compatibility.
type pageActivity struct {
	page    *model.Page
	service *PageService
}

func (a *pageActivity) Verify(ctx context.Context) error {
	return a.service.Verify(ctx, a.page)
}

func (a *pageActivity) Receive(ctx context.Context) error {
	return a.service.Receive(ctx, a.page)
}
