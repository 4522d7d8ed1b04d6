package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMalformedObject marks payloads that fail structural validation.
	ErrMalformedObject = errors.New("object failed structural validation")
	// ErrMissingCreator means neither attribution encoding names a person.
	ErrMissingCreator = errors.New("object does not specify its creator")
)

// PageKind is the object type label. Peers label semantically identical
// posts differently, so all five are accepted.
type PageKind string

const (
	KindPage    PageKind = "Page"
	KindArticle PageKind = "Article"
	KindNote    PageKind = "Note"
	KindVideo   PageKind = "Video"
	KindEvent   PageKind = "Event"
)

func (k *PageKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch PageKind(s) {
	case KindPage, KindArticle, KindNote, KindVideo, KindEvent:
		*k = PageKind(s)
		return nil
	}
	return fmt.Errorf("unknown page type %q", s)
}

// URIList decodes both a single URI string and an array of URIs.
type URIList []string

func (l *URIList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = URIList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = URIList(many)
	return nil
}

// NoInReplyTo only decodes when the field is null. A post carrying any
// actual inReplyTo value is a comment and must not parse as a Page.
type NoInReplyTo struct{}

func (n *NoInReplyTo) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	return fmt.Errorf("post must not have inReplyTo property")
}

// SkipError tolerates undecodable values by discarding them, for fields
// where peers are known to send nonconforming data.
type SkipError[T any] struct {
	Value *T
}

func (s *SkipError[T]) UnmarshalJSON(data []byte) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.Value = nil
		return nil
	}
	s.Value = &v
	return nil
}

func (s SkipError[T]) MarshalJSON() ([]byte, error) {
	if s.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// Source carries the original markdown of an object.
type Source struct {
	Content   string `json:"content"`
	MediaType string `json:"mediaType"`
}

// ImageObject is a thumbnail or preview image.
type ImageObject struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// LanguageTag identifies the content language.
type LanguageTag struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}

// ActorEntry is one element of the role-tagged attribution pair.
type ActorEntry struct {
	Kind string `json:"type"` // "Person" or "Group"
	ID   string `json:"id"`
}

// AttributedTo covers the two incompatible creator encodings: a single
// creator URI, or a fixed pair of role-tagged identities listing both the
// creator and the owning group.
type AttributedTo struct {
	Creator string
	Pair    []ActorEntry
}

func (a *AttributedTo) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		a.Creator = single
		return nil
	}
	var pair []ActorEntry
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("attribution matches no known variant")
	}
	if len(pair) != 2 {
		return fmt.Errorf("role-tagged attribution must have exactly two entries, got %d", len(pair))
	}
	a.Pair = pair
	return nil
}

func (a AttributedTo) MarshalJSON() ([]byte, error) {
	if a.Creator != "" {
		return json.Marshal(a.Creator)
	}
	return json.Marshal(a.Pair)
}

// Group returns the URI of the "Group"-tagged entry of a role-tagged
// pair, if present.
func (a AttributedTo) Group() (string, bool) {
	for _, entry := range a.Pair {
		if entry.Kind == "Group" {
			return entry.ID, true
		}
	}
	return "", false
}

// Page is the wire shape of a federated post object.
type Page struct {
	Kind         PageKind          `json:"type"`
	ID           string            `json:"id"`
	AttributedTo AttributedTo      `json:"attributedTo"`
	To           URIList           `json:"to"`
	// A present inReplyTo reclassifies the object as a comment; parsing
	// must fail.
	InReplyTo       *NoInReplyTo      `json:"inReplyTo,omitempty"`
	Name            *string           `json:"name,omitempty"`
	CC              URIList           `json:"cc,omitempty"`
	Content         *string           `json:"content,omitempty"`
	MediaType       *string           `json:"mediaType,omitempty"`
	Source          SkipError[Source] `json:"source,omitempty"`
	// Most software sends attachment as an array; only the first item is
	// authoritative.
	Attachment      []Attachment `json:"attachment,omitempty"`
	Image           *ImageObject `json:"image,omitempty"`
	CommentsEnabled *bool        `json:"commentsEnabled,omitempty"`
	Sensitive       *bool        `json:"sensitive,omitempty"`
	Published       *time.Time   `json:"published,omitempty"`
	Updated         *time.Time   `json:"updated,omitempty"`
	Language        *LanguageTag `json:"language,omitempty"`
	Audience        *string      `json:"audience,omitempty"`
}

// ParsePage decodes and validates an inbound post object. Any failure is
// structural and aborts before state is touched.
func ParsePage(raw []byte) (*Page, error) {
	var page Page
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedObject, err)
	}
	if page.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedObject)
	}
	if page.AttributedTo.Creator == "" && len(page.AttributedTo.Pair) == 0 {
		return nil, fmt.Errorf("%w: missing attributedTo", ErrMalformedObject)
	}
	return &page, nil
}

// Creator resolves the single authoritative creator identity from either
// attribution encoding. For the role-tagged pair it is the entry tagged
// "Person"; a pair without one fails with ErrMissingCreator.
func (p *Page) Creator() (string, error) {
	if p.AttributedTo.Creator != "" {
		return p.AttributedTo.Creator, nil
	}
	for _, entry := range p.AttributedTo.Pair {
		if entry.Kind == "Person" {
			return entry.ID, nil
		}
	}
	return "", ErrMissingCreator
}

// AddressingList concatenates to and cc in order, duplicates preserved.
// The order is significant for community resolution.
func (p *Page) AddressingList() []string {
	list := make([]string, 0, len(p.To)+len(p.CC))
	list = append(list, p.To...)
	list = append(list, p.CC...)
	return list
}
