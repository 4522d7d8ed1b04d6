package service

import (
	"context"
	"fmt"

	"fedforum/internal/domain/apub/model"
	postmodel "fedforum/internal/domain/post/model"
	postrepository "fedforum/internal/domain/post/repository"
)

// PageService turns validated page objects into local posts. It backs the
// verify and receive phases of the activity contract.
type PageService struct {
	posts    postrepository.PostRepository
	resolver *CommunityResolver
	deref    Dereferencer
}

func NewPageService(posts postrepository.PostRepository, resolver *CommunityResolver, deref Dereferencer) *PageService {
	return &PageService{
		posts:    posts,
		resolver: resolver,
		deref:    deref,
	}
}

// Verify re-validates the domain invariants of a page without touching
// state: the creator must resolve, and the addressing must yield a
// community consistent with any audience field.
func (s *PageService) Verify(ctx context.Context, page *model.Page) error {
	creatorURI, err := page.Creator()
	if err != nil {
		return err
	}
	if _, err := s.deref.Person(ctx, creatorURI); err != nil {
		return fmt.Errorf("%w: creator %s", ErrDereferenceFailed, creatorURI)
	}
	if _, err := s.resolver.Resolve(ctx, page); err != nil {
		return err
	}
	return nil
}

// Receive commits the page as a local post. Callers must have run Verify
// on the same payload first.
func (s *PageService) Receive(ctx context.Context, page *model.Page) error {
	creatorURI, err := page.Creator()
	if err != nil {
		return err
	}
	creator, err := s.deref.Person(ctx, creatorURI)
	if err != nil {
		return fmt.Errorf("%w: creator %s", ErrDereferenceFailed, creatorURI)
	}
	community, err := s.resolver.Resolve(ctx, page)
	if err != nil {
		return err
	}

	post := buildPost(page, creator.ID, community.ID)
	return s.posts.Upsert(ctx, post)
}

// IsModAction reports whether the page is a moderator-only state change.
// Only mods can flip a post's locked status, so a commentsEnabled value
// that differs from the stored state needs elevated verification.
func (s *PageService) IsModAction(ctx context.Context, page *model.Page) bool {
	oldPost, err := s.posts.GetByApID(ctx, page.ID)
	return IsLockedChanged(oldPost, err, page.CommentsEnabled)
}

// IsLockedChanged is the mod-action predicate over a prior lookup result.
// A missing flag or a failed lookup is an ordinary author edit.
func IsLockedChanged(oldPost *postmodel.Post, lookupErr error, newCommentsEnabled *bool) bool {
	if newCommentsEnabled == nil {
		return false
	}
	if lookupErr != nil || oldPost == nil {
		return false
	}
	return *newCommentsEnabled != !oldPost.Locked
}

// buildPost maps the wire page onto the local post shape.
func buildPost(page *model.Page, creatorID, communityID string) *postmodel.Post {
	post := &postmodel.Post{
		ApID:        page.ID,
		CreatorID:   creatorID,
		CommunityID: communityID,
		Published:   page.Published,
		Edited:      page.Updated,
	}

	if page.Name != nil {
		post.Name = *page.Name
	}
	if len(page.Attachment) > 0 {
		url := page.Attachment[0].URL()
		post.URL = &url
	}
	// Prefer the original markdown source over rendered content.
	if page.Source.Value != nil && page.Source.Value.MediaType == "text/markdown" {
		post.Body = &page.Source.Value.Content
	} else if page.Content != nil {
		post.Body = page.Content
	}
	if page.CommentsEnabled != nil {
		post.Locked = !*page.CommentsEnabled
	}
	if page.Sensitive != nil {
		post.NSFW = *page.Sensitive
	}
	if page.Language != nil {
		post.LanguageCode = &page.Language.Identifier
	}
	return post
}
