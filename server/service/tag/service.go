// Package tag implements tag management: idempotent creation under
// case-insensitive name uniqueness, color allocation, and cascading-safe
// deletion.
package tag

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/insightink/insightink/store"
)

// findOrCreateAttempts bounds the lookup/insert loop under concurrent
// creators of the same name.
const findOrCreateAttempts = 3

// Service exposes tag operations on top of the store.
type Service struct {
	store  *store.Store
	colors ColorPicker
}

// Option configures a Service.
type Option func(*Service)

// WithColorPicker overrides the default random color allocation.
func WithColorPicker(picker ColorPicker) Option {
	return func(s *Service) { s.colors = picker }
}

// NewService creates a tag service.
func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		colors: NewRandomColorPicker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTag creates a tag, or returns the existing one when the name is
// already taken case-insensitively. An existing tag is returned unchanged;
// in particular its color is never overwritten.
func (s *Service) CreateTag(ctx context.Context, name string, color string) (*store.Tag, error) {
	return s.FindOrCreate(ctx, name, color)
}

// FindOrCreate resolves a tag name to its row, inserting one when absent.
// The insert relies on the unique index rather than the preceding lookup:
// when a concurrent creator wins the race, the insert fails with
// ErrTagNameExists and the loop re-reads the winner's row.
func (s *Service) FindOrCreate(ctx context.Context, name string, color string) (*store.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("tag name is required")
	}

	for attempt := 0; attempt < findOrCreateAttempts; attempt++ {
		existing, err := s.store.GetTagByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}

		create := &store.Tag{Name: name, Color: color}
		if create.Color == "" {
			create.Color = s.colors.Pick()
		}
		created, err := s.store.CreateTag(ctx, create)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, store.ErrTagNameExists) {
			return nil, err
		}
		// Lost the race; the winner's row is visible on the next lookup.
	}
	return nil, errors.Errorf("failed to resolve tag %q after repeated conflicts", name)
}

// ListTags lists all tags ordered by name.
func (s *Service) ListTags(ctx context.Context) ([]*store.Tag, error) {
	return s.store.ListTags(ctx, &store.FindTag{})
}

// GetTag returns a tag by ID, or nil when absent.
func (s *Service) GetTag(ctx context.Context, id int32) (*store.Tag, error) {
	return s.store.GetTag(ctx, &store.FindTag{ID: &id})
}

// UpdateTag applies a partial update. Renaming onto an existing name fails
// with ErrTagNameExists.
func (s *Service) UpdateTag(ctx context.Context, id int32, name *string, color *string) (*store.Tag, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, errors.New("tag name is required")
		}
		name = &trimmed
	}
	return s.store.UpdateTag(ctx, &store.UpdateTag{ID: id, Name: name, Color: color})
}

// DeleteTag removes a tag together with its note associations.
func (s *Service) DeleteTag(ctx context.Context, id int32) error {
	return s.store.DeleteTag(ctx, &store.DeleteTag{ID: id})
}

// NotesByTag lists hydrated notes carrying the given tag, newest first.
func (s *Service) NotesByTag(ctx context.Context, tagID int32) ([]*store.Note, error) {
	return s.store.ListNotes(ctx, &store.FindNote{TagID: &tagID})
}
