package store

import (
	"context"
	"strings"
)

// Tag is the object representing a tag. Names are unique case-insensitively.
type Tag struct {
	ID int32

	// Standard fields
	CreatedTs int64
	UpdatedTs int64

	// Domain specific fields
	Name  string
	Color string
}

// FindTag is the find condition for tag.
type FindTag struct {
	ID *int32

	// Name matches case-insensitively.
	Name *string

	Limit *int
}

// UpdateTag is the update request for tag.
type UpdateTag struct {
	ID    int32
	Name  *string
	Color *string
}

// DeleteTag is the delete request for tag.
type DeleteTag struct {
	ID int32
}

// CreateTag inserts a tag. It returns ErrTagNameExists when the unique index
// on LOWER(name) rejects the insert.
func (s *Store) CreateTag(ctx context.Context, create *Tag) (*Tag, error) {
	tag, err := s.driver.CreateTag(ctx, create)
	if err != nil {
		return nil, err
	}
	s.tagNameCache.Set(tagNameKey(tag.Name), tag)
	return tag, nil
}

// ListTags lists tags ordered by name ascending.
func (s *Store) ListTags(ctx context.Context, find *FindTag) ([]*Tag, error) {
	return s.driver.ListTags(ctx, find)
}

// GetTag gets a single tag, or nil when absent.
func (s *Store) GetTag(ctx context.Context, find *FindTag) (*Tag, error) {
	list, err := s.driver.ListTags(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// GetTagByName looks a tag up by case-insensitive name. Positive results are
// cached; misses are never cached so a concurrent create becomes visible on
// the next lookup.
func (s *Store) GetTagByName(ctx context.Context, name string) (*Tag, error) {
	if v, ok := s.tagNameCache.Get(tagNameKey(name)); ok {
		if tag, ok := v.(*Tag); ok {
			return tag, nil
		}
	}
	tag, err := s.GetTag(ctx, &FindTag{Name: &name})
	if err != nil {
		return nil, err
	}
	if tag != nil {
		s.tagNameCache.Set(tagNameKey(tag.Name), tag)
	}
	return tag, nil
}

// UpdateTag applies a partial update and returns the updated tag.
func (s *Store) UpdateTag(ctx context.Context, update *UpdateTag) (*Tag, error) {
	// The old name may change; drop any cached entry for this tag first.
	if existing, err := s.GetTag(ctx, &FindTag{ID: &update.ID}); err == nil && existing != nil {
		s.tagNameCache.Delete(tagNameKey(existing.Name))
	}
	tag, err := s.driver.UpdateTag(ctx, update)
	if err != nil {
		return nil, err
	}
	s.tagNameCache.Set(tagNameKey(tag.Name), tag)
	return tag, nil
}

// DeleteTag removes a tag and its join rows.
func (s *Store) DeleteTag(ctx context.Context, delete *DeleteTag) error {
	if existing, err := s.GetTag(ctx, &FindTag{ID: &delete.ID}); err == nil && existing != nil {
		s.tagNameCache.Delete(tagNameKey(existing.Name))
	}
	return s.driver.DeleteTag(ctx, delete)
}

func tagNameKey(name string) string {
	return "tag-name:" + strings.ToLower(name)
}
