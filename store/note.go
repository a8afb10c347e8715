package store

import (
	"context"
)

// DefaultNoteTitle is used when a note is created without a title and no
// generated title is available.
const DefaultNoteTitle = "Untitled Note"

// Note is the object representing a note.
type Note struct {
	ID  int32
	UID string

	// Standard fields
	CreatedTs int64
	UpdatedTs int64

	// Domain specific fields
	Title    string
	Content  *string
	Category *string

	// Embedding is nil when no vector has been computed or the provider
	// failed at write time.
	Embedding []float32

	// Composed fields. Tags carries the hydrated join rows, ordered by tag
	// name ascending.
	Tags []*NoteTag
}

// NoteTag is the join row linking a note and a tag. A note never has the
// same tag twice; the pair (NoteID, TagID) is the composite key.
type NoteTag struct {
	NoteID int32
	TagID  int32
	Tag    *Tag
}

// FindNote is the find condition for note.
type FindNote struct {
	ID  *int32
	UID *string

	// TagID restricts to notes carrying the given tag.
	TagID *int32

	// Search matches the query case-insensitively as a substring of title
	// or content.
	Search *string

	// MissingEmbedding restricts to notes that have content but no stored
	// embedding vector.
	MissingEmbedding bool

	// Pagination
	Limit  *int
	Offset *int
}

// UpdateNote is the update request for note. Nil pointer fields are left
// untouched; a pointer to an empty string clears content/category to NULL so
// "omitted" and "explicitly cleared" stay distinguishable.
type UpdateNote struct {
	ID int32

	Title    *string
	Content  *string
	Category *string

	// SetEmbedding marks the embedding column for replacement. Embedding may
	// be nil with SetEmbedding true, which clears the stored vector.
	SetEmbedding bool
	Embedding    []float32

	// TagIDs, when non-nil, atomically replaces the note's tag associations
	// with the given set. The delete-old/insert-new sequence runs in the same
	// transaction as the field update.
	TagIDs *[]int32
}

// DeleteNote is the delete request for note.
type DeleteNote struct {
	ID int32
}

// CreateNote creates a note together with its tag associations in one atomic
// unit and returns the hydrated result.
func (s *Store) CreateNote(ctx context.Context, create *Note, tagIDs []int32) (*Note, error) {
	return s.driver.CreateNote(ctx, create, tagIDs)
}

// ListNotes lists hydrated notes ordered by updated_ts descending.
func (s *Store) ListNotes(ctx context.Context, find *FindNote) ([]*Note, error) {
	return s.driver.ListNotes(ctx, find)
}

// GetNote gets a single hydrated note, or nil when absent.
func (s *Store) GetNote(ctx context.Context, find *FindNote) (*Note, error) {
	list, err := s.driver.ListNotes(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateNote applies a partial update and returns the hydrated note.
func (s *Store) UpdateNote(ctx context.Context, update *UpdateNote) (*Note, error) {
	if err := s.driver.UpdateNote(ctx, update); err != nil {
		return nil, err
	}
	return s.GetNote(ctx, &FindNote{ID: &update.ID})
}

// DeleteNote deletes a note and cascades its join rows and versions.
func (s *Store) DeleteNote(ctx context.Context, delete *DeleteNote) error {
	return s.driver.DeleteNote(ctx, delete)
}

// UpdateNoteEmbedding replaces only the stored embedding vector. It does not
// refresh updated_ts; backfill must not look like a user edit.
func (s *Store) UpdateNoteEmbedding(ctx context.Context, id int32, embedding []float32) error {
	return s.driver.UpdateNoteEmbedding(ctx, id, embedding)
}

// SearchNotesByVector returns hydrated notes ranked by vector similarity.
func (s *Store) SearchNotesByVector(ctx context.Context, embedding []float32, limit int) ([]*Note, error) {
	return s.driver.SearchNotesByVector(ctx, embedding, limit)
}
