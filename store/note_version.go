package store

import "context"

// NoteVersion is an append-only snapshot of a note's title and content.
// Versions are never updated; they are removed only when their note is
// deleted.
type NoteVersion struct {
	ID        int32
	NoteID    int32
	Title     string
	Content   *string
	CreatedTs int64
}

// FindNoteVersion is the find condition for note version.
type FindNoteVersion struct {
	ID     *int32
	NoteID *int32
	Limit  *int
}

// CreateNoteVersion appends a snapshot. It returns ErrInvalidReference when
// the note does not exist.
func (s *Store) CreateNoteVersion(ctx context.Context, create *NoteVersion) (*NoteVersion, error) {
	return s.driver.CreateNoteVersion(ctx, create)
}

// ListNoteVersions lists snapshots, newest first.
func (s *Store) ListNoteVersions(ctx context.Context, find *FindNoteVersion) ([]*NoteVersion, error) {
	return s.driver.ListNoteVersions(ctx, find)
}
