package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Note model related methods.
	//
	// CreateNote persists the note and its tag associations in a single
	// transaction and returns the hydrated note. UpdateNote applies a partial
	// field update and, when TagIDs is set, replaces the association set in
	// the same transaction.
	CreateNote(ctx context.Context, create *Note, tagIDs []int32) (*Note, error)
	ListNotes(ctx context.Context, find *FindNote) ([]*Note, error)
	UpdateNote(ctx context.Context, update *UpdateNote) error
	DeleteNote(ctx context.Context, delete *DeleteNote) error

	// UpdateNoteEmbedding updates the embedding vector for a note without
	// touching updated_ts.
	UpdateNoteEmbedding(ctx context.Context, id int32, embedding []float32) error

	// SearchNotesByVector performs semantic search using vector similarity.
	// Drivers without vector support return ErrVectorSearchUnsupported.
	SearchNotesByVector(ctx context.Context, embedding []float32, limit int) ([]*Note, error)

	// Tag model related methods.
	CreateTag(ctx context.Context, create *Tag) (*Tag, error)
	ListTags(ctx context.Context, find *FindTag) ([]*Tag, error)
	UpdateTag(ctx context.Context, update *UpdateTag) (*Tag, error)
	DeleteTag(ctx context.Context, delete *DeleteTag) error

	// NoteVersion model related methods.
	CreateNoteVersion(ctx context.Context, create *NoteVersion) (*NoteVersion, error)
	ListNoteVersions(ctx context.Context, find *FindNoteVersion) ([]*NoteVersion, error)
}
