package store

import "github.com/pkg/errors"

// Sentinel errors surfaced by store operations. Drivers translate their
// database-specific failures into these so callers can branch with errors.Is.
var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTagNameExists is returned when a tag insert loses the race against a
	// concurrent insert of the same case-insensitive name. It is detected via
	// the unique index on LOWER(name), never via a pre-check.
	ErrTagNameExists = errors.New("tag name already exists")

	// ErrInvalidReference is returned when a write references an entity ID
	// that does not exist (surfaced by a foreign key failure).
	ErrInvalidReference = errors.New("invalid reference")

	// ErrVectorSearchUnsupported is returned by drivers that cannot serve
	// vector similarity queries.
	ErrVectorSearchUnsupported = errors.New("vector search is not supported by this driver")
)
