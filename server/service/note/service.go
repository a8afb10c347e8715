// Package note implements the note persistence core: create/update flows
// with partial-update semantics, atomic tag replacement, best-effort AI
// enrichment, search, and version snapshots.
package note

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/insightink/insightink/store"
)

// titleContentThreshold is the content length above which a missing title is
// generated from the content.
const titleContentThreshold = 50

// defaultSearchLimit caps search results when the caller does not.
const defaultSearchLimit = 10

// aiCallTimeout bounds every provider call so a slow provider cannot extend
// the failure domain of a write.
const aiCallTimeout = 15 * time.Second

// AIProvider is the enrichment boundary. Every method is best-effort: a
// failure degrades the result, it never fails the surrounding write.
type AIProvider interface {
	Embedding(ctx context.Context, text string) ([]float32, error)
	GenerateTitle(ctx context.Context, content string) (string, error)
	SuggestTags(ctx context.Context, content string, limit int) ([]string, error)
}

// TagResolver resolves free-form tag names to rows, creating them as needed.
type TagResolver interface {
	FindOrCreate(ctx context.Context, name string, color string) (*store.Tag, error)
}

// Service exposes note operations on top of the store.
type Service struct {
	store *store.Store
	tags  TagResolver
	ai    AIProvider // nil when AI is disabled
}

// NewService creates a note service. ai may be nil to disable enrichment.
func NewService(st *store.Store, tags TagResolver, ai AIProvider) *Service {
	return &Service{
		store: st,
		tags:  tags,
		ai:    ai,
	}
}

// NoteInput carries the client payload for create and update. Nil fields are
// absent; a pointer to an empty string is an explicit clear. TagIDs and
// TagList are mutually informative: explicit IDs win when both are present.
type NoteInput struct {
	Title    *string
	Content  *string
	Category *string
	TagIDs   []int32
	TagList  *string
}

// hasTagInput reports whether the payload carries any tag information.
func (in *NoteInput) hasTagInput() bool {
	return in.TagIDs != nil || in.TagList != nil
}

// CreateNote creates a note, resolving tags and requesting best-effort
// enrichment, and returns the hydrated result.
func (s *Service) CreateNote(ctx context.Context, input *NoteInput) (*store.Note, error) {
	var embedding []float32
	if input.Content != nil && *input.Content != "" {
		embedding = s.bestEffortEmbedding(ctx, *input.Content)
	}

	title := ""
	if input.Title != nil {
		title = strings.TrimSpace(*input.Title)
	}
	if title == "" {
		title = store.DefaultNoteTitle
		if input.Content != nil && len(*input.Content) > titleContentThreshold {
			if generated := s.bestEffortTitle(ctx, *input.Content); generated != "" {
				title = generated
			}
		}
	}

	tagIDs, err := s.resolveTags(ctx, input.TagIDs, input.TagList)
	if err != nil {
		return nil, err
	}

	create := &store.Note{
		UID:       shortuuid.New(),
		Title:     title,
		Content:   input.Content,
		Category:  input.Category,
		Embedding: embedding,
	}
	return s.store.CreateNote(ctx, create, tagIDs)
}

// UpdateNote applies a partial update. The embedding is recomputed whenever
// content is part of the payload, including an explicit clear. Tag
// associations are replaced atomically when any tag input is present. Fails
// with store.ErrNotFound when the note does not exist.
func (s *Service) UpdateNote(ctx context.Context, id int32, input *NoteInput) (*store.Note, error) {
	update := &store.UpdateNote{
		ID:       id,
		Content:  input.Content,
		Category: input.Category,
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			title = store.DefaultNoteTitle
		}
		update.Title = &title
	}

	if input.Content != nil {
		update.SetEmbedding = true
		if *input.Content != "" {
			update.Embedding = s.bestEffortEmbedding(ctx, *input.Content)
		}
	}

	if input.hasTagInput() {
		tagIDs, err := s.resolveTags(ctx, input.TagIDs, input.TagList)
		if err != nil {
			return nil, err
		}
		update.TagIDs = &tagIDs
	}

	return s.store.UpdateNote(ctx, update)
}

// DeleteNote removes a note with its join rows and version snapshots.
func (s *Service) DeleteNote(ctx context.Context, id int32) error {
	return s.store.DeleteNote(ctx, &store.DeleteNote{ID: id})
}

// GetNote returns a hydrated note, or nil when absent.
func (s *Service) GetNote(ctx context.Context, id int32) (*store.Note, error) {
	return s.store.GetNote(ctx, &store.FindNote{ID: &id})
}

// ListNotes lists all hydrated notes, most recently updated first.
func (s *Service) ListNotes(ctx context.Context) ([]*store.Note, error) {
	return s.store.ListNotes(ctx, &store.FindNote{})
}

// SearchNotes matches the query case-insensitively as a substring of title
// or content, returning up to limit hydrated notes.
func (s *Service) SearchNotes(ctx context.Context, query string, limit int) ([]*store.Note, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return s.store.ListNotes(ctx, &store.FindNote{Search: &query, Limit: &limit})
}

// SemanticSearchNotes ranks notes by vector similarity to the query. It
// degrades to substring search when enrichment is disabled, the provider
// fails, or the driver cannot serve vector queries.
func (s *Service) SemanticSearchNotes(ctx context.Context, query string, limit int) ([]*store.Note, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if s.ai == nil {
		return s.SearchNotes(ctx, query, limit)
	}

	embedding := s.bestEffortEmbedding(ctx, query)
	if embedding == nil {
		return s.SearchNotes(ctx, query, limit)
	}

	notes, err := s.store.SearchNotesByVector(ctx, embedding, limit)
	if err != nil {
		if errors.Is(err, store.ErrVectorSearchUnsupported) {
			return s.SearchNotes(ctx, query, limit)
		}
		return nil, err
	}
	return notes, nil
}

// CreateVersion appends a snapshot of the given note. Fails with
// store.ErrInvalidReference when the note does not exist.
func (s *Service) CreateVersion(ctx context.Context, noteID int32, title string, content *string) (*store.NoteVersion, error) {
	if title == "" {
		title = store.DefaultNoteTitle
	}
	return s.store.CreateNoteVersion(ctx, &store.NoteVersion{
		NoteID:  noteID,
		Title:   title,
		Content: content,
	})
}

// ListVersions lists a note's snapshots, newest first.
func (s *Service) ListVersions(ctx context.Context, noteID int32) ([]*store.NoteVersion, error) {
	return s.store.ListNoteVersions(ctx, &store.FindNoteVersion{NoteID: &noteID})
}

// SuggestTags extracts up to limit tag names from a note's content. The
// suggestions are names only; nothing is persisted. Fails with
// store.ErrNotFound when the note does not exist.
func (s *Service) SuggestTags(ctx context.Context, noteID int32, limit int) ([]string, error) {
	note, err := s.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, errors.Wrapf(store.ErrNotFound, "note %d", noteID)
	}
	if s.ai == nil || note.Content == nil || *note.Content == "" {
		return []string{}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, aiCallTimeout)
	defer cancel()
	suggestions, err := s.ai.SuggestTags(callCtx, *note.Content, limit)
	if err != nil {
		slog.Warn("tag suggestion failed", "note_id", noteID, "error", err)
		return []string{}, nil
	}
	return suggestions, nil
}

// bestEffortEmbedding returns a vector for the text, or nil when enrichment
// is disabled or the provider fails.
func (s *Service) bestEffortEmbedding(ctx context.Context, text string) []float32 {
	if s.ai == nil {
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, aiCallTimeout)
	defer cancel()
	embedding, err := s.ai.Embedding(callCtx, text)
	if err != nil {
		slog.Warn("embedding generation failed", "error", err)
		return nil
	}
	return embedding
}

// bestEffortTitle returns a generated title, or "" when enrichment is
// disabled or the provider fails.
func (s *Service) bestEffortTitle(ctx context.Context, content string) string {
	if s.ai == nil {
		return ""
	}
	callCtx, cancel := context.WithTimeout(ctx, aiCallTimeout)
	defer cancel()
	title, err := s.ai.GenerateTitle(callCtx, content)
	if err != nil {
		slog.Warn("title generation failed", "error", err)
		return ""
	}
	return strings.TrimSpace(title)
}
