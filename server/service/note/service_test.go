package note_test

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	notesvc "github.com/insightink/insightink/server/service/note"
	tagsvc "github.com/insightink/insightink/server/service/tag"
	"github.com/insightink/insightink/store"
	storetest "github.com/insightink/insightink/store/test"
)

// mockAI counts calls and returns whatever the test wires in.
type mockAI struct {
	embedFn   func(ctx context.Context, text string) ([]float32, error)
	titleFn   func(ctx context.Context, content string) (string, error)
	suggestFn func(ctx context.Context, content string, limit int) ([]string, error)

	embedCalls int
	titleCalls int
}

func (m *mockAI) Embedding(ctx context.Context, text string) ([]float32, error) {
	m.embedCalls++
	if m.embedFn == nil {
		return []float32{0.1, 0.2, 0.3}, nil
	}
	return m.embedFn(ctx, text)
}

func (m *mockAI) GenerateTitle(ctx context.Context, content string) (string, error) {
	m.titleCalls++
	if m.titleFn == nil {
		return "Generated Title", nil
	}
	return m.titleFn(ctx, content)
}

func (m *mockAI) SuggestTags(ctx context.Context, content string, limit int) ([]string, error) {
	if m.suggestFn == nil {
		return []string{"work", "ideas"}, nil
	}
	return m.suggestFn(ctx, content, limit)
}

func newTestingService(ctx context.Context, t *testing.T, ai notesvc.AIProvider) (*notesvc.Service, *store.Store) {
	ts := storetest.NewTestingStore(ctx, t)
	t.Cleanup(func() { ts.Close() })
	tags := tagsvc.NewService(ts)
	return notesvc.NewService(ts, tags, ai), ts
}

func stringPtr(s string) *string {
	return &s
}

// longContent exceeds the title-generation threshold.
func longContent() string {
	return strings.Repeat("markdown body text ", 10)
}

func TestCreateNoteDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestingService(ctx, t, nil)

	note, err := svc.CreateNote(ctx, &notesvc.NoteInput{})
	require.NoError(t, err)
	require.Equal(t, store.DefaultNoteTitle, note.Title)
	require.NotEmpty(t, note.UID)
	require.Nil(t, note.Content)
	require.Nil(t, note.Category)
	require.Empty(t, note.Tags)
	require.Nil(t, note.Embedding)
}

func TestCreateNoteGeneratedTitle(t *testing.T) {
	ctx := context.Background()
	ai := &mockAI{}
	svc, _ := newTestingService(ctx, t, ai)

	note, err := svc.CreateNote(ctx, &notesvc.NoteInput{
		Content: stringPtr(longContent()),
	})
	require.NoError(t, err)
	require.Equal(t, "Generated Title", note.Title)
	require.Equal(t, 1, ai.titleCalls)
	require.Equal(t, []float32{0.1, 0.2, 0.3}, note.Embedding)
}

func TestCreateNoteShortContentSkipsTitleGeneration(t *testing.T) {
	ctx := context.Background()
	ai := &mockAI{}
	svc, _ := newTestingService(ctx, t, ai)

	note, err := svc.CreateNote(ctx, &notesvc.NoteInput{
		Content: stringPtr("short"),
	})
	require.NoError(t, err)
	require.Equal(t, store.DefaultNoteTitle, note.Title)
	require.Equal(t, 0, ai.titleCalls)
	// Short content is still embedded.
	require.Equal(t, 1, ai.embedCalls)
}

func TestCreateNoteExplicitTitleWins(t *testing.T) {
	ctx := context.Background()
	ai := &mockAI{}
	svc, _ := newTestingService(ctx, t, ai)

	note, err := svc.CreateNote(ctx, &notesvc.NoteInput{
		Title:   stringPtr("My Title"),
		Content: stringPtr(longContent()),
	})
	require.NoError(t, err)
	require.Equal(t, "My Title", note.Title)
	require.Equal(t, 0, ai.titleCalls)
}

func TestCreateNoteProviderFailure(t *testing.T) {
	ctx := context.Background()
	ai := &mockAI{
		embedFn: func(context.Context, string) ([]float32, error) {
			return nil, errors.New("provider unavailable")
		},
		titleFn: func(context.Context, string) (string, error) {
			return "", errors.New("provider unavailable")
		},
	}
	svc, ts := newTestingService(ctx, t, ai)

	// Enrichment failures degrade the result; the write still succeeds.
	note, err := svc.CreateNote(ctx, &notesvc.NoteInput{
		Content: stringPtr(longContent()),
	})
	require.NoError(t, err)
	require.Equal(t, store.DefaultNoteTitle, note.Title)
	require.Nil(t, note.Embedding)

	// The note is left pending for the backfill runner.
	pending, err := ts.ListNotes(ctx, &store.FindNote{MissingEmbedding: true})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, note.ID, pending[0].ID)
}

func TestCreateNoteWithTagList(t *testing.T) {
	ctx := context.Background()
	svc, ts := newTestingService(ctx, t, nil)

	note, err := svc.CreateNote(ctx, &notesvc.NoteInput{
		Title:   stringPtr("Tagged"),
		TagList: stringPtr("Work, personal, WORK"),
	})
	require.NoError(t, err)
	require.Len(t, note.Tags, 2)

	// A second note reusing a name resolves to the same tag row.
	second, err := svc.CreateNote(ctx, &notesvc.NoteInput{
		Title:   stringPtr("Also tagged"),
		TagList: stringPtr("work"),
	})
	require.NoError(t, err)
	require.Len(t, second.Tags, 1)

	tags, err := ts.ListTags(ctx, &store.FindTag{})
	require.NoError(t, err)
	require.Len(t, tags, 2)
}

func TestUpdateNotePartial(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestingService(ctx, t, nil)

	note, err := svc.CreateNote(ctx, &notesvc.NoteInput{
		Title:   stringPtr("Original"),
		Content: stringPtr("body"),
		TagList: stringPtr("keepme"),
	})
	require.NoError(t, err)

	// Title-only update keeps content and tags.
	updated, err := svc.UpdateNote(ctx, note.ID, &notesvc.NoteInput{
		Title: stringPtr("Renamed"),
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Title)
	require.NotNil(t, updated.Content)
	require.Len(t, updated.Tags, 1)

	// An empty title falls back to the default instead of storing "".
	updated, err = svc.UpdateNote(ctx, note.ID, &notesvc.NoteInput{
		Title: stringPtr("   "),
	})
	require.NoError(t, err)
	require.Equal(t, store.DefaultNoteTitle, updated.Title)

	_, err = svc.UpdateNote(ctx, 99999, &notesvc.NoteInput{Title: stringPtr("ghost")})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateNoteEmbeddingLifecycle(t *testing.T) {
	ctx := context.Background()
	ai := &mockAI{}
	svc, _ := newTestingService(ctx, t, ai)

	note, err := svc.CreateNote(ctx, &notesvc.NoteInput{
		Content: stringPtr("first body"),
	})
	require.NoError(t, err)
	require.NotNil(t, note.Embedding)

	// New content recomputes the vector.
	ai.embedFn = func(context.Context, string) ([]float32, error) {
		return []float32{0.9}, nil
	}
	updated, err := svc.UpdateNote(ctx, note.ID, &notesvc.NoteInput{
		Content: stringPtr("second body"),
	})
	require.NoError(t, err)
	require.Equal(t, []float32{0.9}, updated.Embedding)

	// Clearing content clears the vector with it.
	updated, err = svc.UpdateNote(ctx, note.ID, &notesvc.NoteInput{
		Content: stringPtr(""),
	})
	require.NoError(t, err)
	require.Nil(t, updated.Content)
	require.Nil(t, updated.Embedding)
}

func TestUpdateNoteTagReplacement(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestingService(ctx, t, nil)

	note, err := svc.CreateNote(ctx, &notesvc.NoteInput{
		Title:   stringPtr("Tagged"),
		TagList: stringPtr("a, b"),
	})
	require.NoError(t, err)
	require.Len(t, note.Tags, 2)

	// Tag input replaces the whole set.
	updated, err := svc.UpdateNote(ctx, note.ID, &notesvc.NoteInput{
		TagList: stringPtr("c"),
	})
	require.NoError(t, err)
	require.Len(t, updated.Tags, 1)
	require.Equal(t, "c", updated.Tags[0].Tag.Name)

	// An explicit empty list clears all associations.
	updated, err = svc.UpdateNote(ctx, note.ID, &notesvc.NoteInput{
		TagList: stringPtr(""),
	})
	require.NoError(t, err)
	require.Empty(t, updated.Tags)
}

func TestSearchNotes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestingService(ctx, t, nil)

	_, err := svc.CreateNote(ctx, &notesvc.NoteInput{
		Title:   stringPtr("Coffee brewing"),
		Content: stringPtr("pour-over notes"),
	})
	require.NoError(t, err)
	_, err = svc.CreateNote(ctx, &notesvc.NoteInput{
		Title:   stringPtr("Tea"),
		Content: stringPtr("nothing about the other drink"),
	})
	require.NoError(t, err)

	results, err := svc.SearchNotes(ctx, "COFFEE", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSemanticSearchFallsBackToSubstring(t *testing.T) {
	ctx := context.Background()
	ai := &mockAI{}
	svc, _ := newTestingService(ctx, t, ai)

	_, err := svc.CreateNote(ctx, &notesvc.NoteInput{
		Title:   stringPtr("Vector note"),
		Content: stringPtr("semantic content"),
	})
	require.NoError(t, err)

	// The sqlite driver cannot serve vector queries; the search degrades to a
	// substring match instead of failing.
	results, err := svc.SemanticSearchNotes(ctx, "semantic", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Same degradation when the provider is unavailable.
	ai.embedFn = func(context.Context, string) ([]float32, error) {
		return nil, errors.New("provider unavailable")
	}
	results, err = svc.SemanticSearchNotes(ctx, "semantic", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestNoteVersions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestingService(ctx, t, nil)

	note, err := svc.CreateNote(ctx, &notesvc.NoteInput{
		Title:   stringPtr("Versioned"),
		Content: stringPtr("v1"),
	})
	require.NoError(t, err)

	version, err := svc.CreateVersion(ctx, note.ID, "", stringPtr("v1"))
	require.NoError(t, err)
	require.Equal(t, store.DefaultNoteTitle, version.Title)

	_, err = svc.CreateVersion(ctx, note.ID, "Versioned", stringPtr("v2"))
	require.NoError(t, err)

	versions, err := svc.ListVersions(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)

	_, err = svc.CreateVersion(ctx, 99999, "Orphan", nil)
	require.ErrorIs(t, err, store.ErrInvalidReference)
}

func TestSuggestTags(t *testing.T) {
	ctx := context.Background()
	ai := &mockAI{}
	svc, _ := newTestingService(ctx, t, ai)

	note, err := svc.CreateNote(ctx, &notesvc.NoteInput{
		Content: stringPtr("planning the quarterly work"),
	})
	require.NoError(t, err)

	suggestions, err := svc.SuggestTags(ctx, note.ID, 5)
	require.NoError(t, err)
	require.Equal(t, []string{"work", "ideas"}, suggestions)

	// Provider failure yields no suggestions, not an error.
	ai.suggestFn = func(context.Context, string, int) ([]string, error) {
		return nil, errors.New("provider unavailable")
	}
	suggestions, err = svc.SuggestTags(ctx, note.ID, 5)
	require.NoError(t, err)
	require.Empty(t, suggestions)

	_, err = svc.SuggestTags(ctx, 99999, 5)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSuggestTagsWithoutProvider(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestingService(ctx, t, nil)

	note, err := svc.CreateNote(ctx, &notesvc.NoteInput{
		Content: stringPtr("some content"),
	})
	require.NoError(t, err)

	suggestions, err := svc.SuggestTags(ctx, note.ID, 5)
	require.NoError(t, err)
	require.Empty(t, suggestions)
}
