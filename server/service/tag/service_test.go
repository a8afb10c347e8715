package tag_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	tagsvc "github.com/insightink/insightink/server/service/tag"
	"github.com/insightink/insightink/store"
	storetest "github.com/insightink/insightink/store/test"
)

type fixedColorPicker struct{ color string }

func (p fixedColorPicker) Pick() string { return p.color }

func newTestingService(ctx context.Context, t *testing.T) (*tagsvc.Service, *store.Store) {
	ts := storetest.NewTestingStore(ctx, t)
	t.Cleanup(func() { ts.Close() })
	svc := tagsvc.NewService(ts, tagsvc.WithColorPicker(fixedColorPicker{color: "#4263eb"}))
	return svc, ts
}

func TestCreateTagIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestingService(ctx, t)

	created, err := svc.CreateTag(ctx, "Work", "#fa5252")
	require.NoError(t, err)
	require.Equal(t, "Work", created.Name)
	require.Equal(t, "#fa5252", created.Color)

	// Re-creating under any casing returns the existing row unchanged; in
	// particular the color is not overwritten.
	again, err := svc.CreateTag(ctx, "work", "#40c057")
	require.NoError(t, err)
	require.Equal(t, created.ID, again.ID)
	require.Equal(t, "Work", again.Name)
	require.Equal(t, "#fa5252", again.Color)

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
}

func TestCreateTagAssignsColor(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestingService(ctx, t)

	created, err := svc.CreateTag(ctx, "colorless", "")
	require.NoError(t, err)
	require.Equal(t, "#4263eb", created.Color)
}

func TestCreateTagValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestingService(ctx, t)

	_, err := svc.CreateTag(ctx, "", "")
	require.Error(t, err)
	_, err = svc.CreateTag(ctx, "   ", "")
	require.Error(t, err)

	// Surrounding whitespace is trimmed before lookup and insert.
	created, err := svc.CreateTag(ctx, "  spaced  ", "")
	require.NoError(t, err)
	require.Equal(t, "spaced", created.Name)
	same, err := svc.CreateTag(ctx, "spaced", "")
	require.NoError(t, err)
	require.Equal(t, created.ID, same.ID)
}

func TestFindOrCreateConcurrent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestingService(ctx, t)

	const workers = 8
	ids := make([]int32, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tag, err := svc.FindOrCreate(ctx, "shared", "")
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = tag.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, ids[0], ids[i])
	}

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
}

func TestUpdateTagService(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestingService(ctx, t)

	created, err := svc.CreateTag(ctx, "old", "#fab005")
	require.NoError(t, err)

	name := "  new  "
	updated, err := svc.UpdateTag(ctx, created.ID, &name, nil)
	require.NoError(t, err)
	require.Equal(t, "new", updated.Name)
	require.Equal(t, "#fab005", updated.Color)

	empty := "   "
	_, err = svc.UpdateTag(ctx, created.ID, &empty, nil)
	require.Error(t, err)
}

func TestNotesByTag(t *testing.T) {
	ctx := context.Background()
	svc, ts := newTestingService(ctx, t)

	tagged, err := svc.CreateTag(ctx, "tagged", "")
	require.NoError(t, err)
	other, err := svc.CreateTag(ctx, "other", "")
	require.NoError(t, err)

	_, err = ts.CreateNote(ctx, &store.Note{UID: "n1", Title: "First"}, []int32{tagged.ID})
	require.NoError(t, err)
	_, err = ts.CreateNote(ctx, &store.Note{UID: "n2", Title: "Second"}, []int32{other.ID})
	require.NoError(t, err)

	notes, err := svc.NotesByTag(ctx, tagged.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, "First", notes[0].Title)

	require.NoError(t, svc.DeleteTag(ctx, tagged.ID))
	notes, err = svc.NotesByTag(ctx, tagged.ID)
	require.NoError(t, err)
	require.Empty(t, notes)
}
