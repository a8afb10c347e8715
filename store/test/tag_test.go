package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/insightink/insightink/store"
)

func TestTagStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	defer ts.Close()

	tag, err := ts.CreateTag(ctx, &store.Tag{Name: "Work", Color: "#EF4444"})
	require.NoError(t, err)
	require.Greater(t, tag.ID, int32(0))
	require.Equal(t, "Work", tag.Name)
	require.Equal(t, "#EF4444", tag.Color)
	require.Greater(t, tag.CreatedTs, int64(0))

	found, err := ts.GetTag(ctx, &store.FindTag{ID: &tag.ID})
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, tag.Name, found.Name)

	missing := int32(99999)
	none, err := ts.GetTag(ctx, &store.FindTag{ID: &missing})
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestTagNameCaseInsensitiveUnique(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	defer ts.Close()

	created, err := ts.CreateTag(ctx, &store.Tag{Name: "Work", Color: "#EF4444"})
	require.NoError(t, err)

	// Any casing of an existing name is rejected by the unique index.
	_, err = ts.CreateTag(ctx, &store.Tag{Name: "work", Color: "#3B82F6"})
	require.ErrorIs(t, err, store.ErrTagNameExists)
	_, err = ts.CreateTag(ctx, &store.Tag{Name: "WORK", Color: "#3B82F6"})
	require.ErrorIs(t, err, store.ErrTagNameExists)

	// Lookup matches regardless of casing and returns the original row.
	found, err := ts.GetTagByName(ctx, "wOrK")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, created.ID, found.ID)
	require.Equal(t, "Work", found.Name)

	absent, err := ts.GetTagByName(ctx, "leisure")
	require.NoError(t, err)
	require.Nil(t, absent)
}

func TestTagListOrder(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	defer ts.Close()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := ts.CreateTag(ctx, &store.Tag{Name: name, Color: "#10B981"})
		require.NoError(t, err)
	}

	tags, err := ts.ListTags(ctx, &store.FindTag{})
	require.NoError(t, err)
	require.Len(t, tags, 3)
	require.Equal(t, "alpha", tags[0].Name)
	require.Equal(t, "mid", tags[1].Name)
	require.Equal(t, "zeta", tags[2].Name)
}

func TestTagUpdate(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	defer ts.Close()

	tag, err := ts.CreateTag(ctx, &store.Tag{Name: "draft", Color: "#F59E0B"})
	require.NoError(t, err)
	taken, err := ts.CreateTag(ctx, &store.Tag{Name: "final", Color: "#F59E0B"})
	require.NoError(t, err)

	renamed := "published"
	updated, err := ts.UpdateTag(ctx, &store.UpdateTag{ID: tag.ID, Name: &renamed})
	require.NoError(t, err)
	require.Equal(t, "published", updated.Name)
	require.Equal(t, "#F59E0B", updated.Color)

	// The old name is free again after the rename.
	old, err := ts.GetTagByName(ctx, "draft")
	require.NoError(t, err)
	require.Nil(t, old)

	// Renaming onto a taken name fails, case-insensitively.
	conflict := "FINAL"
	_, err = ts.UpdateTag(ctx, &store.UpdateTag{ID: tag.ID, Name: &conflict})
	require.ErrorIs(t, err, store.ErrTagNameExists)

	// The holder of the contested name is untouched.
	holder, err := ts.GetTag(ctx, &store.FindTag{ID: &taken.ID})
	require.NoError(t, err)
	require.Equal(t, "final", holder.Name)

	ghost := "ghost"
	_, err = ts.UpdateTag(ctx, &store.UpdateTag{ID: 99999, Name: &ghost})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestTagDeleteCascade(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	defer ts.Close()

	tag, err := ts.CreateTag(ctx, &store.Tag{Name: "fleeting", Color: "#8B5CF6"})
	require.NoError(t, err)
	keep, err := ts.CreateTag(ctx, &store.Tag{Name: "keep", Color: "#8B5CF6"})
	require.NoError(t, err)

	note, err := ts.CreateNote(ctx, &store.Note{
		UID:   "tag-cascade",
		Title: "Tag cascade",
	}, []int32{tag.ID, keep.ID})
	require.NoError(t, err)
	require.Len(t, note.Tags, 2)

	err = ts.DeleteTag(ctx, &store.DeleteTag{ID: tag.ID})
	require.NoError(t, err)

	// The note survives with only the remaining association.
	refreshed, err := ts.GetNote(ctx, &store.FindNote{ID: &note.ID})
	require.NoError(t, err)
	require.NotNil(t, refreshed)
	require.Len(t, refreshed.Tags, 1)
	require.Equal(t, keep.ID, refreshed.Tags[0].TagID)

	// The name is reusable after deletion, despite the name cache.
	recreated, err := ts.CreateTag(ctx, &store.Tag{Name: "Fleeting", Color: "#8B5CF6"})
	require.NoError(t, err)
	require.NotEqual(t, tag.ID, recreated.ID)
}
