package embedding_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/insightink/insightink/server/runner/embedding"
	"github.com/insightink/insightink/store"
	storetest "github.com/insightink/insightink/store/test"
)

type stubEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (s *stubEmbedder) Embedding(_ context.Context, _ string) ([]float32, error) {
	s.calls++
	return s.vector, s.err
}

func stringPtr(s string) *string {
	return &s
}

func TestRunnerBackfillsPendingNotes(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	defer ts.Close()

	pending, err := ts.CreateNote(ctx, &store.Note{
		UID:     "pending",
		Title:   "Pending",
		Content: stringPtr("needs a vector"),
	}, nil)
	require.NoError(t, err)

	// Already embedded and content-less notes are not picked up.
	_, err = ts.CreateNote(ctx, &store.Note{
		UID:       "done",
		Title:     "Done",
		Content:   stringPtr("already embedded"),
		Embedding: []float32{0.5},
	}, nil)
	require.NoError(t, err)
	_, err = ts.CreateNote(ctx, &store.Note{
		UID:   "empty",
		Title: "Empty",
	}, nil)
	require.NoError(t, err)

	provider := &stubEmbedder{vector: []float32{0.1, 0.2}}
	runner := embedding.NewRunner(ts, provider)
	runner.RunOnce(ctx)

	require.Equal(t, 1, provider.calls)

	refreshed, err := ts.GetNote(ctx, &store.FindNote{ID: &pending.ID})
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.2}, refreshed.Embedding)

	remaining, err := ts.ListNotes(ctx, &store.FindNote{MissingEmbedding: true})
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestRunnerKeepsGoingOnProviderFailure(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	defer ts.Close()

	_, err := ts.CreateNote(ctx, &store.Note{
		UID:     "stuck",
		Title:   "Stuck",
		Content: stringPtr("provider will fail"),
	}, nil)
	require.NoError(t, err)

	provider := &stubEmbedder{err: errors.New("provider unavailable")}
	runner := embedding.NewRunner(ts, provider)
	runner.RunOnce(ctx)

	// The note stays pending for the next cycle.
	remaining, err := ts.ListNotes(ctx, &store.FindNote{MissingEmbedding: true})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
}
