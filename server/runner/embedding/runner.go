// Package embedding backfills note embeddings. Notes written while the
// provider was down or disabled are picked up here so the vector column
// converges without blocking any user-facing write.
package embedding

import (
	"context"
	"log/slog"
	"time"

	"github.com/insightink/insightink/store"
)

// EmbeddingService generates a vector for a piece of text.
type EmbeddingService interface {
	Embedding(ctx context.Context, text string) ([]float32, error)
}

type Runner struct {
	store     *store.Store
	provider  EmbeddingService
	interval  time.Duration
	batchSize int
}

// NewRunner creates an embedding backfill runner. Small batches keep memory
// and provider pressure low on a personal-sized deployment.
func NewRunner(store *store.Store, provider EmbeddingService) *Runner {
	return &Runner{
		store:     store,
		provider:  provider,
		interval:  2 * time.Minute,
		batchSize: 8,
	}
}

// Run starts the background task.
func (r *Runner) Run(ctx context.Context) {
	// Process once on startup
	r.processPendingNotes(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.processPendingNotes(ctx)
		case <-ctx.Done():
			slog.Info("embedding runner stopped")
			return
		}
	}
}

// RunOnce processes pending notes once (for manual trigger).
func (r *Runner) RunOnce(ctx context.Context) {
	r.processPendingNotes(ctx)
}

func (r *Runner) processPendingNotes(ctx context.Context) {
	limit := r.batchSize * 20
	notes, err := r.store.ListNotes(ctx, &store.FindNote{
		MissingEmbedding: true,
		Limit:            &limit,
	})
	if err != nil {
		slog.Error("failed to find notes without embedding", "error", err)
		return
	}
	if len(notes) == 0 {
		return
	}

	slog.Info("processing notes for embedding", "count", len(notes))

	processed := 0
	for _, note := range notes {
		select {
		case <-ctx.Done():
			slog.Info("embedding processing cancelled", "processed", processed, "total", len(notes))
			return
		default:
		}

		if note.Content == nil || *note.Content == "" {
			continue
		}
		vector, err := r.provider.Embedding(ctx, *note.Content)
		if err != nil {
			slog.Warn("failed to embed note", "note_id", note.ID, "error", err)
			continue
		}
		if err := r.store.UpdateNoteEmbedding(ctx, note.ID, vector); err != nil {
			slog.Error("failed to store note embedding", "note_id", note.ID, "error", err)
			continue
		}
		processed++

		// Throttle between batches to avoid hammering the provider.
		if processed%r.batchSize == 0 {
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
		}
	}

	if processed > 0 {
		slog.Info("embedding backfill complete", "processed", processed)
	}
}
