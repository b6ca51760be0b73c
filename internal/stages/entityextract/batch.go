package entityextract

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// batchChunkSize bounds how many extraction calls run concurrently.
const batchChunkSize = 5

// BatchExtract processes items in chunks of five. Chunks run strictly in
// order; items within a chunk run concurrently. A failed item degrades to
// DefaultEntities without affecting its siblings, so the group never
// returns an error.
func (h *Handler) BatchExtract(ctx context.Context, items []BatchItem) map[string]ExtractedEntities {
	results := make(map[string]ExtractedEntities, len(items))
	var mu sync.Mutex

	for start := 0; start < len(items); start += batchChunkSize {
		end := start + batchChunkSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]

		g, gctx := errgroup.WithContext(ctx)
		for _, item := range chunk {
			g.Go(func() error {
				// Extract absorbs its own failures, so sibling items
				// are never cancelled.
				entities := h.Extract(gctx, item.Text)
				mu.Lock()
				results[item.ID] = entities
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	return results
}
