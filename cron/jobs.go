package cron

import (
	"context"
	"log/slog"
	"time"
)

// SearchReindexJob rebuilds the product search index on a schedule.
const SearchReindexJob = "searchreindex"

// Reindexer sends every product to the search index and returns how many it sent.
type Reindexer func(ctx context.Context, batchSize int) (int, error)

// RegisterSearchReindex registers SearchReindexJob. Call before Jobs or StartCron.
func RegisterSearchReindex(schedule string, batchSize int, reindex Reindexer, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	Register(SearchReindexJob, schedule, func(...string) {
		start := time.Now()
		n, err := reindex(context.Background(), batchSize)
		if err != nil {
			log.Error("search reindex failed", "error", err)
			return
		}
		log.Info("search reindex finished", "products", n, "took", time.Since(start).Round(time.Millisecond))
	})
}
