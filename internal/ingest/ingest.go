// Package ingest merges scraped disclosures against persisted state and
// determines which ones are genuinely new.
package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonesrussell/idxwatch/internal/events"
	"github.com/jonesrussell/idxwatch/internal/logger"
	"github.com/jonesrussell/idxwatch/internal/models"
)

// DisclosureStore is the persistence surface the engine needs.
type DisclosureStore interface {
	InsertIfNew(ctx context.Context, d *models.Disclosure) (bool, error)
}

// Engine deduplicates candidate disclosures against the store. All ingestion
// paths (scheduled cycle, manual refresh) go through one Engine instance, and
// Ingest holds a mutex for the whole batch, so external triggers serialize
// against the scheduler's ingestion step.
type Engine struct {
	store     DisclosureStore
	publisher *events.Publisher
	logger    logger.Logger
	mu        sync.Mutex
}

func NewEngine(store DisclosureStore, publisher *events.Publisher, log logger.Logger) *Engine {
	return &Engine{
		store:     store,
		publisher: publisher,
		logger:    log,
	}
}

// Ingest persists candidates whose identity key is not yet known and returns
// the newly inserted records in candidate order. A store failure aborts the
// batch: records inserted before the failure stay persisted (they will not
// re-notify), the rest are retried on the next cycle.
//
// Callers must not invoke Ingest with the output of a failed scrape; a scrape
// failure means "unknown state", not "no new disclosures".
func (e *Engine) Ingest(ctx context.Context, candidates []models.Disclosure) ([]models.Disclosure, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	newRecords := make([]models.Disclosure, 0)
	for i := range candidates {
		candidate := candidates[i]
		inserted, err := e.store.InsertIfNew(ctx, &candidate)
		if err != nil {
			return nil, fmt.Errorf("ingest %s: %w", candidate.ID, err)
		}
		if !inserted {
			continue
		}

		newRecords = append(newRecords, candidate)
		e.publisher.PublishCreated(candidate)

		e.logger.Info("New disclosure ingested",
			logger.String("id", candidate.ID),
			logger.String("stock_code", candidate.StockCode),
			logger.String("category", candidate.Category),
		)
	}

	return newRecords, nil
}
