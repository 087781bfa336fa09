package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/idxwatch/internal/ingest"
	"github.com/jonesrussell/idxwatch/internal/models"
	"github.com/jonesrussell/idxwatch/internal/testhelpers"
)

type fakeStore struct {
	known   map[string]struct{}
	failOn  string
	inserts []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{known: make(map[string]struct{})}
}

func (s *fakeStore) InsertIfNew(_ context.Context, d *models.Disclosure) (bool, error) {
	if s.failOn != "" && d.ID == s.failOn {
		return false, errors.New("disk full")
	}
	if _, ok := s.known[d.ID]; ok {
		return false, nil
	}
	s.known[d.ID] = struct{}{}
	s.inserts = append(s.inserts, d.ID)
	return true, nil
}

func candidate(id string) models.Disclosure {
	return models.Disclosure{
		ID:        id,
		StockCode: "BBCA",
		Title:     "Laporan Keuangan",
		Date:      "2026-08-25",
		Category:  models.CategoryFinancialReport,
		ScrapedAt: time.Now().UTC(),
	}
}

func TestIngestReturnsOnlyNewRecords(t *testing.T) {
	store := newFakeStore()
	store.known["already-known"] = struct{}{}
	engine := ingest.NewEngine(store, nil, testhelpers.NewTestLogger())

	newRecords, err := engine.Ingest(context.Background(), []models.Disclosure{
		candidate("already-known"),
		candidate("fresh-1"),
		candidate("fresh-2"),
	})
	require.NoError(t, err)

	require.Len(t, newRecords, 2)
	assert.Equal(t, "fresh-1", newRecords[0].ID)
	assert.Equal(t, "fresh-2", newRecords[1].ID)
}

func TestIngestIsIdempotent(t *testing.T) {
	store := newFakeStore()
	engine := ingest.NewEngine(store, nil, testhelpers.NewTestLogger())
	batch := []models.Disclosure{candidate("a"), candidate("b")}

	first, err := engine.Ingest(context.Background(), batch)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := engine.Ingest(context.Background(), batch)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestIngestEmptyBatch(t *testing.T) {
	engine := ingest.NewEngine(newFakeStore(), nil, testhelpers.NewTestLogger())

	newRecords, err := engine.Ingest(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, newRecords)
	assert.Empty(t, newRecords)
}

func TestIngestStoreFailureAbortsBatch(t *testing.T) {
	store := newFakeStore()
	store.failOn = "b"
	engine := ingest.NewEngine(store, nil, testhelpers.NewTestLogger())

	_, err := engine.Ingest(context.Background(), []models.Disclosure{
		candidate("a"), candidate("b"), candidate("c"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest b")

	// Records before the failure stay persisted; the rest were never tried.
	assert.Equal(t, []string{"a"}, store.inserts)
}

func TestIngestPreservesCandidateOrder(t *testing.T) {
	store := newFakeStore()
	engine := ingest.NewEngine(store, nil, testhelpers.NewTestLogger())

	newRecords, err := engine.Ingest(context.Background(), []models.Disclosure{
		candidate("z"), candidate("a"), candidate("m"),
	})
	require.NoError(t, err)

	ids := make([]string, 0, len(newRecords))
	for _, r := range newRecords {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"z", "a", "m"}, ids)
}
