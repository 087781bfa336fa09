package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/idxwatch/internal/models"
	"github.com/jonesrussell/idxwatch/internal/repository"
	"github.com/jonesrussell/idxwatch/internal/testhelpers"
)

func newDisclosure(id string, scrapedAt time.Time) *models.Disclosure {
	return &models.Disclosure{
		ID:        id,
		StockCode: "BBCA",
		Title:     "Laporan Keuangan Interim",
		Date:      "2026-08-25",
		Category:  models.CategoryFinancialReport,
		PDFLink:   "https://www.idx.co.id/doc.pdf",
		ScrapedAt: scrapedAt,
	}
}

func TestDisclosureInsertIfNew(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	repo := repository.NewDisclosureRepository(db.DB(), testhelpers.NewTestLogger())
	ctx := context.Background()

	d := newDisclosure("BBCA_2026-08-25_Laporan", time.Now().UTC())

	inserted, err := repo.InsertIfNew(ctx, d)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same identity key again is a no-op.
	inserted, err = repo.InsertIfNew(ctx, d)
	require.NoError(t, err)
	assert.False(t, inserted)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDisclosureInsertPreservesFields(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	repo := repository.NewDisclosureRepository(db.DB(), testhelpers.NewTestLogger())
	ctx := context.Background()

	scrapedAt := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	d := newDisclosure("BBCA_2026-08-25_Laporan", scrapedAt)

	_, err := repo.InsertIfNew(ctx, d)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.StockCode, got.StockCode)
	assert.Equal(t, d.Title, got.Title)
	assert.Equal(t, d.Date, got.Date)
	assert.Equal(t, d.Category, got.Category)
	assert.Equal(t, d.PDFLink, got.PDFLink)
	assert.False(t, got.Notified)
}

func TestDisclosureGetByIDNotFound(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	repo := repository.NewDisclosureRepository(db.DB(), testhelpers.NewTestLogger())

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDisclosureMarkNotified(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	repo := repository.NewDisclosureRepository(db.DB(), testhelpers.NewTestLogger())
	ctx := context.Background()

	d := newDisclosure("BBCA_2026-08-25_Laporan", time.Now().UTC())
	_, err := repo.InsertIfNew(ctx, d)
	require.NoError(t, err)

	require.NoError(t, repo.MarkNotified(ctx, d.ID))

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, got.Notified)
}

func TestDisclosureMarkNotifiedMissing(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	repo := repository.NewDisclosureRepository(db.DB(), testhelpers.NewTestLogger())

	err := repo.MarkNotified(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDisclosureLatestOrdersByScrapedAt(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	repo := repository.NewDisclosureRepository(db.DB(), testhelpers.NewTestLogger())
	ctx := context.Background()

	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		d := newDisclosure(id, base.Add(time.Duration(i)*time.Minute))
		_, err := repo.InsertIfNew(ctx, d)
		require.NoError(t, err)
	}

	latest, err := repo.Latest(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "third", latest[0].ID)
	assert.Equal(t, "second", latest[1].ID)
}

func TestDisclosureLatestEmpty(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	repo := repository.NewDisclosureRepository(db.DB(), testhelpers.NewTestLogger())

	latest, err := repo.Latest(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, latest)
}
