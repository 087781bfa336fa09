package scrape_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/idxwatch/internal/config"
	"github.com/jonesrussell/idxwatch/internal/models"
	"github.com/jonesrussell/idxwatch/internal/scrape"
	"github.com/jonesrussell/idxwatch/internal/testhelpers"
)

const listingPage = `<html><body>
<table>
  <tr><th>Tanggal</th><th>Kode</th><th>Judul</th></tr>
  <tr>
    <td>2026-08-25</td>
    <td>bbca</td>
    <td>Penyampaian Laporan Keuangan Interim</td>
    <td><a href="/attachments/bbca-lk.pdf">PDF</a></td>
  </tr>
  <tr>
    <td>2026-08-25</td>
    <td>TLKM</td>
    <td>Jadwal Pembagian Dividen Tunai</td>
    <td></td>
  </tr>
  <tr>
    <td>2026-08-25</td>
    <td>bbca</td>
    <td>Penyampaian Laporan Keuangan Interim</td>
    <td><a href="/attachments/bbca-lk.pdf">PDF</a></td>
  </tr>
  <tr>
    <td>2026-08-25</td>
    <td></td>
    <td>Row without a stock code</td>
  </tr>
</table>
</body></html>`

func testSchema() config.SchemaConfig {
	return config.SchemaConfig{
		RowContainer: "table",
		Row:          "tr",
		DateColumn:   0,
		CodeColumn:   1,
		TitleColumn:  2,
		MinColumns:   3,
		DocLink:      "a[href]",
	}
}

func newTestFetcher(t *testing.T, serverURL string) *scrape.Fetcher {
	t.Helper()
	f, err := scrape.NewFetcher(config.ScraperConfig{
		ListingURL:   serverURL,
		FetchTimeout: 5 * time.Second,
		UserAgent:    "test-agent",
		Schema:       testSchema(),
	}, testhelpers.NewTestLogger())
	require.NoError(t, err)
	return f
}

func TestFetchParsesListing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(listingPage))
	}))
	defer server.Close()

	fetcher := newTestFetcher(t, server.URL)
	disclosures, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)

	// Header row, duplicate row, and the row without a code are skipped.
	require.Len(t, disclosures, 2)

	first := disclosures[0]
	assert.Equal(t, "BBCA", first.StockCode)
	assert.Equal(t, "Penyampaian Laporan Keuangan Interim", first.Title)
	assert.Equal(t, "2026-08-25", first.Date)
	assert.Equal(t, models.CategoryFinancialReport, first.Category)
	assert.Equal(t, server.URL+"/attachments/bbca-lk.pdf", first.PDFLink)
	assert.Equal(t, models.IdentityKey("BBCA", "2026-08-25", first.Title), first.ID)
	assert.False(t, first.ScrapedAt.IsZero())

	second := disclosures[1]
	assert.Equal(t, "TLKM", second.StockCode)
	assert.Equal(t, models.CategoryCorporateAction, second.Category)
	assert.Empty(t, second.PDFLink)
}

func TestFetchMissingContainerIsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div>maintenance page</div></body></html>`))
	}))
	defer server.Close()

	fetcher := newTestFetcher(t, server.URL)
	_, err := fetcher.Fetch(context.Background())

	var parseErr *scrape.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, server.URL, parseErr.URL)
	assert.Contains(t, parseErr.Reason, "row container")
	assert.Contains(t, parseErr.Snippet, "maintenance page")
}

func TestFetchEmptyTableIsNotAnError(t *testing.T) {
	// The container is present but holds no data rows. That is a valid empty
	// listing, not a structure change.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><table><tr><th>Tanggal</th><th>Kode</th><th>Judul</th></tr></table></body></html>`))
	}))
	defer server.Close()

	fetcher := newTestFetcher(t, server.URL)
	disclosures, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, disclosures)
	assert.Empty(t, disclosures)
}

func TestFetchNon200IsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fetcher := newTestFetcher(t, server.URL)
	_, err := fetcher.Fetch(context.Background())

	var fetchErr *scrape.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
}

func TestFetchUnreachableHostIsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	fetcher := newTestFetcher(t, server.URL)
	_, err := fetcher.Fetch(context.Background())

	var fetchErr *scrape.FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestFetchHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	fetcher := newTestFetcher(t, server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := fetcher.Fetch(ctx)
	require.Error(t, err)
}
