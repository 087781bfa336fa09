// Package scrape fetches the IDX disclosure listing and extracts structured
// disclosure records from it.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/idxwatch/internal/config"
	"github.com/jonesrussell/idxwatch/internal/logger"
	"github.com/jonesrussell/idxwatch/internal/models"
)

const (
	// maxBodySize caps how much of the listing page is read.
	maxBodySize = 4 << 20
	// snippetSize is how much raw page context a ParseError carries.
	snippetSize = 512
)

// Fetcher retrieves and parses the disclosure listing. It performs no
// retries; retry policy belongs to the scheduler.
type Fetcher struct {
	cfg     config.ScraperConfig
	baseURL *url.URL
	client  *http.Client
	logger  logger.Logger
	now     func() time.Time
}

func NewFetcher(cfg config.ScraperConfig, log logger.Logger) (*Fetcher, error) {
	base, err := url.Parse(cfg.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("parse listing URL: %w", err)
	}
	return &Fetcher{
		cfg:     cfg,
		baseURL: base,
		client: &http.Client{
			Timeout: cfg.FetchTimeout,
		},
		logger: log,
		now:    time.Now,
	}, nil
}

// Fetch downloads the listing page and returns its disclosures in page order
// (most recent first). It returns a *FetchError on transport failure and a
// *ParseError when the expected row container is absent. An intact page with
// no data rows yields an empty, non-nil slice.
func (f *Fetcher) Fetch(ctx context.Context) ([]models.Disclosure, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.ListingURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: f.cfg.ListingURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: f.cfg.ListingURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: f.cfg.ListingURL, Err: err}
	}

	disclosures, err := f.parse(body)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Listing scraped",
		logger.Int("disclosures", len(disclosures)),
	)
	return disclosures, nil
}

func (f *Fetcher) parse(body []byte) ([]models.Disclosure, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{
			URL:     f.cfg.ListingURL,
			Reason:  fmt.Sprintf("invalid HTML: %v", err),
			Snippet: snippet(body),
		}
	}

	schema := f.cfg.Schema
	containers := doc.Find(schema.RowContainer)
	if containers.Length() == 0 {
		return nil, &ParseError{
			URL:     f.cfg.ListingURL,
			Reason:  fmt.Sprintf("row container %q not found; page structure may have changed", schema.RowContainer),
			Snippet: snippet(body),
		}
	}

	scrapedAt := f.now().UTC()
	disclosures := make([]models.Disclosure, 0)
	seen := make(map[string]struct{})

	containers.Each(func(_ int, container *goquery.Selection) {
		container.Find(schema.Row).Each(func(_ int, row *goquery.Selection) {
			d, ok := f.parseRow(row, scrapedAt)
			if !ok {
				return
			}
			if _, dup := seen[d.ID]; dup {
				return
			}
			seen[d.ID] = struct{}{}
			disclosures = append(disclosures, d)
		})
	})

	return disclosures, nil
}

// parseRow maps one listing row to a disclosure via the column schema.
// Header rows and rows missing mandatory fields are skipped.
func (f *Fetcher) parseRow(row *goquery.Selection, scrapedAt time.Time) (models.Disclosure, bool) {
	schema := f.cfg.Schema

	cols := row.Find("td")
	if cols.Length() < schema.MinColumns {
		return models.Disclosure{}, false
	}

	date := strings.TrimSpace(cols.Eq(schema.DateColumn).Text())
	stockCode := strings.ToUpper(strings.TrimSpace(cols.Eq(schema.CodeColumn).Text()))
	title := strings.TrimSpace(cols.Eq(schema.TitleColumn).Text())

	if stockCode == "" || title == "" {
		return models.Disclosure{}, false
	}

	return models.Disclosure{
		ID:        models.IdentityKey(stockCode, date, title),
		StockCode: stockCode,
		Title:     title,
		Date:      date,
		Category:  models.Categorize(title),
		PDFLink:   f.documentLink(row),
		ScrapedAt: scrapedAt,
	}, true
}

// documentLink extracts the attachment link from a row, resolved against the
// listing URL. Missing links are fine; not every disclosure has a document.
func (f *Fetcher) documentLink(row *goquery.Selection) string {
	href, exists := row.Find(f.cfg.Schema.DocLink).First().Attr("href")
	if !exists {
		return ""
	}
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return f.baseURL.ResolveReference(ref).String()
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > snippetSize {
		s = s[:snippetSize]
	}
	return s
}
