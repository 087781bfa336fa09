// Package models defines the persisted entities of the disclosure pipeline.
package models

import (
	"regexp"
	"strings"
	"time"
)

// identityKeyTitleLen is how much of the title participates in the identity
// key. Long enough to separate same-day filings from one issuer.
const identityKeyTitleLen = 20

var identityKeyStrip = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Disclosure is a single announcement scraped from the IDX listing.
// Immutable once stored, except for the Notified flag.
type Disclosure struct {
	ID        string    `json:"id"         db:"id"`
	StockCode string    `json:"stock_code" db:"stock_code"`
	Title     string    `json:"title"      db:"title"`
	Date      string    `json:"date"       db:"date"`
	Category  string    `json:"category"   db:"category"`
	PDFLink   string    `json:"pdf_link"   db:"pdf_link"`
	ScrapedAt time.Time `json:"scraped_at" db:"scraped_at"`
	Notified  bool      `json:"notified"   db:"notified"`
}

// IdentityKey derives the deduplication key for a disclosure from its source
// fields: stock code, reported date, and a title prefix, reduced to a safe
// character set.
func IdentityKey(stockCode, date, title string) string {
	t := title
	if len(t) > identityKeyTitleLen {
		t = t[:identityKeyTitleLen]
	}
	raw := stockCode + "_" + date + "_" + t
	return identityKeyStrip.ReplaceAllString(raw, "")
}

// Disclosure categories.
const (
	CategoryFinancialReport     = "Financial Report"
	CategoryCorporateAction     = "Corporate Action"
	CategoryRightsIssue         = "Rights Issue"
	CategoryMaterialInformation = "Material Information"
	CategoryAcquisition         = "Acquisition"
	CategoryOther               = "Other"
)

// categoryKeywords maps a category to the title keywords (Indonesian and
// English) that select it. Order matters: first match wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{CategoryFinancialReport, []string{"laporan keuangan", "financial statement", "quarterly", "tahunan"}},
	{CategoryCorporateAction, []string{"dividen", "dividend", "stock split", "pemecahan saham", "rups", "agm"}},
	{CategoryRightsIssue, []string{"hmetd", "rights issue", "right issue", "penawaran umum terbatas"}},
	{CategoryMaterialInformation, []string{"informasi material", "material information", "keterbukaan informasi"}},
	{CategoryAcquisition, []string{"akuisisi", "acquisition", "merger", "penggabungan"}},
}

// Categorize labels a disclosure based on keywords in its title.
func Categorize(title string) string {
	titleLower := strings.ToLower(title)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(titleLower, kw) {
				return c.category
			}
		}
	}
	return CategoryOther
}
