package scrape

import "fmt"

// FetchError indicates a network or HTTP-level failure reaching the listing
// endpoint. The cycle is skipped; nothing is persisted.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError indicates the listing page no longer matches the extraction
// schema. It is deliberately distinct from an empty listing: an empty result
// with an intact row container means "no disclosures", a missing container
// means the site changed. Snippet carries raw page context for diagnosis.
type ParseError struct {
	URL     string
	Reason  string
	Snippet string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.URL, e.Reason)
}
