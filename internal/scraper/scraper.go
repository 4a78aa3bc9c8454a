// Shared types for the scraping pipeline
// Stages talk through these interfaces so tests can swap the browser out

package scraper

import "context"

// Placeholder emitted when a card or detail page is missing a field.
const Placeholder = "N/A"

// Stub is the minimal identity of a job offer taken from a search-results
// page, before any detail enrichment.
type Stub struct {
	Title     string
	Company   string
	Location  string
	DetailURL string
}

// Details is what a detail-page visit yields for one stub.
type Details struct {
	Description   string
	RecruiterName string
	Email         string
}

// PageFetcher returns the fully rendered HTML for a URL.
type PageFetcher interface {
	FetchRenderedHTML(ctx context.Context, url string) (string, error)
}

// DetailFetcher resolves a stub's detail page. Implementations never fail:
// a stub that cannot be fetched or parsed yields all-placeholder Details.
type DetailFetcher interface {
	FetchDetails(ctx context.Context, stub Stub) Details
}
