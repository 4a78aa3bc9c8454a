package linkedin

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"go-jobmatcher/internal/scraper"

	"github.com/PuerkitoBio/goquery"
)

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)

// Enricher visits detail pages and extracts description, recruiter and
// contact email. It memoizes per URL so the contract-type filter pass and the
// final enrichment pass fetch each page once per run.
type Enricher struct {
	Fetcher scraper.PageFetcher
	Log     *slog.Logger

	memo map[string]scraper.Details
}

var allPlaceholders = scraper.Details{
	Description:   scraper.Placeholder,
	RecruiterName: scraper.Placeholder,
	Email:         scraper.Placeholder,
}

// FetchDetails never fails: any fetch or parse problem yields all-"N/A"
// details so one bad page cannot abort the batch.
func (e *Enricher) FetchDetails(ctx context.Context, stub scraper.Stub) scraper.Details {
	if stub.DetailURL == scraper.Placeholder || stub.DetailURL == "" {
		return allPlaceholders
	}
	if cached, ok := e.memo[stub.DetailURL]; ok {
		return cached
	}

	details := e.fetch(ctx, stub.DetailURL)
	if e.memo == nil {
		e.memo = make(map[string]scraper.Details)
	}
	e.memo[stub.DetailURL] = details
	return details
}

func (e *Enricher) fetch(ctx context.Context, detailURL string) scraper.Details {
	html, err := e.Fetcher.FetchRenderedHTML(ctx, detailURL)
	if err != nil {
		e.Log.Warn("detail page failed to load", "url", detailURL, "error", err)
		return allPlaceholders
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.Log.Warn("detail page failed to parse", "url", detailURL, "error", err)
		return allPlaceholders
	}

	details := scraper.Details{
		Description:   scraper.Placeholder,
		RecruiterName: scraper.Placeholder,
		Email:         scraper.Placeholder,
	}

	if desc := strings.TrimSpace(doc.Find("div.show-more-less-html__markup").First().Text()); desc != "" {
		details.Description = desc
	}

	// Recruiter shows up in either of two places; first match wins.
	recruiter := doc.Find("a.topcard__org-name-link").First()
	if recruiter.Length() == 0 {
		recruiter = doc.Find("span.topcard__flavor").First()
	}
	if name := strings.TrimSpace(recruiter.Text()); name != "" {
		details.RecruiterName = name
	}

	if details.Description != scraper.Placeholder {
		if match := emailRegex.FindString(details.Description); match != "" {
			details.Email = match
		}
	}

	return details
}
