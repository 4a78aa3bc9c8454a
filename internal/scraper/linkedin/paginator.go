package linkedin

import (
	"context"
	"log/slog"
	"time"

	"go-jobmatcher/internal/scraper"
)

// Collector walks search-result pages and accumulates stubs.
type Collector struct {
	Fetcher scraper.PageFetcher
	// PageDelay is the politeness pause between result pages.
	PageDelay time.Duration
	Log       *slog.Logger
}

// CollectStubs fetches maxPages result pages and extracts stubs from each.
// A page that fails to load counts as empty and the walk continues: LinkedIn
// sometimes renders nothing on one page and results on the next, so there is
// no early termination. Duplicates are kept; dedup happens at persistence.
func (c *Collector) CollectStubs(ctx context.Context, keywords, locations, contractTypes []string, maxPages int) []scraper.Stub {
	var stubs []scraper.Stub
	for offset := 0; offset < maxPages; offset++ {
		if ctx.Err() != nil {
			return stubs
		}

		pageURL := BuildSearchURL(keywords, locations, contractTypes, offset)
		c.Log.Info("🔍 scraping result page", "page", offset+1, "url", pageURL)

		html, err := c.Fetcher.FetchRenderedHTML(ctx, pageURL)
		if err != nil {
			c.Log.Warn("result page failed to load, treating as empty", "page", offset+1, "error", err)
		} else {
			pageStubs := ExtractStubs(html)
			c.Log.Info("extracted stubs", "page", offset+1, "count", len(pageStubs))
			stubs = append(stubs, pageStubs...)
		}

		if offset < maxPages-1 && c.PageDelay > 0 {
			time.Sleep(c.PageDelay)
		}
	}
	return stubs
}
