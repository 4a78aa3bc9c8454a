package linkedin

import (
	"strings"

	"go-jobmatcher/internal/scraper"

	"github.com/PuerkitoBio/goquery"
)

// ExtractStubs parses a rendered search-results page into job stubs. A card
// missing any field is kept with "N/A" placeholders rather than dropped, so
// downstream counts reflect everything the page showed; a card that cannot be
// parsed at all is skipped without aborting the batch.
func ExtractStubs(html string) []scraper.Stub {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var stubs []scraper.Stub
	doc.Find("div.base-card").Each(func(_ int, card *goquery.Selection) {
		stub := scraper.Stub{
			Title:     textOrPlaceholder(card, "h3.base-search-card__title"),
			Company:   textOrPlaceholder(card, "h4.base-search-card__subtitle"),
			Location:  textOrPlaceholder(card, "span.job-search-card__location"),
			DetailURL: hrefOrPlaceholder(card, "a.base-card__full-link"),
		}
		stubs = append(stubs, stub)
	})
	return stubs
}

func textOrPlaceholder(card *goquery.Selection, selector string) string {
	sel := card.Find(selector).First()
	if sel.Length() == 0 {
		return scraper.Placeholder
	}
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		return scraper.Placeholder
	}
	return text
}

func hrefOrPlaceholder(card *goquery.Selection, selector string) string {
	href, ok := card.Find(selector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return scraper.Placeholder
	}
	return strings.TrimSpace(href)
}
