// Offer filtering
// Cheap text predicates first, detail-fetching contract-type pass last

package filter

import (
	"context"
	"strings"
	"unicode"

	"go-jobmatcher/internal/scraper"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeText lowercases and strips diacritics so "Montréal" matches
// "montreal".
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.ToLower(result)
}

// ByText keeps stubs whose title matches any of titleKeywords AND whose
// location matches any of locations. Matching is normalized substring; an
// empty keyword list makes its predicate pass everything.
func ByText(stubs []scraper.Stub, titleKeywords, locations []string) []scraper.Stub {
	filtered := make([]scraper.Stub, 0, len(stubs))
	for _, stub := range stubs {
		if matchesAny(stub.Title, titleKeywords) && matchesAny(stub.Location, locations) {
			filtered = append(filtered, stub)
		}
	}
	return filtered
}

func matchesAny(field string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	normalized := normalizeText(field)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(normalized, normalizeText(kw)) {
			return true
		}
	}
	return false
}

// ByContractType keeps stubs whose title or detail description mentions one
// of the requested contract types. Each candidate costs a detail fetch, which
// is why this pass runs after ByText has shrunk the list.
func ByContractType(ctx context.Context, stubs []scraper.Stub, contractTypes []string, fetcher scraper.DetailFetcher) []scraper.Stub {
	if len(contractTypes) == 0 {
		return stubs
	}

	filtered := make([]scraper.Stub, 0, len(stubs))
	for _, stub := range stubs {
		details := fetcher.FetchDetails(ctx, stub)
		haystack := normalizeText(stub.Title + " " + details.Description)
		for _, ct := range contractTypes {
			if ct == "" {
				continue
			}
			if strings.Contains(haystack, normalizeText(ct)) {
				filtered = append(filtered, stub)
				break
			}
		}
	}
	return filtered
}
