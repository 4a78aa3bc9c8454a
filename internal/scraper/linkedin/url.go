package linkedin

import (
	"fmt"
	"net/url"
	"strings"
)

const searchBaseURL = "https://www.linkedin.com/jobs/search/?"

// pageSize is fixed by LinkedIn: results paginate in batches of 25.
const pageSize = 25

// contractTypeCodes maps the user-facing contract type names to LinkedIn's
// f_JT codes. Lookup is case-insensitive; unknown values are dropped.
var contractTypeCodes = map[string]string{
	"cdi":        "F",
	"cdd":        "C",
	"stage":      "I",
	"freelance":  "T",
	"alternance": "P",
}

// BuildSearchURL constructs a job-search URL for the given criteria. Pure
// function, no I/O. Empty inputs omit their query parameter entirely; the
// start parameter is emitted only past the first page.
func BuildSearchURL(keywords, locations, contractTypes []string, pageOffset int) string {
	var params []string

	if len(keywords) > 0 {
		params = append(params, "keywords="+encodeQuery(strings.Join(keywords, " ")))
	}
	if len(locations) > 0 {
		params = append(params, "location="+encodeQuery(strings.Join(locations, ", ")))
	}
	if codes := contractCodes(contractTypes); len(codes) > 0 {
		params = append(params, "f_JT="+strings.Join(codes, "%2C"))
	}
	if pageOffset > 0 {
		params = append(params, fmt.Sprintf("start=%d", pageOffset*pageSize))
	}

	return searchBaseURL + strings.Join(params, "&")
}

func contractCodes(contractTypes []string) []string {
	var codes []string
	for _, ct := range contractTypes {
		if code, ok := contractTypeCodes[strings.ToLower(strings.TrimSpace(ct))]; ok {
			codes = append(codes, code)
		}
	}
	return codes
}

// encodeQuery percent-encodes a query value with %20 for spaces, the form
// LinkedIn's search endpoint expects.
func encodeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
