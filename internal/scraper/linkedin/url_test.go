package linkedin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSearchURL_OmitsEmptyParams(t *testing.T) {
	tests := []struct {
		name          string
		keywords      []string
		locations     []string
		contractTypes []string
		wantParams    []string
		absentParams  []string
	}{
		{
			name:         "all empty",
			absentParams: []string{"keywords=", "location=", "f_JT=", "start="},
		},
		{
			name:         "keywords only",
			keywords:     []string{"python"},
			wantParams:   []string{"keywords=python"},
			absentParams: []string{"location=", "f_JT="},
		},
		{
			name:         "locations only",
			locations:    []string{"Paris"},
			wantParams:   []string{"location=Paris"},
			absentParams: []string{"keywords=", "f_JT="},
		},
		{
			name:          "unknown contract types dropped entirely",
			contractTypes: []string{"volunteer", "gig"},
			absentParams:  []string{"f_JT="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := BuildSearchURL(tt.keywords, tt.locations, tt.contractTypes, 0)
			for _, p := range tt.wantParams {
				assert.Contains(t, url, p)
			}
			for _, p := range tt.absentParams {
				assert.NotContains(t, url, p)
			}
		})
	}
}

func TestBuildSearchURL_PageOffset(t *testing.T) {
	url := BuildSearchURL([]string{"python"}, nil, nil, 2)
	assert.Contains(t, url, "start=50")

	first := BuildSearchURL([]string{"python"}, nil, nil, 0)
	assert.NotContains(t, first, "start=")
}

func TestBuildSearchURL_Encoding(t *testing.T) {
	url := BuildSearchURL([]string{"developpeur", "python"}, []string{"Paris", "Lyon"}, nil, 0)
	assert.Contains(t, url, "keywords=developpeur%20python")
	assert.Contains(t, url, "location=Paris%2C%20Lyon")
	assert.True(t, strings.HasPrefix(url, "https://www.linkedin.com/jobs/search/?"))
}

func TestBuildSearchURL_ContractTypeCodes(t *testing.T) {
	url := BuildSearchURL(nil, nil, []string{"CDI", "stage", "unknown"}, 0)
	assert.Contains(t, url, "f_JT=F%2CI")
}
