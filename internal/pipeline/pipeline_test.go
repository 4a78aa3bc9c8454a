package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"go-jobmatcher/internal/config"
	"go-jobmatcher/internal/models"
	"go-jobmatcher/internal/scraper/linkedin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBrowser serves canned HTML and counts close calls.
type fakeBrowser struct {
	pages      map[string]string
	loginErr   error
	closeCount int
}

func (b *fakeBrowser) Login(context.Context) error { return b.loginErr }

func (b *fakeBrowser) FetchRenderedHTML(_ context.Context, url string, _ time.Duration) (string, error) {
	if html, ok := b.pages[url]; ok {
		return html, nil
	}
	return "", errors.New("page not found: " + url)
}

func (b *fakeBrowser) Close() error {
	b.closeCount++
	return nil
}

// fakeStore is an in-memory Store with the same first-write-wins dedup
// policy as the Mongo repository.
type fakeStore struct {
	jobs       map[string]*models.JobRecord
	recruiters map[string]bool

	running, completed, failed int
	jobsFound, jobsAdded       int
	errMsg                     string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:       make(map[string]*models.JobRecord),
		recruiters: make(map[string]bool),
	}
}

func (s *fakeStore) MarkRunning(context.Context, string) error { s.running++; return nil }

func (s *fakeStore) MarkCompleted(_ context.Context, _ string, found, added int) error {
	s.completed++
	s.jobsFound = found
	s.jobsAdded = added
	return nil
}

func (s *fakeStore) MarkFailed(_ context.Context, _ string, errMsg string) error {
	s.failed++
	s.errMsg = errMsg
	return nil
}

func (s *fakeStore) UpsertJob(_ context.Context, job *models.JobRecord) (bool, error) {
	key := job.Title + "|" + job.Company + "|" + job.Location
	if _, exists := s.jobs[key]; exists {
		return false, nil
	}
	s.jobs[key] = job
	return true, nil
}

func (s *fakeStore) UpsertRecruiter(_ context.Context, name string, _ *string, _ string) (bool, error) {
	if s.recruiters[name] {
		return false, nil
	}
	s.recruiters[name] = true
	return true, nil
}

type fakeNotifier struct {
	status models.SessionStatus
	calls  int
}

func (n *fakeNotifier) RunFinished(status models.SessionStatus, _ string, _, _ int, _ string) error {
	n.status = status
	n.calls++
	return nil
}

func card(title, company, location, href string) string {
	return `<div class="base-card">
		<a class="base-card__full-link" href="` + href + `"></a>
		<h3 class="base-search-card__title">` + title + `</h3>
		<h4 class="base-search-card__subtitle">` + company + `</h4>
		<span class="job-search-card__location">` + location + `</span>
	</div>`
}

func detailPage(description, recruiter string) string {
	return `<html><body>
		<a class="topcard__org-name-link">` + recruiter + `</a>
		<div class="show-more-less-html__markup">` + description + `</div>
	</body></html>`
}

func newRunner(br *fakeBrowser, store *fakeStore) *Runner {
	return &Runner{
		NewBrowser: func(context.Context) (Browser, error) { return br, nil },
		Store:      store,
		Cfg:        config.ScraperConfig{MaxPages: 3, DetailCap: 10},
		Log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRun_EndToEnd(t *testing.T) {
	listingURL := linkedin.BuildSearchURL([]string{"python"}, []string{"Paris"}, nil, 0)
	listing := "<html><body>" +
		card("Python Developer", "Acme", "Paris, France", "https://example.com/jobs/1") +
		card("Java Architect", "Globex", "Paris, France", "https://example.com/jobs/2") +
		card("Python Dev", "Initech", "Berlin, Germany", "https://example.com/jobs/3") +
		"</body></html>"

	br := &fakeBrowser{pages: map[string]string{
		listingURL:                   listing,
		"https://example.com/jobs/1": detailPage("Great python role. Write to hiring@acme.io.", "Jane Recruiter"),
	}}
	store := newFakeStore()
	notifier := &fakeNotifier{}
	runner := newRunner(br, store)
	runner.Notifier = notifier

	err := runner.Run(context.Background(), "sess-1", Params{
		SearchQuery: "python",
		Keywords:    []string{"python"},
		Locations:   []string{"Paris"},
		MaxPages:    1,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, store.completed)
	assert.Equal(t, 0, store.failed)
	assert.Equal(t, 1, store.jobsFound, "only one stub survives both predicates")
	assert.Equal(t, 1, store.jobsAdded)
	assert.True(t, store.recruiters["Jane Recruiter"])
	assert.Equal(t, 1, br.closeCount)
	assert.Equal(t, models.StatusCompleted, notifier.status)

	job := store.jobs["Python Developer|Acme|Paris, France"]
	require.NotNil(t, job)
	assert.Contains(t, job.Description, "Great python role")
	assert.Equal(t, "active", job.Status)
}

func TestRun_AuthFailure(t *testing.T) {
	br := &fakeBrowser{loginErr: errors.New("feed marker not visible after 10s")}
	store := newFakeStore()
	notifier := &fakeNotifier{}
	runner := newRunner(br, store)
	runner.Notifier = notifier

	err := runner.Run(context.Background(), "sess-1", Params{Keywords: []string{"python"}})

	require.Error(t, err)
	assert.Equal(t, 1, store.failed)
	assert.NotEmpty(t, store.errMsg)
	assert.Equal(t, 0, store.completed)
	assert.Equal(t, 1, br.closeCount, "browser must be closed exactly once on failure")
	assert.Equal(t, models.StatusFailed, notifier.status)
}

func TestRun_DedupWithinAndAcrossRuns(t *testing.T) {
	listingURL := linkedin.BuildSearchURL([]string{"python"}, nil, nil, 0)
	// Two cards with the same dedup tuple but different detail links.
	listing := "<html><body>" +
		card("Python Developer", "Acme", "Paris", "https://example.com/jobs/1") +
		card("Python Developer", "Acme", "Paris", "https://example.com/jobs/1b") +
		"</body></html>"

	pages := map[string]string{
		listingURL:                    listing,
		"https://example.com/jobs/1":  detailPage("First listing.", "Jane"),
		"https://example.com/jobs/1b": detailPage("Second listing, same job.", "Jane"),
	}

	store := newFakeStore()
	params := Params{SearchQuery: "python", Keywords: []string{"python"}, MaxPages: 1}

	runner := newRunner(&fakeBrowser{pages: pages}, store)
	require.NoError(t, runner.Run(context.Background(), "sess-1", params))
	assert.Equal(t, 2, store.jobsFound)
	assert.Equal(t, 1, store.jobsAdded, "same tuple inserts once within a run")

	// A second run over the same store adds nothing.
	runner2 := newRunner(&fakeBrowser{pages: pages}, store)
	require.NoError(t, runner2.Run(context.Background(), "sess-2", params))
	assert.Equal(t, 0, store.jobsAdded, "first write wins across runs")
	assert.Len(t, store.jobs, 1)
}

func TestRun_ContractTypeFilter(t *testing.T) {
	listingURL := linkedin.BuildSearchURL([]string{"python"}, nil, []string{"cdi"}, 0)
	listing := "<html><body>" +
		card("Python Developer", "Acme", "Paris", "https://example.com/jobs/1") +
		card("Python Engineer", "Globex", "Paris", "https://example.com/jobs/2") +
		"</body></html>"

	br := &fakeBrowser{pages: map[string]string{
		listingURL:                   listing,
		"https://example.com/jobs/1": detailPage("Poste en CDI.", "Jane"),
		"https://example.com/jobs/2": detailPage("Stage de six mois.", "Bob"),
	}}
	store := newFakeStore()
	runner := newRunner(br, store)

	err := runner.Run(context.Background(), "sess-1", Params{
		SearchQuery:   "python",
		Keywords:      []string{"python"},
		ContractTypes: []string{"cdi"},
		MaxPages:      1,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, store.jobsFound, "only the CDI offer survives")
	assert.Equal(t, 1, store.jobsAdded)
	require.Contains(t, store.jobs, "Python Developer|Acme|Paris")
}

func TestRun_DetailCap(t *testing.T) {
	listingURL := linkedin.BuildSearchURL(nil, nil, nil, 0)
	listing := "<html><body>" +
		card("Dev A", "A", "Paris", "https://example.com/jobs/a") +
		card("Dev B", "B", "Paris", "https://example.com/jobs/b") +
		card("Dev C", "C", "Paris", "https://example.com/jobs/c") +
		"</body></html>"

	br := &fakeBrowser{pages: map[string]string{listingURL: listing}}
	store := newFakeStore()
	runner := newRunner(br, store)
	runner.Cfg.DetailCap = 2

	require.NoError(t, runner.Run(context.Background(), "sess-1", Params{MaxPages: 1}))

	assert.Equal(t, 3, store.jobsFound)
	assert.Equal(t, 2, store.jobsAdded, "enrichment stops at the cap")
}

func TestRun_BrowserLaunchFailureFailsSession(t *testing.T) {
	store := newFakeStore()
	runner := &Runner{
		NewBrowser: func(context.Context) (Browser, error) { return nil, errors.New("chromium missing") },
		Store:      store,
		Cfg:        config.ScraperConfig{},
		Log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	err := runner.Run(context.Background(), "sess-1", Params{})
	require.Error(t, err)
	assert.Equal(t, 1, store.failed)
	assert.Contains(t, store.errMsg, "chromium missing")
}
