// Pipeline orchestration
// collect -> filter -> enrich -> persist, with session tracking around it

package pipeline

import (
	"context"
	"log/slog"
	"time"

	"go-jobmatcher/internal/config"
	"go-jobmatcher/internal/dedup"
	"go-jobmatcher/internal/filter"
	"go-jobmatcher/internal/models"
	"go-jobmatcher/internal/scraper"
	"go-jobmatcher/internal/scraper/linkedin"
	"go-jobmatcher/internal/session"

	mapset "github.com/deckarep/golang-set/v2"
)

// Browser is the session handle the pipeline drives. All navigations are
// blocking; the handle is owned by exactly one run.
type Browser interface {
	Login(ctx context.Context) error
	FetchRenderedHTML(ctx context.Context, url string, settle time.Duration) (string, error)
	Close() error
}

// Store is everything a run persists through.
type Store interface {
	session.Store
	UpsertJob(ctx context.Context, job *models.JobRecord) (bool, error)
	UpsertRecruiter(ctx context.Context, name string, title *string, company string) (bool, error)
}

// Notifier is told about terminal session states. Optional.
type Notifier interface {
	RunFinished(status models.SessionStatus, searchQuery string, jobsFound, jobsAdded int, errMsg string) error
}

// Params are the user-supplied criteria of one run.
type Params struct {
	SearchQuery   string
	Keywords      []string
	Locations     []string
	ContractTypes []string
	MaxPages      int
}

// Runner executes scraping sessions. One browser per run, strictly
// sequential; concurrent runs share nothing but the store.
type Runner struct {
	NewBrowser func(ctx context.Context) (Browser, error)
	Store      Store
	Cache      *dedup.SeenCache
	Notifier   Notifier
	Cfg        config.ScraperConfig
	Log        *slog.Logger
}

// Run drives the session with the given id through the whole pipeline. Any
// error from a stage flips the session to failed; the browser is closed on
// every path. The error is also returned for CLI callers — HTTP callers of
// an already-accepted session only ever see it through the session document.
func (r *Runner) Run(ctx context.Context, sessionID string, p Params) error {
	tracker := session.NewTracker(r.Store, sessionID)
	if err := tracker.Start(ctx); err != nil {
		return err
	}

	jobsFound, jobsAdded, err := r.execute(ctx, p)
	if err != nil {
		r.Log.Error("❌ scraping session failed", "session", sessionID, "error", err)
		if failErr := tracker.Fail(ctx, err); failErr != nil {
			r.Log.Error("failed to record session failure", "session", sessionID, "error", failErr)
		}
		r.notify(models.StatusFailed, p.SearchQuery, 0, 0, err.Error())
		return err
	}

	if err := tracker.Complete(ctx, jobsFound, jobsAdded); err != nil {
		return err
	}
	r.Log.Info("🏁 scraping session completed", "session", sessionID, "jobs_found", jobsFound, "jobs_added", jobsAdded)
	r.notify(models.StatusCompleted, p.SearchQuery, jobsFound, jobsAdded, "")
	return nil
}

func (r *Runner) execute(ctx context.Context, p Params) (jobsFound, jobsAdded int, err error) {
	br, err := r.NewBrowser(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer br.Close()

	if err := br.Login(ctx); err != nil {
		return 0, 0, err
	}

	collector := &linkedin.Collector{
		Fetcher:   settleFetcher{br, r.Cfg.ListingSettle},
		PageDelay: r.Cfg.PageDelay,
		Log:       r.Log,
	}
	enricher := &linkedin.Enricher{
		Fetcher: settleFetcher{br, r.Cfg.DetailSettle},
		Log:     r.Log,
	}

	maxPages := p.MaxPages
	if maxPages <= 0 {
		maxPages = r.Cfg.MaxPages
	}

	stubs := collector.CollectStubs(ctx, p.Keywords, p.Locations, p.ContractTypes, maxPages)
	r.Log.Info("📦 stubs collected", "count", len(stubs))

	filtered := filter.ByText(stubs, p.Keywords, p.Locations)
	if len(p.ContractTypes) > 0 {
		filtered = filter.ByContractType(ctx, filtered, p.ContractTypes, enricher)
	}
	jobsFound = len(filtered)
	r.Log.Info("🔎 stubs after filtering", "count", jobsFound)

	detailCap := r.Cfg.DetailCap
	if detailCap <= 0 {
		detailCap = 10
	}

	// Skip upserting the same dedup tuple twice within this run; the store's
	// unique index still backs the invariant across runs.
	seenKeys := mapset.NewSet[string]()
	var processedURLs []string

	for i, stub := range filtered {
		if i >= detailCap {
			break
		}

		details := enricher.FetchDetails(ctx, stub)
		if r.Cache != nil && r.Cache.IsSeen(stub.DetailURL) {
			r.Log.Debug("detail url seen in a previous run", "url", stub.DetailURL)
		}

		if !seenKeys.Add(dedupKey(stub)) {
			continue
		}

		job := buildJobRecord(stub, details)
		inserted, err := r.Store.UpsertJob(ctx, job)
		if err != nil {
			return 0, 0, err
		}
		if inserted {
			jobsAdded++
			if details.RecruiterName != scraper.Placeholder {
				if _, err := r.Store.UpsertRecruiter(ctx, details.RecruiterName, nil, stub.Company); err != nil {
					return 0, 0, err
				}
			}
		}
		processedURLs = append(processedURLs, stub.DetailURL)
	}

	if r.Cache != nil {
		r.Cache.Add(processedURLs)
	}
	return jobsFound, jobsAdded, nil
}

func (r *Runner) notify(status models.SessionStatus, query string, found, added int, errMsg string) {
	if r.Notifier == nil {
		return
	}
	if err := r.Notifier.RunFinished(status, query, found, added, errMsg); err != nil {
		r.Log.Warn("failed to send run notification", "error", err)
	}
}

func dedupKey(stub scraper.Stub) string {
	return stub.Title + "\x1f" + stub.Company + "\x1f" + stub.Location
}

func buildJobRecord(stub scraper.Stub, details scraper.Details) *models.JobRecord {
	now := time.Now().UTC()
	return &models.JobRecord{
		Title:       stub.Title,
		Company:     stub.Company,
		Location:    stub.Location,
		Description: details.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Status:      "active",
	}
}

// settleFetcher binds a browser to a fixed settle delay so the listing and
// detail stages can wait different amounts behind the same interface.
type settleFetcher struct {
	br     Browser
	settle time.Duration
}

func (f settleFetcher) FetchRenderedHTML(ctx context.Context, url string) (string, error) {
	return f.br.FetchRenderedHTML(ctx, url, f.settle)
}
