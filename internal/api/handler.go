package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"go-jobmatcher/internal/models"
	"go-jobmatcher/internal/pipeline"

	"github.com/gin-gonic/gin"
)

// Store is the read/write surface the API needs from persistence.
type Store interface {
	UserExists(ctx context.Context, userID string) (bool, error)
	CreateSession(ctx context.Context, s *models.ScrapingSession) (string, error)
	GetSession(ctx context.Context, id string) (*models.ScrapingSession, error)
	ListSessions(ctx context.Context, userID string, status models.SessionStatus, skip, limit int64) ([]models.ScrapingSession, error)
	ListJobs(ctx context.Context, search string, skip, limit int64) ([]models.JobRecord, error)
	ListRecruiters(ctx context.Context, skip, limit int64) ([]models.RecruiterRecord, error)
}

// SessionRunner starts a pipeline run for an already-created session.
type SessionRunner interface {
	Run(ctx context.Context, sessionID string, p pipeline.Params) error
}

type Handler struct {
	store  Store
	runner SessionRunner
	log    *slog.Logger
}

func NewHandler(store Store, runner SessionRunner, log *slog.Logger) *Handler {
	return &Handler{store: store, runner: runner, log: log}
}

// StartScrapingRequest is the payload of POST /api/v1/scraping/start.
type StartScrapingRequest struct {
	UserID      string                `json:"user_id" binding:"required"`
	SearchQuery string                `json:"search_query" binding:"required"`
	Location    *string               `json:"location"`
	Filters     models.SessionFilters `json:"filters"`
	MaxPages    int                   `json:"max_pages"`
}

// StartScraping validates the user, creates a pending session and launches
// the pipeline in the background. The caller polls the session for progress;
// pipeline errors never come back through this endpoint.
func (h *Handler) StartScraping(c *gin.Context) {
	var req StartScrapingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	exists, err := h.store.UserExists(c.Request.Context(), req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id format"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	sess := &models.ScrapingSession{
		UserID:      req.UserID,
		SearchQuery: req.SearchQuery,
		Location:    req.Location,
		Filters:     req.Filters,
	}
	id, err := h.store.CreateSession(c.Request.Context(), sess)
	if err != nil {
		h.log.Error("failed to create scraping session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	params := pipeline.Params{
		SearchQuery: req.SearchQuery,
		Keywords:    strings.Fields(req.SearchQuery),
		MaxPages:    req.MaxPages,
	}
	if req.Location != nil && *req.Location != "" {
		params.Locations = []string{*req.Location}
	}
	if req.Filters.JobType != nil && *req.Filters.JobType != "" {
		params.ContractTypes = []string{*req.Filters.JobType}
	}

	// The run outlives this request; it reports back through the session
	// document only.
	go func() {
		if err := h.runner.Run(context.Background(), id, params); err != nil {
			h.log.Error("background scraping run failed", "session", id, "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, sess)
}

// GetSession handles GET /api/v1/scraping/sessions/:id.
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.store.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scraping session not found"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// ListSessions handles GET /api/v1/scraping/sessions.
func (h *Handler) ListSessions(c *gin.Context) {
	skip, limit := pagination(c)
	sessions, err := h.store.ListSessions(c.Request.Context(),
		c.Query("user_id"), models.SessionStatus(c.Query("status")), skip, limit)
	if err != nil {
		h.log.Error("failed to list sessions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sessions"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// ListJobs handles GET /api/v1/jobs with optional substring search.
func (h *Handler) ListJobs(c *gin.Context) {
	skip, limit := pagination(c)
	jobs, err := h.store.ListJobs(c.Request.Context(), c.Query("search"), skip, limit)
	if err != nil {
		h.log.Error("failed to list jobs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// ListRecruiters handles GET /api/v1/recruiters.
func (h *Handler) ListRecruiters(c *gin.Context) {
	skip, limit := pagination(c)
	recruiters, err := h.store.ListRecruiters(c.Request.Context(), skip, limit)
	if err != nil {
		h.log.Error("failed to list recruiters", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recruiters"})
		return
	}
	c.JSON(http.StatusOK, recruiters)
}

func pagination(c *gin.Context) (skip, limit int64) {
	skip, _ = strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	limit, _ = strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return skip, limit
}
