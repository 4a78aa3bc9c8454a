package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(h *Handler, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "job-matcher-scraper",
		})
	})

	v1 := r.Group("/api/v1")
	{
		scraping := v1.Group("/scraping")
		{
			scraping.POST("/start", h.StartScraping)
			scraping.GET("/sessions", h.ListSessions)
			scraping.GET("/sessions/:id", h.GetSession)
		}
		v1.GET("/jobs", h.ListJobs)
		v1.GET("/recruiters", h.ListRecruiters)
	}

	return r
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}
