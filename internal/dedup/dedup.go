package dedup

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type seenEntry struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// SeenCache remembers which detail URLs previous runs already processed, so
// repeated runs of the same search can be reported on. Entries expire after
// 30 days. Persistence of job records dedups independently at the store; this
// cache is observability, not the dedup invariant.
type SeenCache struct {
	mu       sync.Mutex
	filePath string
	log      *slog.Logger
	seen     map[string]int64
}

const thirtyDaysMs = int64(30 * 24 * 60 * 60 * 1000)

// NewSeenCache creates or loads the cache file under cacheDir.
func NewSeenCache(cacheDir string, log *slog.Logger) *SeenCache {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Warn("failed to create cache directory", "error", err)
	}
	cache := &SeenCache{
		filePath: filepath.Join(cacheDir, "seen_jobs.json"),
		log:      log,
		seen:     make(map[string]int64),
	}
	cache.load()
	return cache
}

// IsSeen checks whether a detail URL was processed within the last 30 days.
func (c *SeenCache) IsSeen(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, exists := c.seen[url]
	return exists
}

// Add marks detail URLs as processed and flushes to disk.
func (c *SeenCache) Add(urls []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixMilli()
	changed := false
	for _, url := range urls {
		if url == "" {
			continue
		}
		if _, exists := c.seen[url]; !exists {
			c.seen[url] = now
			changed = true
		}
	}
	if changed {
		c.save()
	}
}

func (c *SeenCache) load() {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn("failed to read seen_jobs.json", "error", err)
		}
		return
	}

	var entries []seenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.log.Warn("failed to parse seen_jobs.json", "error", err)
		return
	}

	cutoff := time.Now().UnixMilli() - thirtyDaysMs
	for _, e := range entries {
		if e.Timestamp > cutoff {
			c.seen[e.URL] = e.Timestamp
		}
	}
	c.log.Info("📋 loaded seen-job cache", "active", len(c.seen), "expired", len(entries)-len(c.seen))
}

func (c *SeenCache) save() {
	entries := make([]seenEntry, 0, len(c.seen))
	for url, ts := range c.seen {
		entries = append(entries, seenEntry{URL: url, Timestamp: ts})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		c.log.Warn("failed to marshal seen jobs", "error", err)
		return
	}
	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		c.log.Warn("failed to write seen_jobs.json", "error", err)
	}
}
