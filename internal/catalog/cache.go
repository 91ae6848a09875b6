package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const cacheFile = "releases.json"

// Cache persists a fetched release listing so repeated alias resolutions and
// remote listings within the TTL window skip the network. A corrupt or stale
// cache is ignored, never fatal.
type Cache struct {
	dir string
}

// NewCache creates a cache rooted at dir.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

type cachePayload struct {
	FetchedAt time.Time      `json:"fetched_at"`
	Entries   []ReleaseEntry `json:"entries"`
}

// Load returns the cached listing when it is younger than ttl.
func (c *Cache) Load(ttl time.Duration) ([]ReleaseEntry, bool) {
	data, err := os.ReadFile(filepath.Join(c.dir, cacheFile))
	if err != nil {
		return nil, false
	}

	var payload cachePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	if time.Since(payload.FetchedAt) > ttl || len(payload.Entries) == 0 {
		return nil, false
	}
	return payload.Entries, true
}

// Store writes the listing with the current timestamp. Failures are dropped;
// caching is an optimization, not a contract.
func (c *Cache) Store(entries []ReleaseEntry) {
	payload := cachePayload{FetchedAt: time.Now(), Entries: entries}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(c.dir, cacheFile), data, 0o644)
}
