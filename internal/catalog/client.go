package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnavailable wraps any network or decode failure while fetching the
// remote catalog. Callers decide whether to retry; this layer never does.
var ErrUnavailable = errors.New("release catalog unavailable")

const (
	perPage = 100
	// pageLimit is a runaway guard, not a truncation point: a listing this
	// deep means the endpoint is misbehaving, and exceeding it is an error
	// rather than a silently shortened catalog.
	pageLimit = 100
	userAgent = "chv/1.0"
)

// Client fetches the release listing from a GitHub-style releases endpoint.
type Client struct {
	url    string
	client *http.Client
	cache  *Cache
	ttl    time.Duration
}

// NewClient creates a catalog client for the given releases endpoint. A nil
// cache disables read-through caching.
func NewClient(url string, cache *Cache, ttl time.Duration) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		cache:  cache,
		ttl:    ttl,
	}
}

type githubRelease struct {
	TagName     string    `json:"tag_name"`
	PublishedAt time.Time `json:"published_at"`
}

// Releases returns the flattened, order-preserving release listing. A fresh
// cached listing is served without network access; otherwise every page is
// fetched until a short page ends the pagination.
func (c *Client) Releases(ctx context.Context) ([]ReleaseEntry, error) {
	if c.cache != nil {
		if entries, ok := c.cache.Load(c.ttl); ok {
			return entries, nil
		}
	}

	var entries []ReleaseEntry
	for page := 1; ; page++ {
		if page > pageLimit {
			return nil, fmt.Errorf("%w: listing did not end within %d pages", ErrUnavailable, pageLimit)
		}

		releases, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}

		for _, rel := range releases {
			entry, err := ParseTag(rel.TagName, rel.PublishedAt)
			if err != nil {
				// Pre-release and experimental tags don't name
				// installable artifacts.
				continue
			}
			entries = append(entries, entry)
		}

		if len(releases) < perPage {
			break
		}
	}

	if c.cache != nil {
		c.cache.Store(entries)
	}
	return entries, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]githubRelease, error) {
	url := fmt.Sprintf("%s?per_page=%d&page=%d", c.url, perPage, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrUnavailable, resp.Status)
	}

	var releases []githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("%w: decode listing: %w", ErrUnavailable, err)
	}
	return releases, nil
}
