package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"chv/internal/version"
)

func releasePage(tags []string) []map[string]any {
	page := make([]map[string]any, 0, len(tags))
	for _, tag := range tags {
		page = append(page, map[string]any{
			"tag_name":     tag,
			"published_at": time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	return page
}

func TestReleasesFlattensPages(t *testing.T) {
	// First page is full (forces a second fetch), second page is short.
	first := make([]string, 0, perPage)
	for i := 0; i < perPage; i++ {
		first = append(first, fmt.Sprintf("v25.12.5.%d-stable", i))
	}
	second := []string{"v24.8.10.6-lts", "not-a-release", "v24.8.9.1-lts"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			json.NewEncoder(w).Encode(releasePage(first))
		case "2":
			json.NewEncoder(w).Encode(releasePage(second))
		default:
			t.Errorf("unexpected page fetch: %s", r.URL.RawQuery)
			json.NewEncoder(w).Encode([]any{})
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, 0)
	entries, err := client.Releases(context.Background())
	if err != nil {
		t.Fatalf("Releases: %v", err)
	}

	// The unparsable tag drops out; order is preserved across pages.
	if len(entries) != perPage+2 {
		t.Fatalf("got %d entries, want %d", len(entries), perPage+2)
	}
	if entries[0].Tag != first[0] {
		t.Fatalf("first entry = %s", entries[0].Tag)
	}
	if entries[perPage].Tag != "v24.8.10.6-lts" {
		t.Fatalf("entry after page boundary = %s", entries[perPage].Tag)
	}
}

func TestReleasesFollowsDeepPagination(t *testing.T) {
	// Eleven full pages plus a short twelfth. The entry on page eleven
	// must survive flattening and resolve exactly.
	const fullPages = 11
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var page int
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
		if page > fullPages {
			json.NewEncoder(w).Encode([]any{})
			return
		}
		tags := make([]string, 0, perPage)
		for i := 0; i < perPage; i++ {
			tags = append(tags, fmt.Sprintf("v%d.%d.1.1-stable", 30-page, i))
		}
		json.NewEncoder(w).Encode(releasePage(tags))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, 0)
	entries, err := client.Releases(context.Background())
	if err != nil {
		t.Fatalf("Releases: %v", err)
	}
	if len(entries) != fullPages*perPage {
		t.Fatalf("got %d entries, want %d", len(entries), fullPages*perPage)
	}

	spec, err := version.ParseSpec("19.42.1.1")
	if err != nil {
		t.Fatal(err)
	}
	entry, err := Resolve(spec, entries)
	if err != nil {
		t.Fatalf("resolve entry from page %d: %v", fullPages, err)
	}
	if entry.Tag != "v19.42.1.1-stable" {
		t.Fatalf("resolved %s", entry.Tag)
	}
}

func TestReleasesRejectsRunawayListing(t *testing.T) {
	// A server that never sends a short page must surface as unavailable
	// instead of a quietly truncated catalog.
	full := make([]string, 0, perPage)
	for i := 0; i < perPage; i++ {
		full = append(full, fmt.Sprintf("v25.1.1.%d-stable", i))
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(releasePage(full))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, 0)
	if _, err := client.Releases(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestReleasesWrapsFailuresAsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, 0)
	if _, err := client.Releases(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestReleasesServesFreshCacheWithoutNetwork(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(releasePage([]string{"v25.12.5.44-stable"}))
	}))
	defer srv.Close()

	cache := NewCache(t.TempDir())
	client := NewClient(srv.URL, cache, time.Hour)

	for i := 0; i < 3; i++ {
		entries, err := client.Releases(context.Background())
		if err != nil {
			t.Fatalf("Releases: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("got %d entries", len(entries))
		}
	}

	if calls != 1 {
		t.Fatalf("server hit %d times, want 1", calls)
	}
}

func TestCacheExpires(t *testing.T) {
	cache := NewCache(t.TempDir())
	cache.Store([]ReleaseEntry{{Tag: "v25.12.5.44-stable"}})

	if _, ok := cache.Load(time.Hour); !ok {
		t.Fatal("fresh cache not served")
	}
	if _, ok := cache.Load(-time.Second); ok {
		t.Fatal("expired cache served")
	}
}

func TestCacheIgnoresCorruptFile(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir)
	cache.Store([]ReleaseEntry{{Tag: "v25.12.5.44-stable"}})

	// Smash the payload; Load must fail soft.
	if err := writeFile(dir+"/releases.json", "{nope"); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Load(time.Hour); ok {
		t.Fatal("corrupt cache served")
	}
}

func writeFile(path, body string) error {
	return os.WriteFile(path, []byte(body), 0o644)
}
