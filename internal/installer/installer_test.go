package installer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chv/internal/catalog"
	"chv/internal/platform"
	"chv/internal/store"
	"chv/internal/testutil"
	"chv/internal/version"
)

type fakeCatalog struct {
	entries []catalog.ReleaseEntry
	err     error
	calls   int
}

func (f *fakeCatalog) Releases(ctx context.Context) ([]catalog.ReleaseEntry, error) {
	f.calls++
	return f.entries, f.err
}

func entry(t *testing.T, tag string) catalog.ReleaseEntry {
	t.Helper()
	e, err := catalog.ParseTag(tag, time.Now())
	if err != nil {
		t.Fatalf("parse tag %q: %v", tag, err)
	}
	return e
}

func mustSpec(t *testing.T, raw string) version.Spec {
	t.Helper()
	s, err := version.ParseSpec(raw)
	if err != nil {
		t.Fatalf("parse spec %q: %v", raw, err)
	}
	return s
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	testutil.SetupTestEnv(t)
	s, err := store.Open()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// binaryServer serves a fake binary for any release asset path.
func binaryServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/clickhouse-") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInstallDownloadsAndCommits(t *testing.T) {
	st := openStore(t)
	srv := binaryServer(t, "fake-clickhouse-binary")
	cat := &fakeCatalog{entries: []catalog.ReleaseEntry{entry(t, "v25.3.2.39-lts")}}
	ins := New(st, cat, srv.URL, 10*time.Second)

	var lastReceived int64
	res, err := ins.Install(context.Background(), mustSpec(t, "lts"), func(received, total int64) {
		lastReceived = received
	})
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if res.AlreadyInstalled {
		t.Fatal("fresh install reported AlreadyInstalled")
	}
	if got := res.Version.String(); got != "25.3.2.39" {
		t.Fatalf("installed %s, want 25.3.2.39", got)
	}
	if lastReceived != int64(len("fake-clickhouse-binary")) {
		t.Fatalf("progress saw %d bytes", lastReceived)
	}

	bin := st.BinaryPath(res.Version)
	info, err := os.Stat(bin)
	if err != nil {
		t.Fatalf("binary missing: %v", err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Fatal("binary not executable")
	}
	data, _ := os.ReadFile(bin)
	if string(data) != "fake-clickhouse-binary" {
		t.Fatalf("binary content %q", data)
	}
}

func TestInstallIdempotent(t *testing.T) {
	st := openStore(t)
	srv := binaryServer(t, "bits")
	cat := &fakeCatalog{entries: []catalog.ReleaseEntry{entry(t, "v25.3.2.39-lts")}}
	ins := New(st, cat, srv.URL, 10*time.Second)

	if _, err := ins.Install(context.Background(), mustSpec(t, "25.3.2.39"), nil); err != nil {
		t.Fatal(err)
	}
	// Kill the server: the repeat exact install must not need the network.
	srv.Close()

	res, err := ins.Install(context.Background(), mustSpec(t, "25.3.2.39"), nil)
	if err != nil {
		t.Fatalf("repeat install: %v", err)
	}
	if !res.AlreadyInstalled {
		t.Fatal("repeat install should report AlreadyInstalled")
	}
	if cat.calls != 1 {
		t.Fatalf("catalog consulted %d times, want 1", cat.calls)
	}
}

func TestInstallResolvedAlreadyInstalled(t *testing.T) {
	st := openStore(t)
	srv := binaryServer(t, "bits")
	cat := &fakeCatalog{entries: []catalog.ReleaseEntry{entry(t, "v25.3.2.39-lts")}}
	ins := New(st, cat, srv.URL, 10*time.Second)

	if _, err := ins.Install(context.Background(), mustSpec(t, "lts"), nil); err != nil {
		t.Fatal(err)
	}
	res, err := ins.Install(context.Background(), mustSpec(t, "lts"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.AlreadyInstalled {
		t.Fatal("resolved repeat install should report AlreadyInstalled")
	}
}

func TestInstallDownloadFailureLeavesNoPartial(t *testing.T) {
	st := openStore(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such asset", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	cat := &fakeCatalog{entries: []catalog.ReleaseEntry{entry(t, "v25.3.2.39-lts")}}
	ins := New(st, cat, srv.URL, 10*time.Second)

	_, err := ins.Install(context.Background(), mustSpec(t, "lts"), nil)
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("got %v, want ErrDownloadFailed", err)
	}

	v, _ := version.Parse("25.3.2.39")
	if st.IsInstalled(v) {
		t.Fatal("failed download must not leave a binary")
	}
	if _, err := os.Stat(st.VersionDir(v)); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("failed download must not create the version dir")
	}
}

func TestInstallTruncatedBodyCleansStaging(t *testing.T) {
	st := openStore(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1024")
		w.Write([]byte("short"))
	}))
	t.Cleanup(srv.Close)
	cat := &fakeCatalog{entries: []catalog.ReleaseEntry{entry(t, "v25.3.2.39-lts")}}
	ins := New(st, cat, srv.URL, 10*time.Second)

	_, err := ins.Install(context.Background(), mustSpec(t, "lts"), nil)
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("got %v, want ErrDownloadFailed", err)
	}

	parts, _ := filepath.Glob(filepath.Join(st.VersionsDir(), "*.part"))
	if len(parts) != 0 {
		t.Fatalf("staging files left behind: %v", parts)
	}
}

func TestInstallCatalogUnavailable(t *testing.T) {
	st := openStore(t)
	cat := &fakeCatalog{err: catalog.ErrUnavailable}
	ins := New(st, cat, "http://127.0.0.1:0", 10*time.Second)

	_, err := ins.Install(context.Background(), mustSpec(t, "stable"), nil)
	if !errors.Is(err, catalog.ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}

func TestInstallNoMatchingVersion(t *testing.T) {
	st := openStore(t)
	cat := &fakeCatalog{entries: []catalog.ReleaseEntry{entry(t, "v25.3.2.39-lts")}}
	ins := New(st, cat, "http://127.0.0.1:0", 10*time.Second)

	_, err := ins.Install(context.Background(), mustSpec(t, "99.9"), nil)
	if !errors.Is(err, catalog.ErrNoMatchingVersion) {
		t.Fatalf("got %v, want ErrNoMatchingVersion", err)
	}
}

type logRecorder struct {
	lines []string
}

func (l *logRecorder) Printf(format string, v ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func TestInstallLogsPlatform(t *testing.T) {
	st := openStore(t)
	srv := binaryServer(t, "bits")
	cat := &fakeCatalog{entries: []catalog.ReleaseEntry{entry(t, "v25.3.2.39-lts")}}
	ins := New(st, cat, srv.URL, 10*time.Second)

	rec := &logRecorder{}
	ins.SetLogger(rec)

	if _, err := ins.Install(context.Background(), mustSpec(t, "lts"), nil); err != nil {
		t.Fatal(err)
	}

	info, err := platform.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := fmt.Sprintf("platform: %s/%s", info.OS, info.Arch)

	var platformLine string
	for _, line := range rec.lines {
		if strings.HasPrefix(line, "platform: ") {
			platformLine = line
			break
		}
	}
	if platformLine == "" {
		t.Fatalf("no platform line logged, got %v", rec.lines)
	}
	if !strings.HasPrefix(platformLine, want) {
		t.Fatalf("logged %q, want prefix %q", platformLine, want)
	}
	if info.Distro != "" && !strings.Contains(platformLine, info.Distro) {
		t.Fatalf("logged %q, missing distro %q", platformLine, info.Distro)
	}
}

func TestInstallSweepsStaleOrphans(t *testing.T) {
	st := openStore(t)
	orphan := filepath.Join(st.VersionsDir(), ".download-stale.part")
	if err := os.WriteFile(orphan, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	stale := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(orphan, stale, stale); err != nil {
		t.Fatal(err)
	}

	srv := binaryServer(t, "bits")
	cat := &fakeCatalog{entries: []catalog.ReleaseEntry{entry(t, "v25.3.2.39-lts")}}
	ins := New(st, cat, srv.URL, 10*time.Second)
	if _, err := ins.Install(context.Background(), mustSpec(t, "lts"), nil); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(orphan); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("stale orphan should have been swept during install")
	}
}
