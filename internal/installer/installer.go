// Package installer downloads ClickHouse binaries and commits them into the
// store. All staging happens inside the versions directory so the final
// placement is a single same-filesystem rename.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"chv/internal/catalog"
	"chv/internal/platform"
	"chv/internal/store"
	"chv/internal/version"
)

var (
	// ErrDownloadFailed reports that the binary could not be fetched. No
	// partial file is left at the final path when this is returned.
	ErrDownloadFailed = errors.New("download failed")

	// ErrInsufficientStorage reports that the disk filled up mid-download.
	ErrInsufficientStorage = errors.New("insufficient storage")
)

// orphanAge is how old a staged .part file must be before install sweeps
// it. Anything younger may belong to a live download in another process.
const orphanAge = time.Hour

// Progress receives byte counts while a download streams. total is -1 when
// the server did not announce a length.
type Progress func(received, total int64)

// Catalog is the release source consumed by the installer.
type Catalog interface {
	Releases(ctx context.Context) ([]catalog.ReleaseEntry, error)
}

// Logger keeps the subset of log.Logger used here, enabling easy testing.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Installer resolves version specs and installs the matching binaries.
type Installer struct {
	store        *store.Store
	catalog      Catalog
	downloadBase string
	client       *http.Client
	logger       Logger
}

// New builds an Installer. downloadBase is the release asset URL prefix,
// e.g. https://github.com/ClickHouse/ClickHouse/releases/download.
func New(st *store.Store, cat Catalog, downloadBase string, timeout time.Duration) *Installer {
	return &Installer{
		store:        st,
		catalog:      cat,
		downloadBase: downloadBase,
		client:       &http.Client{Timeout: timeout},
		logger:       nopLogger{},
	}
}

// SetLogger routes install telemetry to l.
func (ins *Installer) SetLogger(l Logger) {
	if l != nil {
		ins.logger = l
	}
}

// Result describes a completed install request.
type Result struct {
	Version version.Version
	// AlreadyInstalled is true when the resolved version was present and
	// no download happened.
	AlreadyInstalled bool
}

// Install resolves spec and ensures the matching binary is installed.
//
// The platform check runs before anything touches the network. An exact spec
// naming an already-installed version also short-circuits before the network,
// which keeps repeat installs working offline.
func (ins *Installer) Install(ctx context.Context, spec version.Spec, progress Progress) (Result, error) {
	info, err := platform.Detect(ctx)
	if err != nil {
		return Result{}, err
	}
	if info.Distro != "" {
		ins.logger.Printf("platform: %s/%s (%s)", info.OS, info.Arch, info.Distro)
	} else {
		ins.logger.Printf("platform: %s/%s", info.OS, info.Arch)
	}

	ins.store.SweepOrphans(orphanAge)

	if spec.Kind == version.SpecExact {
		if v := spec.Exact(); ins.store.IsInstalled(v) {
			return Result{Version: v, AlreadyInstalled: true}, nil
		}
	}

	entries, err := ins.catalog.Releases(ctx)
	if err != nil {
		return Result{}, err
	}
	entry, err := catalog.Resolve(spec, entries)
	if err != nil {
		return Result{}, err
	}

	if ins.store.IsInstalled(entry.Version) {
		return Result{Version: entry.Version, AlreadyInstalled: true}, nil
	}

	if err := ins.download(ctx, entry, info, progress); err != nil {
		return Result{}, err
	}
	return Result{Version: entry.Version}, nil
}

// AssetURL returns the download URL for a release on the given platform.
func (ins *Installer) AssetURL(entry catalog.ReleaseEntry, info platform.Info) string {
	return fmt.Sprintf("%s/%s/clickhouse-%s-%s", ins.downloadBase, entry.Tag, info.OS, info.Arch)
}

func (ins *Installer) download(ctx context.Context, entry catalog.ReleaseEntry, info platform.Info, progress Progress) error {
	url := ins.AssetURL(entry, info)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	resp, err := ins.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %s", ErrDownloadFailed, url, resp.Status)
	}

	// Stage inside the versions dir so the commit below is a rename on the
	// same filesystem.
	tmp, err := os.CreateTemp(ins.store.VersionsDir(), ".download-*.part")
	if err != nil {
		return fmt.Errorf("stage download: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := copyWithProgress(tmp, resp.Body, resp.ContentLength, progress); err != nil {
		tmp.Close()
		if isNoSpace(err) {
			return fmt.Errorf("%w: %v", ErrInsufficientStorage, err)
		}
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if err := tmp.Close(); err != nil {
		if isNoSpace(err) {
			return fmt.Errorf("%w: %v", ErrInsufficientStorage, err)
		}
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	if err := os.Chmod(tmpPath, 0o755); err != nil {
		return fmt.Errorf("mark executable: %w", err)
	}

	final := ins.store.BinaryPath(entry.Version)
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return fmt.Errorf("create version dir: %w", err)
	}
	if err := os.Rename(tmpPath, final); err != nil {
		return fmt.Errorf("commit binary: %w", err)
	}
	return nil
}

func copyWithProgress(dst io.Writer, src io.Reader, total int64, progress Progress) error {
	if progress == nil {
		_, err := io.Copy(dst, src)
		return err
	}

	var received int64
	buf := make([]byte, 128*1024)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return err
			}
			received += int64(n)
			progress(received, total)
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}

func isNoSpace(err error) bool {
	return errors.Is(err, syscall.ENOSPC)
}
