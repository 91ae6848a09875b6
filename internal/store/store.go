// Package store owns the on-disk catalog of installed versions and the
// default-version pointer. Nothing is cached between operations: the
// filesystem is re-read as ground truth on every call, so concurrent
// processes only ever coordinate through atomic renames.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"chv/internal/paths"
	"chv/internal/version"
)

var (
	// ErrNotInstalled reports an operation against a version that is not
	// in the store.
	ErrNotInstalled = errors.New("version not installed")

	// ErrNoDefaultSet reports that no default pointer exists.
	ErrNoDefaultSet = errors.New("no default version set")

	// ErrCorruptDefault reports a default pointer naming a version that is
	// no longer installed. The store, not just the pointer, is
	// inconsistent; callers must surface this rather than fall back.
	ErrCorruptDefault = errors.New("default points at a version that is not installed")

	// ErrInUseAsDefault guards removal of the current default.
	ErrInUseAsDefault = errors.New("version is the current default")
)

const binaryName = "clickhouse"

// Store provides access to the global version store.
type Store struct {
	versionsDir string
	defaultFile string
}

// Open binds a Store to the global directory and ensures the versions
// hierarchy exists.
func Open() (*Store, error) {
	if err := paths.EnsureStore(); err != nil {
		return nil, err
	}
	versionsDir, err := paths.VersionsDir()
	if err != nil {
		return nil, err
	}
	defaultFile, err := paths.DefaultFile()
	if err != nil {
		return nil, err
	}
	return &Store{versionsDir: versionsDir, defaultFile: defaultFile}, nil
}

// VersionDir returns the install directory for a version. Existence is not
// guaranteed; pair with IsInstalled.
func (s *Store) VersionDir(v version.Version) string {
	return filepath.Join(s.versionsDir, v.String())
}

// BinaryPath returns the executable path for a version. Existence is not
// guaranteed; pair with IsInstalled.
func (s *Store) BinaryPath(v version.Version) string {
	return filepath.Join(s.VersionDir(v), binaryName)
}

// VersionsDir exposes the directory downloads must be staged in so the final
// placement is a same-filesystem rename.
func (s *Store) VersionsDir() string {
	return s.versionsDir
}

// IsInstalled reports whether the version's binary is present.
func (s *Store) IsInstalled(v version.Version) bool {
	return paths.FileExists(s.BinaryPath(v))
}

// ListInstalled returns installed versions, newest first. Directories that
// don't parse as exact versions or lack a binary are skipped.
func (s *Store) ListInstalled() ([]version.Version, error) {
	dirEntries, err := os.ReadDir(s.versionsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read versions dir: %w", err)
	}

	var installed []version.Version
	for _, entry := range dirEntries {
		if !entry.IsDir() {
			continue
		}
		v, err := version.Parse(entry.Name())
		if err != nil {
			continue
		}
		if s.IsInstalled(v) {
			installed = append(installed, v)
		}
	}

	sort.Slice(installed, func(i, j int) bool {
		return version.Less(installed[j], installed[i])
	})
	return installed, nil
}

// SetDefault points the default at an installed version. The pointer file is
// written to a temp file and renamed, so a crash mid-write leaves either the
// old pointer or the new one, never a torn file.
func (s *Store) SetDefault(v version.Version) error {
	if !s.IsInstalled(v) {
		return fmt.Errorf("set default %s: %w", v, ErrNotInstalled)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.defaultFile), ".default-*")
	if err != nil {
		return fmt.Errorf("stage default pointer: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(v.String() + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("write default pointer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write default pointer: %w", err)
	}

	if err := os.Rename(tmpPath, s.defaultFile); err != nil {
		return fmt.Errorf("commit default pointer: %w", err)
	}
	return nil
}

// GetDefault returns the default version when one is set. An absent or empty
// pointer yields ok=false; a pointer naming a missing version yields
// ErrCorruptDefault.
func (s *Store) GetDefault() (version.Version, bool, error) {
	data, err := os.ReadFile(s.defaultFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return version.Version{}, false, nil
		}
		return version.Version{}, false, fmt.Errorf("read default pointer: %w", err)
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return version.Version{}, false, nil
	}

	v, err := version.Parse(raw)
	if err != nil {
		return version.Version{}, false, fmt.Errorf("default pointer %q: %w", raw, ErrCorruptDefault)
	}
	if !s.IsInstalled(v) {
		return version.Version{}, false, fmt.Errorf("default pointer %s: %w", v, ErrCorruptDefault)
	}
	return v, true, nil
}

// ClearDefault removes the default pointer if present.
func (s *Store) ClearDefault() error {
	if err := os.Remove(s.defaultFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove default pointer: %w", err)
	}
	return nil
}

// Remove deletes an installed version. Removing the current default requires
// force; a forced removal deliberately leaves the pointer behind so the next
// GetDefault surfaces the inconsistency instead of silently losing it.
func (s *Store) Remove(v version.Version, force bool) error {
	if !s.IsInstalled(v) {
		return fmt.Errorf("remove %s: %w", v, ErrNotInstalled)
	}

	if def, ok, err := s.GetDefault(); err == nil && ok && def == v {
		if !force {
			return fmt.Errorf("remove %s: %w", v, ErrInUseAsDefault)
		}
	}

	if err := os.RemoveAll(s.VersionDir(v)); err != nil {
		return fmt.Errorf("remove %s: %w", v, err)
	}
	return nil
}

// SweepOrphans deletes staged download files older than maxAge, returning
// how many were removed. Younger files are left alone so an in-flight
// download in another process is never disturbed.
func (s *Store) SweepOrphans(maxAge time.Duration) int {
	dirEntries, err := os.ReadDir(s.versionsDir)
	if err != nil {
		return 0
	}

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range dirEntries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".part") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if os.Remove(filepath.Join(s.versionsDir, entry.Name())) == nil {
			removed++
		}
	}
	return removed
}
