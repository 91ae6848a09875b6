// Package paths captures canonical on-disk locations: the global
// ~/.clickhouse store that holds installed binaries, and the project-local
// .clickhouse directory that holds per-version server data.
package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"chv/internal/version"
)

// HomeEnv overrides the global directory location. Used by tests and by
// users who keep the store outside their home directory.
const HomeEnv = "CLICKHOUSE_HOME"

// binaryName is the single executable installed per version.
const binaryName = "clickhouse"

// GlobalDir returns the user-level chv directory (~/.clickhouse), honoring
// CLICKHOUSE_HOME when set. The directory is not created.
func GlobalDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("detect user home: %w", err)
	}
	return filepath.Join(home, ".clickhouse"), nil
}

// VersionsDir returns the directory that holds one subdirectory per
// installed version.
func VersionsDir() (string, error) {
	global, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(global, "versions"), nil
}

// VersionDir returns the install directory for one exact version.
func VersionDir(v version.Version) (string, error) {
	versions, err := VersionsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(versions, v.String()), nil
}

// BinaryPath returns the path of the clickhouse executable for one exact
// version. Existence is not checked.
func BinaryPath(v version.Version) (string, error) {
	dir, err := VersionDir(v)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, binaryName), nil
}

// DefaultFile returns the path of the default-version pointer file.
func DefaultFile() (string, error) {
	global, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(global, "default"), nil
}

// CacheDir returns the directory for cached remote metadata. It is created
// if missing.
func CacheDir() (string, error) {
	global, err := GlobalDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(global, "cache")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	return dir, nil
}

// LogsDir returns the global logs directory, creating it if missing.
func LogsDir() (string, error) {
	global, err := GlobalDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(global, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create logs dir: %w", err)
	}
	return dir, nil
}

// ConfigFile returns the path of the optional settings file.
func ConfigFile() (string, error) {
	global, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(global, "config.yaml"), nil
}

// EnsureStore makes sure the versions directory hierarchy exists.
func EnsureStore() error {
	versions, err := VersionsDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(versions, 0o755); err != nil {
		return fmt.Errorf("create versions dir: %w", err)
	}
	return nil
}

// ProjectDir returns the project-local .clickhouse directory for the given
// project root. An empty root means the current working directory.
func ProjectDir(root string) (string, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve project root: %w", err)
		}
		root = cwd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve project root: %w", err)
	}
	return filepath.Join(abs, ".clickhouse"), nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
