// Package project manages the per-project .clickhouse directory that server
// runs use as their working area.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"chv/internal/paths"
	"chv/internal/version"
)

// EnsureVersionDir makes sure root/.clickhouse/{version}/ exists and returns
// its path. The first call in a project also drops a .gitignore so the data
// directory never ends up committed. Repeat calls are no-ops.
func EnsureVersionDir(root string, v version.Version) (string, error) {
	projectDir, err := paths.ProjectDir(root)
	if err != nil {
		return "", err
	}

	created := !paths.DirExists(projectDir)
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return "", fmt.Errorf("create project dir: %w", err)
	}
	if created {
		gitignore := filepath.Join(projectDir, ".gitignore")
		if err := os.WriteFile(gitignore, []byte("*\n"), 0o644); err != nil {
			return "", fmt.Errorf("write project gitignore: %w", err)
		}
	}

	versionDir := filepath.Join(projectDir, v.String())
	if err := os.MkdirAll(versionDir, 0o755); err != nil {
		return "", fmt.Errorf("create project version dir: %w", err)
	}
	return versionDir, nil
}
