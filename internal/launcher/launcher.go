// Package launcher picks the binary and working directory for running
// ClickHouse processes.
package launcher

import (
	"context"
	"fmt"

	"chv/internal/installer"
	"chv/internal/project"
	"chv/internal/store"
	"chv/internal/version"
)

// Mode selects which ClickHouse entrypoint a run targets.
type Mode int

const (
	// ModeLocal runs clickhouse local, the embedded single-shot engine.
	ModeLocal Mode = iota
	// ModeClient runs the interactive client.
	ModeClient
	// ModeServer runs a server rooted in the project data directory.
	ModeServer
)

// Subcommand returns the clickhouse subcommand for the mode.
func (m Mode) Subcommand() string {
	switch m {
	case ModeClient:
		return "client"
	case ModeServer:
		return "server"
	default:
		return "local"
	}
}

// Launcher resolves run requests against the store, installing on demand.
type Launcher struct {
	store     *store.Store
	installer *installer.Installer
}

func New(st *store.Store, ins *installer.Installer) *Launcher {
	return &Launcher{store: st, installer: ins}
}

// Target is a resolved run: which binary to exec and which version it is.
type Target struct {
	Version version.Version
	Binary  string
}

// Resolve picks the version to run. An empty spec means the default; a
// non-empty spec is resolved and installed if missing.
func (l *Launcher) Resolve(ctx context.Context, rawSpec string, progress installer.Progress) (Target, error) {
	if rawSpec == "" {
		v, ok, err := l.store.GetDefault()
		if err != nil {
			return Target{}, err
		}
		if !ok {
			return Target{}, store.ErrNoDefaultSet
		}
		return Target{Version: v, Binary: l.store.BinaryPath(v)}, nil
	}

	spec, err := version.ParseSpec(rawSpec)
	if err != nil {
		return Target{}, err
	}
	res, err := l.installer.Install(ctx, spec, progress)
	if err != nil {
		return Target{}, err
	}
	return Target{Version: res.Version, Binary: l.store.BinaryPath(res.Version)}, nil
}

// DataDir returns the working directory for the run. Only server mode
// materializes the project-local version directory; client and local runs
// leave the project untouched and return "".
func (l *Launcher) DataDir(root string, target Target, mode Mode) (string, error) {
	if mode != ModeServer {
		return "", nil
	}
	dir, err := project.EnsureVersionDir(root, target.Version)
	if err != nil {
		return "", fmt.Errorf("prepare server data dir: %w", err)
	}
	return dir, nil
}
