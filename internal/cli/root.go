// Package cli wires the chv commands together.
package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"chv/internal/catalog"
	"chv/internal/config"
	"chv/internal/installer"
	"chv/internal/launcher"
	"chv/internal/logx"
	"chv/internal/paths"
	"chv/internal/store"
)

var outputJSON bool

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chv",
		Short: "ClickHouse version manager",
		Long:  "chv installs ClickHouse binaries, manages the default version, and runs server, client and local sessions.",
	}

	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newInstallCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newUseCmd())
	cmd.AddCommand(newWhichCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newServerCmd())
	cmd.AddCommand(newClientCmd())
	cmd.AddCommand(newCloudCmd())

	return cmd
}

// app bundles the long-lived pieces most commands need.
type app struct {
	cfg       config.Config
	store     *store.Store
	catalog   *catalog.Client
	installer *installer.Installer
	launcher  *launcher.Launcher
	logger    *log.Logger
	closeLog  func()
}

func newApp() (*app, error) {
	configFile, err := paths.ConfigFile()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	st, err := store.Open()
	if err != nil {
		return nil, err
	}

	cacheDir, err := paths.CacheDir()
	if err != nil {
		return nil, err
	}
	cat := catalog.NewClient(cfg.ReleasesURL, catalog.NewCache(cacheDir), cfg.CatalogTTL())
	ins := installer.New(st, cat, cfg.DownloadBase, cfg.DownloadTimeout())

	logger, closer, err := logx.New()
	closeLog := func() {}
	if err != nil {
		// A broken logs dir should not block the command itself.
		logger = logx.Discard()
	} else {
		closeLog = func() { closer.Close() }
	}
	ins.SetLogger(logger)

	return &app{
		cfg:       cfg,
		store:     st,
		catalog:   cat,
		installer: ins,
		launcher:  launcher.New(st, ins),
		logger:    logger,
		closeLog:  closeLog,
	}, nil
}

func (a *app) Close() {
	a.closeLog()
}
