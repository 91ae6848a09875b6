package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"chv/internal/installer"
	"chv/internal/tui"
	"chv/internal/version"
)

var installNoProgress bool

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <spec>",
		Short: "Install a ClickHouse version",
		Long: `Install the version matching a spec.

A spec is "stable", "lts", an exact four-part version like 25.3.2.39, or a
prefix like 25 or 25.3 that selects the newest matching release.`,
		Args: cobra.ExactArgs(1),
		RunE: runInstall,
	}
	cmd.Flags().BoolVar(&installNoProgress, "no-progress", false, "Disable the live progress display")
	return cmd
}

func runInstall(cmd *cobra.Command, args []string) error {
	spec, err := version.ParseSpec(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	a.logger.Printf("install: spec=%s", spec)

	var res installer.Result
	if tui.DetectMode(cmd.OutOrStdout(), installNoProgress, outputJSON) == tui.ModeTUI {
		res, err = installWithTUI(cmd.Context(), cmd.OutOrStdout(), a, spec)
	} else {
		res, err = a.installer.Install(cmd.Context(), spec, nil)
	}
	if err != nil {
		a.logger.Printf("install: spec=%s error=%v", spec, err)
		return err
	}
	a.logger.Printf("install: spec=%s version=%s already=%v", spec, res.Version, res.AlreadyInstalled)

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"version":           res.Version.String(),
			"already_installed": res.AlreadyInstalled,
			"binary":            a.store.BinaryPath(res.Version),
		})
	}

	if res.AlreadyInstalled {
		cmd.Printf("%s is already installed\n", res.Version)
		return nil
	}
	cmd.Printf("Installed %s\n", res.Version)
	return nil
}

func installWithTUI(ctx context.Context, out io.Writer, a *app, spec version.Spec) (installer.Result, error) {
	var res installer.Result
	var installErr error

	model := tui.NewDownloadModel(fmt.Sprintf("install %s", spec))
	err := tui.RunWithWork(out, model, func(send func(tea.Msg)) {
		progress := func(received, total int64) {
			send(tui.BytesMsg{Received: received, Total: total})
		}
		res, installErr = a.installer.Install(ctx, spec, progress)
		if installErr != nil {
			send(tui.ErrorMsg{Err: installErr})
			return
		}
		phase := "installed"
		if res.AlreadyInstalled {
			phase = "exists"
		}
		send(tui.PhaseMsg{Phase: phase, Detail: res.Version.String()})
	})
	// On an abort the work goroutine is still running; res and installErr
	// must not be read.
	if err != nil {
		return installer.Result{}, err
	}
	if installErr != nil {
		return installer.Result{}, installErr
	}
	return res, nil
}
