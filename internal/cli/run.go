package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"chv/internal/launcher"
)

var (
	runSQL  string
	runSpec string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run ClickHouse commands",
		Long: `Run ClickHouse using the default version (or --use <spec>).

With --sql, runs the query through clickhouse local and exits. Otherwise use
the server, client or local subcommands.`,
		RunE: runRun,
	}
	cmd.PersistentFlags().StringVar(&runSpec, "use", "", "Version spec to run instead of the default")
	cmd.Flags().StringVar(&runSQL, "sql", "", "Run a single query via clickhouse local")

	cmd.AddCommand(newRunServerCmd())
	cmd.AddCommand(newRunClientCmd())
	cmd.AddCommand(newRunLocalCmd())
	return cmd
}

// newServerCmd and newClientCmd are top-level shorthands for run server and
// run client.
func newServerCmd() *cobra.Command {
	cmd := newRunServerCmd()
	cmd.Flags().StringVar(&runSpec, "use", "", "Version spec to run instead of the default")
	return cmd
}

func newClientCmd() *cobra.Command {
	cmd := newRunClientCmd()
	cmd.Flags().StringVar(&runSpec, "use", "", "Version spec to run instead of the default")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	if runSQL == "" {
		return cmd.Help()
	}
	return execClickHouse(cmd, launcher.ModeLocal, []string{"--query", runSQL})
}

func newRunServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server [-- args...]",
		Short: "Run clickhouse server with project-local data",
		Long:  "Run clickhouse server rooted in .clickhouse/{version}/ of the current project. The data directory is created on first run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execClickHouse(cmd, launcher.ModeServer, args)
		},
	}
}

func newRunClientCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "client [-- args...]",
		Short: "Run clickhouse client",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execClickHouse(cmd, launcher.ModeClient, args)
		},
	}
}

func newRunLocalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "local [-- args...]",
		Short: "Run clickhouse local",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execClickHouse(cmd, launcher.ModeLocal, args)
		},
	}
}

// execClickHouse resolves the target binary and replaces the current process
// with it. On success it never returns.
func execClickHouse(cmd *cobra.Command, mode launcher.Mode, extraArgs []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	target, err := a.launcher.Resolve(cmd.Context(), runSpec, nil)
	if err != nil {
		a.Close()
		return err
	}

	argv := []string{target.Binary, mode.Subcommand()}
	argv = append(argv, extraArgs...)

	if mode == launcher.ModeServer && !hasConfigFlag(extraArgs) {
		dataDir, err := a.launcher.DataDir("", target, mode)
		if err != nil {
			a.Close()
			return err
		}
		if err := os.Chdir(dataDir); err != nil {
			a.Close()
			return fmt.Errorf("enter data dir: %w", err)
		}
		argv = append(argv, "--", "--path=./")
	}

	a.logger.Printf("exec: version=%s argv=%v", target.Version, argv)
	a.Close()

	if err := unix.Exec(target.Binary, argv, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", target.Binary, err)
	}
	return nil
}

// hasConfigFlag reports whether the caller already points the server at a
// config file, in which case the project data dir setup is skipped.
func hasConfigFlag(args []string) bool {
	for _, arg := range args {
		if strings.HasPrefix(arg, "--config-file") || strings.HasPrefix(arg, "-C") {
			return true
		}
	}
	return false
}
