package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"chv/internal/paths"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a project-local .clickhouse directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	root := ""
	if len(args) > 0 {
		root = args[0]
	}

	projectDir, err := paths.ProjectDir(root)
	if err != nil {
		return err
	}

	if paths.DirExists(projectDir) {
		if outputJSON {
			return printJSON(cmd.OutOrStdout(), map[string]any{"project_dir": projectDir, "created": false})
		}
		cmd.Printf("Project already initialized at %s\n", projectDir)
		return nil
	}

	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(projectDir, ".gitignore"), []byte("*\n"), 0o644); err != nil {
		return fmt.Errorf("write project gitignore: %w", err)
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), map[string]any{"project_dir": projectDir, "created": true})
	}
	cmd.Printf("Initialized project at %s\n", projectDir)
	return nil
}
