package cli

import (
	"github.com/spf13/cobra"

	"chv/internal/version"
)

var removeForce bool

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <version>",
		Short: "Remove an installed version",
		Long:  "Remove an installed version. The exact four-part version must be given. Removing the current default requires --force.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemove,
	}
	cmd.Flags().BoolVar(&removeForce, "force", false, "Remove even if the version is the current default")
	return cmd
}

func runRemove(cmd *cobra.Command, args []string) error {
	v, err := version.Parse(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.Remove(v, removeForce); err != nil {
		return err
	}
	a.logger.Printf("remove: version=%s force=%v", v, removeForce)

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), map[string]any{"removed": v.String()})
	}
	cmd.Printf("Removed %s\n", v)
	return nil
}
