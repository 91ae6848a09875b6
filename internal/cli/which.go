package cli

import (
	"github.com/spf13/cobra"

	"chv/internal/store"
)

func newWhichCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "which",
		Short: "Show the default version and its binary path",
		Args:  cobra.NoArgs,
		RunE:  runWhich,
	}
}

func runWhich(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	v, ok, err := a.store.GetDefault()
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNoDefaultSet
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"version": v.String(),
			"binary":  a.store.BinaryPath(v),
		})
	}
	cmd.Printf("%s\n%s\n", v, a.store.BinaryPath(v))
	return nil
}
