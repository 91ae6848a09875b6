package cli

import (
	"github.com/spf13/cobra"

	"chv/internal/version"
)

func newUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <spec>",
		Short: "Set the default version, installing it if needed",
		Args:  cobra.ExactArgs(1),
		RunE:  runUse,
	}
}

func runUse(cmd *cobra.Command, args []string) error {
	spec, err := version.ParseSpec(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	a.logger.Printf("use: spec=%s", spec)

	res, err := a.installer.Install(cmd.Context(), spec, nil)
	if err != nil {
		return err
	}
	if err := a.store.SetDefault(res.Version); err != nil {
		return err
	}
	a.logger.Printf("use: default=%s", res.Version)

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"version": res.Version.String(),
			"binary":  a.store.BinaryPath(res.Version),
		})
	}
	cmd.Printf("Default is now %s\n", res.Version)
	return nil
}
