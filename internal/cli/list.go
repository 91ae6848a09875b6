package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"chv/internal/catalog"
	"chv/internal/store"
)

var listRemote bool

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed versions",
		Long:  "List installed versions, newest first. With --remote, list the latest releases from the catalog instead.",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	cmd.Flags().BoolVar(&listRemote, "remote", false, "List available remote releases")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if listRemote {
		return listRemoteReleases(cmd, a)
	}
	return listInstalled(cmd, a)
}

func listInstalled(cmd *cobra.Command, a *app) error {
	a.store.SweepOrphans(time.Hour)

	installed, err := a.store.ListInstalled()
	if err != nil {
		return err
	}
	def, hasDefault, err := a.store.GetDefault()
	if err != nil && !errors.Is(err, store.ErrCorruptDefault) {
		return err
	}

	if outputJSON {
		type item struct {
			Version string `json:"version"`
			Default bool   `json:"default"`
		}
		items := make([]item, 0, len(installed))
		for _, v := range installed {
			items = append(items, item{Version: v.String(), Default: hasDefault && v == def})
		}
		return printJSON(cmd.OutOrStdout(), items)
	}

	if len(installed) == 0 {
		cmd.Println("No versions installed. Try: chv install stable")
		return nil
	}
	for _, v := range installed {
		marker := " "
		if hasDefault && v == def {
			marker = "*"
		}
		cmd.Printf("%s %s\n", marker, v)
	}
	return nil
}

func listRemoteReleases(cmd *cobra.Command, a *app) error {
	entries, err := a.catalog.Releases(cmd.Context())
	if err != nil {
		return err
	}
	if len(entries) > a.cfg.RemoteListLimit {
		entries = entries[:a.cfg.RemoteListLimit]
	}

	if outputJSON {
		type item struct {
			Version   string `json:"version"`
			Channel   string `json:"channel"`
			Installed bool   `json:"installed"`
		}
		items := make([]item, 0, len(entries))
		for _, e := range entries {
			items = append(items, item{
				Version:   e.Version.String(),
				Channel:   string(e.Channel),
				Installed: a.store.IsInstalled(e.Version),
			})
		}
		return printJSON(cmd.OutOrStdout(), items)
	}

	for _, e := range entries {
		marker := " "
		if a.store.IsInstalled(e.Version) {
			marker = "*"
		}
		channel := ""
		if e.Channel != catalog.ChannelOther {
			channel = fmt.Sprintf(" (%s)", e.Channel)
		}
		cmd.Printf("%s %s%s\n", marker, e.Version, channel)
	}
	return nil
}
