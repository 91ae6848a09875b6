package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"chv/internal/cloud"
)

var (
	cloudAPIKey    string
	cloudAPISecret string
	cloudOrgID     string
)

func newCloudCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cloud",
		Short: "Manage ClickHouse Cloud organizations, services and backups",
	}
	cmd.PersistentFlags().StringVar(&cloudAPIKey, "api-key", "", "API key (or set CLICKHOUSE_CLOUD_API_KEY)")
	cmd.PersistentFlags().StringVar(&cloudAPISecret, "api-secret", "", "API secret (or set CLICKHOUSE_CLOUD_API_SECRET)")
	cmd.PersistentFlags().StringVar(&cloudOrgID, "org", "", "Organization ID (default: first organization on the key)")

	cmd.AddCommand(newCloudLoginCmd())
	cmd.AddCommand(newCloudOrgCmd())
	cmd.AddCommand(newCloudServiceCmd())
	cmd.AddCommand(newCloudBackupCmd())
	return cmd
}

func cloudClient() (*cloud.Client, error) {
	return cloud.NewClient(cloudAPIKey, cloudAPISecret)
}

// resolveOrg returns the --org flag or falls back to the key's first
// organization.
func resolveOrg(ctx context.Context, c *cloud.Client) (string, error) {
	if cloudOrgID != "" {
		return cloudOrgID, nil
	}
	return c.DefaultOrganizationID(ctx)
}

func newCloudLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Save API credentials into the project directory",
		Long:  "Save the API key pair to .clickhouse/credentials.json (mode 600) so later cloud commands need no flags or environment.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cloudAPIKey == "" || cloudAPISecret == "" {
				return fmt.Errorf("%w: pass --api-key and --api-secret", cloud.ErrMissingCredentials)
			}
			// Validate before persisting.
			c, err := cloudClient()
			if err != nil {
				return err
			}
			if _, err := c.ListOrganizations(cmd.Context()); err != nil {
				return fmt.Errorf("credential check: %w", err)
			}
			creds := cloud.Credentials{APIKey: cloudAPIKey, APISecret: cloudAPISecret}
			if err := cloud.SaveCredentials("", creds); err != nil {
				return err
			}
			cmd.Println("Credentials saved")
			return nil
		},
	}
}

func newCloudOrgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Organization commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List organizations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cloudClient()
			if err != nil {
				return err
			}
			orgs, err := c.ListOrganizations(cmd.Context())
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(cmd.OutOrStdout(), orgs)
			}
			for _, org := range orgs {
				cmd.Printf("%s  %s\n", org.ID, org.Name)
			}
			return nil
		},
	})
	return cmd
}

func newCloudServiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Service commands",
	}
	cmd.AddCommand(newCloudServiceListCmd())
	cmd.AddCommand(newCloudServiceGetCmd())
	cmd.AddCommand(newCloudServiceCreateCmd())
	cmd.AddCommand(newCloudServiceDeleteCmd())
	cmd.AddCommand(newCloudServiceStateCmd("start", "Start a stopped service"))
	cmd.AddCommand(newCloudServiceStateCmd("stop", "Stop a running service"))
	return cmd
}

func newCloudServiceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cloudClient()
			if err != nil {
				return err
			}
			orgID, err := resolveOrg(cmd.Context(), c)
			if err != nil {
				return err
			}
			services, err := c.ListServices(cmd.Context(), orgID)
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(cmd.OutOrStdout(), services)
			}
			for _, svc := range services {
				cmd.Printf("%s  %-20s %-10s %s/%s\n", svc.ID, svc.Name, svc.State, svc.Provider, svc.Region)
			}
			return nil
		},
	}
}

func newCloudServiceGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <service-id>",
		Short: "Show one service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cloudClient()
			if err != nil {
				return err
			}
			orgID, err := resolveOrg(cmd.Context(), c)
			if err != nil {
				return err
			}
			svc, err := c.GetService(cmd.Context(), orgID, args[0])
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(cmd.OutOrStdout(), svc)
			}
			cmd.Printf("%s (%s)\n", svc.Name, svc.ID)
			cmd.Printf("  state:    %s\n", svc.State)
			cmd.Printf("  provider: %s/%s\n", svc.Provider, svc.Region)
			for _, ep := range svc.Endpoints {
				cmd.Printf("  endpoint: %s://%s:%d\n", ep.Protocol, ep.Host, ep.Port)
			}
			return nil
		},
	}
}

var (
	createProvider string
	createRegion   string
	createReplicas int
)

func newCloudServiceCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cloudClient()
			if err != nil {
				return err
			}
			orgID, err := resolveOrg(cmd.Context(), c)
			if err != nil {
				return err
			}
			req := cloud.CreateServiceRequest{
				Name:        args[0],
				Provider:    createProvider,
				Region:      createRegion,
				NumReplicas: createReplicas,
			}
			resp, err := c.CreateService(cmd.Context(), orgID, req)
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			cmd.Printf("Created %s (%s)\n", resp.Service.Name, resp.Service.ID)
			cmd.Printf("Password: %s\n", resp.Password)
			cmd.Println("Store the password now; the API will not show it again.")
			return nil
		},
	}
	cmd.Flags().StringVar(&createProvider, "provider", "aws", "Cloud provider (aws, gcp, azure)")
	cmd.Flags().StringVar(&createRegion, "region", "us-east-1", "Service region")
	cmd.Flags().IntVar(&createReplicas, "replicas", 0, "Number of replicas (0 uses the API default)")
	return cmd
}

func newCloudServiceDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <service-id>",
		Short: "Delete a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cloudClient()
			if err != nil {
				return err
			}
			orgID, err := resolveOrg(cmd.Context(), c)
			if err != nil {
				return err
			}
			if err := c.DeleteService(cmd.Context(), orgID, args[0]); err != nil {
				return err
			}
			cmd.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

func newCloudServiceStateCmd(command, short string) *cobra.Command {
	return &cobra.Command{
		Use:   command + " <service-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cloudClient()
			if err != nil {
				return err
			}
			orgID, err := resolveOrg(cmd.Context(), c)
			if err != nil {
				return err
			}
			svc, err := c.ChangeServiceState(cmd.Context(), orgID, args[0], command)
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(cmd.OutOrStdout(), svc)
			}
			cmd.Printf("%s is now %s\n", svc.Name, svc.State)
			return nil
		},
	}
}

func newCloudBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Backup commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list <service-id>",
		Short: "List backups for a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cloudClient()
			if err != nil {
				return err
			}
			orgID, err := resolveOrg(cmd.Context(), c)
			if err != nil {
				return err
			}
			backups, err := c.ListBackups(cmd.Context(), orgID, args[0])
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(cmd.OutOrStdout(), backups)
			}
			for _, b := range backups {
				size := ""
				if b.SizeInBytes > 0 {
					size = fmt.Sprintf("  %d bytes", b.SizeInBytes)
				}
				cmd.Printf("%s  %-10s %s%s\n", b.ID, b.Status, b.CreatedAt, size)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <service-id> <backup-id>",
		Short: "Show one backup",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cloudClient()
			if err != nil {
				return err
			}
			orgID, err := resolveOrg(cmd.Context(), c)
			if err != nil {
				return err
			}
			backup, err := c.GetBackup(cmd.Context(), orgID, args[0], args[1])
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(cmd.OutOrStdout(), backup)
			}
			cmd.Printf("%s  %s\n", backup.ID, backup.Status)
			return nil
		},
	})
	return cmd
}
