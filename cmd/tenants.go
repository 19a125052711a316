package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jmehdipour/tenant-console/internal/client"
	"github.com/jmehdipour/tenant-console/internal/model"
	"github.com/spf13/cobra"
)

func newTenantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenants",
		Short: "Manage tenants through a running console",
	}
	cmd.AddCommand(tenantsListCmd(), tenantsGetCmd(), tenantsCreateCmd(), tenantsAdminCmd())
	return cmd
}

func consoleClient() (*client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return client.New(cfg.Console.BaseURL, client.WithTimeout(cfg.Console.Timeout)), nil
}

func tenantsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := consoleClient()
			if err != nil {
				return err
			}
			tenants, err := c.ListTenants(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tenants)
		},
	}
}

func tenantsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <tenantId>",
		Short: "Show one tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := consoleClient()
			if err != nil {
				return err
			}
			t, err := c.GetTenant(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}
}

func tenantsCreateCmd() *cobra.Command {
	var req model.CreateTenantRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := consoleClient()
			if err != nil {
				return err
			}
			t, err := c.CreateTenant(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "tenant name (at least 4 characters)")
	cmd.Flags().StringVar(&req.Description, "description", "", "optional description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func tenantsAdminCmd() *cobra.Command {
	var req model.CreateAdminUserRequest
	cmd := &cobra.Command{
		Use:   "admin <tenantId>",
		Short: "Create the admin user of a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := consoleClient()
			if err != nil {
				return err
			}
			user, err := c.CreateTenantAdmin(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&req.Password, "password", "", "admin password (at least 6 characters)")
	cmd.Flags().StringVar(&req.DisplayName, "display-name", "", "admin display name")
	for _, f := range []string{"email", "password", "display-name"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
