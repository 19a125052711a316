package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jmehdipour/tenant-console/internal/dashboard"
	"github.com/jmehdipour/tenant-console/internal/logger"
	"github.com/jmehdipour/tenant-console/internal/model"
	"github.com/jmehdipour/tenant-console/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type pageFunc func(*dashboard.Loader, context.Context, session.Session) (*dashboard.Page, error)

func newDashboardCmd() *cobra.Command {
	var (
		tenantID string
		email    string
		days     int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Render a dashboard page for the signed-in tenant",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(session.WithSession(cmd.Context(), session.New(tenantID, email)))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&tenantID, "tenant", os.Getenv("TCONSOLE_TENANT"), "tenant id of the session (env TCONSOLE_TENANT)")
	cmd.PersistentFlags().StringVar(&email, "email", os.Getenv("TCONSOLE_EMAIL"), "email of the session user")
	cmd.PersistentFlags().IntVar(&days, "days", model.DefaultDays, "window of the windowed metrics")
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print the page as JSON")

	pages := []struct {
		name  string
		short string
		load  pageFunc
	}{
		{"overview", "Tenant overview", (*dashboard.Loader).Overview},
		{"users", "User metrics", (*dashboard.Loader).Users},
		{"trips", "Trip metrics", (*dashboard.Loader).Trips},
		{"media", "Media metrics", (*dashboard.Loader).Media},
		{"social", "Social metrics", (*dashboard.Loader).Social},
		{"pricing", "Pricing and billing", (*dashboard.Loader).Pricing},
	}

	for _, p := range pages {
		load := p.load
		cmd.AddCommand(&cobra.Command{
			Use:   p.name,
			Short: p.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := consoleClient()
				if err != nil {
					return err
				}
				s, _ := session.FromContext(cmd.Context())
				page, err := load(dashboard.NewLoader(c, days), cmd.Context(), s)
				if err != nil {
					return err
				}
				for _, w := range page.Warnings {
					logger.Log.Warn("dashboard: inconsistent data", zap.String("tenant", page.TenantID), zap.String("warning", w))
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), page)
				}
				printPage(cmd.OutOrStdout(), page)
				return nil
			},
		})
	}
	return cmd
}

func printPage(w io.Writer, p *dashboard.Page) {
	fmt.Fprintf(w, "%s (%s)\n", p.Title, p.TenantID)
	for _, c := range p.Cards {
		if c.Change != "" {
			fmt.Fprintf(w, "  %-28s %14s  %s\n", c.Title, c.Value, c.Change)
			continue
		}
		fmt.Fprintf(w, "  %-28s %14s\n", c.Title, c.Value)
	}
	if p.LastUpdated != "" {
		fmt.Fprintf(w, "Last updated: %s\n", p.LastUpdated)
	}
	for _, warn := range p.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}
