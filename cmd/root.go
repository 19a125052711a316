package cmd

import (
	"fmt"
	"os"

	"github.com/jmehdipour/tenant-console/internal/config"
	"github.com/jmehdipour/tenant-console/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	rootCmd = &cobra.Command{
		Use:          "tenantconsole",
		Short:        "Multi-tenant admin console gateway and CLI",
		SilenceUsage: true,
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (embedded defaults when empty)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newTenantsCmd())
	rootCmd.AddCommand(newDashboardCmd())
}

// loadConfig reads the config and initializes the global logger from it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Encoding)
	return cfg, nil
}
