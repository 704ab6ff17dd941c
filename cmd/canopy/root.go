package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/aretw0/canopy/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "canopy",
	Short: "Canopy processes component layout trees",
	Long: `Canopy aggregates component props and personalizes layout trees produced by a
headless layout service. It can run once over a layout file or serve the editing
data and personalization APIs over HTTP and MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./canopy.yaml when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

// setup loads the configuration for cmd, binding its flags named in flagKeys, and
// builds the logger.
func setup(cmd *cobra.Command, flagKeys map[string]string) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")

	keys := map[string]string{"log-level": "log.level"}
	for flag, key := range flagKeys {
		keys[flag] = key
	}

	cfg, err := config.Load(path, cmd.Flags(), keys)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger, err := cli.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
