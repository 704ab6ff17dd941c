package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/cli"
	"github.com/aretw0/canopy/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the editing data API (/api/editing/data/{key}), layout personalization
and outline endpoints, health and Prometheus metrics over HTTP.

The editing secret is read from CANOPY_EDITING_SECRET or JSS_EDITING_SECRET.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd, map[string]string{
			"port":            "server.port",
			"store":           "editing.store",
			"secret":          "editing.secret",
			"max-concurrency": "props.max_concurrency",
		})
		if err != nil {
			return err
		}
		if err := cfg.ValidateServe(); err != nil {
			return err
		}

		if stderr := cmd.ErrOrStderr(); tui.IsTerminal(stderr) {
			tui.PrintBanner(stderr, canopy.Version)
		}

		// Create a context that cancels on interrupt signal
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return cli.Serve(ctx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("store", "memory", "Editing data store: memory, redis or file")
	serveCmd.Flags().String("secret", "", "Editing secret (prefer the environment)")
	serveCmd.Flags().Int("max-concurrency", 0, "Maximum loaders in flight (0 means unbounded)")
}
