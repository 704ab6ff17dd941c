package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/editing"
	"github.com/spf13/cobra"
)

var editingCmd = &cobra.Command{
	Use:   "editing",
	Short: "Store and fetch editing data snapshots on a canopy server",
}

var editingPutCmd = &cobra.Command{
	Use:   "put <editing-data.json|->",
	Short: "Store an editing data snapshot and print its preview data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, server, err := editingService(cmd)
		if err != nil {
			return err
		}

		var data domain.EditingData
		if err := decodeFile(args[0], cmd, &data); err != nil {
			return err
		}

		preview, err := svc.SetEditingData(cmd.Context(), &data, server)
		if err != nil {
			return err
		}
		return cli.WriteOutput(cmd.OutOrStdout(), preview, cli.FormatJSON)
	},
}

var editingGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Fetch a stored editing data snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, server, err := editingService(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("output")

		data, err := svc.GetEditingData(cmd.Context(), domain.PreviewData{Key: args[0], ServerURL: server})
		if err != nil {
			return err
		}
		return cli.WriteOutput(cmd.OutOrStdout(), data, format)
	},
}

func editingService(cmd *cobra.Command) (*editing.Service, string, error) {
	cfg, logger, err := setup(cmd, map[string]string{"secret": "editing.secret", "api-route": "editing.api_route"})
	if err != nil {
		return nil, "", err
	}
	server, _ := cmd.Flags().GetString("server")

	svc, err := editing.NewService(
		editing.WithAPIRoute(cfg.Editing.APIRoute),
		editing.WithSecret(cfg.Editing.Secret),
		editing.WithLogger(logger),
	)
	if err != nil {
		return nil, "", err
	}
	return svc, server, nil
}

func decodeFile(path string, cmd *cobra.Command, out any) error {
	r := cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(editingCmd)
	editingCmd.AddCommand(editingPutCmd, editingGetCmd)

	editingCmd.PersistentFlags().String("server", "http://localhost:8080", "Base URL of the canopy server")
	editingCmd.PersistentFlags().String("secret", "", "Editing secret (prefer the environment)")
	editingCmd.PersistentFlags().String("api-route", editing.DefaultAPIRoute, "Editing data route; [key] is replaced by the snapshot key")
	editingGetCmd.Flags().StringP("output", "o", cli.FormatJSON, "Output format: json or yaml")
}
