package main

import (
	"github.com/aretw0/canopy/internal/cli"
	"github.com/spf13/cobra"
)

var personalizeCmd = &cobra.Command{
	Use:   "personalize <layout.json|->",
	Short: "Apply a segment's variants to a layout",
	Long: `Reads a layout and rewrites it for one segment: renderings hidden for the
segment are removed, renderings with a variant are replaced by it, and the rest are
kept. Use "-" to read the layout from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		segment, _ := cmd.Flags().GetString("segment")
		format, _ := cmd.Flags().GetString("output")

		layout, err := cli.ReadLayout(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		engine, err := cli.NewEngine(cfg, logger)
		if err != nil {
			return err
		}
		engine.Personalize(layout, segment)

		return cli.WriteOutput(cmd.OutOrStdout(), layout, format)
	},
}

func init() {
	rootCmd.AddCommand(personalizeCmd)
	personalizeCmd.Flags().StringP("segment", "s", "", "Segment to personalize for")
	personalizeCmd.Flags().StringP("output", "o", cli.FormatJSON, "Output format: json or yaml")
	_ = personalizeCmd.MarkFlagRequired("segment")
}
