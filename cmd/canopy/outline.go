package main

import (
	"fmt"
	"io"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/aretw0/canopy/internal/presentation/outline"
	"github.com/aretw0/canopy/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// outlineCmd represents the outline command
var outlineCmd = &cobra.Command{
	Use:   "outline <layout.json|->",
	Short: "Export the layout tree as a Mermaid diagram or Markdown outline",
	Long: `Outputs the layout's placeholders, renderings and personalization variants,
either as a Mermaid diagram (graph TD) or as a Markdown outline, rendered for the
terminal when stdout is one. With --segment, the outline shows what that segment
gets.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		segment, _ := cmd.Flags().GetString("segment")
		format, _ := cmd.Flags().GetString("format")

		layout, err := cli.ReadLayout(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		var overlay *outline.Overlay
		if segment != "" {
			overlay = &outline.Overlay{Segment: segment}
		}

		switch format {
		case "mermaid":
			_, err = io.WriteString(cmd.OutOrStdout(), outline.GenerateMermaid(layout, overlay))
			return err
		case "markdown":
			return tui.WriteMarkdown(cmd.OutOrStdout(), outline.GenerateMarkdown(layout, overlay))
		default:
			return fmt.Errorf("unknown outline format %q (mermaid, markdown)", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(outlineCmd)
	outlineCmd.Flags().StringP("segment", "s", "", "Show the variants chosen for this segment")
	outlineCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid or markdown")
}
