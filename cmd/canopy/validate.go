package main

import (
	"fmt"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/aretw0/canopy/internal/validator"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <layout.json|->",
	Short: "Check a layout for duplicate uids and unusable renderings",
	Long: `Walks the layout, variants included, and reports every problem found.
With --modules, component names without a registered module are reported too.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modulesPath, _ := cmd.Flags().GetString("modules")

		layout, err := cli.ReadLayout(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		var resolver ports.ModuleResolver
		if modulesPath != "" {
			reg, err := cli.LoadModules(modulesPath)
			if err != nil {
				return err
			}
			resolver = reg
		}

		if err := validator.ValidateLayout(layout, resolver); err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "Layout is valid.")
		return err
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("modules", "m", "", "Modules file whose registry must cover every component")
}
