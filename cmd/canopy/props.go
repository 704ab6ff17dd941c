package main

import (
	"fmt"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/cli"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/spf13/cobra"
)

var propsCmd = &cobra.Command{
	Use:   "props <layout.json|->",
	Short: "Aggregate component props for a layout",
	Long: `Runs the loader of every rendering in the layout concurrently and prints the
results keyed by rendering uid. Loaders are canned fixtures read from a modules file:

  components:
    - name: Hero
      serverSide:
        data: {title: Hello}
        delay: 50ms
    - name: News
      static:
        error: feed unavailable`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd, map[string]string{"max-concurrency": "props.max_concurrency"})
		if err != nil {
			return err
		}
		kind, _ := cmd.Flags().GetString("kind")
		modulesPath, _ := cmd.Flags().GetString("modules")
		format, _ := cmd.Flags().GetString("output")

		reg, err := cli.LoadModules(modulesPath)
		if err != nil {
			return err
		}
		layout, err := cli.ReadLayout(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		engine, err := cli.NewEngine(cfg, logger, canopy.WithResolver(reg))
		if err != nil {
			return err
		}

		var props domain.ComponentPropsCollection
		switch kind {
		case "server-side":
			props, err = engine.FetchServerSideProps(cmd.Context(), layout, nil)
		case "static":
			props, err = engine.FetchStaticProps(cmd.Context(), layout, nil)
		default:
			return fmt.Errorf("unknown loader kind %q (server-side, static)", kind)
		}
		if err != nil {
			return err
		}
		return cli.WriteOutput(cmd.OutOrStdout(), props, format)
	},
}

func init() {
	rootCmd.AddCommand(propsCmd)
	propsCmd.Flags().StringP("kind", "k", "server-side", "Loader kind: server-side or static")
	propsCmd.Flags().StringP("modules", "m", "modules.yaml", "Modules fixture file (YAML or JSON)")
	propsCmd.Flags().StringP("output", "o", cli.FormatJSON, "Output format: json or yaml")
	propsCmd.Flags().Int("max-concurrency", 0, "Maximum loaders in flight (0 means unbounded)")
}
