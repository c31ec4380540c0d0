package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/supercraft/internal/core"
)

var (
	specListMatch string
	specListJSON  bool
)

var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "List and print project spec documents",
	Long: `Specs are Markdown files under .supercraft/specs (nested directories
allowed). "spec get" wraps a spec in <SPEC> tags so it can be pasted into an
assistant's context.`,
}

var specListCmd = &cobra.Command{
	Use:   "list",
	Short: "List specs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if SpecCatalog == nil {
			return fmt.Errorf("spec catalog not initialized")
		}

		specs, err := SpecCatalog.List(specListMatch)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if specListJSON {
			if specs == nil {
				specs = []core.SpecInfo{}
			}
			return writeJSON(out, specs)
		}

		if len(specs) == 0 {
			fmt.Fprintln(out, "No specs found.")
			return nil
		}
		for _, s := range specs {
			fmt.Fprintf(out, "  %-32s %s\n", s.Name, labelStyle.Render(s.ModifiedAt.Format("2006-01-02")))
		}
		return nil
	},
}

var specGetCmd = &cobra.Command{
	Use:               "get <name>",
	Short:             "Print a spec wrapped in <SPEC> tags",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeSpecs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if SpecCatalog == nil {
			return fmt.Errorf("spec catalog not initialized")
		}

		content, err := SpecCatalog.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), core.WrapSpec(args[0], content))
		return nil
	},
}

func init() {
	specListCmd.Flags().StringVarP(&specListMatch, "match", "m", "", "Only list specs whose name matches this glob (e.g. api/**)")
	specListCmd.Flags().BoolVar(&specListJSON, "json", false, "Output as JSON")

	specCmd.AddCommand(specListCmd, specGetCmd)
	rootCmd.AddCommand(specCmd)
}
