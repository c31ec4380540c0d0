package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/supercraft/internal/core"
)

var (
	templateListJSON bool

	templateCopyOutput   string
	templateCopyFilename string
	templateCopyTitle    string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "List, show and copy document templates",
	Long: `Templates come built into the binary (design-doc, plan) or from
.supercraft/templates, where a file with the same name overrides the
built-in one. "template copy" fills in {date} and {title}.`,
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TemplateCat == nil {
			return fmt.Errorf("template catalog not initialized")
		}

		templates, err := TemplateCat.List()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if templateListJSON {
			if templates == nil {
				templates = []core.TemplateInfo{}
			}
			return writeJSON(out, templates)
		}
		for _, t := range templates {
			fmt.Fprintf(out, "  %-20s %s\n", t.Name, labelStyle.Render("("+t.Source+")"))
		}
		return nil
	},
}

var templateShowCmd = &cobra.Command{
	Use:               "show <name>",
	Short:             "Print a template",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTemplates,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TemplateCat == nil {
			return fmt.Errorf("template catalog not initialized")
		}

		_, content, err := TemplateCat.Show(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	},
}

var templateCopyCmd = &cobra.Command{
	Use:               "copy <name>",
	Short:             "Copy a template into the project with {date} and {title} filled in",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTemplates,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TemplateCat == nil {
			return fmt.Errorf("template catalog not initialized")
		}

		path, err := TemplateCat.Copy(args[0], core.CopyTemplateOptions{
			OutputDir: templateCopyOutput,
			Filename:  templateCopyFilename,
			Title:     templateCopyTitle,
		})
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Template copied: %s", relToRoot(path))
		return nil
	},
}

func init() {
	templateListCmd.Flags().BoolVar(&templateListJSON, "json", false, "Output as JSON")

	templateCopyCmd.Flags().StringVarP(&templateCopyOutput, "output", "o", core.DefaultTemplateOutputDir, "Output directory, relative to the project root")
	templateCopyCmd.Flags().StringVarP(&templateCopyFilename, "filename", "n", "", "Output file name (defaults to <date>-<name>.md)")
	templateCopyCmd.Flags().StringVar(&templateCopyTitle, "title", "", "Value for {title}")

	templateCmd.AddCommand(templateListCmd, templateShowCmd, templateCopyCmd)
	rootCmd.AddCommand(templateCmd)
}
