package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/supercraft/internal/core"
)

var initName string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .supercraft in the project root",
	Long: `Create the .supercraft directory with a default config.yaml, an empty
state.yaml, an example spec, project copies of the built-in templates, and
the first history snapshot.

Running init on a project that already has .supercraft leaves it untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ProjectInit == nil {
			return fmt.Errorf("project initializer not initialized")
		}

		result, err := ProjectInit.Init(core.InitOptions{Name: initName})
		if err != nil {
			return fmt.Errorf("initializing project: %w", err)
		}

		out := cmd.OutOrStdout()
		if result.AlreadyInitialized {
			fmt.Fprintf(out, "Project already initialized at %s\n", result.Dir)
			return nil
		}

		fmt.Fprintln(out, "Created:")
		for _, p := range result.Created {
			fmt.Fprintf(out, "  %s\n", relToRoot(p))
		}
		fmt.Fprintf(out, "Snapshot: %s\n\n", relToRoot(result.Snapshot))
		printSuccess(out, "Project %q initialized at %s", result.State.Project.Name, result.State.Project.Root)
		return nil
	},
}

// relToRoot shortens p for display when it sits under ProjectRoot.
func relToRoot(p string) string {
	if ProjectRoot == "" {
		return p
	}
	rel, err := filepath.Rel(ProjectRoot, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return rel
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "Project name (defaults to the root directory's name)")
	rootCmd.AddCommand(initCmd)
}
