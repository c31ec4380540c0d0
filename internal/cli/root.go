package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/supercraft/internal/logging"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// Persistent flag values. The root is resolved before the command tree
// runs, so rootFlag only exists here for help output and validation.
var (
	rootFlag     string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "supercraft",
	Short: "Supercraft - state and task lifecycle for AI-assisted development",
	Long: `Supercraft keeps a per-project state document under .supercraft/ that
tracks tasks through pending, in_progress, completed and blocked, snapshots
the state before every transition, and exposes specs and templates that an
AI coding assistant can pull into its context.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logLevelFlag == "" {
			return nil
		}
		level, err := logging.ParseLevel(logLevelFlag)
		if err != nil {
			return fmt.Errorf("parsing --log-level: %w", err)
		}
		cfg := logging.DefaultConfig()
		cfg.Level = level
		logging.Init(cfg)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "supercraft %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Project root (defaults to $SUPERCRAFT_ROOT or the nearest directory containing .supercraft)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Diagnostic log level (debug, info, warn, error, off)")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
