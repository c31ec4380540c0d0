package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/supercraft/internal/core"
	"github.com/valter-silva-au/supercraft/internal/storage"
	"github.com/valter-silva-au/supercraft/pkg/models"
)

var configGlobal bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change global or project configuration",
	Long: `Read and change configuration.

Without --global, commands act on the project's .supercraft/config.yaml and
reads see the merged view: the project name wins over the global one, and
the project's verification commands win when the list is non-empty.`,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the merged (or global) configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ConfigMgr == nil {
			return fmt.Errorf("configuration manager not initialized")
		}

		var cfg *models.Config
		if configGlobal {
			cfg = ConfigMgr.LoadGlobalConfig()
			if cfg == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No global configuration found.")
				return nil
			}
		} else {
			if ProjectInit != nil && !ProjectInit.IsInitialized() {
				return core.ErrNotInitialized
			}
			cfg = ConfigMgr.MergedConfig()
		}

		data, err := storage.MarshalYAML(cfg)
		if err != nil {
			return fmt.Errorf("formatting config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Print one configuration value",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeConfigKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ConfigMgr == nil {
			return fmt.Errorf("configuration manager not initialized")
		}

		value, err := ConfigMgr.Get(core.ParseScope(configGlobal), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch v := value.(type) {
		case []any:
			for _, item := range v {
				fmt.Fprintln(out, item)
			}
		case []string:
			fmt.Fprintln(out, strings.Join(v, "\n"))
		case map[string]any:
			data, err := storage.MarshalYAML(v)
			if err != nil {
				return fmt.Errorf("formatting %s: %w", args[0], err)
			}
			_, err = out.Write(data)
			return err
		default:
			fmt.Fprintln(out, v)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Supported keys:

  project.name           replaces the project name
  verification.commands  appends a command to the list`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeConfigKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ConfigMgr == nil {
			return fmt.Errorf("configuration manager not initialized")
		}

		scope := core.ParseScope(configGlobal)
		if _, err := ConfigMgr.Set(scope, args[0], args[1]); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Updated %s config: %s = %s", scope, args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.PersistentFlags().BoolVarP(&configGlobal, "global", "g", false, "Use the global configuration")
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
