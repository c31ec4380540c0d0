package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/supercraft/internal/logging"
	scmcp "github.com/valter-silva-au/supercraft/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the task lifecycle to an AI assistant over stdio",
	Long: `Serve supercraft as an MCP server on stdin/stdout until the client
disconnects or the process is interrupted.

Tools: get_status, list_tasks, get_task, create_task, start_task,
complete_task, block_task, rollback_task, list_snapshots, list_specs,
get_spec, get_config.

Diagnostics go to stderr; raise them with --log-level debug.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := mcpServices()
		if err != nil {
			return err
		}

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		logging.Info().Str("root", ProjectRoot).Str("version", appVersion).Msg("mcp server listening on stdio")
		if err := scmcp.NewServer(svc, appVersion).Run(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		logging.Info().Msg("mcp server stopped")
		return nil
	},
}

// mcpServices collects the wired services. Only the task manager is
// required; the server reports the others as unavailable per tool.
func mcpServices() (scmcp.Services, error) {
	if TaskMgr == nil {
		return scmcp.Services{}, fmt.Errorf("task manager not initialized")
	}
	return scmcp.Services{
		Tasks:   TaskMgr,
		History: HistoryMgr,
		Specs:   SpecCatalog,
		Config:  ConfigMgr,
		Alerts:  AlertEngine,
		Now:     Now,
	}, nil
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
