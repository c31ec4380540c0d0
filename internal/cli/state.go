package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/supercraft/internal/core"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Snapshot, list and restore the project state",
}

var (
	stateHistoryLimit int
	stateHistoryJSON  bool
)

var stateSnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Write a snapshot of the current state to history/",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if HistoryMgr == nil {
			return fmt.Errorf("history manager not initialized")
		}
		path, err := HistoryMgr.Snapshot()
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Snapshot created: %s", relToRoot(path))
		return nil
	},
}

var stateHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List state snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if HistoryMgr == nil {
			return fmt.Errorf("history manager not initialized")
		}
		snaps, err := HistoryMgr.List(stateHistoryLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if stateHistoryJSON {
			if snaps == nil {
				snaps = []core.SnapshotSummary{}
			}
			return writeJSON(out, snaps)
		}

		if len(snaps) == 0 {
			fmt.Fprintln(out, "No snapshots yet.")
			return nil
		}
		fmt.Fprintf(out, "%s\n", headerStyle.Render(fmt.Sprintf("Snapshots (%d)", len(snaps))))
		for _, s := range snaps {
			if s.Corrupt {
				fmt.Fprintf(out, "  %s  %s\n", s.Name, errorStyle.Render("unreadable"))
				continue
			}
			fmt.Fprintf(out, "  %s  %d/%d tasks  %s %d%%\n",
				s.Name, s.Completed, s.TotalTasks, core.FormatProgress(s.ProgressPercent), s.ProgressPercent)
		}
		return nil
	},
}

var stateRestoreCmd = &cobra.Command{
	Use:               "restore <file>",
	Short:             "Make a snapshot the live state",
	Long:              `Restore a snapshot from .supercraft/history. The current state is snapshotted first, so a restore can itself be undone.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeSnapshots,
	RunE: func(cmd *cobra.Command, args []string) error {
		if HistoryMgr == nil {
			return fmt.Errorf("history manager not initialized")
		}
		res, err := HistoryMgr.Restore(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.Backup != "" {
			printSuccess(out, "Current state backed up: %s", relToRoot(res.Backup))
		}
		printSuccess(out, "Restored snapshot: %s", res.Restored)
		m := res.State.Metrics
		fmt.Fprintf(out, "  Progress: %s %d%% (%d/%d tasks)\n", core.FormatProgress(m.ProgressPercent), m.ProgressPercent, m.Completed, m.TotalTasks)
		return nil
	},
}

func init() {
	stateHistoryCmd.Flags().IntVarP(&stateHistoryLimit, "limit", "n", core.DefaultHistoryLimit, "Maximum number of snapshots to show")
	stateHistoryCmd.Flags().BoolVar(&stateHistoryJSON, "json", false, "Output as JSON")

	stateCmd.AddCommand(stateSnapshotCmd, stateHistoryCmd, stateRestoreCmd)
	rootCmd.AddCommand(stateCmd)
}
