package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/supercraft/internal/core"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show project progress and tasks",
	Long: `Show the project, its current plan, a progress bar with per-status
counts, every task with its status, active alerts, and the last update time.

Counts are recomputed from the task list rather than read from the stored
metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		st, err := TaskMgr.State()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if statusJSON {
			return writeJSON(out, st)
		}

		fmt.Fprintf(out, "\n%s %s\n", labelStyle.Render("Project:"), st.Project.Name)
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Root:   "), st.Project.Root)

		if st.Current != nil && st.Current.PlanName != "" {
			phase := st.Current.Phase
			if phase == "" {
				phase = "-"
			}
			fmt.Fprintf(out, "\n%s %s\n", labelStyle.Render("Plan: "), st.Current.PlanName)
			fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Phase:"), phase)
		}

		m := st.Metrics
		fmt.Fprintf(out, "\n%s %s %d%%\n", labelStyle.Render("Progress:"), core.FormatProgress(m.ProgressPercent), m.ProgressPercent)
		fmt.Fprintf(out, "  Total: %d | Completed: %d | In progress: %d | Pending: %d | Blocked: %d\n",
			m.TotalTasks, m.Completed, m.InProgress, m.Pending, m.Blocked)

		if len(st.Tasks) == 0 {
			fmt.Fprintln(out, "\nNo tasks yet.")
		} else {
			fmt.Fprintf(out, "\n%s\n", headerStyle.Render("Tasks"))
			for _, t := range st.Tasks {
				printTaskLine(out, t)
			}
		}

		if AlertEngine != nil {
			alerts, err := AlertEngine.Evaluate(st.Tasks, Now())
			if err != nil {
				return fmt.Errorf("evaluating alerts: %w", err)
			}
			if len(alerts) > 0 {
				fmt.Fprintf(out, "\n%s\n", headerStyle.Render("Alerts"))
				for _, a := range alerts {
					sev := styleForSeverity(string(a.Severity)).Render(fmt.Sprintf("[%s]", strings.ToUpper(string(a.Severity))))
					fmt.Fprintf(out, "  %s %s\n", sev, a.Message)
				}
			}
		}

		fmt.Fprintf(out, "\n%s %s\n\n", labelStyle.Render("Last update:"), st.Metadata.UpdatedAt)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output the state document as JSON")
	rootCmd.AddCommand(statusCmd)
}
