package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/supercraft/internal/observability"
)

var (
	activitySince  string
	activityRecent int
	activityJSON   bool
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Summarize lifecycle events from the event log",
	Long: `Count the lifecycle events recorded in .supercraft/events.jsonl within
a time window (--since 7d, 30d, 24h) and list the most recent ones.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ActivityCalc == nil {
			return fmt.Errorf("activity calculator not initialized")
		}

		since, err := observability.ParseSince(activitySince, Now().UTC())
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		activity, err := ActivityCalc.Calculate(since)
		if err != nil {
			return fmt.Errorf("calculating activity: %w", err)
		}

		out := cmd.OutOrStdout()
		if activityJSON {
			return writeJSON(out, activity)
		}

		fmt.Fprintf(out, "%s\n\n", headerStyle.Render("Activity since "+since.Format("2006-01-02 15:04")))
		rows := []struct {
			label string
			value int
		}{
			{"Events recorded:", activity.EventCount},
			{"Tasks created:", activity.TasksCreated},
			{"Tasks started:", activity.TasksStarted},
			{"Tasks completed:", activity.TasksCompleted},
			{"Tasks blocked:", activity.TasksBlocked},
			{"Tasks rolled back:", activity.TasksRolledBack},
			{"Snapshots:", activity.Snapshots},
			{"Restores:", activity.Restores},
		}
		for _, r := range rows {
			fmt.Fprintf(out, "  %-20s %d\n", r.label, r.value)
		}
		if activity.OldestEvent != nil {
			fmt.Fprintf(out, "\n  %-20s %s\n", "Oldest event:", activity.OldestEvent.Format(time.RFC3339))
		}
		if activity.NewestEvent != nil {
			fmt.Fprintf(out, "  %-20s %s\n", "Newest event:", activity.NewestEvent.Format(time.RFC3339))
		}

		if activityRecent > 0 {
			recent, err := ActivityCalc.Recent(activityRecent)
			if err != nil {
				return fmt.Errorf("reading recent events: %w", err)
			}
			if len(recent) > 0 {
				fmt.Fprintf(out, "\n%s\n", headerStyle.Render("Recent"))
				for _, e := range recent {
					fmt.Fprintf(out, "  %s  %s\n", labelStyle.Render(e.Time.Format("2006-01-02 15:04:05")), describeEvent(e))
				}
			}
		}
		return nil
	},
}

// describeEvent renders an event as "type task-id" when it concerns a task.
func describeEvent(e observability.Event) string {
	if id := e.TaskID(); id != "" {
		return e.Type + " " + id
	}
	if name, ok := e.Data["snapshot"].(string); ok && name != "" {
		return e.Type + " " + name
	}
	return e.Type
}

func init() {
	activityCmd.Flags().StringVar(&activitySince, "since", "7d", "Time window (e.g. 7d, 30d, 24h)")
	activityCmd.Flags().IntVar(&activityRecent, "recent", 5, "Number of recent events to list (0 to hide)")
	activityCmd.Flags().BoolVar(&activityJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(activityCmd)
}
