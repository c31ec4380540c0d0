package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/supercraft/internal/core"
	"github.com/valter-silva-au/supercraft/pkg/models"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks (list, show, create, start, complete, block, rollback)",
	Long: `Task lifecycle commands.

Every transition is checked before anything is written, and the state is
snapshotted into .supercraft/history before it changes, so any step can be
undone with "task rollback" or "state restore".`,
}

var (
	taskJSON bool

	taskListStatus   string
	taskListPriority string

	taskCreateTitle       string
	taskCreateDescription string
	taskCreatePriority    string

	taskRollbackTo string
)

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks in creation order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		var filter core.TaskFilter
		if taskListStatus != "" {
			status, err := core.ParseStatus(taskListStatus)
			if err != nil {
				return err
			}
			filter.Status = []models.TaskStatus{status}
		}
		if taskListPriority != "" {
			priority, err := core.ParsePriority(taskListPriority)
			if err != nil {
				return err
			}
			filter.Priority = []models.Priority{priority}
		}

		tasks, err := TaskMgr.ListTasks(filter)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if taskJSON {
			if tasks == nil {
				tasks = []models.Task{}
			}
			return writeJSON(out, tasks)
		}

		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}
		for _, t := range tasks {
			printTaskLine(out, t)
			if t.Description != "" {
				fmt.Fprintf(out, "      %s\n", t.Description)
			}
		}
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:               "show <task-id>",
	Short:             "Show a task's details",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskIDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		task, err := TaskMgr.GetTask(args[0])
		if err != nil {
			return err
		}

		if taskJSON {
			return writeJSON(cmd.OutOrStdout(), task)
		}
		printTaskDetail(cmd.OutOrStdout(), *task)
		return nil
	},
}

var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a pending task",
	Long: `Create a pending task. The ID is task-<N>, one above the highest
existing task number.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		priority, err := core.ParsePriority(taskCreatePriority)
		if err != nil {
			return err
		}

		task, err := TaskMgr.CreateTask(core.CreateTaskOptions{
			Title:       taskCreateTitle,
			Description: taskCreateDescription,
			Priority:    priority,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if taskJSON {
			return writeJSON(out, task)
		}
		printSuccess(out, "Task created: %s", task.ID)
		fmt.Fprintf(out, "  Title:    %s\n", task.Title)
		fmt.Fprintf(out, "  Priority: %s\n", task.Priority)
		return nil
	},
}

var taskStartCmd = &cobra.Command{
	Use:               "start <task-id>",
	Short:             "Move a pending or blocked task to in_progress",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskIDs(models.StatusInProgress, models.StatusCompleted),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}
		res, err := TaskMgr.StartTask(args[0])
		if err != nil {
			return err
		}
		return printTransition(cmd.OutOrStdout(), "Task started", res)
	},
}

var taskCompleteCmd = &cobra.Command{
	Use:               "complete <task-id>",
	Short:             "Mark a task completed",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskIDs(models.StatusCompleted),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}
		res, err := TaskMgr.CompleteTask(args[0])
		if err != nil {
			return err
		}
		return printTransition(cmd.OutOrStdout(), "Task completed", res)
	},
}

var taskBlockCmd = &cobra.Command{
	Use:   "block <task-id> [reason...]",
	Short: "Mark a task blocked",
	Long: `Mark a task blocked. The remaining arguments form the reason; without
one a placeholder reason is recorded. Blocking an already blocked task
replaces its reason.`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeTaskIDs(models.StatusCompleted),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}
		reason := strings.TrimSpace(strings.Join(args[1:], " "))
		res, err := TaskMgr.BlockTask(args[0], reason)
		if err != nil {
			return err
		}
		return printTransition(cmd.OutOrStdout(), "Task blocked", res)
	},
}

var taskRollbackCmd = &cobra.Command{
	Use:   "rollback <task-id>",
	Short: "Roll a task back to its previous status",
	Long: `Roll a task back one step: in_progress and blocked go back to pending,
completed goes back to in_progress. Pending tasks have no previous status,
so they need an explicit --to target.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskIDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}
		target := models.TaskStatus(strings.TrimSpace(taskRollbackTo))
		res, err := TaskMgr.RollbackTask(args[0], target)
		if err != nil {
			return err
		}
		return printTransition(cmd.OutOrStdout(), "Task rolled back", res)
	},
}

// printTransition reports a transition as JSON or as a short summary.
func printTransition(w io.Writer, verb string, res *core.TransitionResult) error {
	if taskJSON {
		return writeJSON(w, res.Task)
	}
	printSuccess(w, "%s: %s", verb, res.Task.ID)
	fmt.Fprintf(w, "  %s -> %s\n", res.From, res.Task.Status)
	if res.Task.BlockedReason != "" {
		fmt.Fprintf(w, "  Reason:   %s\n", res.Task.BlockedReason)
	}
	fmt.Fprintf(w, "  Snapshot: %s\n", relToRoot(res.Snapshot))
	fmt.Fprintf(w, "  Progress: %s %d%%\n", core.FormatProgress(res.Metrics.ProgressPercent), res.Metrics.ProgressPercent)
	return nil
}

func init() {
	for _, c := range []*cobra.Command{taskListCmd, taskShowCmd, taskCreateCmd, taskStartCmd, taskCompleteCmd, taskBlockCmd, taskRollbackCmd} {
		c.Flags().BoolVar(&taskJSON, "json", false, "Output as JSON")
	}

	taskListCmd.Flags().StringVar(&taskListStatus, "status", "", "Filter by status ("+models.JoinStatuses(models.ValidStatuses())+")")
	taskListCmd.Flags().StringVar(&taskListPriority, "priority", "", "Filter by priority (high, medium, low)")
	_ = taskListCmd.RegisterFlagCompletionFunc("status", completeStatuses)
	_ = taskListCmd.RegisterFlagCompletionFunc("priority", completePriorities)

	taskCreateCmd.Flags().StringVarP(&taskCreateTitle, "title", "t", "", "Task title")
	taskCreateCmd.Flags().StringVarP(&taskCreateDescription, "description", "d", "", "Task description")
	taskCreateCmd.Flags().StringVarP(&taskCreatePriority, "priority", "p", string(models.PriorityMedium), "Priority (high, medium, low)")
	_ = taskCreateCmd.MarkFlagRequired("title")
	_ = taskCreateCmd.RegisterFlagCompletionFunc("priority", completePriorities)

	taskRollbackCmd.Flags().StringVar(&taskRollbackTo, "to", "", "Explicit target status")
	_ = taskRollbackCmd.RegisterFlagCompletionFunc("to", completeStatuses)

	taskCmd.AddCommand(taskListCmd, taskShowCmd, taskCreateCmd, taskStartCmd, taskCompleteCmd, taskBlockCmd, taskRollbackCmd)
	rootCmd.AddCommand(taskCmd)
}
