package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/valter-silva-au/supercraft/pkg/models"
)

// Style definitions shared by the line-oriented commands and the dashboard.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	statusInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusCompleted  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusBlocked    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusPending    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
)

func styleForStatus(status models.TaskStatus) lipgloss.Style {
	switch status {
	case models.StatusInProgress:
		return statusInProgress
	case models.StatusCompleted:
		return statusCompleted
	case models.StatusBlocked:
		return statusBlocked
	case models.StatusPending:
		return statusPending
	default:
		return lipgloss.NewStyle()
	}
}

func styleForSeverity(severity string) lipgloss.Style {
	switch severity {
	case "high":
		return severityHigh
	case "medium":
		return severityMedium
	case "low":
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

// statusIcon is the one-cell marker shown before a task in lists.
func statusIcon(status models.TaskStatus) string {
	switch status {
	case models.StatusCompleted:
		return "✓"
	case models.StatusInProgress:
		return "●"
	case models.StatusBlocked:
		return "✗"
	default:
		return "○"
	}
}

func priorityTag(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return "high"
	case models.PriorityLow:
		return "low "
	default:
		return "med "
	}
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printSuccess prints a check-marked confirmation line.
func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, okStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// printTaskLine prints the one-line summary used by status and task list.
func printTaskLine(w io.Writer, t models.Task) {
	icon := styleForStatus(t.Status).Render(statusIcon(t.Status))
	fmt.Fprintf(w, "  %s [%s] %s: %s\n", icon, priorityTag(t.Priority), t.ID, t.Title)
}

// printTaskDetail prints every populated field of t.
func printTaskDetail(w io.Writer, t models.Task) {
	fmt.Fprintf(w, "%s\n", headerStyle.Render(t.ID+": "+t.Title))
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label+":")), value)
	}
	row("Status", styleForStatus(t.Status).Render(string(t.Status)))
	row("Priority", string(t.Priority))
	row("Desc", t.Description)
	row("Created", t.CreatedAt)
	row("Started", t.StartedAt)
	row("Completed", t.CompletedAt)
	row("Blocked", t.BlockedReason)
}
