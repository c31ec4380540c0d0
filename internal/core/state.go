package core

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/valter-silva-au/supercraft/pkg/models"
)

// DefaultProjectName is used when neither config scope names the project.
const DefaultProjectName = "unknown"

var taskIDPattern = regexp.MustCompile(`^task-(\d+)$`)

// roundHalfUp rounds a non-negative value to the nearest integer, with
// exact halves rounding up.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// ProgressPercent returns round(100*completed/total), or 0 when total is 0.
func ProgressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return roundHalfUp(100 * float64(completed) / float64(total))
}

// CalculateMetrics derives the metrics block from the task sequence.
func CalculateMetrics(tasks []models.Task) models.Metrics {
	m := models.Metrics{TotalTasks: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case models.StatusCompleted:
			m.Completed++
		case models.StatusInProgress:
			m.InProgress++
		case models.StatusPending:
			m.Pending++
		case models.StatusBlocked:
			m.Blocked++
		}
	}
	m.ProgressPercent = ProgressPercent(m.Completed, m.TotalTasks)
	return m
}

// GenerateTaskID returns task-<max+1>, where max is the largest N among ids
// of the form task-<N>. Other ids are ignored and gaps are never reused.
func GenerateTaskID(tasks []models.Task) string {
	maxN := 0
	for _, t := range tasks {
		m := taskIDPattern.FindStringSubmatch(t.ID)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxN {
			maxN = n
		}
	}
	return fmt.Sprintf("task-%d", maxN+1)
}

// NewTask builds a pending task with no identifier. The caller assigns the
// id with GenerateTaskID immediately before inserting it.
func NewTask(title, description string, priority models.Priority, now time.Time) models.Task {
	return models.Task{
		Title:       title,
		Description: description,
		Status:      models.StatusPending,
		Priority:    priority,
		CreatedAt:   models.FormatTimestamp(now),
	}
}

// NewState returns the document written by project initialization: no
// tasks, zero metrics and both metadata stamps set to now.
func NewState(name, root string, now time.Time) *models.State {
	ts := models.FormatTimestamp(now)
	return &models.State{
		Version:  models.StateVersion,
		Project:  models.ProjectRef{Name: name, Root: root},
		Current:  &models.CurrentPlan{},
		Tasks:    []models.Task{},
		Metrics:  CalculateMetrics(nil),
		Metadata: models.StateMetadata{CreatedAt: ts, UpdatedAt: ts},
	}
}
