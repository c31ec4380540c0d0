package observability

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/valter-silva-au/supercraft/pkg/models"
)

// AlertSeverity ranks alerts; high sorts first.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

func (s AlertSeverity) rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	}
	return 2
}

// Alert conditions.
const (
	ConditionBlockedTooLong = "task_blocked_too_long"
	ConditionStale          = "task_stale"
	ConditionPendingQueue   = "pending_queue_too_large"
)

// Alert is one condition that currently holds for the project.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"msg"`
	TaskID      string        `json:"task_id,omitempty"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds sets when each condition fires. A zero value disables
// its condition.
type AlertThresholds struct {
	BlockedHours int
	StaleDays    int
	MaxPending   int
}

// DefaultAlertThresholds: blocked over a day, in progress with no activity
// for three days, more than ten tasks waiting.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{BlockedHours: 24, StaleDays: 3, MaxPending: 10}
}

// AlertEngine evaluates alert conditions for the live task list. The task
// list decides each task's status; the event log only says when a task
// last changed.
type AlertEngine interface {
	Evaluate(tasks []models.Task, now time.Time) ([]Alert, error)
}

type alertEngine struct {
	eventLog   EventLog
	thresholds AlertThresholds
}

// NewAlertEngine returns an AlertEngine reading task history from eventLog.
func NewAlertEngine(eventLog EventLog, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{eventLog: eventLog, thresholds: thresholds}
}

// timeline is what the event log knows about one task.
type timeline struct {
	lastEvent    time.Time
	blockedSince time.Time
}

func buildTimelines(events []Event) map[string]*timeline {
	out := make(map[string]*timeline)
	for _, e := range events {
		id := e.TaskID()
		if id == "" {
			continue
		}
		tl := out[id]
		if tl == nil {
			tl = &timeline{}
			out[id] = tl
		}
		if e.Time.After(tl.lastEvent) {
			tl.lastEvent = e.Time
		}
		if e.Type == "task.blocked" {
			tl.blockedSince = e.Time
		}
	}
	return out
}

func (ae *alertEngine) Evaluate(tasks []models.Task, now time.Time) ([]Alert, error) {
	events, err := ae.eventLog.Read(EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("evaluating alerts: %w", err)
	}
	timelines := buildTimelines(events)

	var alerts []Alert
	pending := 0
	for _, task := range tasks {
		tl := timelines[task.ID]
		if tl == nil {
			tl = &timeline{}
		}
		var alert *Alert
		switch task.Status {
		case models.StatusPending:
			pending++
		case models.StatusBlocked:
			alert = ae.checkBlocked(task, tl, now)
		case models.StatusInProgress:
			alert = ae.checkStale(task, tl, now)
		}
		if alert != nil {
			alerts = append(alerts, *alert)
		}
	}
	if alert := ae.checkPendingQueue(pending, now); alert != nil {
		alerts = append(alerts, *alert)
	}

	slices.SortStableFunc(alerts, func(a, b Alert) int {
		return cmp.Compare(a.Severity.rank(), b.Severity.rank())
	})
	return alerts, nil
}

// checkBlocked fires when the last block event for a blocked task is older
// than BlockedHours. A blocked task with no logged block never fires.
func (ae *alertEngine) checkBlocked(task models.Task, tl *timeline, now time.Time) *Alert {
	limit := time.Duration(ae.thresholds.BlockedHours) * time.Hour
	if limit <= 0 || tl.blockedSince.IsZero() || now.Sub(tl.blockedSince) <= limit {
		return nil
	}
	return &Alert{
		ID:          "blocked-" + task.ID,
		Condition:   ConditionBlockedTooLong,
		Severity:    SeverityHigh,
		Message:     fmt.Sprintf("task %s has been blocked for more than %d hours", task.ID, ae.thresholds.BlockedHours),
		TaskID:      task.ID,
		TriggeredAt: now,
	}
}

// checkStale uses the later of the task's started_at and its newest event.
func (ae *alertEngine) checkStale(task models.Task, tl *timeline, now time.Time) *Alert {
	limit := time.Duration(ae.thresholds.StaleDays) * 24 * time.Hour
	last := tl.lastEvent
	if started, err := time.Parse(models.TimestampFormat, task.StartedAt); err == nil && started.After(last) {
		last = started
	}
	if limit <= 0 || last.IsZero() || now.Sub(last) <= limit {
		return nil
	}
	return &Alert{
		ID:          "stale-" + task.ID,
		Condition:   ConditionStale,
		Severity:    SeverityMedium,
		Message:     fmt.Sprintf("task %s has had no activity for more than %d days", task.ID, ae.thresholds.StaleDays),
		TaskID:      task.ID,
		TriggeredAt: now,
	}
}

func (ae *alertEngine) checkPendingQueue(pending int, now time.Time) *Alert {
	if ae.thresholds.MaxPending <= 0 || pending <= ae.thresholds.MaxPending {
		return nil
	}
	return &Alert{
		ID:          "pending-queue",
		Condition:   ConditionPendingQueue,
		Severity:    SeverityLow,
		Message:     fmt.Sprintf("%d tasks are pending, exceeding the maximum of %d", pending, ae.thresholds.MaxPending),
		TriggeredAt: now,
	}
}
