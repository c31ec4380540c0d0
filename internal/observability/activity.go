package observability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Activity summarizes lifecycle events in a time window.
type Activity struct {
	TasksCreated    int            `json:"tasks_created"`
	TasksStarted    int            `json:"tasks_started"`
	TasksCompleted  int            `json:"tasks_completed"`
	TasksBlocked    int            `json:"tasks_blocked"`
	TasksRolledBack int            `json:"tasks_rolled_back"`
	Snapshots       int            `json:"snapshots"`
	Restores        int            `json:"restores"`
	EventsByType    map[string]int `json:"events_by_type"`
	EventCount      int            `json:"event_count"`
	OldestEvent     *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent     *time.Time     `json:"newest_event,omitempty"`
}

// ActivityCalculator derives activity summaries from the event log.
type ActivityCalculator interface {
	Calculate(since time.Time) (*Activity, error)
	Recent(limit int) ([]Event, error)
}

type activityCalculator struct {
	eventLog EventLog
}

// NewActivityCalculator creates an ActivityCalculator reading from eventLog.
func NewActivityCalculator(eventLog EventLog) ActivityCalculator {
	return &activityCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (ac *activityCalculator) Calculate(since time.Time) (*Activity, error) {
	events, err := ac.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for activity: %w", err)
	}

	a := &Activity{EventsByType: make(map[string]int)}
	a.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			a.OldestEvent = &t
		}
		t := event.Time
		a.NewestEvent = &t
		a.EventsByType[event.Type]++

		switch event.Type {
		case "task.created":
			a.TasksCreated++
		case "task.started":
			a.TasksStarted++
		case "task.completed":
			a.TasksCompleted++
		case "task.blocked":
			a.TasksBlocked++
		case "task.rolled_back":
			a.TasksRolledBack++
		case "state.snapshot":
			a.Snapshots++
		case "state.restored":
			a.Restores++
		}
	}

	return a, nil
}

// Recent returns the last limit events, newest first.
func (ac *activityCalculator) Recent(limit int) ([]Event, error) {
	events, err := ac.eventLog.Read(EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("reading recent events: %w", err)
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	out := make([]Event, len(events))
	for i, e := range events {
		out[len(events)-1-i] = e
	}
	return out, nil
}

// ParseSince converts a window such as "7d", "24h" or "90m" into the
// instant that far before now. An empty window means seven days.
func ParseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || days < 0 {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
	}
	return now.Add(-d), nil
}
