package core

import "github.com/valter-silva-au/supercraft/internal/logging"

// Lifecycle event types recorded in the project event log.
const (
	EventTaskCreated        = "task.created"
	EventTaskStarted        = "task.started"
	EventTaskCompleted      = "task.completed"
	EventTaskBlocked        = "task.blocked"
	EventTaskRolledBack     = "task.rolled_back"
	EventStateSnapshot      = "state.snapshot"
	EventStateRestored      = "state.restored"
	EventProjectInitialized = "project.initialized"
)

// EventLogger receives lifecycle events. The observability package provides
// the JSONL implementation; core only depends on this method.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// logEvent records an event when a logger is configured. Failures are
// reported at warn level and never fail the operation.
func logEvent(events EventLogger, eventType string, data map[string]any) {
	if events == nil {
		return
	}
	if err := events.LogEvent(eventType, data); err != nil {
		logging.Warn().Err(err).Str("event", eventType).Msg("recording lifecycle event")
	}
}
