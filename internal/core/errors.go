package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valter-silva-au/supercraft/internal/storage"
	"github.com/valter-silva-au/supercraft/pkg/models"
)

// Error conditions surfaced by core operations. Callers match them with
// errors.Is; refined conditions wrap their base so both match.
var (
	ErrNotInitialized = errors.New("project not initialized")

	ErrNotFound         = storage.ErrNotFound
	ErrTaskNotFound     = fmt.Errorf("task %w", ErrNotFound)
	ErrSnapshotNotFound = storage.ErrSnapshotNotFound
	ErrSpecNotFound     = fmt.Errorf("spec %w", ErrNotFound)
	ErrTemplateNotFound = fmt.Errorf("template %w", ErrNotFound)

	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidTarget = fmt.Errorf("%w: rollback target", ErrInvalidInput)

	ErrStateCorrupt      = storage.ErrInvalidFormat
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyExists     = errors.New("already exists")
)

// InvalidValueError reports a value outside an enumerated set. It matches
// ErrInvalidInput (or Err, when set) under errors.Is.
type InvalidValueError struct {
	Field string
	Value string
	Valid []string
	Err   error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s %q (valid: %s)", e.Field, e.Value, strings.Join(e.Valid, ", "))
}

func (e *InvalidValueError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

func statusNames(statuses []models.TaskStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func priorityNames(priorities []models.Priority) []string {
	out := make([]string, len(priorities))
	for i, p := range priorities {
		out[i] = string(p)
	}
	return out
}

func normalizeStatus(s string) models.TaskStatus {
	return models.TaskStatus(strings.ToLower(strings.TrimSpace(s)))
}

// ParseStatus validates s against the four task statuses. Case and
// surrounding space are ignored, as for priorities.
func ParseStatus(s string) (models.TaskStatus, error) {
	status := normalizeStatus(s)
	if !status.IsValid() {
		return "", &InvalidValueError{Field: "status", Value: s, Valid: statusNames(models.ValidStatuses())}
	}
	return status, nil
}

// ParsePriority validates p against the three priorities.
func ParsePriority(p string) (models.Priority, error) {
	priority := models.Priority(strings.ToLower(strings.TrimSpace(p)))
	if !priority.IsValid() {
		return "", &InvalidValueError{Field: "priority", Value: p, Valid: priorityNames(models.ValidPriorities())}
	}
	return priority, nil
}
