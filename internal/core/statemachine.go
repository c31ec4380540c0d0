package core

import (
	"fmt"

	"github.com/valter-silva-au/supercraft/pkg/models"
)

// DefaultBlockReason is recorded when a task is blocked without a reason.
const DefaultBlockReason = "no reason given"

// PreviousStatus returns the default rollback target for s. Pending has no
// previous status, so rolling it back needs an explicit target.
func PreviousStatus(s models.TaskStatus) (models.TaskStatus, bool) {
	switch s {
	case models.StatusInProgress:
		return models.StatusPending, true
	case models.StatusCompleted:
		return models.StatusInProgress, true
	case models.StatusBlocked:
		return models.StatusPending, true
	case models.StatusPending:
		return "", false
	default:
		return "", false
	}
}

func transitionError(t *models.Task, action string) error {
	return fmt.Errorf("%w: cannot %s %s, task is %s", ErrInvalidTransition, action, t.ID, t.Status)
}

// CanStart allows pending and blocked tasks only.
func CanStart(t *models.Task) error {
	switch t.Status {
	case models.StatusPending, models.StatusBlocked:
		return nil
	default:
		return transitionError(t, "start")
	}
}

// CanComplete rejects tasks that are already completed.
func CanComplete(t *models.Task) error {
	if t.Status == models.StatusCompleted {
		return transitionError(t, "complete")
	}
	return nil
}

// CanBlock rejects completed tasks. Blocked tasks may be blocked again,
// which replaces the reason.
func CanBlock(t *models.Task) error {
	if t.Status == models.StatusCompleted {
		return transitionError(t, "block")
	}
	return nil
}

// ResolveRollbackTarget picks the rollback target for a task in status
// current: explicit when given, otherwise PreviousStatus.
func ResolveRollbackTarget(current, explicit models.TaskStatus) (models.TaskStatus, error) {
	if explicit != "" {
		raw := explicit
		explicit = normalizeStatus(string(explicit))
		if !explicit.IsValid() {
			return "", &InvalidValueError{
				Field: "rollback target",
				Value: string(raw),
				Valid: statusNames(models.ValidStatuses()),
				Err:   ErrInvalidTarget,
			}
		}
		return explicit, nil
	}
	target, ok := PreviousStatus(current)
	if !ok {
		return "", fmt.Errorf("%w: no previous status for %s, pass an explicit target", ErrInvalidTarget, current)
	}
	return target, nil
}

func applyStart(t *models.Task, now string) {
	if t.Status == models.StatusBlocked {
		t.BlockedReason = ""
	}
	t.Status = models.StatusInProgress
	t.StartedAt = now
}

func applyComplete(t *models.Task, now string) {
	t.Status = models.StatusCompleted
	t.CompletedAt = now
}

func applyBlock(t *models.Task, reason string) {
	if reason == "" {
		reason = DefaultBlockReason
	}
	t.Status = models.StatusBlocked
	t.BlockedReason = reason
}

// applyRollback moves t to target, keeping only the field owned by target.
func applyRollback(t *models.Task, target models.TaskStatus) {
	t.Status = target
	if target != models.StatusInProgress {
		t.StartedAt = ""
	}
	if target != models.StatusCompleted {
		t.CompletedAt = ""
	}
	if target != models.StatusBlocked {
		t.BlockedReason = ""
	}
}
