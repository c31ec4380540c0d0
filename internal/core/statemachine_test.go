package core

import (
	"errors"
	"testing"

	"github.com/valter-silva-au/supercraft/pkg/models"
)

func TestPreviousStatus(t *testing.T) {
	tests := []struct {
		from   models.TaskStatus
		want   models.TaskStatus
		wantOK bool
	}{
		{models.StatusInProgress, models.StatusPending, true},
		{models.StatusCompleted, models.StatusInProgress, true},
		{models.StatusBlocked, models.StatusPending, true},
		{models.StatusPending, "", false},
		{"archived", "", false},
	}
	for _, tt := range tests {
		got, ok := PreviousStatus(tt.from)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("PreviousStatus(%q) = (%q, %v), want (%q, %v)", tt.from, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTransitionGuards(t *testing.T) {
	tests := []struct {
		name   string
		check  func(*models.Task) error
		status models.TaskStatus
		ok     bool
	}{
		{"start pending", CanStart, models.StatusPending, true},
		{"start blocked", CanStart, models.StatusBlocked, true},
		{"start in_progress", CanStart, models.StatusInProgress, false},
		{"start completed", CanStart, models.StatusCompleted, false},
		{"complete pending", CanComplete, models.StatusPending, true},
		{"complete in_progress", CanComplete, models.StatusInProgress, true},
		{"complete blocked", CanComplete, models.StatusBlocked, true},
		{"complete completed", CanComplete, models.StatusCompleted, false},
		{"block pending", CanBlock, models.StatusPending, true},
		{"block in_progress", CanBlock, models.StatusInProgress, true},
		{"block blocked", CanBlock, models.StatusBlocked, true},
		{"block completed", CanBlock, models.StatusCompleted, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(&models.Task{ID: "task-1", Status: tt.status})
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition, got %v", err)
			}
		})
	}
}

func TestResolveRollbackTarget(t *testing.T) {
	t.Run("default table", func(t *testing.T) {
		got, err := ResolveRollbackTarget(models.StatusCompleted, "")
		if err != nil || got != models.StatusInProgress {
			t.Fatalf("got (%q, %v), want in_progress", got, err)
		}
	})

	t.Run("explicit wins", func(t *testing.T) {
		got, err := ResolveRollbackTarget(models.StatusCompleted, models.StatusBlocked)
		if err != nil || got != models.StatusBlocked {
			t.Fatalf("got (%q, %v), want blocked", got, err)
		}
	})

	t.Run("pending needs explicit target", func(t *testing.T) {
		_, err := ResolveRollbackTarget(models.StatusPending, "")
		if !errors.Is(err, ErrInvalidTarget) {
			t.Fatalf("expected ErrInvalidTarget, got %v", err)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput in chain, got %v", err)
		}
	})

	t.Run("invalid explicit target", func(t *testing.T) {
		_, err := ResolveRollbackTarget(models.StatusCompleted, "done")
		if !errors.Is(err, ErrInvalidTarget) {
			t.Fatalf("expected ErrInvalidTarget, got %v", err)
		}
		var ive *InvalidValueError
		if !errors.As(err, &ive) || len(ive.Valid) != 4 {
			t.Fatalf("expected InvalidValueError listing four statuses, got %v", err)
		}
	})
}

func TestApplyRollback_KeepsOnlyOwnedField(t *testing.T) {
	base := models.Task{
		ID:            "task-1",
		Status:        models.StatusCompleted,
		StartedAt:     "s",
		CompletedAt:   "c",
		BlockedReason: "r",
	}
	tests := []struct {
		target                  models.TaskStatus
		started, completed, why bool
	}{
		{models.StatusPending, false, false, false},
		{models.StatusInProgress, true, false, false},
		{models.StatusCompleted, false, true, false},
		{models.StatusBlocked, false, false, true},
	}
	for _, tt := range tests {
		task := base
		applyRollback(&task, tt.target)
		if task.Status != tt.target {
			t.Errorf("%s: status = %q", tt.target, task.Status)
		}
		if (task.StartedAt != "") != tt.started ||
			(task.CompletedAt != "") != tt.completed ||
			(task.BlockedReason != "") != tt.why {
			t.Errorf("%s: unexpected fields %+v", tt.target, task)
		}
	}
}

func TestResolveRollbackTarget_NormalizesExplicit(t *testing.T) {
	got, err := ResolveRollbackTarget(models.StatusCompleted, "PENDING")
	if err != nil || got != models.StatusPending {
		t.Fatalf("ResolveRollbackTarget = (%q, %v)", got, err)
	}
	_, err = ResolveRollbackTarget(models.StatusCompleted, "Done")
	var ive *InvalidValueError
	if !errors.As(err, &ive) || ive.Value != "Done" || !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected rollback target error for the raw value, got %v", err)
	}
}

func TestParseStatusAndPriority(t *testing.T) {
	if _, err := ParseStatus("in_progress"); err != nil {
		t.Fatalf("ParseStatus: %v", err)
	}
	if st, err := ParseStatus(" In_Progress "); err != nil || st != models.StatusInProgress {
		t.Fatalf("ParseStatus mixed case = (%q, %v)", st, err)
	}
	if _, err := ParseStatus("done"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	p, err := ParsePriority(" HIGH ")
	if err != nil || p != models.PriorityHigh {
		t.Fatalf("ParsePriority = (%q, %v)", p, err)
	}
	_, err = ParsePriority("urgent")
	var ive *InvalidValueError
	if !errors.As(err, &ive) || ive.Field != "priority" {
		t.Fatalf("expected priority InvalidValueError, got %v", err)
	}
	if ive.Error() != `invalid priority "urgent" (valid: high, medium, low)` {
		t.Fatalf("message = %q", ive.Error())
	}
}
