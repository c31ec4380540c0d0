package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/valter-silva-au/supercraft/internal/logging"
	"github.com/valter-silva-au/supercraft/pkg/models"
)

// DefaultHistoryLimit is the number of snapshots listed when no limit is given.
const DefaultHistoryLimit = 10

// SnapshotSummary describes one history entry. Corrupt is set when the
// file could not be read back as a state document.
type SnapshotSummary struct {
	Name            string `json:"name"`
	TotalTasks      int    `json:"total_tasks"`
	Completed       int    `json:"completed"`
	ProgressPercent int    `json:"progress_percent"`
	Corrupt         bool   `json:"corrupt,omitempty"`
}

// RestoreResult describes a completed restore. Backup is empty when the
// live state could not be loaded and therefore was not snapshotted.
type RestoreResult struct {
	Restored string
	Backup   string
	State    *models.State
}

// HistoryManager snapshots, lists and restores the project state.
type HistoryManager interface {
	Snapshot() (string, error)
	List(limit int) ([]SnapshotSummary, error)
	Restore(name string) (*RestoreResult, error)
}

type historyManager struct {
	store  StateStore
	events EventLogger
}

// NewHistoryManager creates a HistoryManager over store. events may be nil.
func NewHistoryManager(store StateStore, events EventLogger) HistoryManager {
	return &historyManager{store: store, events: events}
}

// Snapshot copies the live state into history and returns the file path.
func (hm *historyManager) Snapshot() (string, error) {
	st, err := hm.store.Load()
	if err != nil {
		return "", fmt.Errorf("creating snapshot: %w", err)
	}
	if st == nil {
		return "", fmt.Errorf("creating snapshot: %w", ErrNotInitialized)
	}
	path, err := hm.store.Snapshot(st)
	if err != nil {
		return "", err
	}
	logEvent(hm.events, EventStateSnapshot, map[string]any{"snapshot": path})
	return path, nil
}

// List returns up to limit snapshots, newest first. A limit <= 0 uses
// DefaultHistoryLimit.
func (hm *historyManager) List(limit int) ([]SnapshotSummary, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	names, err := hm.store.ListSnapshots()
	if err != nil {
		return nil, err
	}
	if len(names) > limit {
		names = names[:limit]
	}

	out := make([]SnapshotSummary, 0, len(names))
	for _, name := range names {
		summary := SnapshotSummary{Name: name}
		st, err := hm.store.LoadSnapshot(name)
		if err != nil {
			logging.Warn().Err(err).Str("snapshot", name).Msg("unreadable snapshot")
			summary.Corrupt = true
		} else {
			m := CalculateMetrics(st.Tasks)
			summary.TotalTasks = m.TotalTasks
			summary.Completed = m.Completed
			summary.ProgressPercent = m.ProgressPercent
		}
		out = append(out, summary)
	}
	return out, nil
}

// ValidateSnapshotName checks that name refers to a file directly inside
// the history directory and appends the .yaml extension when missing.
func ValidateSnapshotName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: snapshot name %q must be a file name inside history/", ErrInvalidInput, name)
	}
	if !strings.HasSuffix(name, ".yaml") {
		name += ".yaml"
	}
	return name, nil
}

// Restore makes the named snapshot the live state. The current state is
// snapshotted first when it can be loaded, and the restored document's
// metrics are recomputed before it is saved.
func (hm *historyManager) Restore(name string) (*RestoreResult, error) {
	name, err := ValidateSnapshotName(name)
	if err != nil {
		return nil, err
	}

	restored, err := hm.store.LoadSnapshot(name)
	if err != nil {
		return nil, fmt.Errorf("restoring %s: %w", name, err)
	}

	result := &RestoreResult{Restored: name}
	current, err := hm.store.Load()
	switch {
	case err != nil:
		logging.Warn().Err(err).Msg("live state unreadable; restoring without a backup snapshot")
	case current != nil:
		backup, err := hm.store.Snapshot(current)
		if err != nil {
			return nil, fmt.Errorf("restoring %s: %w", name, err)
		}
		result.Backup = backup
	}

	restored.Metrics = CalculateMetrics(restored.Tasks)
	if err := hm.store.Save(restored); err != nil {
		return nil, fmt.Errorf("restoring %s: %w", name, err)
	}
	result.State = restored

	logEvent(hm.events, EventStateRestored, map[string]any{
		"snapshot": name,
		"backup":   result.Backup,
	})
	return result, nil
}
