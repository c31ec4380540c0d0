package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/valter-silva-au/supercraft/internal/core"
	"github.com/valter-silva-au/supercraft/pkg/models"
)

const initSnapshot = "2026-10-18T09-00-00-000Z.yaml"

func TestStateCmd_Subcommands(t *testing.T) {
	subs := make(map[string]bool)
	for _, cmd := range stateCmd.Commands() {
		subs[cmd.Name()] = true
	}
	for _, name := range []string{"snapshot", "history", "restore"} {
		if !subs[name] {
			t.Errorf("expected subcommand %q on state", name)
		}
	}
}

func TestStateSnapshot(t *testing.T) {
	setupCLI(t, true)

	out, err := run(t, stateSnapshotCmd)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	// init already took the snapshot at the fixed clock time, so this one
	// lands a millisecond later.
	if !strings.Contains(out, "Snapshot created: .supercraft/history/2026-10-18T09-00-00-001Z.yaml") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestStateSnapshot_NotInitialized(t *testing.T) {
	setupCLI(t, false)

	_, err := run(t, stateSnapshotCmd)
	if !errors.Is(err, core.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestStateHistory(t *testing.T) {
	setupCLI(t, true)
	createTask(t, "Write parser", "high")
	if _, err := TaskMgr.StartTask("task-1"); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, stateHistoryCmd)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "Snapshots (2)") {
		t.Errorf("expected two snapshots:\n%s", out)
	}
	newest := strings.Index(out, "2026-10-18T09-00-00-001Z.yaml")
	oldest := strings.Index(out, initSnapshot)
	if newest < 0 || oldest < 0 || newest > oldest {
		t.Errorf("expected newest snapshot first:\n%s", out)
	}
	if !strings.Contains(out, "0/1 tasks") {
		t.Errorf("expected the task counts of the newest snapshot:\n%s", out)
	}
}

func TestStateHistory_LimitAndJSON(t *testing.T) {
	setupCLI(t, true)
	for i := 0; i < 3; i++ {
		if _, err := run(t, stateSnapshotCmd); err != nil {
			t.Fatal(err)
		}
	}
	stateHistoryLimit = 2
	stateHistoryJSON = true

	out, err := run(t, stateHistoryCmd)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var snaps []core.SnapshotSummary
	if err := json.Unmarshal([]byte(out), &snaps); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	if snaps[0].Name != "2026-10-18T09-00-00-003Z.yaml" {
		t.Errorf("expected newest first, got %s", snaps[0].Name)
	}
}

func TestStateHistory_CorruptSnapshot(t *testing.T) {
	env := setupCLI(t, true)
	bad := env.paths.HistoryDir() + "/2026-10-19T00-00-00-000Z.yaml"
	if err := env.fs.WriteFile(bad, []byte("tasks: [\n")); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, stateHistoryCmd)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "unreadable") {
		t.Errorf("expected corrupt snapshot to be flagged:\n%s", out)
	}
}

func TestStateRestore(t *testing.T) {
	setupCLI(t, true)
	createTask(t, "Write parser", "high")
	createTask(t, "Wire CLI", "low")

	out, err := run(t, stateRestoreCmd, strings.TrimSuffix(initSnapshot, ".yaml"))
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !strings.Contains(out, "Current state backed up: .supercraft/history/") {
		t.Errorf("expected a backup line:\n%s", out)
	}
	if !strings.Contains(out, "Restored snapshot: "+initSnapshot) {
		t.Errorf("expected the restored name:\n%s", out)
	}

	tasks, err := TaskMgr.ListTasks(core.TaskFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected the empty initial state, got %d tasks", len(tasks))
	}
}

func TestStateRestore_Errors(t *testing.T) {
	setupCLI(t, true)

	_, err := run(t, stateRestoreCmd, "2020-01-01T00-00-00-000Z.yaml")
	if !errors.Is(err, core.ErrSnapshotNotFound) {
		t.Errorf("expected ErrSnapshotNotFound, got %v", err)
	}

	_, err = run(t, stateRestoreCmd, "../state.yaml")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for a path, got %v", err)
	}
}

func TestStateCmds_NilManager(t *testing.T) {
	setupCLI(t, false)
	HistoryMgr = nil

	for _, tc := range []struct {
		name string
		args []string
	}{{"snapshot", nil}, {"history", nil}, {"restore", []string{initSnapshot}}} {
		for _, cmd := range stateCmd.Commands() {
			if cmd.Name() != tc.name {
				continue
			}
			if _, err := run(t, cmd, tc.args...); err == nil {
				t.Errorf("%s: expected error when history manager is nil", tc.name)
			}
		}
	}
}

func TestStateRestore_RecomputesMetrics(t *testing.T) {
	env := setupCLI(t, true)
	st := &models.State{
		Version: "1.0",
		Project: models.ProjectRef{Name: "demo", Root: testRoot},
		Tasks: []models.Task{
			{ID: "task-1", Title: "a", Status: models.StatusCompleted, Priority: models.PriorityHigh},
			{ID: "task-2", Title: "b", Status: models.StatusPending, Priority: models.PriorityLow},
		},
		Metrics: models.Metrics{TotalTasks: 99},
	}
	data, err := json.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	// JSON is valid YAML.
	name := "2026-10-17T00-00-00-000Z.yaml"
	if err := env.fs.WriteFile(env.paths.HistoryDir()+"/"+name, data); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, stateRestoreCmd, name)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !strings.Contains(out, "50% (1/2 tasks)") {
		t.Errorf("expected recomputed metrics:\n%s", out)
	}
}
