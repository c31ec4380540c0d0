package core

import (
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/valter-silva-au/supercraft/internal/projectpath"
	"github.com/valter-silva-au/supercraft/internal/storage"
	"github.com/valter-silva-au/supercraft/pkg/models"
)

const testRoot = "/work/demo"

// testClock is a settable clock shared by the store and the managers.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordedEvent is one call captured by recordingEvents.
type recordedEvent struct {
	Type string
	Data map[string]any
}

type recordingEvents struct {
	events []recordedEvent
}

func (r *recordingEvents) LogEvent(eventType string, data map[string]any) error {
	r.events = append(r.events, recordedEvent{Type: eventType, Data: data})
	return nil
}

func (r *recordingEvents) types() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	fs      *storage.FileSystem
	paths   projectpath.Paths
	store   *storage.StateStore
	clock   *testClock
	events  *recordingEvents
	tasks   TaskManager
	history HistoryManager
}

// newEnv builds an uninitialized project on an in-memory filesystem.
func newEnv() *testEnv {
	fs := storage.NewFileSystem(afero.NewMemMapFs())
	paths := projectpath.New(testRoot)
	clock := newTestClock()
	store := storage.NewStateStore(fs, paths)
	store.SetClock(clock.Now)
	events := &recordingEvents{}
	return &testEnv{
		fs:      fs,
		paths:   paths,
		store:   store,
		clock:   clock,
		events:  events,
		tasks:   NewTaskManager(store, events, clock.Now),
		history: NewHistoryManager(store, events),
	}
}

// newInitializedEnv builds a project with an empty state document.
func newInitializedEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newEnv()
	if err := env.initialize(); err != nil {
		t.Fatalf("initializing test project: %v", err)
	}
	return env
}

func (env *testEnv) initialize() error {
	if err := env.fs.EnsureDir(env.paths.Dir()); err != nil {
		return err
	}
	return env.store.Save(NewState("demo", testRoot, env.clock.Now()))
}

func (env *testEnv) stateBytes(t *testing.T) string {
	t.Helper()
	data, err := env.fs.ReadFile(env.paths.StateFile())
	if err != nil {
		t.Fatalf("reading state: %v", err)
	}
	return string(data)
}

func (env *testEnv) snapshotCount(t *testing.T) int {
	t.Helper()
	names, err := env.store.ListSnapshots()
	if err != nil {
		t.Fatalf("listing snapshots: %v", err)
	}
	return len(names)
}

func (env *testEnv) mustCreate(t *testing.T, title string, priority models.Priority) *models.Task {
	t.Helper()
	task, err := env.tasks.CreateTask(CreateTaskOptions{Title: title, Priority: priority})
	if err != nil {
		t.Fatalf("CreateTask(%q): %v", title, err)
	}
	return task
}
