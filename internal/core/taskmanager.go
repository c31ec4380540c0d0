package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/supercraft/internal/logging"
	"github.com/valter-silva-au/supercraft/pkg/models"
)

// StateStore is the subset of storage.StateStore the lifecycle engine and
// history manager need. Defining it here lets tests substitute a fake.
type StateStore interface {
	Exists() bool
	Load() (*models.State, error)
	Save(st *models.State) error
	Snapshot(st *models.State) (string, error)
	ListSnapshots() ([]string, error)
	LoadSnapshot(name string) (*models.State, error)
}

// CreateTaskOptions holds the validated inputs for a new task.
type CreateTaskOptions struct {
	Title       string
	Description string
	Priority    models.Priority
}

// TaskFilter selects tasks by status and priority. Empty slices match all;
// a task must match every non-empty criterion.
type TaskFilter struct {
	Status   []models.TaskStatus
	Priority []models.Priority
}

// TransitionResult describes a successful lifecycle transition.
type TransitionResult struct {
	Task     models.Task
	From     models.TaskStatus
	Snapshot string
	Metrics  models.Metrics
}

// TaskManager defines the task lifecycle operations. Every transition is
// validated before anything is written; a rejected transition leaves both
// the persisted and returned state untouched.
type TaskManager interface {
	State() (*models.State, error)
	CreateTask(opts CreateTaskOptions) (*models.Task, error)
	StartTask(taskID string) (*TransitionResult, error)
	CompleteTask(taskID string) (*TransitionResult, error)
	BlockTask(taskID, reason string) (*TransitionResult, error)
	RollbackTask(taskID string, target models.TaskStatus) (*TransitionResult, error)
	GetTask(taskID string) (*models.Task, error)
	ListTasks(filter TaskFilter) ([]models.Task, error)
}

type taskManager struct {
	store  StateStore
	events EventLogger
	now    func() time.Time
}

// NewTaskManager creates a TaskManager over store. events may be nil; now
// defaults to time.Now.
func NewTaskManager(store StateStore, events EventLogger, now func() time.Time) TaskManager {
	if now == nil {
		now = time.Now
	}
	return &taskManager{store: store, events: events, now: now}
}

// load reads the live state, mapping a missing document to ErrNotInitialized.
func (tm *taskManager) load() (*models.State, error) {
	st, err := tm.store.Load()
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrNotInitialized
	}
	return st, nil
}

// State returns the live state with metrics recomputed from its tasks.
func (tm *taskManager) State() (*models.State, error) {
	st, err := tm.load()
	if err != nil {
		return nil, err
	}
	st.Metrics = CalculateMetrics(st.Tasks)
	return st, nil
}

func (tm *taskManager) CreateTask(opts CreateTaskOptions) (*models.Task, error) {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		return nil, fmt.Errorf("creating task: %w: title must not be empty", ErrInvalidInput)
	}
	priority := opts.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("creating task: %w", &InvalidValueError{
			Field: "priority", Value: string(priority), Valid: priorityNames(models.ValidPriorities()),
		})
	}

	st, err := tm.load()
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	task := NewTask(title, opts.Description, priority, tm.now())
	task.ID = GenerateTaskID(st.Tasks)
	st.Tasks = append(st.Tasks, task)
	st.Metrics = CalculateMetrics(st.Tasks)

	if err := tm.store.Save(st); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	logging.Debug().Str("task", task.ID).Msg("task created")
	logEvent(tm.events, EventTaskCreated, map[string]any{
		"task_id":  task.ID,
		"title":    task.Title,
		"priority": string(task.Priority),
	})
	return &task, nil
}

func (tm *taskManager) StartTask(taskID string) (*TransitionResult, error) {
	return tm.transition(taskID, "starting", EventTaskStarted, CanStart, func(t *models.Task, now string) {
		applyStart(t, now)
	})
}

func (tm *taskManager) CompleteTask(taskID string) (*TransitionResult, error) {
	return tm.transition(taskID, "completing", EventTaskCompleted, CanComplete, func(t *models.Task, now string) {
		applyComplete(t, now)
	})
}

func (tm *taskManager) BlockTask(taskID, reason string) (*TransitionResult, error) {
	reason = strings.TrimSpace(reason)
	return tm.transition(taskID, "blocking", EventTaskBlocked, CanBlock, func(t *models.Task, _ string) {
		applyBlock(t, reason)
	})
}

func (tm *taskManager) RollbackTask(taskID string, target models.TaskStatus) (*TransitionResult, error) {
	var resolved models.TaskStatus
	check := func(t *models.Task) error {
		var err error
		resolved, err = ResolveRollbackTarget(t.Status, target)
		return err
	}
	return tm.transition(taskID, "rolling back", EventTaskRolledBack, check, func(t *models.Task, _ string) {
		applyRollback(t, resolved)
	})
}

// transition runs one lifecycle step: validate, snapshot the unmodified
// state, mutate, recompute metrics and save.
func (tm *taskManager) transition(
	taskID, verb, eventType string,
	check func(*models.Task) error,
	apply func(t *models.Task, now string),
) (*TransitionResult, error) {
	st, err := tm.load()
	if err != nil {
		return nil, fmt.Errorf("%s task %s: %w", verb, taskID, err)
	}
	idx := st.FindTask(taskID)
	if idx < 0 {
		return nil, fmt.Errorf("%s task: %w: %s", verb, ErrTaskNotFound, taskID)
	}
	from := st.Tasks[idx].Status
	if err := check(&st.Tasks[idx]); err != nil {
		return nil, err
	}

	snapshot, err := tm.store.Snapshot(st)
	if err != nil {
		return nil, fmt.Errorf("%s task %s: %w", verb, taskID, err)
	}
	logging.Debug().Str("task", taskID).Str("snapshot", snapshot).Msg("snapshot before transition")

	apply(&st.Tasks[idx], models.FormatTimestamp(tm.now()))
	st.Metrics = CalculateMetrics(st.Tasks)

	if err := tm.store.Save(st); err != nil {
		return nil, fmt.Errorf("%s task %s: %w", verb, taskID, err)
	}

	result := &TransitionResult{
		Task:     st.Tasks[idx],
		From:     from,
		Snapshot: snapshot,
		Metrics:  st.Metrics,
	}
	data := map[string]any{
		"task_id":  taskID,
		"from":     string(from),
		"to":       string(result.Task.Status),
		"snapshot": snapshot,
	}
	if result.Task.BlockedReason != "" && eventType == EventTaskBlocked {
		data["reason"] = result.Task.BlockedReason
	}
	logEvent(tm.events, eventType, data)
	return result, nil
}

func (tm *taskManager) GetTask(taskID string) (*models.Task, error) {
	st, err := tm.load()
	if err != nil {
		return nil, err
	}
	idx := st.FindTask(taskID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	task := st.Tasks[idx]
	return &task, nil
}

// ListTasks returns matching tasks in insertion order.
func (tm *taskManager) ListTasks(filter TaskFilter) ([]models.Task, error) {
	st, err := tm.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.Task, 0, len(st.Tasks))
	for _, t := range st.Tasks {
		if matchesFilter(t, filter) {
			out = append(out, t)
		}
	}
	return out, nil
}

func matchesFilter(t models.Task, filter TaskFilter) bool {
	if len(filter.Status) > 0 && !containsStatus(filter.Status, t.Status) {
		return false
	}
	if len(filter.Priority) > 0 && !containsPriority(filter.Priority, t.Priority) {
		return false
	}
	return true
}

func containsStatus(haystack []models.TaskStatus, needle models.TaskStatus) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsPriority(haystack []models.Priority, needle models.Priority) bool {
	for _, p := range haystack {
		if p == needle {
			return true
		}
	}
	return false
}
