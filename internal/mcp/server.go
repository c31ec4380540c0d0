// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the supercraft task lifecycle as MCP tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/supercraft/internal/core"
	"github.com/valter-silva-au/supercraft/internal/observability"
	"github.com/valter-silva-au/supercraft/pkg/models"
)

// Services bundles the components the MCP tools call into. Alerts may be
// nil when no event log is available.
type Services struct {
	Tasks   core.TaskManager
	History core.HistoryManager
	Specs   core.SpecCatalog
	Config  core.ConfigurationManager
	Alerts  observability.AlertEngine
	Now     func() time.Time
}

// Server wraps supercraft services and exposes them as MCP tools.
type Server struct {
	server *gomcp.Server
	svc    Services
}

// NewServer creates a new MCP server backed by svc.
func NewServer(svc Services, version string) *Server {
	if version == "" {
		version = "dev"
	}
	if svc.Now == nil {
		svc.Now = time.Now
	}

	s := &Server{svc: svc}
	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "supercraft", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves MCP over stdio, blocking until the client disconnects or the
// context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskIDInput struct {
	TaskID string `json:"task_id" jsonschema:"the task identifier, e.g. task-3"`
}

type getStatusInput struct{}

type alertOutput struct {
	Condition string `json:"condition"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	TaskID    string `json:"task_id,omitempty"`
}

type statusOutput struct {
	Project   string              `json:"project"`
	Root      string              `json:"root"`
	Current   *models.CurrentPlan `json:"current,omitempty"`
	Metrics   models.Metrics      `json:"metrics"`
	Progress  string              `json:"progress"`
	UpdatedAt string              `json:"updated_at"`
	Alerts    []alertOutput       `json:"alerts,omitempty"`
}

type listTasksInput struct {
	Status   string `json:"status,omitempty" jsonschema:"filter by status: pending, in_progress, completed or blocked"`
	Priority string `json:"priority,omitempty" jsonschema:"filter by priority: low, medium or high"`
}

type listTasksOutput struct {
	Tasks []models.Task `json:"tasks"`
	Count int           `json:"count"`
}

type createTaskInput struct {
	Title       string `json:"title" jsonschema:"short task title"`
	Description string `json:"description,omitempty" jsonschema:"longer description of the work"`
	Priority    string `json:"priority,omitempty" jsonschema:"low, medium or high; defaults to medium"`
}

type blockTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"the task identifier, e.g. task-3"`
	Reason string `json:"reason,omitempty" jsonschema:"why the task is blocked"`
}

type rollbackTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"the task identifier, e.g. task-3"`
	To     string `json:"to,omitempty" jsonschema:"explicit target status; defaults to the previous status"`
}

type transitionOutput struct {
	Task     models.Task    `json:"task"`
	From     string         `json:"from"`
	Snapshot string         `json:"snapshot"`
	Metrics  models.Metrics `json:"metrics"`
}

type listSnapshotsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of snapshots to return, newest first; defaults to 10"`
}

type listSnapshotsOutput struct {
	Snapshots []core.SnapshotSummary `json:"snapshots"`
	Count     int                    `json:"count"`
}

type listSpecsInput struct {
	Match string `json:"match,omitempty" jsonschema:"glob over spec names, e.g. api/**"`
}

type specOutput struct {
	Name       string `json:"name"`
	ModifiedAt string `json:"modified_at"`
}

type listSpecsOutput struct {
	Specs []specOutput `json:"specs"`
	Count int          `json:"count"`
}

type getSpecInput struct {
	Name string `json:"name" jsonschema:"spec name without the .md extension"`
}

type getSpecOutput struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type getConfigInput struct {
	Key    string `json:"key,omitempty" jsonschema:"dotted key such as project.name; empty returns the whole config"`
	Global bool   `json:"global,omitempty" jsonschema:"read the global config instead of the merged project view"`
}

type getConfigOutput struct {
	Key   string `json:"key,omitempty"`
	Value any    `json:"value"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_status",
		Description: "Get the project status: metrics recomputed from the task list, a progress bar, the current plan, and active alerts.",
	}, s.handleGetStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks in creation order with optional status and priority filters.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get a single task by ID.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "create_task",
		Description: "Create a pending task. The ID is assigned as task-<N>.",
	}, s.handleCreateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "start_task",
		Description: "Move a pending or blocked task to in_progress. A snapshot of the prior state is written first.",
	}, s.handleStartTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "complete_task",
		Description: "Mark a task completed. A snapshot of the prior state is written first.",
	}, s.handleCompleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "block_task",
		Description: "Mark a task blocked with an optional reason. A snapshot of the prior state is written first.",
	}, s.handleBlockTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "rollback_task",
		Description: "Roll a task back to its previous status, or to an explicit target status.",
	}, s.handleRollbackTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_snapshots",
		Description: "List state history snapshots, newest first, with task totals and progress.",
	}, s.handleListSnapshots)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_specs",
		Description: "List the project's spec documents.",
	}, s.handleListSpecs)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_spec",
		Description: "Get a spec document wrapped in <SPEC> tags for use as context.",
	}, s.handleGetSpec)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_config",
		Description: "Read the merged project config or the global config, optionally a single dotted key.",
	}, s.handleGetConfig)
}

// --- Tool handlers ---

func (s *Server) handleGetStatus(_ context.Context, _ *gomcp.CallToolRequest, _ getStatusInput) (*gomcp.CallToolResult, statusOutput, error) {
	st, err := s.svc.Tasks.State()
	if err != nil {
		return errorResult(fmt.Sprintf("loading state: %s", err)), statusOutput{}, nil
	}

	out := statusOutput{
		Project:   st.Project.Name,
		Root:      st.Project.Root,
		Metrics:   st.Metrics,
		Progress:  fmt.Sprintf("%s %d%%", core.FormatProgress(st.Metrics.ProgressPercent), st.Metrics.ProgressPercent),
		UpdatedAt: st.Metadata.UpdatedAt,
	}
	if st.Current != nil && *st.Current != (models.CurrentPlan{}) {
		out.Current = st.Current
	}

	if s.svc.Alerts != nil {
		alerts, err := s.svc.Alerts.Evaluate(st.Tasks, s.svc.Now())
		if err != nil {
			return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), statusOutput{}, nil
		}
		for _, a := range alerts {
			out.Alerts = append(out.Alerts, alertOutput{
				Condition: a.Condition,
				Severity:  string(a.Severity),
				Message:   a.Message,
				TaskID:    a.TaskID,
			})
		}
	}

	return nil, out, nil
}

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	var filter core.TaskFilter
	if input.Status != "" {
		status, err := core.ParseStatus(input.Status)
		if err != nil {
			return errorResult(err.Error()), listTasksOutput{}, nil
		}
		filter.Status = []models.TaskStatus{status}
	}
	if input.Priority != "" {
		priority, err := core.ParsePriority(input.Priority)
		if err != nil {
			return errorResult(err.Error()), listTasksOutput{}, nil
		}
		filter.Priority = []models.Priority{priority}
	}

	tasks, err := s.svc.Tasks.ListTasks(filter)
	if err != nil {
		return errorResult(fmt.Sprintf("listing tasks: %s", err)), listTasksOutput{}, nil
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	return nil, listTasksOutput{Tasks: tasks, Count: len(tasks)}, nil
}

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, models.Task, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), models.Task{}, nil
	}

	task, err := s.svc.Tasks.GetTask(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting task %s: %s", input.TaskID, err)), models.Task{}, nil
	}

	return nil, *task, nil
}

func (s *Server) handleCreateTask(_ context.Context, _ *gomcp.CallToolRequest, input createTaskInput) (*gomcp.CallToolResult, models.Task, error) {
	opts := core.CreateTaskOptions{Title: input.Title, Description: input.Description}
	if input.Priority != "" {
		priority, err := core.ParsePriority(input.Priority)
		if err != nil {
			return errorResult(err.Error()), models.Task{}, nil
		}
		opts.Priority = priority
	}

	task, err := s.svc.Tasks.CreateTask(opts)
	if err != nil {
		return errorResult(fmt.Sprintf("creating task: %s", err)), models.Task{}, nil
	}

	return nil, *task, nil
}

func (s *Server) handleStartTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, transitionOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), transitionOutput{}, nil
	}
	return transitionResult(s.svc.Tasks.StartTask(input.TaskID))
}

func (s *Server) handleCompleteTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, transitionOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), transitionOutput{}, nil
	}
	return transitionResult(s.svc.Tasks.CompleteTask(input.TaskID))
}

func (s *Server) handleBlockTask(_ context.Context, _ *gomcp.CallToolRequest, input blockTaskInput) (*gomcp.CallToolResult, transitionOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), transitionOutput{}, nil
	}
	return transitionResult(s.svc.Tasks.BlockTask(input.TaskID, input.Reason))
}

func (s *Server) handleRollbackTask(_ context.Context, _ *gomcp.CallToolRequest, input rollbackTaskInput) (*gomcp.CallToolResult, transitionOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), transitionOutput{}, nil
	}
	// An unrecognised target is passed through so the engine reports it
	// together with the valid set.
	return transitionResult(s.svc.Tasks.RollbackTask(input.TaskID, models.TaskStatus(input.To)))
}

func (s *Server) handleListSnapshots(_ context.Context, _ *gomcp.CallToolRequest, input listSnapshotsInput) (*gomcp.CallToolResult, listSnapshotsOutput, error) {
	if s.svc.History == nil {
		return errorResult("history is not available"), listSnapshotsOutput{}, nil
	}
	limit := input.Limit
	if limit <= 0 {
		limit = core.DefaultHistoryLimit
	}

	snaps, err := s.svc.History.List(limit)
	if err != nil {
		return errorResult(fmt.Sprintf("listing snapshots: %s", err)), listSnapshotsOutput{}, nil
	}
	if snaps == nil {
		snaps = []core.SnapshotSummary{}
	}

	return nil, listSnapshotsOutput{Snapshots: snaps, Count: len(snaps)}, nil
}

func (s *Server) handleListSpecs(_ context.Context, _ *gomcp.CallToolRequest, input listSpecsInput) (*gomcp.CallToolResult, listSpecsOutput, error) {
	if s.svc.Specs == nil {
		return errorResult("spec catalog is not available"), listSpecsOutput{}, nil
	}

	specs, err := s.svc.Specs.List(input.Match)
	if err != nil {
		return errorResult(fmt.Sprintf("listing specs: %s", err)), listSpecsOutput{}, nil
	}

	out := listSpecsOutput{Specs: make([]specOutput, len(specs)), Count: len(specs)}
	for i, sp := range specs {
		out.Specs[i] = specOutput{Name: sp.Name, ModifiedAt: sp.ModifiedAt.UTC().Format(time.RFC3339)}
	}
	return nil, out, nil
}

func (s *Server) handleGetSpec(_ context.Context, _ *gomcp.CallToolRequest, input getSpecInput) (*gomcp.CallToolResult, getSpecOutput, error) {
	if s.svc.Specs == nil {
		return errorResult("spec catalog is not available"), getSpecOutput{}, nil
	}
	if input.Name == "" {
		return errorResult("name is required"), getSpecOutput{}, nil
	}

	content, err := s.svc.Specs.Get(input.Name)
	if err != nil {
		return errorResult(fmt.Sprintf("getting spec %s: %s", input.Name, err)), getSpecOutput{}, nil
	}

	return nil, getSpecOutput{Name: input.Name, Content: core.WrapSpec(input.Name, content)}, nil
}

func (s *Server) handleGetConfig(_ context.Context, _ *gomcp.CallToolRequest, input getConfigInput) (*gomcp.CallToolResult, getConfigOutput, error) {
	if s.svc.Config == nil {
		return errorResult("configuration is not available"), getConfigOutput{}, nil
	}
	scope := core.ParseScope(input.Global)

	if input.Key == "" {
		var cfg *models.Config
		if scope == core.ScopeGlobal {
			cfg = s.svc.Config.LoadGlobalConfig()
		} else {
			cfg = s.svc.Config.MergedConfig()
		}
		if cfg == nil {
			return errorResult(fmt.Sprintf("no %s config found", scope)), getConfigOutput{}, nil
		}
		return nil, getConfigOutput{Value: cfg}, nil
	}

	value, err := s.svc.Config.Get(scope, input.Key)
	if err != nil {
		return errorResult(fmt.Sprintf("getting %s: %s", input.Key, err)), getConfigOutput{}, nil
	}
	return nil, getConfigOutput{Key: input.Key, Value: value}, nil
}

// --- Helpers ---

func transitionResult(res *core.TransitionResult, err error) (*gomcp.CallToolResult, transitionOutput, error) {
	if err != nil {
		return errorResult(err.Error()), transitionOutput{}, nil
	}
	return nil, transitionOutput{
		Task:     res.Task,
		From:     string(res.From),
		Snapshot: res.Snapshot,
		Metrics:  res.Metrics,
	}, nil
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
