package models

// StateVersion is the schema version written by this tool.
const StateVersion = "1.0"

// Metrics is derived from the task sequence and never edited by hand.
type Metrics struct {
	TotalTasks      int `yaml:"total_tasks" json:"total_tasks"`
	Completed       int `yaml:"completed" json:"completed"`
	InProgress      int `yaml:"in_progress" json:"in_progress"`
	Pending         int `yaml:"pending" json:"pending"`
	Blocked         int `yaml:"blocked" json:"blocked"`
	ProgressPercent int `yaml:"progress_percent" json:"progress_percent"`
}

// ProjectRef identifies the project a state document belongs to.
type ProjectRef struct {
	Name string `yaml:"name" json:"name"`
	Root string `yaml:"root" json:"root"`
}

// CurrentPlan points at the plan and phase surrounding tooling is working on.
type CurrentPlan struct {
	PlanID   string `yaml:"plan_id,omitempty" json:"plan_id,omitempty"`
	PlanName string `yaml:"plan_name,omitempty" json:"plan_name,omitempty"`
	Phase    string `yaml:"phase,omitempty" json:"phase,omitempty"`
}

// StateMetadata holds document timestamps. CreatedAt never changes after
// initialization; UpdatedAt is rewritten on every save.
type StateMetadata struct {
	CreatedAt string `yaml:"created_at" json:"created_at"`
	UpdatedAt string `yaml:"updated_at" json:"updated_at"`
}

// State is the single per-project document holding tasks and workflow state.
// Tasks keep insertion order, which is also creation order.
type State struct {
	Version  string        `yaml:"version" json:"version"`
	Project  ProjectRef    `yaml:"project" json:"project"`
	Current  *CurrentPlan  `yaml:"current,omitempty" json:"current,omitempty"`
	Tasks    []Task        `yaml:"tasks" json:"tasks"`
	Metrics  Metrics       `yaml:"metrics" json:"metrics"`
	Metadata StateMetadata `yaml:"metadata" json:"metadata"`
}

// FindTask returns the index of the task with the given ID, or -1.
func (s *State) FindTask(id string) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}
