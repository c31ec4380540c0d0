package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/valter-silva-au/supercraft/internal/projectpath"
	"github.com/valter-silva-au/supercraft/pkg/models"
	"gopkg.in/yaml.v3"
)

// ErrSnapshotNotFound is returned when a named history snapshot is absent.
var ErrSnapshotNotFound = fmt.Errorf("snapshot %w", ErrNotFound)

const snapshotExt = ".yaml"

var snapshotNameReplacer = strings.NewReplacer(":", "-", ".", "-")

// SnapshotName returns the history file name for a snapshot taken at t,
// e.g. "2026-10-18T12-30-45-123Z.yaml". Names sort lexically in time order.
func SnapshotName(t time.Time) string {
	return snapshotNameReplacer.Replace(models.FormatTimestamp(t)) + snapshotExt
}

// stateDocument mirrors models.State with pointer fields so a document that
// omits tasks or metrics can be told apart from an empty one.
type stateDocument struct {
	Version  string               `yaml:"version"`
	Project  models.ProjectRef    `yaml:"project"`
	Current  *models.CurrentPlan  `yaml:"current,omitempty"`
	Tasks    *[]models.Task       `yaml:"tasks"`
	Metrics  *models.Metrics      `yaml:"metrics"`
	Metadata models.StateMetadata `yaml:"metadata"`
}

// DecodeState parses a state document. Documents that are not valid YAML
// or lack the tasks list or metrics block yield ErrInvalidFormat.
func DecodeState(data []byte) (*models.State, error) {
	var doc stateDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if doc.Tasks == nil {
		return nil, fmt.Errorf("%w: missing tasks list", ErrInvalidFormat)
	}
	if doc.Metrics == nil {
		return nil, fmt.Errorf("%w: missing metrics", ErrInvalidFormat)
	}
	tasks := *doc.Tasks
	if tasks == nil {
		tasks = []models.Task{}
	}
	return &models.State{
		Version:  doc.Version,
		Project:  doc.Project,
		Current:  doc.Current,
		Tasks:    tasks,
		Metrics:  *doc.Metrics,
		Metadata: doc.Metadata,
	}, nil
}

// StateStore persists the project state document and its snapshot history.
type StateStore struct {
	fs    *FileSystem
	paths projectpath.Paths
	now   func() time.Time
}

// NewStateStore creates a StateStore for the project described by paths.
func NewStateStore(fs *FileSystem, paths projectpath.Paths) *StateStore {
	return &StateStore{fs: fs, paths: paths, now: time.Now}
}

// SetClock overrides the time source used for update stamps and snapshot
// names.
func (s *StateStore) SetClock(now func() time.Time) {
	s.now = now
}

// Paths returns the project layout the store writes to.
func (s *StateStore) Paths() projectpath.Paths {
	return s.paths
}

// Exists reports whether the state document is present.
func (s *StateStore) Exists() bool {
	return s.fs.FileExists(s.paths.StateFile())
}

// Load reads the state document. A missing document returns (nil, nil).
func (s *StateStore) Load() (*models.State, error) {
	if !s.Exists() {
		return nil, nil
	}
	data, err := s.fs.ReadFile(s.paths.StateFile())
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}
	st, err := DecodeState(data)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}
	return st, nil
}

// Save stamps metadata.updated_at and replaces the state document.
func (s *StateStore) Save(st *models.State) error {
	st.Metadata.UpdatedAt = models.FormatTimestamp(s.now())
	if st.Tasks == nil {
		st.Tasks = []models.Task{}
	}
	data, err := MarshalYAML(st)
	if err != nil {
		return fmt.Errorf("saving state: marshaling YAML: %w", err)
	}
	if err := s.fs.WriteFile(s.paths.StateFile(), data); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

// Snapshot writes a copy of st into the history directory and returns the
// file path. The state passed in is not modified. When a snapshot with the
// same millisecond name exists the timestamp is advanced until it is free,
// so history is never overwritten.
func (s *StateStore) Snapshot(st *models.State) (string, error) {
	dir := s.paths.HistoryDir()
	if err := s.fs.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("creating snapshot: %w", err)
	}

	at := s.now()
	path := filepath.Join(dir, SnapshotName(at))
	for s.fs.FileExists(path) {
		at = at.Add(time.Millisecond)
		path = filepath.Join(dir, SnapshotName(at))
	}

	data, err := MarshalYAML(st)
	if err != nil {
		return "", fmt.Errorf("creating snapshot: marshaling YAML: %w", err)
	}
	if err := s.fs.WriteFile(path, data); err != nil {
		return "", fmt.Errorf("creating snapshot: %w", err)
	}
	return path, nil
}

// ListSnapshots returns snapshot file names, newest first. A missing
// history directory yields an empty list.
func (s *StateStore) ListSnapshots() ([]string, error) {
	names, err := s.fs.Glob(s.paths.HistoryDir(), "*"+snapshotExt)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// LoadSnapshot reads the named snapshot. The name must be a bare file name
// inside the history directory.
func (s *StateStore) LoadSnapshot(name string) (*models.State, error) {
	path := filepath.Join(s.paths.HistoryDir(), name)
	if !s.fs.FileExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	data, err := s.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return nil, fmt.Errorf("loading snapshot %s: %w", name, err)
	}
	st, err := DecodeState(data)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", name, err)
	}
	return st, nil
}
