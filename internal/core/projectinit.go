package core

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/valter-silva-au/supercraft/internal/projectpath"
	"github.com/valter-silva-au/supercraft/internal/storage"
	"github.com/valter-silva-au/supercraft/pkg/models"
)

// DefaultVerificationCommand seeds the project config written by Init.
const DefaultVerificationCommand = "go test ./..."

// InitOptions holds the parameters for initializing a project.
type InitOptions struct {
	// Name defaults to the base name of the project root.
	Name string
}

// InitResult summarizes an initialization. When AlreadyInitialized is set
// nothing was written.
type InitResult struct {
	Dir                string
	AlreadyInitialized bool
	Created            []string
	Snapshot           string
	State              *models.State
}

// ProjectInitializer creates the .supercraft directory for a project.
type ProjectInitializer interface {
	IsInitialized() bool
	Init(opts InitOptions) (*InitResult, error)
}

type projectInitializer struct {
	fs     *storage.FileSystem
	paths  projectpath.Paths
	store  StateStore
	events EventLogger
	now    func() time.Time
}

// NewProjectInitializer creates a ProjectInitializer. events may be nil;
// now defaults to time.Now.
func NewProjectInitializer(fs *storage.FileSystem, paths projectpath.Paths, store StateStore, events EventLogger, now func() time.Time) ProjectInitializer {
	if now == nil {
		now = time.Now
	}
	return &projectInitializer{fs: fs, paths: paths, store: store, events: events, now: now}
}

// IsInitialized reports whether the .supercraft directory exists.
func (pi *projectInitializer) IsInitialized() bool {
	return pi.fs.DirExists(pi.paths.Dir())
}

// Init creates the directory layout, default config, empty state, example
// spec and project copies of the built-in templates, then records the
// initial snapshot. An existing .supercraft directory is left untouched.
func (pi *projectInitializer) Init(opts InitOptions) (*InitResult, error) {
	result := &InitResult{Dir: pi.paths.Dir()}
	if pi.IsInitialized() {
		result.AlreadyInitialized = true
		return result, nil
	}

	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = filepath.Base(pi.paths.Root)
	}

	for _, dir := range []string{pi.paths.Dir(), pi.paths.HistoryDir(), pi.paths.SpecsDir(), pi.paths.TemplatesDir()} {
		if err := pi.fs.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("initializing project: %w", err)
		}
		result.Created = append(result.Created, dir)
	}

	cfg := &models.Config{
		Project:      models.ProjectConfig{Name: name},
		Verification: &models.VerificationConfig{Commands: []string{DefaultVerificationCommand}},
	}
	if err := pi.writeFile(pi.paths.ConfigFile(), func() ([]byte, error) {
		return storage.MarshalYAML(cfg)
	}, result); err != nil {
		return nil, err
	}

	st := NewState(name, pi.paths.Root, pi.now())
	if err := pi.store.Save(st); err != nil {
		return nil, fmt.Errorf("initializing project: %w", err)
	}
	result.Created = append(result.Created, pi.paths.StateFile())

	if err := pi.copyEmbedded(builtinSpecs, "specs", pi.paths.SpecsDir(), result); err != nil {
		return nil, err
	}
	if err := pi.copyEmbedded(builtinTemplates, "templates", pi.paths.TemplatesDir(), result); err != nil {
		return nil, err
	}

	snapshot, err := pi.store.Snapshot(st)
	if err != nil {
		return nil, fmt.Errorf("initializing project: %w", err)
	}
	result.Snapshot = snapshot
	result.State = st

	logEvent(pi.events, EventProjectInitialized, map[string]any{
		"name": name,
		"root": pi.paths.Root,
	})
	return result, nil
}

func (pi *projectInitializer) writeFile(target string, contentFn func() ([]byte, error), result *InitResult) error {
	content, err := contentFn()
	if err != nil {
		return fmt.Errorf("initializing project: generating content for %s: %w", target, err)
	}
	if err := pi.fs.WriteFile(target, content); err != nil {
		return fmt.Errorf("initializing project: %w", err)
	}
	result.Created = append(result.Created, target)
	return nil
}

// copyEmbedded writes every .md file of an embedded directory into dest.
func (pi *projectInitializer) copyEmbedded(src fs.FS, dir, dest string, result *InitResult) error {
	files, err := fs.Glob(src, dir+"/*.md")
	if err != nil {
		return fmt.Errorf("initializing project: listing %s: %w", dir, err)
	}
	for _, f := range files {
		target := filepath.Join(dest, path.Base(f))
		if err := pi.writeFile(target, func() ([]byte, error) {
			return fs.ReadFile(src, f)
		}, result); err != nil {
			return err
		}
	}
	return nil
}
