// Package internal provides the App struct that wires all components of
// supercraft together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/valter-silva-au/supercraft/internal/cli"
	"github.com/valter-silva-au/supercraft/internal/core"
	"github.com/valter-silva-au/supercraft/internal/observability"
	"github.com/valter-silva-au/supercraft/internal/projectpath"
	"github.com/valter-silva-au/supercraft/internal/storage"
)

// EnvRoot names the environment variable that overrides root discovery.
const EnvRoot = "SUPERCRAFT_ROOT"

// App holds all service dependencies for one project root.
type App struct {
	Root      string
	GlobalDir string
	Paths     projectpath.Paths

	// Storage layer
	FS    *storage.FileSystem
	Store *storage.StateStore

	// Core services
	ConfigMgr   core.ConfigurationManager
	TaskMgr     core.TaskManager
	HistoryMgr  core.HistoryManager
	ProjectInit core.ProjectInitializer
	Specs       core.SpecCatalog
	Templates   core.TemplateCatalog

	// Observability
	EventLog     observability.EventLog
	ActivityCalc observability.ActivityCalculator
	AlertEngine  observability.AlertEngine
}

// NewApp wires every component against the OS filesystem for the project
// at root, with global configuration under globalDir.
func NewApp(root, globalDir string) (*App, error) {
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}
	return newApp(storage.NewOSFileSystem(), root, globalDir, time.Now), nil
}

func newApp(fs *storage.FileSystem, root, globalDir string, now func() time.Time) *App {
	paths := projectpath.New(root)
	app := &App{
		Root:      paths.Root,
		GlobalDir: globalDir,
		Paths:     paths,
		FS:        fs,
	}

	// --- Storage layer ---
	app.Store = storage.NewStateStore(fs, paths)
	app.Store.SetClock(now)

	// --- Observability ---
	// The log file is opened on the first write, so an uninitialized
	// project never gets a stray .supercraft directory from here.
	app.EventLog = observability.NewJSONLEventLog(fs.Fs(), paths.EventsFile())
	app.ActivityCalc = observability.NewActivityCalculator(app.EventLog)
	app.AlertEngine = observability.NewAlertEngine(app.EventLog, observability.DefaultAlertThresholds())
	events := &observability.Recorder{Log: app.EventLog, Now: now}

	// --- Core services ---
	app.ConfigMgr = core.NewConfigurationManager(fs, paths, globalDir)
	app.TaskMgr = core.NewTaskManager(app.Store, events, now)
	app.HistoryMgr = core.NewHistoryManager(app.Store, events)
	app.ProjectInit = core.NewProjectInitializer(fs, paths, app.Store, events, now)
	app.Specs = core.NewSpecCatalog(fs, paths)
	app.Templates = core.NewTemplateCatalog(fs, paths, now)

	// --- Wire CLI package-level variables ---
	cli.ProjectRoot = paths.Root
	cli.StatePath = paths.StateFile()
	cli.TaskMgr = app.TaskMgr
	cli.HistoryMgr = app.HistoryMgr
	cli.ConfigMgr = app.ConfigMgr
	cli.ProjectInit = app.ProjectInit
	cli.SpecCatalog = app.Specs
	cli.TemplateCat = app.Templates
	cli.ActivityCalc = app.ActivityCalc
	cli.AlertEngine = app.AlertEngine
	cli.Now = now

	return app
}

// Close releases resources held by the App, such as the event log file handle.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveRoot picks the project root: a --root flag in args, then
// $SUPERCRAFT_ROOT, then the nearest ancestor of the working directory that
// contains a project .supercraft, then the working directory itself. The
// global config directory never counts as a project.
func ResolveRoot(args []string) string {
	if root := rootFromArgs(args); root != "" {
		return root
	}
	if root := os.Getenv(EnvRoot); root != "" {
		return root
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return projectpath.FindRoot(cwd, projectpath.DefaultGlobalDir())
}

// rootFromArgs extracts the value of --root ahead of cobra, since services
// are wired before the command tree runs. Scanning stops at "--".
func rootFromArgs(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return ""
		case arg == "--root":
			if i+1 < len(args) {
				return args[i+1]
			}
			return ""
		case strings.HasPrefix(arg, "--root="):
			return strings.TrimPrefix(arg, "--root=")
		}
	}
	return ""
}
