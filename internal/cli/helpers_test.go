package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/supercraft/internal/core"
	"github.com/valter-silva-au/supercraft/internal/observability"
	"github.com/valter-silva-au/supercraft/internal/projectpath"
	"github.com/valter-silva-au/supercraft/internal/storage"
	"github.com/valter-silva-au/supercraft/pkg/models"
)

const (
	testRoot      = "/work/demo"
	testGlobalDir = "/home/dev/.supercraft"
)

var testNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

type cliEnv struct {
	fs       *storage.FileSystem
	paths    projectpath.Paths
	eventLog observability.EventLog
}

// setupCLI wires the package-level services against an in-memory project
// and restores the previous values when the test ends. When initialize is
// set the project is initialized first.
func setupCLI(t *testing.T, initialize bool) *cliEnv {
	t.Helper()

	origRoot, origStatePath := ProjectRoot, StatePath
	origTaskMgr, origHistory, origConfig := TaskMgr, HistoryMgr, ConfigMgr
	origInit, origSpecs, origTemplates := ProjectInit, SpecCatalog, TemplateCat
	origActivity, origAlerts, origNow := ActivityCalc, AlertEngine, Now
	t.Cleanup(func() {
		ProjectRoot, StatePath = origRoot, origStatePath
		TaskMgr, HistoryMgr, ConfigMgr = origTaskMgr, origHistory, origConfig
		ProjectInit, SpecCatalog, TemplateCat = origInit, origSpecs, origTemplates
		ActivityCalc, AlertEngine, Now = origActivity, origAlerts, origNow
		resetFlags()
	})
	resetFlags()

	fs := storage.NewFileSystem(afero.NewMemMapFs())
	paths := projectpath.New(testRoot)
	clock := func() time.Time { return testNow }

	store := storage.NewStateStore(fs, paths)
	store.SetClock(clock)
	eventLog := observability.NewJSONLEventLog(fs.Fs(), paths.EventsFile())
	t.Cleanup(func() { _ = eventLog.Close() })
	events := &observability.Recorder{Log: eventLog, Now: clock}

	ProjectRoot = paths.Root
	StatePath = paths.StateFile()
	TaskMgr = core.NewTaskManager(store, events, clock)
	HistoryMgr = core.NewHistoryManager(store, events)
	ConfigMgr = core.NewConfigurationManager(fs, paths, testGlobalDir)
	ProjectInit = core.NewProjectInitializer(fs, paths, store, events, clock)
	SpecCatalog = core.NewSpecCatalog(fs, paths)
	TemplateCat = core.NewTemplateCatalog(fs, paths, clock)
	ActivityCalc = observability.NewActivityCalculator(eventLog)
	AlertEngine = observability.NewAlertEngine(eventLog, observability.DefaultAlertThresholds())
	Now = clock

	if initialize {
		if _, err := ProjectInit.Init(core.InitOptions{Name: "demo"}); err != nil {
			t.Fatalf("initializing project: %v", err)
		}
	}
	return &cliEnv{fs: fs, paths: paths, eventLog: eventLog}
}

// resetFlags restores every flag variable to its default.
func resetFlags() {
	initName = ""
	statusJSON = false
	taskJSON = false
	taskListStatus, taskListPriority = "", ""
	taskCreateTitle, taskCreateDescription, taskCreatePriority = "", "", string(models.PriorityMedium)
	taskRollbackTo = ""
	stateHistoryLimit, stateHistoryJSON = core.DefaultHistoryLimit, false
	configGlobal = false
	specListMatch, specListJSON = "", false
	templateListJSON = false
	templateCopyOutput, templateCopyFilename, templateCopyTitle = core.DefaultTemplateOutputDir, "", ""
	activitySince, activityRecent, activityJSON = "7d", 5, false
	logLevelFlag = ""
	completionInstall = false
}

// run invokes cmd.RunE with output captured.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
	})
	err := cmd.RunE(cmd, args)
	return buf.String(), err
}

// createTask creates a task through the command and fails the test on error.
func createTask(t *testing.T, title, priority string) {
	t.Helper()
	taskCreateTitle, taskCreatePriority = title, priority
	defer func() { taskCreateTitle, taskCreatePriority = "", string(models.PriorityMedium) }()
	if _, err := run(t, taskCreateCmd); err != nil {
		t.Fatalf("creating %q: %v", title, err)
	}
}
