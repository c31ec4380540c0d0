package cli

import (
	"time"

	"github.com/valter-silva-au/supercraft/internal/core"
	"github.com/valter-silva-au/supercraft/internal/observability"
)

// Service instances, set during app initialization in app.go.
var (
	ProjectRoot string
	StatePath   string

	TaskMgr     core.TaskManager
	HistoryMgr  core.HistoryManager
	ConfigMgr   core.ConfigurationManager
	ProjectInit core.ProjectInitializer
	SpecCatalog core.SpecCatalog
	TemplateCat core.TemplateCatalog

	ActivityCalc observability.ActivityCalculator
	AlertEngine  observability.AlertEngine

	// Now is the clock used for time windows and alert evaluation.
	Now = time.Now
)
