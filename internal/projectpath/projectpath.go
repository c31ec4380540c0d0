// Package projectpath resolves the locations of the hidden metadata directory
// and the documents inside it. Every path is derived from an explicitly
// passed project root; nothing here consults the working directory.
package projectpath

import (
	"os"
	"path/filepath"
)

const (
	// DirName is the hidden metadata directory created under a project root.
	DirName = ".supercraft"

	ConfigFile = "config.yaml"
	StateFile  = "state.yaml"
	EventsFile = "events.jsonl"

	HistoryDir   = "history"
	SpecsDir     = "specs"
	TemplatesDir = "templates"
)

// Paths resolves metadata locations for one project root.
type Paths struct {
	Root string
}

// New returns Paths for root. Relative roots are made absolute when possible.
func New(root string) Paths {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return Paths{Root: root}
}

// Dir returns <root>/.supercraft.
func (p Paths) Dir() string { return filepath.Join(p.Root, DirName) }

func (p Paths) ConfigFile() string   { return filepath.Join(p.Dir(), ConfigFile) }
func (p Paths) StateFile() string    { return filepath.Join(p.Dir(), StateFile) }
func (p Paths) EventsFile() string   { return filepath.Join(p.Dir(), EventsFile) }
func (p Paths) HistoryDir() string   { return filepath.Join(p.Dir(), HistoryDir) }
func (p Paths) SpecsDir() string     { return filepath.Join(p.Dir(), SpecsDir) }
func (p Paths) TemplatesDir() string { return filepath.Join(p.Dir(), TemplatesDir) }

// GlobalConfigFile returns the config document inside a global directory.
func GlobalConfigFile(globalDir string) string {
	return filepath.Join(globalDir, ConfigFile)
}

// DefaultGlobalDir returns $SUPERCRAFT_HOME, or ~/.supercraft. If the home
// directory cannot be determined the metadata directory name is returned
// relative to the working directory.
func DefaultGlobalDir() string {
	if home := os.Getenv("SUPERCRAFT_HOME"); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(home, DirName)
}

// FindRoot walks up from start looking for a directory that contains the
// metadata directory. A metadata directory that is globalDir holds the
// user's global config, not a project, and is skipped. If none is found,
// start itself is returned.
func FindRoot(start, globalDir string) string {
	global, _ := os.Stat(globalDir)
	dir := start
	for {
		info, err := os.Stat(filepath.Join(dir, DirName))
		if err == nil && info.IsDir() && (global == nil || !os.SameFile(info, global)) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return start
}
