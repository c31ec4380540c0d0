// Package core contains the supercraft business logic: the task lifecycle
// engine, snapshot history, configuration resolution, project
// initialization, and the spec and template catalogs.
package core

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/supercraft/internal/logging"
	"github.com/valter-silva-au/supercraft/internal/projectpath"
	"github.com/valter-silva-au/supercraft/internal/storage"
	"github.com/valter-silva-au/supercraft/pkg/models"
	"gopkg.in/yaml.v3"
)

// Scope selects which configuration document an operation targets.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeProject Scope = "project"
)

// Config keys accepted by Set.
const (
	KeyProjectName          = "project.name"
	KeyVerificationCommands = "verification.commands"
)

// SupportedConfigKeys lists the keys Set understands.
func SupportedConfigKeys() []string {
	return []string{KeyProjectName, KeyVerificationCommands}
}

var configDefaults = map[string]string{
	KeyProjectName: "my-project",
}

// DefaultConfigValue returns the fallback value for key, if one exists.
func DefaultConfigValue(key string) (string, bool) {
	v, ok := configDefaults[key]
	return v, ok
}

// ConfigurationManager loads, merges and updates the global and project
// configuration documents.
type ConfigurationManager interface {
	LoadGlobalConfig() *models.Config
	LoadProjectConfig() *models.Config
	MergedConfig() *models.Config
	SaveConfig(scope Scope, cfg *models.Config) error
	Get(scope Scope, key string) (any, error)
	Set(scope Scope, key, value string) (*models.Config, error)
}

type viperConfigManager struct {
	fs         *storage.FileSystem
	paths      projectpath.Paths
	globalPath string
}

// NewConfigurationManager creates a ConfigurationManager reading the
// project document under paths and the global document in globalDir.
func NewConfigurationManager(fs *storage.FileSystem, paths projectpath.Paths, globalDir string) ConfigurationManager {
	return &viperConfigManager{
		fs:         fs,
		paths:      paths,
		globalPath: projectpath.GlobalConfigFile(globalDir),
	}
}

func (cm *viperConfigManager) pathFor(scope Scope) string {
	if scope == ScopeGlobal {
		return cm.globalPath
	}
	return cm.paths.ConfigFile()
}

// readConfig loads one document with its own viper instance. Missing,
// unreadable or malformed documents, and documents without a project name,
// are all reported as nil.
func (cm *viperConfigManager) readConfig(path string) *models.Config {
	if !cm.fs.FileExists(path) {
		return nil
	}

	v := viper.New()
	v.SetFs(cm.fs.Fs())
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("ignoring unreadable config")
		return nil
	}

	var cfg models.Config
	if err := v.Unmarshal(&cfg); err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("ignoring malformed config")
		return nil
	}
	if strings.TrimSpace(cfg.Project.Name) == "" {
		logging.Warn().Str("path", path).Msg("ignoring config without project.name")
		return nil
	}
	return &cfg
}

func (cm *viperConfigManager) LoadGlobalConfig() *models.Config {
	return cm.readConfig(cm.globalPath)
}

func (cm *viperConfigManager) LoadProjectConfig() *models.Config {
	return cm.readConfig(cm.paths.ConfigFile())
}

func (cm *viperConfigManager) MergedConfig() *models.Config {
	return MergeConfigs(cm.LoadGlobalConfig(), cm.LoadProjectConfig())
}

// MergeConfigs combines the two scopes. The project identity wins over the
// global one, falling back to DefaultProjectName. The project verification
// list wins only when non-empty; with no commands in either scope the
// merged config has no verification section.
func MergeConfigs(global, project *models.Config) *models.Config {
	merged := &models.Config{Project: models.ProjectConfig{Name: DefaultProjectName}}
	switch {
	case project != nil && project.Project.Name != "":
		merged.Project = project.Project
	case global != nil && global.Project.Name != "":
		merged.Project = global.Project
	}

	commands := project.VerificationCommands()
	if len(commands) == 0 {
		commands = global.VerificationCommands()
	}
	if len(commands) > 0 {
		merged.Verification = &models.VerificationConfig{
			Commands: append([]string(nil), commands...),
		}
	}
	return merged
}

// SaveConfig writes cfg to the scope's document, creating parent
// directories as needed.
func (cm *viperConfigManager) SaveConfig(scope Scope, cfg *models.Config) error {
	data, err := storage.MarshalYAML(cfg)
	if err != nil {
		return fmt.Errorf("saving %s config: marshaling YAML: %w", scope, err)
	}
	if err := cm.fs.WriteFile(cm.pathFor(scope), data); err != nil {
		return fmt.Errorf("saving %s config: %w", scope, err)
	}
	return nil
}

// Get resolves a dotted key against the global document (global scope) or
// the merged configuration (project scope), then against the defaults.
func (cm *viperConfigManager) Get(scope Scope, key string) (any, error) {
	var cfg *models.Config
	if scope == ScopeGlobal {
		cfg = cm.LoadGlobalConfig()
	} else {
		if !cm.fs.DirExists(cm.paths.Dir()) {
			return nil, ErrNotInitialized
		}
		cfg = cm.MergedConfig()
	}

	if cfg != nil {
		v, err := configViper(cfg)
		if err != nil {
			return nil, fmt.Errorf("reading config key %s: %w", key, err)
		}
		if v.IsSet(key) {
			return v.Get(key), nil
		}
	}
	if def, ok := DefaultConfigValue(key); ok {
		return def, nil
	}
	return nil, fmt.Errorf("config key %q: %w", key, ErrNotFound)
}

// configViper loads cfg into a fresh viper instance for dotted lookups.
func configViper(cfg *models.Config) (*viper.Viper, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	v := viper.New()
	if err := v.MergeConfigMap(m); err != nil {
		return nil, err
	}
	return v, nil
}

// Set updates one key in the scope's own document (never the merged view)
// and saves it. project.name is replaced; verification.commands appends.
func (cm *viperConfigManager) Set(scope Scope, key, value string) (*models.Config, error) {
	if scope == ScopeProject && !cm.fs.DirExists(cm.paths.Dir()) {
		return nil, ErrNotInitialized
	}

	var cfg *models.Config
	if scope == ScopeGlobal {
		cfg = cm.LoadGlobalConfig()
	} else {
		cfg = cm.LoadProjectConfig()
	}
	if cfg == nil {
		cfg = &models.Config{Project: models.ProjectConfig{Name: DefaultProjectName}}
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("setting %s: %w: value must not be empty", key, ErrInvalidInput)
	}

	switch key {
	case KeyProjectName:
		cfg.Project.Name = value
	case KeyVerificationCommands:
		if cfg.Verification == nil {
			cfg.Verification = &models.VerificationConfig{}
		}
		cfg.Verification.Commands = append(cfg.Verification.Commands, value)
	default:
		return nil, &InvalidValueError{Field: "config key", Value: key, Valid: SupportedConfigKeys()}
	}

	if err := cm.SaveConfig(scope, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseScope maps a --global flag to a Scope.
func ParseScope(global bool) Scope {
	if global {
		return ScopeGlobal
	}
	return ScopeProject
}
