package core

import (
	"errors"
	"reflect"
	"testing"

	"github.com/spf13/afero"
	"github.com/valter-silva-au/supercraft/internal/projectpath"
	"github.com/valter-silva-au/supercraft/internal/storage"
	"github.com/valter-silva-au/supercraft/pkg/models"
)

const testGlobalDir = "/home/dev/.supercraft"

func newTestConfigManager(t *testing.T, initialized bool) (ConfigurationManager, *storage.FileSystem, projectpath.Paths) {
	t.Helper()
	fs := storage.NewFileSystem(afero.NewMemMapFs())
	paths := projectpath.New(testRoot)
	if initialized {
		if err := fs.EnsureDir(paths.Dir()); err != nil {
			t.Fatal(err)
		}
	}
	return NewConfigurationManager(fs, paths, testGlobalDir), fs, paths
}

func writeConfig(t *testing.T, fs *storage.FileSystem, path, content string) {
	t.Helper()
	if err := fs.WriteFile(path, []byte(content)); err != nil {
		t.Fatal(err)
	}
}

func cfgWith(name string, commands ...string) *models.Config {
	c := &models.Config{Project: models.ProjectConfig{Name: name}}
	if commands != nil {
		c.Verification = &models.VerificationConfig{Commands: commands}
	}
	return c
}

func TestMergeConfigs(t *testing.T) {
	tests := []struct {
		name         string
		global       *models.Config
		project      *models.Config
		wantName     string
		wantCommands []string
	}{
		{"both absent", nil, nil, DefaultProjectName, nil},
		{"global only", cfgWith("g", "make test"), nil, "g", []string{"make test"}},
		{"project wins identity", cfgWith("g"), cfgWith("p"), "p", nil},
		{"project non-empty list wins", cfgWith("g", "a"), cfgWith("p", "b", "c"), "p", []string{"b", "c"}},
		{"empty project list falls back", cfgWith("g", "a"), cfgWith("p", []string{}...), "p", []string{"a"}},
		{"absent project list falls back", cfgWith("g", "a"), cfgWith("p"), "p", []string{"a"}},
		{"both lists empty", cfgWith("g", []string{}...), cfgWith("p", []string{}...), "p", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeConfigs(tt.global, tt.project)
			if got.Project.Name != tt.wantName {
				t.Fatalf("name = %q, want %q", got.Project.Name, tt.wantName)
			}
			if tt.wantCommands == nil {
				if got.Verification != nil {
					t.Fatalf("expected no verification section, got %+v", got.Verification)
				}
				return
			}
			if got.Verification == nil || !reflect.DeepEqual(got.Verification.Commands, tt.wantCommands) {
				t.Fatalf("commands = %+v, want %v", got.Verification, tt.wantCommands)
			}
		})
	}
}

func TestLoadConfig_MissingAndMalformed(t *testing.T) {
	cm, fs, paths := newTestConfigManager(t, true)

	if cfg := cm.LoadProjectConfig(); cfg != nil {
		t.Fatalf("missing config: got %+v", cfg)
	}

	writeConfig(t, fs, paths.ConfigFile(), "project: [oops\n")
	if cfg := cm.LoadProjectConfig(); cfg != nil {
		t.Fatalf("unparsable config: got %+v", cfg)
	}

	writeConfig(t, fs, paths.ConfigFile(), "verification:\n  commands: [make]\n")
	if cfg := cm.LoadProjectConfig(); cfg != nil {
		t.Fatalf("config without project name: got %+v", cfg)
	}

	writeConfig(t, fs, paths.ConfigFile(), "project:\n  name: demo\nverification:\n  commands:\n    - go test ./...\n")
	cfg := cm.LoadProjectConfig()
	if cfg == nil || cfg.Project.Name != "demo" || !reflect.DeepEqual(cfg.VerificationCommands(), []string{"go test ./..."}) {
		t.Fatalf("valid config: got %+v", cfg)
	}
}

func TestMergedConfig_FromDisk(t *testing.T) {
	cm, fs, paths := newTestConfigManager(t, true)
	writeConfig(t, fs, projectpath.GlobalConfigFile(testGlobalDir), "project:\n  name: global\nverification:\n  commands: [make check]\n")
	writeConfig(t, fs, paths.ConfigFile(), "project:\n  name: local\nverification:\n  commands: []\n")

	merged := cm.MergedConfig()
	if merged.Project.Name != "local" {
		t.Fatalf("name = %q", merged.Project.Name)
	}
	if !reflect.DeepEqual(merged.VerificationCommands(), []string{"make check"}) {
		t.Fatalf("commands = %v", merged.VerificationCommands())
	}
}

func TestSetConfig_ProjectName(t *testing.T) {
	cm, _, _ := newTestConfigManager(t, true)

	cfg, err := cm.Set(ScopeProject, KeyProjectName, "renamed")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if cfg.Project.Name != "renamed" {
		t.Fatalf("name = %q", cfg.Project.Name)
	}
	if got := cm.LoadProjectConfig(); got == nil || got.Project.Name != "renamed" {
		t.Fatalf("persisted = %+v", got)
	}
}

func TestSetConfig_AppendsVerificationCommands(t *testing.T) {
	cm, _, _ := newTestConfigManager(t, true)

	if _, err := cm.Set(ScopeProject, KeyVerificationCommands, "go vet ./..."); err != nil {
		t.Fatal(err)
	}
	cfg, err := cm.Set(ScopeProject, KeyVerificationCommands, "go test ./...")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"go vet ./...", "go test ./..."}
	if !reflect.DeepEqual(cfg.VerificationCommands(), want) {
		t.Fatalf("commands = %v, want %v", cfg.VerificationCommands(), want)
	}
	// A fresh document starts from the placeholder identity.
	if cfg.Project.Name != DefaultProjectName {
		t.Fatalf("name = %q", cfg.Project.Name)
	}
}

func TestSetConfig_GlobalCreatesDirectory(t *testing.T) {
	cm, fs, _ := newTestConfigManager(t, false)

	if _, err := cm.Set(ScopeGlobal, KeyProjectName, "everywhere"); err != nil {
		t.Fatalf("Set global: %v", err)
	}
	if !fs.FileExists(projectpath.GlobalConfigFile(testGlobalDir)) {
		t.Fatal("global config not written")
	}
	if got := cm.LoadGlobalConfig(); got == nil || got.Project.Name != "everywhere" {
		t.Fatalf("global = %+v", got)
	}
}

func TestSetConfig_Errors(t *testing.T) {
	cm, _, _ := newTestConfigManager(t, true)

	_, err := cm.Set(ScopeProject, "project.owner", "me")
	var ive *InvalidValueError
	if !errors.As(err, &ive) || !reflect.DeepEqual(ive.Valid, SupportedConfigKeys()) {
		t.Fatalf("unsupported key: got %v", err)
	}
	if _, err := cm.Set(ScopeProject, KeyProjectName, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty value: expected ErrInvalidInput, got %v", err)
	}

	uninit, _, _ := newTestConfigManager(t, false)
	if _, err := uninit.Set(ScopeProject, KeyProjectName, "x"); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestGetConfig(t *testing.T) {
	cm, fs, paths := newTestConfigManager(t, true)
	writeConfig(t, fs, paths.ConfigFile(), "project:\n  name: demo\nverification:\n  commands: [make, make lint]\n")

	v, err := cm.Get(ScopeProject, "project.name")
	if err != nil || v != "demo" {
		t.Fatalf("project.name = (%v, %v)", v, err)
	}

	v, err = cm.Get(ScopeProject, "verification.commands")
	if err != nil {
		t.Fatal(err)
	}
	list, ok := v.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("verification.commands = %#v", v)
	}

	if _, err := cm.Get(ScopeProject, "nope.key"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetConfig_GlobalFallsBackToDefault(t *testing.T) {
	cm, _, _ := newTestConfigManager(t, false)

	v, err := cm.Get(ScopeGlobal, KeyProjectName)
	if err != nil || v != "my-project" {
		t.Fatalf("got (%v, %v), want my-project", v, err)
	}
	if _, err := cm.Get(ScopeProject, KeyProjectName); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}
