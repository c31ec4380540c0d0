package core

import (
	"reflect"
	"testing"

	"github.com/valter-silva-au/supercraft/pkg/models"
	"pgregory.net/rapid"
)

func genConfig(t *rapid.T, label string) *models.Config {
	if rapid.Bool().Draw(t, label+"Nil") {
		return nil
	}
	cfg := &models.Config{
		Project: models.ProjectConfig{Name: rapid.StringMatching(`[a-z]{0,8}`).Draw(t, label+"Name")},
	}
	switch rapid.IntRange(0, 2).Draw(t, label+"Verification") {
	case 1:
		cfg.Verification = &models.VerificationConfig{Commands: []string{}}
	case 2:
		cfg.Verification = &models.VerificationConfig{
			Commands: rapid.SliceOfN(rapid.StringMatching(`[a-z ]{1,10}`), 1, 4).Draw(t, label+"Commands"),
		}
	}
	return cfg
}

// Property 5: a non-empty project command list always wins; otherwise the
// global list is used; the merged config never carries an empty list.
func TestProperty5_MergePrecedence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		global := genConfig(t, "global")
		project := genConfig(t, "project")

		merged := MergeConfigs(global, project)

		want := project.VerificationCommands()
		if len(want) == 0 {
			want = global.VerificationCommands()
		}
		if len(want) == 0 {
			if merged.Verification != nil {
				t.Fatalf("expected no verification section, got %+v", merged.Verification)
			}
		} else if !reflect.DeepEqual(merged.VerificationCommands(), want) {
			t.Fatalf("commands = %v, want %v", merged.VerificationCommands(), want)
		}

		wantName := DefaultProjectName
		if global != nil && global.Project.Name != "" {
			wantName = global.Project.Name
		}
		if project != nil && project.Project.Name != "" {
			wantName = project.Project.Name
		}
		if merged.Project.Name != wantName {
			t.Fatalf("name = %q, want %q", merged.Project.Name, wantName)
		}
	})
}
