package core

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func newSpecEnv(t *testing.T) (*testEnv, SpecCatalog) {
	t.Helper()
	env := newInitializedEnv(t)
	for name, body := range map[string]string{
		"coding-style.md":   "# Style\n",
		"api/errors.md":     "# Errors\n",
		"api/pagination.md": "# Pagination\n",
		"notes.txt":         "ignored",
	} {
		if err := env.fs.WriteFile(filepath.Join(env.paths.SpecsDir(), name), []byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	return env, NewSpecCatalog(env.fs, env.paths)
}

func specNames(specs []SpecInfo) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Name
	}
	return out
}

func TestSpecCatalog_List(t *testing.T) {
	_, catalog := newSpecEnv(t)

	specs, err := catalog.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"api/errors", "api/pagination", "coding-style"}
	if got := specNames(specs); !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}

	filtered, err := catalog.List("api/*")
	if err != nil {
		t.Fatal(err)
	}
	if got := specNames(filtered); !reflect.DeepEqual(got, []string{"api/errors", "api/pagination"}) {
		t.Fatalf("filtered = %v", got)
	}

	if _, err := catalog.List("[unclosed"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for a bad pattern, got %v", err)
	}
}

func TestSpecCatalog_Get(t *testing.T) {
	_, catalog := newSpecEnv(t)

	content, err := catalog.Get("api/errors")
	if err != nil || content != "# Errors\n" {
		t.Fatalf("Get = (%q, %v)", content, err)
	}
	if _, err := catalog.Get("coding-style.md"); err != nil {
		t.Fatalf("Get with extension: %v", err)
	}
	if _, err := catalog.Get("missing"); !errors.Is(err, ErrSpecNotFound) {
		t.Fatalf("expected ErrSpecNotFound, got %v", err)
	}
	for _, bad := range []string{"../state", "/etc/passwd", ""} {
		if _, err := catalog.Get(bad); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Get(%q): expected ErrInvalidInput, got %v", bad, err)
		}
	}
}

func TestSpecCatalog_NotInitialized(t *testing.T) {
	env := newEnv()
	catalog := NewSpecCatalog(env.fs, env.paths)
	if _, err := catalog.List(""); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestWrapSpec(t *testing.T) {
	got := WrapSpec("coding-style", "# Style\n\n")
	if !strings.HasPrefix(got, `<SPEC name="coding-style">`) || !strings.HasSuffix(got, "</SPEC>\n") {
		t.Fatalf("unexpected framing: %q", got)
	}
	if !strings.Contains(got, "\n# Style\n") {
		t.Fatalf("content missing: %q", got)
	}
}
