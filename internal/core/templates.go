package core

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/valter-silva-au/supercraft/internal/projectpath"
	"github.com/valter-silva-au/supercraft/internal/storage"
)

//go:embed templates/*.md
var builtinTemplates embed.FS

//go:embed specs/*.md
var builtinSpecs embed.FS

// Template sources.
const (
	SourceProject = "project"
	SourceBuiltin = "builtin"
)

// Defaults applied by TemplateCatalog.Copy.
const (
	DefaultTemplateOutputDir = "docs/plans"
	DefaultTemplateTitle     = "TBD"
)

// TemplateInfo describes one available template.
type TemplateInfo struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	File   string `json:"file"`
}

// CopyTemplateOptions controls TemplateCatalog.Copy. OutputDir is resolved
// against the project root when relative.
type CopyTemplateOptions struct {
	OutputDir string
	Filename  string
	Title     string
}

// TemplateCatalog lists, shows and instantiates document templates.
// Project templates shadow built-in templates of the same name.
type TemplateCatalog interface {
	List() ([]TemplateInfo, error)
	Show(name string) (TemplateInfo, string, error)
	Copy(name string, opts CopyTemplateOptions) (string, error)
}

type templateCatalog struct {
	fs    *storage.FileSystem
	paths projectpath.Paths
	now   func() time.Time
}

// NewTemplateCatalog creates a TemplateCatalog for the project described by
// paths. now defaults to time.Now.
func NewTemplateCatalog(fs *storage.FileSystem, paths projectpath.Paths, now func() time.Time) TemplateCatalog {
	if now == nil {
		now = time.Now
	}
	return &templateCatalog{fs: fs, paths: paths, now: now}
}

// BuiltinTemplate returns the embedded template with the given name.
func BuiltinTemplate(name string) (string, error) {
	data, err := builtinTemplates.ReadFile("templates/" + name + ".md")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return string(data), nil
}

// BuiltinTemplateNames returns the names of the embedded templates, sorted.
func BuiltinTemplateNames() []string {
	files, _ := fs.Glob(builtinTemplates, "templates/*.md")
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(path.Base(f), ".md"))
	}
	sort.Strings(names)
	return names
}

func (tc *templateCatalog) List() ([]TemplateInfo, error) {
	seen := make(map[string]bool)
	var out []TemplateInfo

	files, err := tc.fs.Glob(tc.paths.TemplatesDir(), "*.md")
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	for _, f := range files {
		name := strings.TrimSuffix(f, ".md")
		seen[name] = true
		out = append(out, TemplateInfo{Name: name, Source: SourceProject, File: f})
	}
	for _, name := range BuiltinTemplateNames() {
		if seen[name] {
			continue
		}
		out = append(out, TemplateInfo{Name: name, Source: SourceBuiltin, File: name + ".md"})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (tc *templateCatalog) Show(name string) (TemplateInfo, string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return TemplateInfo{}, "", fmt.Errorf("%w: template name %q", ErrInvalidInput, name)
	}

	projectFile := filepath.Join(tc.paths.TemplatesDir(), name+".md")
	if tc.fs.FileExists(projectFile) {
		data, err := tc.fs.ReadFile(projectFile)
		if err != nil {
			return TemplateInfo{}, "", fmt.Errorf("reading template %s: %w", name, err)
		}
		return TemplateInfo{Name: name, Source: SourceProject, File: name + ".md"}, string(data), nil
	}

	content, err := BuiltinTemplate(name)
	if err != nil {
		return TemplateInfo{}, "", err
	}
	return TemplateInfo{Name: name, Source: SourceBuiltin, File: name + ".md"}, content, nil
}

// RenderTemplate replaces the {date} and {title} placeholders.
func RenderTemplate(content, title, date string) string {
	return strings.NewReplacer("{date}", date, "{title}", title).Replace(content)
}

// Copy renders the named template into OutputDir and returns the written
// path. The default file name is <date>-<name>.md; an existing file is
// never overwritten.
func (tc *templateCatalog) Copy(name string, opts CopyTemplateOptions) (string, error) {
	_, content, err := tc.Show(name)
	if err != nil {
		return "", err
	}

	date := tc.now().UTC().Format(time.DateOnly)
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = DefaultTemplateTitle
	}

	outDir := opts.OutputDir
	if outDir == "" {
		outDir = DefaultTemplateOutputDir
	}
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(tc.paths.Root, outDir)
	}

	filename := opts.Filename
	if filename == "" {
		filename = date + "-" + name + ".md"
	}
	if filepath.Base(filename) != filename || filename == "." || filename == ".." {
		return "", fmt.Errorf("%w: file name %q must not contain a directory", ErrInvalidInput, filename)
	}

	target := filepath.Join(outDir, filename)
	if tc.fs.FileExists(target) || tc.fs.DirExists(target) {
		return "", fmt.Errorf("copying template %s: %w: %s", name, ErrAlreadyExists, target)
	}
	if err := tc.fs.WriteFile(target, []byte(RenderTemplate(content, title, date))); err != nil {
		return "", fmt.Errorf("copying template %s: %w", name, err)
	}
	return target, nil
}
