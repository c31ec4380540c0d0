package core

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/valter-silva-au/supercraft/internal/projectpath"
	"github.com/valter-silva-au/supercraft/internal/storage"
)

// SpecInfo describes one knowledge file under .supercraft/specs.
type SpecInfo struct {
	Name       string    `json:"name"`
	File       string    `json:"file"`
	Path       string    `json:"path"`
	ModifiedAt time.Time `json:"modified_at"`
}

// SpecCatalog lists and reads the project's spec files.
type SpecCatalog interface {
	List(match string) ([]SpecInfo, error)
	Get(name string) (string, error)
}

type specCatalog struct {
	fs    *storage.FileSystem
	paths projectpath.Paths
}

// NewSpecCatalog creates a SpecCatalog for the project described by paths.
func NewSpecCatalog(fs *storage.FileSystem, paths projectpath.Paths) SpecCatalog {
	return &specCatalog{fs: fs, paths: paths}
}

// List returns every .md file under specs/, nested directories included,
// sorted by name. A non-empty match is a doublestar pattern applied to the
// spec name (the relative path without .md).
func (sc *specCatalog) List(match string) ([]SpecInfo, error) {
	if !sc.fs.DirExists(sc.paths.Dir()) {
		return nil, ErrNotInitialized
	}
	if match != "" && !doublestar.ValidatePattern(match) {
		return nil, fmt.Errorf("%w: bad pattern %q", ErrInvalidInput, match)
	}

	files, err := sc.fs.Glob(sc.paths.SpecsDir(), "**/*.md")
	if err != nil {
		return nil, fmt.Errorf("listing specs: %w", err)
	}

	specs := make([]SpecInfo, 0, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(file, ".md")
		if match != "" {
			ok, _ := doublestar.Match(match, name)
			if !ok {
				continue
			}
		}
		full := filepath.Join(sc.paths.SpecsDir(), filepath.FromSlash(file))
		info := SpecInfo{Name: name, File: file, Path: full}
		if mt, err := sc.fs.ModTime(full); err == nil {
			info.ModifiedAt = mt
		}
		specs = append(specs, info)
	}
	return specs, nil
}

// Get returns the content of the named spec.
func (sc *specCatalog) Get(name string) (string, error) {
	if !sc.fs.DirExists(sc.paths.Dir()) {
		return "", ErrNotInitialized
	}
	rel, err := cleanSpecName(name)
	if err != nil {
		return "", err
	}
	full := filepath.Join(sc.paths.SpecsDir(), filepath.FromSlash(rel)+".md")
	if !sc.fs.FileExists(full) {
		return "", fmt.Errorf("%w: %s", ErrSpecNotFound, name)
	}
	data, err := sc.fs.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("reading spec %s: %w", name, err)
	}
	return string(data), nil
}

// cleanSpecName normalizes a spec name and rejects names that would escape
// the specs directory.
func cleanSpecName(name string) (string, error) {
	rel := strings.TrimSuffix(filepath.ToSlash(strings.TrimSpace(name)), ".md")
	cleaned := path.Clean(rel)
	if rel == "" || cleaned == "." || path.IsAbs(cleaned) ||
		cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: spec name %q", ErrInvalidInput, name)
	}
	return cleaned, nil
}

// WrapSpec frames spec content for injection into an assistant's context.
func WrapSpec(name, content string) string {
	return fmt.Sprintf("<SPEC name=%q>\n\n%s\n\n</SPEC>\n", name, strings.TrimRight(content, "\n"))
}
