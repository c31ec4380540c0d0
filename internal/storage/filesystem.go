// Package storage provides file-backed persistence for supercraft: a small
// filesystem accessor over afero and the project state store with its
// append-only snapshot history.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Base conditions shared by the storage and core layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidFormat = errors.New("invalid document format")
)

// FileSystem is the leaf accessor every other component uses for disk I/O.
type FileSystem struct {
	fs afero.Fs
}

// NewFileSystem wraps an afero filesystem.
func NewFileSystem(fsys afero.Fs) *FileSystem {
	return &FileSystem{fs: fsys}
}

// NewOSFileSystem returns a FileSystem backed by the real operating system.
func NewOSFileSystem() *FileSystem {
	return NewFileSystem(afero.NewOsFs())
}

// Fs exposes the underlying afero filesystem (for viper and io/fs adapters).
func (f *FileSystem) Fs() afero.Fs {
	return f.fs
}

// EnsureDir creates dir and any missing ancestors. It is a no-op when the
// directory already exists.
func (f *FileSystem) EnsureDir(dir string) error {
	if err := f.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// FileExists reports whether path is an existing regular file. Directories
// and missing paths both report false.
func (f *FileSystem) FileExists(path string) bool {
	info, err := f.fs.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// DirExists reports whether path is an existing directory.
func (f *FileSystem) DirExists(path string) bool {
	ok, err := afero.DirExists(f.fs, path)
	return err == nil && ok
}

// ReadFile returns the full content of path.
func (f *FileSystem) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// WriteFile creates missing parent directories, then replaces the content of
// path. The data is written to a temporary file in the same directory and
// renamed over the target so readers never observe a partial document.
func (f *FileSystem) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := f.EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := afero.TempFile(f.fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("writing %s: creating temp file: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("writing %s: closing temp file: %w", path, err)
	}
	if err := f.fs.Rename(tmpName, path); err != nil {
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("writing %s: replacing file: %w", path, err)
	}
	return nil
}

// ModTime returns the modification time of path.
func (f *FileSystem) ModTime(path string) (time.Time, error) {
	info, err := f.fs.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.ModTime(), nil
}

// Glob returns the regular files under dir matching a doublestar pattern,
// as slash-separated paths relative to dir, sorted lexically. A missing dir
// yields an empty result.
func (f *FileSystem) Glob(dir, pattern string) ([]string, error) {
	if !f.DirExists(dir) {
		return nil, nil
	}
	sub := afero.NewIOFS(afero.NewBasePathFs(f.fs, dir))
	matches, err := doublestar.Glob(sub, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// MarshalYAML encodes v as a YAML document with two-space indentation.
func MarshalYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
