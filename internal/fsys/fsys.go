// Package fsys provides the engine's filesystem abstraction, backed by
// go-billy. Commands run against the OS filesystem; tests run against an
// in-memory filesystem with identical behavior.
package fsys

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// FS wraps a billy filesystem with the small surface the engine needs.
type FS struct {
	fs billy.Filesystem
}

// NewOS returns an FS rooted at the given OS path.
func NewOS(root string) *FS {
	return &FS{fs: osfs.New(root)}
}

// NewInMemory returns an FS backed by an in-memory filesystem.
func NewInMemory() *FS {
	return &FS{fs: memfs.New()}
}

// Exists reports whether the path exists.
func (f *FS) Exists(path string) (bool, error) {
	_, err := f.fs.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("fsys: stat %q: %w", path, err)
	}
}

// ReadFile reads the entire named file.
func (f *FS) ReadFile(path string) ([]byte, error) {
	data, err := util.ReadFile(f.fs, path)
	if err != nil {
		return nil, fmt.Errorf("fsys: read %q: %w", path, err)
	}
	return data, nil
}

// WriteFile writes data to the named file, creating parent directories as
// needed.
func (f *FS) WriteFile(path string, data []byte, perm os.FileMode) error {
	if dir := filepath.Dir(path); dir != "." && dir != "/" {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("fsys: mkdirall %q: %w", dir, err)
		}
	}
	if err := util.WriteFile(f.fs, path, data, perm); err != nil {
		return fmt.Errorf("fsys: write %q: %w", path, err)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary file in the target's directory
// and renames it into place, so a failed write never leaves a partial file at
// the destination.
func (f *FS) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "/" {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("fsys: mkdirall %q: %w", dir, err)
		}
	}

	tmp, err := f.fs.TempFile(dir, filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("fsys: temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("fsys: write %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("fsys: close %q: %w", tmpName, err)
	}

	if err := f.fs.Rename(tmpName, path); err != nil {
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("fsys: rename %q to %q: %w", tmpName, path, err)
	}
	return nil
}

// Remove deletes the named file.
func (f *FS) Remove(path string) error {
	if err := f.fs.Remove(path); err != nil {
		return fmt.Errorf("fsys: remove %q: %w", path, err)
	}
	return nil
}

// Raw exposes the underlying billy filesystem.
func (f *FS) Raw() billy.Filesystem {
	return f.fs
}
