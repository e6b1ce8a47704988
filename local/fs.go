package local

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// FS is the thin local filesystem abstraction used by fetch and push.
type FS interface {
	Exists(path string) bool
	IsDir(path string) bool
	IsFile(path string) bool

	// Mkdir creates a directory; an existing directory is not an error.
	Mkdir(path string) error

	// Create opens a file for writing, truncating existing content.
	Create(path string) (io.WriteCloser, error)
	Open(path string) (io.ReadCloser, error)

	// Remove deletes a file; a missing file is not an error.
	Remove(path string) error

	// List returns the entries of a directory as joined paths, sorted by name.
	List(dir string) ([]string, error)

	// Glob expands a shell pattern; '**' matches across directories.
	Glob(pattern string) ([]string, error)
}

// OS implements FS on the host filesystem.
type OS struct{}

var _ FS = OS{}

func (OS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OS) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (OS) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (OS) Mkdir(path string) error {
	err := os.Mkdir(path, 0o755)
	if err != nil && errors.Is(err, fs.ErrExist) && (OS{}).IsDir(path) {
		return nil
	}
	return err
}

func (OS) Create(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func (OS) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (OS) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (OS) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func (OS) Glob(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
