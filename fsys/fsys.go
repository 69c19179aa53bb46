// Package fsys resolves well-known directories and moves files between
// them on an afero.Fs, so callers can swap the OS filesystem for an
// in-memory one.
package fsys

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Base names a well-known root directory.
type Base int

const (
	Caches Base = iota
	Documents
	Temporary
	Support
)

// String returns the base's display name.
func (b Base) String() string {
	switch b {
	case Caches:
		return "Caches"
	case Documents:
		return "Documents"
	case Temporary:
		return "Temporary"
	case Support:
		return "Support"
	default:
		return fmt.Sprintf("Base(%d)", int(b))
	}
}

// Directory is a path relative to a Base, e.g. {Caches, "sess"}.
type Directory struct {
	Base Base
	Path string
}

// In returns a Directory under base.
func In(base Base, path string) Directory {
	return Directory{Base: base, Path: path}
}

// String renders d as "<Base>/<Path>/".
func (d Directory) String() string {
	p := strings.Trim(filepath.ToSlash(d.Path), "/")
	if p == "" {
		return d.Base.String() + "/"
	}
	return d.Base.String() + "/" + p + "/"
}

var (
	ErrUnknownBase = errors.New("unknown base directory")
	ErrEscapesBase = errors.New("path escapes base directory")
)

// Manager resolves Directories against configured roots.
type Manager struct {
	fs    afero.Fs
	roots map[Base]string
}

// Option configures a Manager.
type Option func(*Manager) error

// WithRoot overrides the root path used for base.
func WithRoot(base Base, path string) Option {
	return func(m *Manager) error {
		if path == "" {
			return fmt.Errorf("root for %s must not be empty", base)
		}
		m.roots[base] = path
		return nil
	}
}

// New returns a Manager on fs. Roots default to the user's cache,
// documents, temp and config directories.
func New(fs afero.Fs, opts ...Option) (*Manager, error) {
	if fs == nil {
		return nil, errors.New("filesystem must not be nil")
	}

	m := &Manager{
		fs:    fs,
		roots: defaultRoots(),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("applying fsys option: %w", err)
		}
	}

	return m, nil
}

// NewOS returns a Manager on the OS filesystem with default roots.
func NewOS() *Manager {
	m, _ := New(afero.NewOsFs())
	return m
}

// Fs returns the underlying filesystem.
func (m *Manager) Fs() afero.Fs { return m.fs }

// Resolve returns the absolute path for d, creating it if missing.
func (m *Manager) Resolve(d Directory) (string, error) {
	root, ok := m.roots[d.Base]
	if !ok || root == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownBase, d.Base)
	}

	dir := filepath.Join(root, filepath.FromSlash(d.Path))
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrEscapesBase, d.Path)
	}

	if err := m.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	return dir, nil
}

// MoveReplacing moves src to dst, replacing any existing file at dst.
// When a rename is not possible, e.g. across devices, the file is copied
// and src removed.
func (m *Manager) MoveReplacing(src, dst string) error {
	exists, err := afero.Exists(m.fs, dst)
	if err != nil {
		return fmt.Errorf("checking destination: %w", err)
	}
	if exists {
		if err := m.fs.Remove(dst); err != nil {
			return fmt.Errorf("removing existing destination: %w", err)
		}
	}

	if err := m.fs.Rename(src, dst); err == nil {
		return nil
	}

	if err := m.copyFile(src, dst); err != nil {
		return fmt.Errorf("copying file: %w", err)
	}

	if err := m.fs.Remove(src); err != nil {
		return fmt.Errorf("removing source: %w", err)
	}

	return nil
}

// Remove deletes path, ignoring a missing file.
func (m *Manager) Remove(path string) error {
	if err := m.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (m *Manager) copyFile(src, dst string) (err error) {
	in, err := m.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := m.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}

	return out.Sync()
}

func defaultRoots() map[Base]string {
	roots := map[Base]string{
		Temporary: os.TempDir(),
	}

	if dir, err := os.UserCacheDir(); err == nil {
		roots[Caches] = dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		roots[Support] = dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		roots[Documents] = filepath.Join(home, "Documents")
	}

	return roots
}
