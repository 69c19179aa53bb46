package download

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/adamwoolhether/reqflow/errs"
	"github.com/adamwoolhether/reqflow/fsys"
)

// Mover resolves destination directories and moves files into them.
// *fsys.Manager satisfies it.
type Mover interface {
	Resolve(dir fsys.Directory) (string, error)
	MoveReplacing(src, dst string) error
}

type remover interface {
	Remove(path string) error
}

// Relocate moves the temp file to dir, naming it filename or, when
// filename is empty, keeping the temp file's base name. It returns the
// final path. Failures are reported as relocation errors and the temp
// file is removed if the mover can remove files.
func Relocate(m Mover, temp string, dir fsys.Directory, filename string) (string, error) {
	dst, err := relocate(m, temp, dir, filename)
	if err != nil {
		if r, ok := m.(remover); ok {
			_ = r.Remove(temp)
		}
		return "", errs.Relocation(err)
	}

	return dst, nil
}

func relocate(m Mover, temp string, dir fsys.Directory, filename string) (string, error) {
	if m == nil {
		return "", errors.New("no file mover configured")
	}

	base, err := m.Resolve(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}

	name := filename
	if name == "" {
		name = filepath.Base(temp)
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid filename %q", name)
	}

	dst := filepath.Join(base, name)
	if err := m.MoveReplacing(temp, dst); err != nil {
		return "", fmt.Errorf("moving %s to %s: %w", temp, dst, err)
	}

	return dst, nil
}
