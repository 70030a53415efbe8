// Package fs provides file-based staging and storage.
package fs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/mdextract"
)

// Workspace is a private temporary directory owned by a single request.
// Everything staged inside it is removed by Close, which callers defer
// right after creation so that every exit path releases it.
type Workspace struct {
	dir string
}

// NewWorkspace creates a new temporary directory under parent. An empty
// parent uses the system temp directory. The pattern follows os.MkdirTemp.
func NewWorkspace(parent, pattern string) (*Workspace, error) {
	dir, err := os.MkdirTemp(parent, pattern)
	if err != nil {
		return nil, err
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the absolute path of name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// WriteFile stages data under name and returns its path. Parent
// directories are created as needed.
func (w *Workspace) WriteFile(name string, data []byte) (string, error) {
	if !filepath.IsLocal(name) {
		return "", mdextract.Errorf(mdextract.EINVALID, "invalid staging name %q", name)
	}
	p := w.Path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return "", err
	}
	return p, nil
}

// CreateTemp creates a uniquely named file inside the workspace. The
// pattern follows os.CreateTemp, so a suffix such as "*.md" keeps the
// extension.
func (w *Workspace) CreateTemp(pattern string) (*os.File, error) {
	if strings.ContainsRune(pattern, os.PathSeparator) {
		return nil, mdextract.Errorf(mdextract.EINVALID, "invalid staging pattern %q", pattern)
	}
	return os.CreateTemp(w.dir, pattern)
}

// Close removes the workspace and everything in it. It is safe to call
// more than once.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.dir)
}
