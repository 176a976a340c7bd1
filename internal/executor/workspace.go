package executor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/xid"
)

// Workspace is the private directory of one execution.
//
// Every artifact an adapter creates (sources, class files, binaries) lives
// inside Dir, so cleanup is a single RemoveAll and two concurrent executions
// can never touch each other's files. The xid prefix makes the directory
// traceable in logs; MkdirTemp's random suffix guarantees uniqueness.
type Workspace struct {
	ID  string
	Dir string
}

func newWorkspace(root string) (*Workspace, error) {
	id := xid.New().String()
	dir, err := os.MkdirTemp(root, "run-"+id+"-")
	if err != nil {
		return nil, fmt.Errorf("executor: creating workspace: %w", err)
	}
	return &Workspace{ID: id, Dir: dir}, nil
}

// Path returns the absolute path of name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// WriteFile writes content to name inside the workspace and returns its path.
func (w *Workspace) WriteFile(name, content string) (string, error) {
	path := w.Path(name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("executor: writing %s: %w", name, err)
	}
	return path, nil
}

// Remove deletes the workspace and everything in it.
func (w *Workspace) Remove() error {
	return os.RemoveAll(w.Dir)
}
