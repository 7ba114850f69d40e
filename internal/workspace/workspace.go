// Package workspace manages the per-run scratch directory: a private temp
// root holding the generated configuration documents, plus the nested
// datastore directory the external tools populate.
//
// The root survives failed runs so the documents and partial store remain
// inspectable; it is removed only after a fully successful run.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is one run's scratch area.
type Workspace struct {
	// Root is the temp directory holding the generated config documents.
	Root string

	// StoreDir is the datastore workspace path stamped into every
	// generated document. The directory itself is created by the loader
	// tool, not here.
	StoreDir string
}

// Acquire creates a fresh scratch root under the system temp directory.
func Acquire() (*Workspace, error) {
	root, err := os.MkdirTemp("", "regress-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{
		Root:     root,
		StoreDir: filepath.Join(root, "ws"),
	}, nil
}

// ConfigPath returns the path a generated document of the given file name
// lives at inside the scratch root.
func (w *Workspace) ConfigPath(name string) string {
	return filepath.Join(w.Root, name)
}

// WriteConfig writes one generated document into the scratch root and
// returns its absolute path.
func (w *Workspace) WriteConfig(name string, data []byte) (string, error) {
	path := w.ConfigPath(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write config %s: %w", name, err)
	}
	return path, nil
}

// Release disposes of the workspace. After a successful run the scratch
// root is removed; after a failed run it is kept for inspection.
func (w *Workspace) Release(success bool) error {
	if !success {
		return nil
	}
	if err := os.RemoveAll(w.Root); err != nil {
		return fmt.Errorf("remove workspace: %w", err)
	}
	return nil
}
