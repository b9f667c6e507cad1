// Package workspace locates the repository root and the managed state
// files kept under the .repository directory.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Dir is the directory holding all managed state for a workspace.
const Dir = ".repository"

// ErrNotFound indicates no workspace directory was found walking up
// from the starting path.
var ErrNotFound = errors.New("no .repository directory found")

// FindRoot walks up from start looking for a directory containing
// .repository and returns that directory.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving start path: %w", err)
	}
	for {
		info, err := os.Stat(filepath.Join(dir, Dir))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w (searched from %s)", ErrNotFound, start)
		}
		dir = parent
	}
}

// Init creates the workspace directory structure under root.
func Init(root string) error {
	for _, dir := range []string{
		filepath.Join(root, Dir),
		filepath.Join(root, Dir, "rules"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath returns the path of the applied-state ledger.
func LedgerPath(root string) string {
	return filepath.Join(root, Dir, "ledger.toml")
}

// RegistryPath returns the path of the rule registry.
func RegistryPath(root string) string {
	return filepath.Join(root, Dir, "rules", "registry.toml")
}

// ToolsPath returns the path of the tool configuration file.
func ToolsPath(root string) string {
	return filepath.Join(root, Dir, "tools.yaml")
}

// HistoryPath returns the path of the apply-history database.
func HistoryPath(root string) string {
	return filepath.Join(root, Dir, "history.db")
}
