package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot_CurrentDir(t *testing.T) {
	root := t.TempDir()
	if err := Init(root); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	found, err := FindRoot(root)
	if err != nil {
		t.Fatalf("FindRoot failed: %v", err)
	}
	if found != root {
		t.Errorf("FindRoot = %s, want %s", found, root)
	}
}

func TestFindRoot_WalksUp(t *testing.T) {
	root := t.TempDir()
	if err := Init(root); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	nested := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	found, err := FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot failed: %v", err)
	}
	if found != root {
		t.Errorf("FindRoot = %s, want %s", found, root)
	}
}

func TestFindRoot_NotFound(t *testing.T) {
	_, err := FindRoot(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFindRoot_IgnoresRegularFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, Dir), []byte("not a dir"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := FindRoot(dir); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPaths(t *testing.T) {
	root := string(filepath.Separator) + "work"
	if got := LedgerPath(root); got != filepath.Join(root, ".repository", "ledger.toml") {
		t.Errorf("LedgerPath = %s", got)
	}
	if got := RegistryPath(root); got != filepath.Join(root, ".repository", "rules", "registry.toml") {
		t.Errorf("RegistryPath = %s", got)
	}
	if got := ToolsPath(root); got != filepath.Join(root, ".repository", "tools.yaml") {
		t.Errorf("ToolsPath = %s", got)
	}
	if got := HistoryPath(root); got != filepath.Join(root, ".repository", "history.db") {
		t.Errorf("HistoryPath = %s", got)
	}
}
