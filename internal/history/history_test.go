package history

import (
	"path/filepath"
	"testing"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openStore(t)

	s.Record("install", "style", "cursor", ".cursorrules", "")
	s.Record("update", "style", "claude", "CLAUDE.md", "rule content updated since last apply")

	events, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Event != "update" || events[0].ToolID != "claude" {
		t.Errorf("newest event = %+v", events[0])
	}
	if events[1].Event != "install" || events[1].RuleID != "style" {
		t.Errorf("oldest event = %+v", events[1])
	}
	if events[0].CreatedAt == "" {
		t.Error("CreatedAt not set")
	}
}

func TestRecent_Limit(t *testing.T) {
	s := openStore(t)
	for i := 0; i < 5; i++ {
		s.Record("install", "style", "cursor", ".cursorrules", "")
	}

	events, err := s.Recent(3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("got %d events, want 3", len(events))
	}
}

func TestRecent_Empty(t *testing.T) {
	s := openStore(t)
	events, err := s.Recent(0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}

func TestOpen_Reopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	s.Record("install", "style", "cursor", ".cursorrules", "")
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()
	events, err := s2.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d events after reopen, want 1", len(events))
	}
}
