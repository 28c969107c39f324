package journal

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	dir := t.TempDir()
	j, err := New(filepath.Join(dir, "journal"), filepath.Join(dir, "backups"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return j
}

func TestFileCreateAppendsEntry(t *testing.T) {
	j := newTestJournal(t)

	entry, err := j.FileCreate("run-1", "/tmp/a.txt", "hello")
	if err != nil {
		t.Fatalf("FileCreate() error = %v", err)
	}
	if !entry.Reversible {
		t.Error("FileCreate entry should be reversible")
	}

	entries, err := j.Entries("run-1")
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].ID != entry.ID {
		t.Errorf("entries[0].ID = %q, want %q", entries[0].ID, entry.ID)
	}
}

func TestTerminalCommandNotReversible(t *testing.T) {
	j := newTestJournal(t)

	entry, err := j.TerminalCommand("run-1", "ls -la", "output")
	if err != nil {
		t.Fatalf("TerminalCommand() error = %v", err)
	}
	if entry.Reversible {
		t.Error("terminal command entries should never be reversible")
	}
	if entry.CanRollback() {
		t.Error("CanRollback() should be false for a terminal command")
	}
}

func TestRollbackRunRoundTrip(t *testing.T) {
	dir := t.TempDir()
	j, err := New(filepath.Join(dir, "journal"), filepath.Join(dir, "backups"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	target := filepath.Join(dir, "a.txt")

	// create a.txt
	if err := os.WriteFile(target, []byte("v1"), 0o644); err != nil {
		t.Fatalf("seed write: %v", err)
	}
	if _, err := j.FileCreate("run-1", target, "v1"); err != nil {
		t.Fatalf("FileCreate() error = %v", err)
	}

	// modify a.txt
	if err := os.WriteFile(target, []byte("v2"), 0o644); err != nil {
		t.Fatalf("modify write: %v", err)
	}
	if _, err := j.FileModify("run-1", target, "v1", "v2", "update a.txt"); err != nil {
		t.Fatalf("FileModify() error = %v", err)
	}

	// delete a.txt
	if err := os.Remove(target); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := j.FileDelete("run-1", target, "v2"); err != nil {
		t.Fatalf("FileDelete() error = %v", err)
	}

	outcomes := j.RollbackRun("run-1")
	for _, o := range outcomes {
		if !o.Success {
			t.Errorf("rollback outcome for %s failed: %s", o.EntryID, o.Error)
		}
	}

	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("expected %s to not exist after full rollback, stat err = %v", target, err)
	}

	entries, err := j.Entries("run-1")
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	for _, e := range entries {
		if isSyntheticRollback(e.ID) {
			continue
		}
		if !e.RolledBack {
			t.Errorf("entry %s should be marked rolled back", e.ID)
		}
	}
}

func TestRollbackEntryGuards(t *testing.T) {
	j := newTestJournal(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "b.txt")

	if err := os.WriteFile(target, []byte("content"), 0o644); err != nil {
		t.Fatalf("seed write: %v", err)
	}

	outcome := j.RollbackEntry("run-1", "does-not-exist")
	if outcome.Success {
		t.Error("rollback of unknown entry should fail")
	}

	entry, err := j.TerminalCommand("run-1", "echo hi", "hi")
	if err != nil {
		t.Fatalf("TerminalCommand() error = %v", err)
	}
	outcome = j.RollbackEntry("run-1", entry.ID)
	if outcome.Success {
		t.Error("rollback of non-reversible entry should fail")
	}

	created, err := j.FileCreate("run-1", target, "content")
	if err != nil {
		t.Fatalf("FileCreate() error = %v", err)
	}
	outcome = j.RollbackEntry("run-1", created.ID)
	if !outcome.Success {
		t.Fatalf("first rollback should succeed, got error: %s", outcome.Error)
	}
	outcome = j.RollbackEntry("run-1", created.ID)
	if outcome.Success {
		t.Error("second rollback of the same entry should fail as already rolled back")
	}
}

func TestRollbackRunSkipsSyntheticRecords(t *testing.T) {
	j := newTestJournal(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "c.txt")

	if err := os.WriteFile(target, []byte("content"), 0o644); err != nil {
		t.Fatalf("seed write: %v", err)
	}
	if _, err := j.FileCreate("run-1", target, "content"); err != nil {
		t.Fatalf("FileCreate() error = %v", err)
	}

	first := j.RollbackRun("run-1")
	if len(first) != 1 || !first[0].Success {
		t.Fatalf("first RollbackRun() = %+v, want one successful outcome", first)
	}

	second := j.RollbackRun("run-1")
	if len(second) != 0 {
		t.Errorf("second RollbackRun() should attempt nothing further, got %+v", second)
	}
}

func TestDirectoryCreateRollbackFailsGracefullyWhenNonEmpty(t *testing.T) {
	j := newTestJournal(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "newdir")

	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(target, "f.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seed write: %v", err)
	}

	entry, err := j.DirectoryCreate("run-1", target)
	if err != nil {
		t.Fatalf("DirectoryCreate() error = %v", err)
	}

	outcome := j.RollbackEntry("run-1", entry.ID)
	if !outcome.Success {
		t.Fatalf("rollback of non-empty directory should still report success (graceful no-op), got error: %s", outcome.Error)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("non-empty directory should remain after graceful rollback, stat err = %v", err)
	}
}
