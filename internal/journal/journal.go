// Package journal implements the per-run undoable action log (C3): a
// newline-delimited JSON file per run, backup artifacts for modified or
// deleted files, and entry/run rollback with the reverse-insertion-order
// semantics of spec.md §4.3.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentcore/core/pkg/core"
)

// Journal manages the on-disk journal and backup directories shared by
// every run. Per-run state (the list of entries for a given runId) is
// read back from the run's JSONL file rather than cached, so a Journal
// value has no per-run locking beyond the file append itself.
type Journal struct {
	journalDir string
	backupDir  string
	mu         sync.Mutex
}

// New creates a Journal rooted at journalDir/backupDir, creating both
// directories if they do not exist.
func New(journalDir, backupDir string) (*Journal, error) {
	if err := os.MkdirAll(journalDir, 0o755); err != nil {
		return nil, fmt.Errorf("journal: create journal dir: %w", err)
	}
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("journal: create backup dir: %w", err)
	}
	return &Journal{journalDir: journalDir, backupDir: backupDir}, nil
}

func (j *Journal) runPath(runID string) string {
	return filepath.Join(j.journalDir, runID+".jsonl")
}

func (j *Journal) backupPath(entryID, basename string) string {
	return filepath.Join(j.backupDir, entryID+"-"+basename)
}

// append writes one entry as a line to the run's journal file.
func (j *Journal) append(entry *core.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.runPath(entry.RunID), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("journal: open run file: %w", err)
	}
	defer f.Close()

	line, err := marshalEntry(entry)
	if err != nil {
		return err
	}
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("journal: append entry: %w", err)
	}
	return nil
}

// Entries returns every JournalEntry recorded for runID, in insertion
// order, including synthetic rollback records.
func (j *Journal) Entries(runID string) ([]*core.JournalEntry, error) {
	return j.entries(runID)
}

// entries reads every JournalEntry recorded for runID, in insertion order.
func (j *Journal) entries(runID string) ([]*core.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.runPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("journal: open run file: %w", err)
	}
	defer f.Close()

	var out []*core.JournalEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e core.JournalEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("journal: parse entry: %w", err)
		}
		out = append(out, &e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("journal: scan run file: %w", err)
	}
	return out, nil
}

// ListRuns returns the run ids that have at least one journal entry,
// discovered by scanning the journal directory for "<runId>.jsonl" files.
func (j *Journal) ListRuns() ([]string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := os.ReadDir(j.journalDir)
	if err != nil {
		return nil, fmt.Errorf("journal: read journal dir: %w", err)
	}
	var runs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != ".jsonl" {
			continue
		}
		runs = append(runs, name[:len(name)-len(".jsonl")])
	}
	return runs, nil
}

func marshalEntry(e *core.JournalEntry) ([]byte, error) {
	line, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("journal: marshal entry: %w", err)
	}
	return append(line, '\n'), nil
}

func newEntry(runID string, action core.ActionKind, target, desc string) *core.JournalEntry {
	return &core.JournalEntry{
		ID:          uuid.NewString(),
		Timestamp:   time.Now(),
		RunID:       runID,
		Action:      action,
		Target:      target,
		Description: desc,
	}
}

func ptr(s string) *string { return &s }

// FileCreate records a file-create effect. Rollback deletes the file.
func (j *Journal) FileCreate(runID, path, content string) (*core.JournalEntry, error) {
	e := newEntry(runID, core.ActionFileCreate, path, "create "+path)
	e.After = ptr(content)
	e.Reversible = true
	if err := j.append(e); err != nil {
		return nil, err
	}
	return e, nil
}

// FileModify records a file-modify effect, backing up the before content
// to a named artifact so rollback can restore it even if the inline
// before-state is later discarded.
func (j *Journal) FileModify(runID, path, before, after, desc string) (*core.JournalEntry, error) {
	e := newEntry(runID, core.ActionFileModify, path, desc)
	e.Before = ptr(before)
	e.After = ptr(after)
	e.Reversible = true

	backup := j.backupPath(e.ID, filepath.Base(path))
	if err := os.WriteFile(backup, []byte(before), 0o644); err != nil {
		return nil, fmt.Errorf("journal: write backup artifact: %w", err)
	}
	e.Metadata = map[string]string{"backup": backup}

	if err := j.append(e); err != nil {
		return nil, err
	}
	return e, nil
}

// FileDelete records a file-delete effect, backing up the prior content.
func (j *Journal) FileDelete(runID, path, before string) (*core.JournalEntry, error) {
	e := newEntry(runID, core.ActionFileDelete, path, "delete "+path)
	e.Before = ptr(before)
	e.Reversible = true

	backup := j.backupPath(e.ID, filepath.Base(path))
	if err := os.WriteFile(backup, []byte(before), 0o644); err != nil {
		return nil, fmt.Errorf("journal: write backup artifact: %w", err)
	}
	e.Metadata = map[string]string{"backup": backup}

	if err := j.append(e); err != nil {
		return nil, err
	}
	return e, nil
}

// DirectoryCreate records a directory-create effect. Rollback attempts to
// remove the directory and fails gracefully if it is non-empty.
func (j *Journal) DirectoryCreate(runID, path string) (*core.JournalEntry, error) {
	e := newEntry(runID, core.ActionDirectoryCreate, path, "mkdir "+path)
	e.Reversible = true
	if err := j.append(e); err != nil {
		return nil, err
	}
	return e, nil
}

// TerminalCommand records a non-reversible terminal invocation for audit.
func (j *Journal) TerminalCommand(runID, cmd, output string) (*core.JournalEntry, error) {
	e := newEntry(runID, core.ActionTerminalCommand, cmd, "run "+cmd)
	e.Command = cmd
	e.After = ptr(output)
	e.Reversible = false
	if err := j.append(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Notification records a non-reversible outbound effect (email, chat,
// calendar) for audit purposes.
func (j *Journal) Notification(runID string, action core.ActionKind, target, desc string) (*core.JournalEntry, error) {
	e := newEntry(runID, action, target, desc)
	e.Reversible = false
	if err := j.append(e); err != nil {
		return nil, err
	}
	return e, nil
}
