package journal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentcore/core/pkg/core"
)

// RollbackEntry reverses a single journal entry identified by entryID
// within runID. It fails if the entry does not exist, is not reversible,
// or has already been rolled back. On success it appends a synthetic
// rollback record (id "rollback-"+entryID) and marks the original entry
// rolledBack in the run's journal file.
func (j *Journal) RollbackEntry(runID, entryID string) core.RollbackOutcome {
	entries, err := j.entries(runID)
	if err != nil {
		return core.RollbackOutcome{EntryID: entryID, Success: false, Error: err.Error()}
	}

	idx := -1
	for i, e := range entries {
		if e.ID == entryID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return core.RollbackOutcome{EntryID: entryID, Success: false, Error: core.ErrNotFound.Error()}
	}

	entry := entries[idx]
	if !entry.CanRollback() {
		if entry.RolledBack {
			return core.RollbackOutcome{EntryID: entryID, Success: false, Error: core.ErrAlreadyRolledBack.Error()}
		}
		return core.RollbackOutcome{EntryID: entryID, Success: false, Error: core.ErrNotReversible.Error()}
	}

	if err := j.restore(entry); err != nil {
		return core.RollbackOutcome{EntryID: entryID, Success: false, Error: err.Error()}
	}

	entry.RolledBack = true
	if err := j.rewrite(runID, entries); err != nil {
		return core.RollbackOutcome{EntryID: entryID, Success: false, Error: err.Error()}
	}

	synthetic := &core.JournalEntry{
		ID:          "rollback-" + entry.ID,
		RunID:       runID,
		Action:      entry.Action,
		Target:      entry.Target,
		Description: "rollback of " + entry.ID,
		Reversible:  false,
		RolledBack:  true,
	}
	if err := j.append(synthetic); err != nil {
		return core.RollbackOutcome{EntryID: entryID, Success: false, Error: err.Error()}
	}

	return core.RollbackOutcome{EntryID: entryID, Success: true}
}

// RollbackRun reverses every reversible, not-yet-rolled-back entry
// recorded for runID in reverse insertion order, skipping synthetic
// rollback records. It returns one outcome per attempted entry; overall
// success requires every attempted rollback to succeed.
func (j *Journal) RollbackRun(runID string) []core.RollbackOutcome {
	entries, err := j.entries(runID)
	if err != nil {
		return []core.RollbackOutcome{{EntryID: runID, Success: false, Error: err.Error()}}
	}

	var outcomes []core.RollbackOutcome
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if isSyntheticRollback(e.ID) {
			continue
		}
		if !e.CanRollback() {
			continue
		}
		outcomes = append(outcomes, j.RollbackEntry(runID, e.ID))
	}
	return outcomes
}

func isSyntheticRollback(id string) bool {
	return len(id) >= len("rollback-") && id[:len("rollback-")] == "rollback-"
}

// restore applies the filesystem-level effect that undoes entry.
func (j *Journal) restore(entry *core.JournalEntry) error {
	switch entry.Action {
	case core.ActionFileCreate:
		if err := os.Remove(entry.Target); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("journal: rollback file create: %w", err)
		}
		return nil

	case core.ActionFileModify:
		content, err := j.backedUpContent(entry)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(entry.Target), 0o755); err != nil {
			return fmt.Errorf("journal: rollback file modify: recreate parent dir: %w", err)
		}
		if err := os.WriteFile(entry.Target, []byte(content), 0o644); err != nil {
			return fmt.Errorf("journal: rollback file modify: %w", err)
		}
		return nil

	case core.ActionFileDelete:
		content, err := j.backedUpContent(entry)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(entry.Target), 0o755); err != nil {
			return fmt.Errorf("journal: rollback file delete: recreate parent dir: %w", err)
		}
		if err := os.WriteFile(entry.Target, []byte(content), 0o644); err != nil {
			return fmt.Errorf("journal: rollback file delete: %w", err)
		}
		return nil

	case core.ActionDirectoryCreate:
		if err := os.Remove(entry.Target); err != nil && !os.IsNotExist(err) {
			// A non-empty directory fails gracefully: the rollback simply
			// leaves it in place rather than erroring the whole run.
			return nil
		}
		return nil

	default:
		return core.ErrNotReversible
	}
}

// backedUpContent prefers the on-disk backup artifact over the inline
// before-state, since the backup survives even if the journal entry's
// inline content is later trimmed.
func (j *Journal) backedUpContent(entry *core.JournalEntry) (string, error) {
	if entry.Metadata != nil {
		if backup, ok := entry.Metadata["backup"]; ok {
			data, err := os.ReadFile(backup)
			if err == nil {
				return string(data), nil
			}
		}
	}
	if entry.Before != nil {
		return *entry.Before, nil
	}
	return "", fmt.Errorf("journal: no backup or inline content for entry %s", entry.ID)
}

// rewrite replaces the run's journal file with entries, used after
// mutating an entry in place (e.g. setting RolledBack).
func (j *Journal) rewrite(runID string, entries []*core.JournalEntry) error {
	j.mu.Lock()
	path := j.runPath(runID)
	j.mu.Unlock()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("journal: rewrite run file: %w", err)
	}
	for _, e := range entries {
		line, err := marshalEntry(e)
		if err != nil {
			f.Close()
			return err
		}
		if _, err := f.Write(line); err != nil {
			f.Close()
			return fmt.Errorf("journal: rewrite run file: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("journal: rewrite run file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("journal: rewrite run file: %w", err)
	}
	return nil
}
