package core

import "time"

// ActionKind is what a JournalEntry records.
type ActionKind string

const (
	ActionFileCreate      ActionKind = "file_create"
	ActionFileModify      ActionKind = "file_modify"
	ActionFileDelete      ActionKind = "file_delete"
	ActionDirectoryCreate ActionKind = "directory_create"
	ActionTerminalCommand ActionKind = "terminal_command"
	ActionBrowserAction   ActionKind = "browser_action"
	ActionEmailSend       ActionKind = "email_send"
	ActionCalendarEvent   ActionKind = "calendar_event"
	ActionChatMessage     ActionKind = "chat_message"
	ActionNotify          ActionKind = "notify"
)

// reversible reports whether entries of this kind can ever carry a
// rollback-capable before-state. journalTerminalCommand and the
// notification-style kinds are always non-reversible regardless of the
// Reversible flag on a given entry.
func (k ActionKind) reversible() bool {
	switch k {
	case ActionFileCreate, ActionFileModify, ActionFileDelete, ActionDirectoryCreate:
		return true
	default:
		return false
	}
}

// JournalEntry is one line of a run's <runId>.jsonl journal file.
type JournalEntry struct {
	ID          string     `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	RunID       string     `json:"runId"`
	Action      ActionKind `json:"action"`
	Target      string     `json:"target"`
	Description string     `json:"description"`
	Before      *string    `json:"before,omitempty"`
	After       *string    `json:"after,omitempty"`
	Command     string     `json:"command,omitempty"`
	Reversible  bool       `json:"reversible"`
	RolledBack  bool       `json:"rolledBack"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// CanRollback reports whether this entry is a legitimate rollback target:
// a kind capable of reversal, flagged reversible, and not yet rolled back.
func (e *JournalEntry) CanRollback() bool {
	return e.Action.reversible() && e.Reversible && !e.RolledBack
}

// RollbackOutcome records the result of rolling back one entry, as
// returned in the aggregate list from rollbackRun.
type RollbackOutcome struct {
	EntryID string `json:"entryId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
