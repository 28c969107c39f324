// Package core holds the neutral data model shared by every component of
// the orchestration core: messages, tool calls, plan steps, journal
// entries, audit events and routing rules. Nothing in this package talks
// to a provider, the filesystem, or a database — it is pure types plus the
// small invariants that follow directly from them.
package core

import (
	"errors"
	"fmt"
)

// Kind classifies a CoreError for callers that need to branch on recovery
// strategy rather than match on error text.
type Kind string

const (
	KindDenied         Kind = "DENIED"
	KindValidationFail Kind = "VALIDATION_FAIL"
	KindExecError      Kind = "EXEC_ERROR"
	KindFatal          Kind = "FATAL"
)

// CoreError wraps an underlying error with a Kind so upstream callers
// (the agent loop, the plan runner) can decide whether to retry, fall
// back, or surface the failure without string-matching.
type CoreError struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *CoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *CoreError) Unwrap() error { return e.Err }

// NewError builds a CoreError; err may be nil when the reason alone is
// sufficient (e.g. a sandbox denial).
func NewError(kind Kind, reason string, err error) *CoreError {
	return &CoreError{Kind: kind, Reason: reason, Err: err}
}

// Sentinel errors that callers branch on directly.
var (
	ErrDenied           = errors.New("denied")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyRolledBack = errors.New("already rolled back")
	ErrNotReversible    = errors.New("not reversible")
	ErrCycle            = errors.New("cyclic dependency graph")
	ErrBudgetExhausted  = errors.New("budget exhausted")
	ErrUnknownTool      = errors.New("unknown tool")
)
