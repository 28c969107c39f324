// Package journaltool implements the "journal" built-in: it lets the
// agent (or an operator driving it) inspect and roll back its own
// journal (C3) through the same tool-call surface as everything else,
// rather than requiring a separate admin path.
package journaltool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentcore/core/internal/journal"
	"github.com/agentcore/core/internal/observability"
	"github.com/agentcore/core/pkg/core"
)

// Tool backs the "journal" built-in.
type Tool struct {
	journal *journal.Journal
}

// New creates a journal tool over jrnl.
func New(jrnl *journal.Journal) *Tool {
	return &Tool{journal: jrnl}
}

func (t *Tool) Name() string { return "journal" }

func (t *Tool) Description() string {
	return "Inspect or roll back recorded actions: list_runs, view, summary, rollback_entry, rollback_run."
}

func (t *Tool) Schema() json.RawMessage {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation": map[string]any{
				"type": "string",
				"enum": []string{"list_runs", "view", "summary", "rollback_entry", "rollback_run"},
			},
			"run_id":   map[string]any{"type": "string"},
			"entry_id": map[string]any{"type": "string"},
		},
		"required": []string{"operation"},
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return data
}

type params struct {
	Operation string `json:"operation"`
	RunID     string `json:"run_id"`
	EntryID   string `json:"entry_id"`
}

func (t *Tool) Execute(ctx context.Context, raw json.RawMessage) (*core.ToolResult, error) {
	if t.journal == nil {
		return fail("journal unavailable"), nil
	}
	var p params
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	runID := p.RunID
	if runID == "" {
		runID = observability.GetRunID(ctx)
	}

	switch strings.ToLower(strings.TrimSpace(p.Operation)) {
	case "list_runs":
		runs, err := t.journal.ListRuns()
		if err != nil {
			return fail(err.Error()), nil
		}
		return ok(map[string]any{"runs": runs}), nil

	case "view":
		entries, err := t.journal.Entries(runID)
		if err != nil {
			return fail(err.Error()), nil
		}
		return ok(map[string]any{"run_id": runID, "entries": entries}), nil

	case "summary":
		entries, err := t.journal.Entries(runID)
		if err != nil {
			return fail(err.Error()), nil
		}
		counts := map[string]int{}
		rolledBack := 0
		for _, e := range entries {
			counts[string(e.Action)]++
			if e.RolledBack {
				rolledBack++
			}
		}
		return ok(map[string]any{
			"run_id":        runID,
			"total_entries": len(entries),
			"by_action":     counts,
			"rolled_back":   rolledBack,
		}), nil

	case "rollback_entry":
		if strings.TrimSpace(p.EntryID) == "" {
			return fail("entry_id is required"), nil
		}
		outcome := t.journal.RollbackEntry(runID, p.EntryID)
		if !outcome.Success {
			return fail(outcome.Error), nil
		}
		return ok(map[string]any{"entry_id": outcome.EntryID, "rolled_back": true}), nil

	case "rollback_run":
		outcomes := t.journal.RollbackRun(runID)
		allSucceeded := true
		for _, o := range outcomes {
			if !o.Success {
				allSucceeded = false
				break
			}
		}
		return ok(map[string]any{"run_id": runID, "outcomes": outcomes, "success": allSucceeded}), nil

	default:
		return fail(fmt.Sprintf("unknown operation: %q", p.Operation)), nil
	}
}

func ok(output map[string]any) *core.ToolResult {
	return &core.ToolResult{Success: true, Output: output}
}

func fail(reason string) *core.ToolResult {
	return &core.ToolResult{Success: false, Error: reason}
}
