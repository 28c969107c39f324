// Package adapter implements the thin external-adapter built-ins: email,
// calendar, chat, notify, and computer. None of these has a real backend
// in this repo (per spec.md, they are "external, out-of-scope"
// collaborators specified only at their tool interface), so each is the
// same generic shape: an operation/target/payload call that fails with
// "not configured" unless an embedder injects a Handler, and that
// journals a non-reversible entry when one is.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentcore/core/internal/journal"
	"github.com/agentcore/core/internal/observability"
	"github.com/agentcore/core/pkg/core"
)

// Handler performs the actual external call for a configured adapter.
// It returns a structured result to surface back to the caller.
type Handler func(ctx context.Context, operation, target string, payload map[string]any) (map[string]any, error)

// Tool is a generic external-adapter built-in.
type Tool struct {
	name    string
	desc    string
	action  core.ActionKind
	journal *journal.Journal
	handler Handler
}

// Config describes one adapter instance.
type Config struct {
	Name        string
	Description string
	Action      core.ActionKind
}

// New creates an adapter tool. handler may be nil, in which case every
// call fails with a "not configured" error. jrnl may be nil (mainly for
// tests); when non-nil, a successful handler call is journaled as a
// non-reversible notification.
func New(cfg Config, jrnl *journal.Journal, handler Handler) *Tool {
	return &Tool{name: cfg.Name, desc: cfg.Description, action: cfg.Action, journal: jrnl, handler: handler}
}

func (t *Tool) Name() string        { return t.name }
func (t *Tool) Description() string { return t.desc }

func (t *Tool) Schema() json.RawMessage {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation": map[string]any{
				"type":        "string",
				"description": "Adapter operation (e.g. send, create, list).",
			},
			"target": map[string]any{
				"type":        "string",
				"description": "Recipient, channel, or resource identifier.",
			},
			"payload": map[string]any{
				"type":        "object",
				"description": "Operation-specific payload.",
			},
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
	Operation string         `json:"operation"`
	Target    string         `json:"target"`
	Payload   map[string]any `json:"payload"`
}

func (t *Tool) Execute(ctx context.Context, raw json.RawMessage) (*core.ToolResult, error) {
	var p params
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if strings.TrimSpace(p.Operation) == "" {
		return fail("operation is required"), nil
	}
	if t.handler == nil {
		return fail(fmt.Sprintf("not configured: no handler registered for %q", t.name)), nil
	}

	result, err := t.handler(ctx, p.Operation, p.Target, p.Payload)
	if err != nil {
		return fail(err.Error()), nil
	}

	if t.journal != nil {
		runID := observability.GetRunID(ctx)
		desc := fmt.Sprintf("%s %s", t.name, p.Operation)
		if _, jerr := t.journal.Notification(runID, t.action, p.Target, desc); jerr != nil {
			return fail(fmt.Sprintf("journal: %v", jerr)), nil
		}
	}

	if result == nil {
		result = map[string]any{}
	}
	return ok(result), nil
}

func ok(output map[string]any) *core.ToolResult {
	return &core.ToolResult{Success: true, Output: output}
}

func fail(reason string) *core.ToolResult {
	return &core.ToolResult{Success: false, Error: reason}
}
