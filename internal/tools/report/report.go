// Package report implements the "report" built-in: a side-effect-free
// way for the agent to narrate status to whoever is watching the audit
// stream (progress, completion, error, info, or a question back to the
// operator) without that narration being mistaken for a real action.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentcore/core/internal/audit"
	"github.com/agentcore/core/internal/observability"
	"github.com/agentcore/core/pkg/core"
)

// Kind is the category of status update being reported.
type Kind string

const (
	KindProgress Kind = "progress"
	KindComplete Kind = "complete"
	KindError    Kind = "error"
	KindInfo     Kind = "info"
	KindQuestion Kind = "question"
)

func (k Kind) severity() core.Severity {
	switch k {
	case KindError:
		return core.SeverityError
	case KindQuestion:
		return core.SeverityWarn
	default:
		return core.SeverityInfo
	}
}

// Tool backs the "report" built-in. It never touches the sandbox or the
// journal: a report is visible status, not a reversible action.
type Tool struct {
	sink *audit.Sink
}

// New creates a report tool. sink may be nil (report calls still
// succeed, just without an audit emission; useful for tests).
func New(sink *audit.Sink) *Tool {
	return &Tool{sink: sink}
}

func (t *Tool) Name() string { return "report" }

func (t *Tool) Description() string {
	return "Report progress, completion, an error, general info, or a question, without performing any action."
}

func (t *Tool) Schema() json.RawMessage {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"kind": map[string]any{
				"type": "string",
				"enum": []string{"progress", "complete", "error", "info", "question"},
			},
			"message": map[string]any{
				"type": "string",
			},
			"detail": map[string]any{
				"type":        "object",
				"description": "Optional structured detail attached to the report.",
			},
		},
		"required": []string{"kind", "message"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

type params struct {
	Kind    Kind           `json:"kind"`
	Message string         `json:"message"`
	Detail  map[string]any `json:"detail"`
}

func (t *Tool) Execute(ctx context.Context, raw json.RawMessage) (*core.ToolResult, error) {
	var p params
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	kind := Kind(strings.ToLower(strings.TrimSpace(string(p.Kind))))
	switch kind {
	case KindProgress, KindComplete, KindError, KindInfo, KindQuestion:
	default:
		return fail(fmt.Sprintf("unknown report kind: %q", p.Kind)), nil
	}
	if strings.TrimSpace(p.Message) == "" {
		return fail("message is required"), nil
	}

	runID := observability.GetRunID(ctx)
	if t.sink != nil {
		data := p.Detail
		if data == nil {
			data = map[string]any{}
		}
		t.sink.Emit(ctx, &core.AuditEvent{
			RunID:     runID,
			EventType: "REPORT_" + strings.ToUpper(string(kind)),
			Severity:  kind.severity(),
			Message:   p.Message,
			Data:      data,
		})
	}

	return ok(map[string]any{"kind": string(kind), "acknowledged": true}), nil
}

func ok(output map[string]any) *core.ToolResult {
	return &core.ToolResult{Success: true, Output: output}
}

func fail(reason string) *core.ToolResult {
	return &core.ToolResult{Success: false, Error: reason}
}
