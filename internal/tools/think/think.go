// Package think implements the "think" built-in: a pure scratchpad tool
// that gives the model a place to record a reasoning step as a tool call
// (so it shows up in the transcript and the journal-adjacent audit
// trail) without touching the sandbox, the journal, or any provider. It
// records the thought as a step and hands control straight back; the
// thought is supplied by the caller, not generated by a model call.
package think

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentcore/core/pkg/core"
)

// Tool backs the "think" built-in.
type Tool struct{}

// New creates a think tool.
func New() *Tool { return &Tool{} }

func (t *Tool) Name() string { return "think" }

func (t *Tool) Description() string {
	return "Record a reasoning step without taking any action."
}

func (t *Tool) Schema() json.RawMessage {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"thought": map[string]any{
				"type":        "string",
				"description": "The reasoning to record.",
			},
		},
		"required": []string{"thought"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

type params struct {
	Thought string `json:"thought"`
}

func (t *Tool) Execute(ctx context.Context, raw json.RawMessage) (*core.ToolResult, error) {
	var p params
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if strings.TrimSpace(p.Thought) == "" {
		return &core.ToolResult{Success: false, Error: "thought is required"}, nil
	}
	return &core.ToolResult{Success: true, Output: map[string]any{"recorded": p.Thought}}, nil
}
