// Package memory implements the "memory" built-in: store/retrieve/
// search/list against an external memory store. Per spec.md the memory
// store itself is out of scope for this repo, so the tool is a thin
// stub that fails with "not configured" unless an embedder injects a
// Store implementation.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentcore/core/pkg/core"
)

// Store is the external memory backend an embedder can inject.
type Store interface {
	Store(ctx context.Context, key, value string) error
	Retrieve(ctx context.Context, key string) (string, bool, error)
	Search(ctx context.Context, query string) ([]string, error)
	List(ctx context.Context) ([]string, error)
}

// Tool backs the "memory" built-in.
type Tool struct {
	store Store
}

// New creates a memory tool. store may be nil, in which case every call
// fails with a "not configured" error.
func New(store Store) *Tool {
	return &Tool{store: store}
}

func (t *Tool) Name() string { return "memory" }

func (t *Tool) Description() string {
	return "Store, retrieve, search, or list entries in an external memory store."
}

func (t *Tool) Schema() json.RawMessage {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation": map[string]any{
				"type": "string",
				"enum": []string{"store", "retrieve", "search", "list"},
			},
			"key":   map[string]any{"type": "string"},
			"value": map[string]any{"type": "string"},
			"query": map[string]any{"type": "string"},
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
	Key       string `json:"key"`
	Value     string `json:"value"`
	Query     string `json:"query"`
}

func (t *Tool) Execute(ctx context.Context, raw json.RawMessage) (*core.ToolResult, error) {
	var p params
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if t.store == nil {
		return fail("not configured: no memory store injected"), nil
	}

	switch strings.ToLower(strings.TrimSpace(p.Operation)) {
	case "store":
		if p.Key == "" {
			return fail("key is required"), nil
		}
		if err := t.store.Store(ctx, p.Key, p.Value); err != nil {
			return fail(err.Error()), nil
		}
		return ok(map[string]any{"stored": true}), nil
	case "retrieve":
		if p.Key == "" {
			return fail("key is required"), nil
		}
		value, found, err := t.store.Retrieve(ctx, p.Key)
		if err != nil {
			return fail(err.Error()), nil
		}
		return ok(map[string]any{"found": found, "value": value}), nil
	case "search":
		results, err := t.store.Search(ctx, p.Query)
		if err != nil {
			return fail(err.Error()), nil
		}
		return ok(map[string]any{"results": results}), nil
	case "list":
		entries, err := t.store.List(ctx)
		if err != nil {
			return fail(err.Error()), nil
		}
		return ok(map[string]any{"entries": entries}), nil
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
