// Package search implements the "search" built-in: web/news/code/docs
// queries that delegate semantically to whichever provider the router
// (C5) classifies as search-suited, rather than calling a dedicated
// search API directly. The tool's job is only to phrase the query so
// the router's classifier (internal/routing.HeuristicClassifier) lands
// it on core.TaskSearch, then to hand the provider's answer back.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentcore/core/internal/routing"
	"github.com/agentcore/core/pkg/core"
)

// Kind narrows the style of search requested.
type Kind string

const (
	KindWeb  Kind = "web"
	KindNews Kind = "news"
	KindCode Kind = "code"
	KindDocs Kind = "docs"
)

// Tool backs the "search" built-in.
type Tool struct {
	router *routing.Router
}

// New creates a search tool that routes queries through router.
func New(router *routing.Router) *Tool {
	return &Tool{router: router}
}

func (t *Tool) Name() string { return "search" }

func (t *Tool) Description() string {
	return "Search the web, news, code, or docs by routing the query to a search-suited provider."
}

func (t *Tool) Schema() json.RawMessage {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"kind": map[string]any{
				"type": "string",
				"enum": []string{"web", "news", "code", "docs"},
			},
			"query": map[string]any{"type": "string"},
		},
		"required": []string{"kind", "query"},
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return data
}

type params struct {
	Kind  Kind   `json:"kind"`
	Query string `json:"query"`
}

func (t *Tool) Execute(ctx context.Context, raw json.RawMessage) (*core.ToolResult, error) {
	if t.router == nil {
		return fail("search unavailable: no router configured"), nil
	}
	var p params
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	kind := Kind(strings.ToLower(strings.TrimSpace(string(p.Kind))))
	switch kind {
	case KindWeb, KindNews, KindCode, KindDocs:
	default:
		return fail(fmt.Sprintf("unknown search kind: %q", p.Kind)), nil
	}
	if strings.TrimSpace(p.Query) == "" {
		return fail("query is required"), nil
	}

	req := &core.CompletionRequest{
		Messages: []core.Message{
			{Role: core.RoleUser, Content: searchPrompt(kind, p.Query)},
		},
	}

	resp, decision, err := t.router.Complete(ctx, req)
	if err != nil {
		return fail(err.Error()), nil
	}

	return ok(map[string]any{
		"kind":     string(kind),
		"query":    p.Query,
		"result":   resp.Message.Content,
		"provider": decision.Provider,
	}), nil
}

func searchPrompt(kind Kind, query string) string {
	switch kind {
	case KindNews:
		return fmt.Sprintf("Search for the latest news on: %s", query)
	case KindCode:
		return fmt.Sprintf("Search code repositories and current documentation for: %s", query)
	case KindDocs:
		return fmt.Sprintf("Search current documentation for: %s", query)
	default:
		return fmt.Sprintf("Search the web for: %s", query)
	}
}

func ok(output map[string]any) *core.ToolResult {
	return &core.ToolResult{Success: true, Output: output}
}

func fail(reason string) *core.ToolResult {
	return &core.ToolResult{Success: false, Error: reason}
}
