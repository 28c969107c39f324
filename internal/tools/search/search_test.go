package search

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/agentcore/core/internal/routing"
	"github.com/agentcore/core/pkg/core"
)

type fakeProvider struct {
	name      string
	available bool
	response  string
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) Available() bool { return f.available }
func (f *fakeProvider) Complete(ctx context.Context, req *core.CompletionRequest) (*core.CompletionResponse, error) {
	return &core.CompletionResponse{
		Provider: f.name,
		Message:  core.Message{Role: core.RoleAssistant, Content: f.response},
	}, nil
}

func marshal(t *testing.T, v map[string]any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	return data
}

func TestSearchRoutesAsSearchTask(t *testing.T) {
	provider := &fakeProvider{name: "web-search", available: true, response: "Go 1.23 release notes"}
	router := routing.NewRouter(routing.Config{DefaultProvider: "web-search"}, map[string]core.Provider{
		"web-search": provider,
	})
	tool := New(router)

	result, err := tool.Execute(context.Background(), marshal(t, map[string]any{
		"kind":  "web",
		"query": "latest Go release",
	}))
	if err != nil || !result.Success {
		t.Fatalf("execute failed: result=%+v err=%v", result, err)
	}
	out := result.Output.(map[string]any)
	if out["result"] != "Go 1.23 release notes" {
		t.Errorf("result = %v", out["result"])
	}
	if out["provider"] != "web-search" {
		t.Errorf("provider = %v, want web-search", out["provider"])
	}
}

func TestSearchRejectsUnknownKind(t *testing.T) {
	router := routing.NewRouter(routing.Config{}, map[string]core.Provider{})
	tool := New(router)
	result, err := tool.Execute(context.Background(), marshal(t, map[string]any{
		"kind":  "video",
		"query": "x",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Success {
		t.Fatal("expected failure for unknown kind")
	}
}

func TestSearchPropagatesRouterFailure(t *testing.T) {
	router := routing.NewRouter(routing.Config{}, map[string]core.Provider{})
	tool := New(router)
	result, err := tool.Execute(context.Background(), marshal(t, map[string]any{
		"kind":  "web",
		"query": "x",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Success {
		t.Fatal("expected failure when no providers are configured")
	}
}
