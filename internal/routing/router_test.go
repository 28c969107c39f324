package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/agentcore/core/pkg/core"
)

type fakeProvider struct {
	name      string
	available bool
	fail      bool
	calls     int
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) Available() bool { return f.available }
func (f *fakeProvider) Complete(ctx context.Context, req *core.CompletionRequest) (*core.CompletionResponse, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("boom")
	}
	return &core.CompletionResponse{Provider: f.name, Message: core.Message{Role: core.RoleAssistant, Content: "ok"}}, nil
}

func TestRouterRouteMatchesRule(t *testing.T) {
	providers := map[string]core.Provider{
		"fast": &fakeProvider{name: "fast", available: true},
		"slow": &fakeProvider{name: "slow", available: true},
	}
	r := NewRouter(Config{
		DefaultProvider: "slow",
		Rules: []core.RoutingRule{
			{TaskTypes: []core.TaskType{core.TaskCoding}, Provider: "fast", Model: "fast-model", Reason: "coding tasks go to fast"},
		},
	}, providers)

	req := &core.CompletionRequest{Messages: []core.Message{{Role: core.RoleUser, Content: "write a func foo() {}"}}}
	decisions, err := r.Route(req)
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if decisions[0].Provider != "fast" || decisions[0].Model != "fast-model" {
		t.Errorf("decisions[0] = %+v, want fast/fast-model", decisions[0])
	}
}

func TestRouterCompleteFallsBackOnFailure(t *testing.T) {
	failing := &fakeProvider{name: "failing", available: true, fail: true}
	working := &fakeProvider{name: "working", available: true}
	providers := map[string]core.Provider{"failing": failing, "working": working}

	r := NewRouter(Config{DefaultProvider: "failing"}, providers)
	req := &core.CompletionRequest{Messages: []core.Message{{Role: core.RoleUser, Content: "hi"}}}

	resp, decision, err := r.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if decision.Provider != "working" {
		t.Errorf("decision.Provider = %q, want working", decision.Provider)
	}
	if resp.Provider != "working" {
		t.Errorf("resp.Provider = %q, want working", resp.Provider)
	}
	if failing.calls != 1 {
		t.Errorf("failing.calls = %d, want 1", failing.calls)
	}
}

func TestRouterCompleteSkipsUnavailableProvider(t *testing.T) {
	unavailable := &fakeProvider{name: "unavailable", available: false}
	working := &fakeProvider{name: "working", available: true}
	providers := map[string]core.Provider{"unavailable": unavailable, "working": working}

	r := NewRouter(Config{DefaultProvider: "unavailable"}, providers)
	req := &core.CompletionRequest{Messages: []core.Message{{Role: core.RoleUser, Content: "hi"}}}

	_, decision, err := r.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if decision.Provider != "working" {
		t.Errorf("decision.Provider = %q, want working", decision.Provider)
	}
	if unavailable.calls != 0 {
		t.Errorf("unavailable.calls = %d, want 0", unavailable.calls)
	}
}

func TestRouterNoProvidersConfigured(t *testing.T) {
	r := NewRouter(Config{}, map[string]core.Provider{})
	req := &core.CompletionRequest{Messages: []core.Message{{Role: core.RoleUser, Content: "hi"}}}
	if _, err := r.Route(req); err == nil {
		t.Error("expected error with no providers configured")
	}
}
