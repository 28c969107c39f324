package approval

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/agentcore/core/internal/audit"
)

func marshal(t *testing.T, v map[string]any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	return data
}

func TestLowImpactAutoApproves(t *testing.T) {
	tool := New(audit.NewSink(nil, nil), nil)
	result, err := tool.Execute(context.Background(), marshal(t, map[string]any{
		"action": "delete temp file",
		"impact": "low",
	}))
	if err != nil || !result.Success {
		t.Fatalf("execute failed: result=%+v err=%v", result, err)
	}
	out := result.Output.(map[string]any)
	if out["decision"] != string(DecisionApproved) {
		t.Errorf("decision = %v, want approved", out["decision"])
	}
	if len(tool.Pending()) != 0 {
		t.Errorf("expected no pending requests, got %d", len(tool.Pending()))
	}
}

func TestHighImpactPendsByDefault(t *testing.T) {
	tool := New(audit.NewSink(nil, nil), nil)
	result, err := tool.Execute(context.Background(), marshal(t, map[string]any{
		"action": "drop production table",
		"reason": "cleanup",
		"impact": "critical",
	}))
	if err != nil || !result.Success {
		t.Fatalf("execute failed: result=%+v err=%v", result, err)
	}
	out := result.Output.(map[string]any)
	if out["decision"] != string(DecisionPending) {
		t.Errorf("decision = %v, want pending", out["decision"])
	}
	pending := tool.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected one pending request, got %d", len(pending))
	}
	if pending[0].ID != out["request_id"] {
		t.Errorf("request id mismatch: %v vs %v", pending[0].ID, out["request_id"])
	}
}

func TestResolvePendingRequest(t *testing.T) {
	tool := New(nil, nil)
	result, _ := tool.Execute(context.Background(), marshal(t, map[string]any{
		"action": "send mass email",
		"impact": "medium",
	}))
	id := result.Output.(map[string]any)["request_id"].(string)

	req, found := tool.Resolve(id, DecisionApproved)
	if !found {
		t.Fatal("expected pending request to resolve")
	}
	if req.Decision != DecisionApproved {
		t.Errorf("decision = %v, want approved", req.Decision)
	}
	if len(tool.Pending()) != 0 {
		t.Errorf("expected request removed from pending set")
	}
}

type fakeDecider struct{ decision Decision }

func (f fakeDecider) Decide(ctx context.Context, req *Request) (Decision, error) {
	return f.decision, nil
}

func TestDeciderResolvesImmediately(t *testing.T) {
	tool := New(nil, fakeDecider{decision: DecisionApproved})
	result, err := tool.Execute(context.Background(), marshal(t, map[string]any{
		"action": "restart service",
		"impact": "high",
	}))
	if err != nil || !result.Success {
		t.Fatalf("execute failed: result=%+v err=%v", result, err)
	}
	out := result.Output.(map[string]any)
	if out["decision"] != string(DecisionApproved) {
		t.Errorf("decision = %v, want approved", out["decision"])
	}
	if len(tool.Pending()) != 0 {
		t.Errorf("expected decider to settle request immediately, got %d pending", len(tool.Pending()))
	}
}

func TestRejectsUnknownImpact(t *testing.T) {
	tool := New(nil, nil)
	result, err := tool.Execute(context.Background(), marshal(t, map[string]any{
		"action": "do something",
		"impact": "severe",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Success {
		t.Fatal("expected failure for unknown impact level")
	}
}

func TestActionRequired(t *testing.T) {
	tool := New(nil, nil)
	result, err := tool.Execute(context.Background(), marshal(t, map[string]any{
		"impact": "low",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Success {
		t.Fatal("expected failure for missing action")
	}
}
