package report

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

func TestReportProgress(t *testing.T) {
	tool := New(audit.NewSink(nil, nil))
	result, err := tool.Execute(context.Background(), marshal(t, map[string]any{
		"kind":    "progress",
		"message": "halfway through the migration",
	}))
	if err != nil || !result.Success {
		t.Fatalf("execute failed: result=%+v err=%v", result, err)
	}
}

func TestReportRejectsUnknownKind(t *testing.T) {
	tool := New(nil)
	result, err := tool.Execute(context.Background(), marshal(t, map[string]any{
		"kind":    "shrug",
		"message": "x",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Success {
		t.Fatal("expected failure for unknown kind")
	}
}

func TestReportRequiresMessage(t *testing.T) {
	tool := New(nil)
	result, err := tool.Execute(context.Background(), marshal(t, map[string]any{
		"kind": "info",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Success {
		t.Fatal("expected failure for missing message")
	}
}
