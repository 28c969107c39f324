package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/agentcore/core/internal/sandbox"
)

func TestHostRegisterToolsNilManagerIsNoop(t *testing.T) {
	h := NewHost(nil, nil)
	names, err := h.RegisterTools(nil)
	if err != nil {
		t.Fatalf("RegisterTools() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected no tools registered, got %v", names)
	}
}

func TestSandboxedToolDelegatesToInner(t *testing.T) {
	caller := &fakeToolCaller{
		result: &ToolCallResult{Content: []ToolResultContent{{Type: "text", Text: "done"}}},
	}
	tool := &MCPTool{Name: "search", InputSchema: json.RawMessage(`{"type":"object"}`)}
	bridge := NewToolBridge(caller, "github", tool, "github__search")

	policy := sandbox.NewPolicy(t.TempDir(), nil)
	st := &sandboxedTool{policy: policy, serverID: "github", toolName: "search", inner: bridge}

	result, err := st.Execute(context.Background(), json.RawMessage(`{"q":"go"}`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Success || result.Output != "done" {
		t.Fatalf("result = %+v", result)
	}
	if caller.serverID != "github" || caller.toolName != "search" {
		t.Errorf("expected call routed to github/search, got %s/%s", caller.serverID, caller.toolName)
	}
}

func TestSandboxedToolSurfacesCallerError(t *testing.T) {
	caller := &fakeToolCaller{err: context.DeadlineExceeded}
	tool := &MCPTool{Name: "slow"}
	bridge := NewToolBridge(caller, "srv", tool, "srv__slow")
	st := &sandboxedTool{serverID: "srv", toolName: "slow", inner: bridge}

	result, err := st.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil (error surfaces in ToolResult)", err)
	}
	if result.Success {
		t.Error("expected Success=false when the caller fails")
	}
}
