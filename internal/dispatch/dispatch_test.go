package dispatch

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/agentcore/core/pkg/core"
)

type echoTool struct{ fail bool }

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes its message argument" }
func (echoTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{"message":{"type":"string"}},"required":["message"]}`)
}
func (t echoTool) Execute(ctx context.Context, params json.RawMessage) (*core.ToolResult, error) {
	if t.fail {
		return &core.ToolResult{Success: false, Error: "boom"}, nil
	}
	var input struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(params, &input)
	return &core.ToolResult{Success: true, Output: input.Message}, nil
}

type panicTool struct{}

func (panicTool) Name() string                   { return "panics" }
func (panicTool) Description() string            { return "always panics" }
func (panicTool) Schema() json.RawMessage        { return json.RawMessage(`{"type":"object"}`) }
func (panicTool) Execute(context.Context, json.RawMessage) (*core.ToolResult, error) {
	panic("kaboom")
}

func TestExecuteSuccess(t *testing.T) {
	r := New(nil)
	if err := r.Register(echoTool{}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	result := r.Execute(context.Background(), "run-1", "echo", json.RawMessage(`{"message":"hi"}`))
	if !result.Success {
		t.Fatalf("Execute() success = false, error = %q", result.Error)
	}
	if result.Output != "hi" {
		t.Errorf("Output = %v, want hi", result.Output)
	}
}

func TestExecuteValidationFailure(t *testing.T) {
	r := New(nil)
	if err := r.Register(echoTool{}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	result := r.Execute(context.Background(), "run-1", "echo", json.RawMessage(`{}`))
	if result.Success {
		t.Fatal("Execute() success = true, want false for missing required field")
	}
}

func TestExecuteToolFailure(t *testing.T) {
	r := New(nil)
	if err := r.Register(echoTool{fail: true}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	result := r.Execute(context.Background(), "run-1", "echo", json.RawMessage(`{"message":"hi"}`))
	if result.Success || result.Error != "boom" {
		t.Errorf("result = %+v, want failure with error=boom", result)
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	r := New(nil)
	result := r.Execute(context.Background(), "run-1", "missing", json.RawMessage(`{}`))
	if result.Success {
		t.Fatal("Execute() success = true for unknown tool")
	}
}

func TestExecuteRecoversPanic(t *testing.T) {
	r := New(nil)
	if err := r.Register(panicTool{}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	result := r.Execute(context.Background(), "run-1", "panics", json.RawMessage(`{}`))
	if result.Success {
		t.Fatal("Execute() success = true for panicking tool")
	}
}

func TestDefinitionsReturnsRegisteredTools(t *testing.T) {
	r := New(nil)
	_ = r.Register(echoTool{})
	defs := r.Definitions()
	if len(defs) != 1 || defs[0].Name != "echo" {
		t.Errorf("Definitions() = %+v, want one echo definition", defs)
	}
}

type fakeMCP struct {
	handled bool
	result  *core.ToolResult
	err     error
}

func (f fakeMCP) CallTool(ctx context.Context, name string, params json.RawMessage) (*core.ToolResult, bool, error) {
	return f.result, f.handled, f.err
}

func TestExecuteFallsThroughToMCP(t *testing.T) {
	r := New(nil)
	r.SetMCPDispatcher(fakeMCP{handled: true, result: &core.ToolResult{Success: true, Output: "from-mcp"}})
	result := r.Execute(context.Background(), "run-1", "server__tool", json.RawMessage(`{}`))
	if !result.Success || result.Output != "from-mcp" {
		t.Errorf("result = %+v, want success output from-mcp", result)
	}
}
