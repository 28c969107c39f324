// Package dispatch implements the tool registry and dispatcher (C6):
// tools register a name, description, and JSON-Schema declaration, and the
// Registry validates arguments, invokes the handler, and journals the
// outcome through the audit sink per spec.md §4.6.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/agentcore/core/internal/audit"
	"github.com/agentcore/core/pkg/core"
)

// Tool is a named effector a model's tool calls can invoke.
type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Execute(ctx context.Context, params json.RawMessage) (*core.ToolResult, error)
}

// MCPDispatcher proxies a namespaced tool call to the owning MCP server.
// The C9 host implements this; the registry only needs to call through it.
type MCPDispatcher interface {
	// CallTool dispatches a namespaced `<server>__<tool>` id. ok is false
	// if the id is not one the host recognizes, letting Execute fall
	// through to "unknown tool".
	CallTool(ctx context.Context, name string, params json.RawMessage) (result *core.ToolResult, ok bool, err error)
}

// Registry holds every registered tool and dispatches calls against it.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]Tool
	compiled map[string]*jsonschema.Schema
	sink     *audit.Sink
	mcp      MCPDispatcher
	logger   *slog.Logger
}

// New builds an empty Registry. sink may be nil to disable audit emission
// (mainly for tests); mcp may be nil until C9 is wired in.
func New(sink *audit.Sink) *Registry {
	return &Registry{
		tools:    make(map[string]Tool),
		compiled: make(map[string]*jsonschema.Schema),
		sink:     sink,
		logger:   slog.Default().With("component", "dispatch"),
	}
}

// SetMCPDispatcher installs the MCP host used to resolve unknown tool names.
func (r *Registry) SetMCPDispatcher(d MCPDispatcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mcp = d
}

// Register compiles tool's schema and adds it to the registry. A tool
// whose schema fails to compile is rejected rather than silently accepted
// with no validation, since an uncompilable schema would let every call
// through unchecked.
func (r *Registry) Register(tool Tool) error {
	schema := tool.Schema()
	if len(schema) == 0 {
		schema = json.RawMessage(`{"type":"object"}`)
	}
	compiled, err := jsonschema.CompileString(tool.Name(), string(schema))
	if err != nil {
		return fmt.Errorf("dispatch: compile schema for %q: %w", tool.Name(), err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
	r.compiled[tool.Name()] = compiled
	return nil
}

// Definitions returns the ToolDefinition for every registered tool, in the
// shape the router/provider adapters need to advertise tool-call support.
func (r *Registry) Definitions() []core.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]core.ToolDefinition, 0, len(r.tools))
	for name, tool := range r.tools {
		defs = append(defs, core.ToolDefinition{
			Name:        name,
			Description: tool.Description(),
			Schema:      tool.Schema(),
		})
	}
	return defs
}

// Execute runs the dispatcher contract of spec.md §4.6 for one named tool
// call: emit TOOL_EXEC_START, validate args against the declared schema,
// invoke the handler, convert a handler error into a failed ToolResult and
// emit TOOL_EXEC_ERROR, or emit TOOL_EXEC_END on success. Execute never
// returns a Go error itself — every outcome, including "unknown tool", is
// encoded in the returned ToolResult so the agent loop can feed it straight
// back to the model.
func (r *Registry) Execute(ctx context.Context, runID, name string, args json.RawMessage) *core.ToolResult {
	r.emit(ctx, runID, core.EventToolExecStart, core.SeverityInfo, "tool exec start", map[string]any{"tool": name})

	r.mu.RLock()
	tool, ok := r.tools[name]
	schema := r.compiled[name]
	mcp := r.mcp
	r.mu.RUnlock()

	if !ok {
		if mcp != nil {
			if result, handled, err := mcp.CallTool(ctx, name, args); handled {
				if err != nil {
					return r.fail(ctx, runID, name, err.Error())
				}
				return r.succeed(ctx, runID, name, result)
			}
		}
		return r.fail(ctx, runID, name, fmt.Sprintf("unknown tool: %s", name))
	}

	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	var payload any
	if err := json.Unmarshal(args, &payload); err != nil {
		return r.fail(ctx, runID, name, core.NewError(core.KindValidationFail, "invalid json arguments", err).Error())
	}
	if schema != nil {
		if err := schema.Validate(payload); err != nil {
			return r.fail(ctx, runID, name, core.NewError(core.KindValidationFail, "argument schema mismatch", err).Error())
		}
	}

	result, err := r.safeInvoke(ctx, tool, args)
	if err != nil {
		return r.fail(ctx, runID, name, err.Error())
	}
	if result == nil {
		result = &core.ToolResult{Success: true}
	}
	if !result.Success {
		r.emit(ctx, runID, core.EventToolExecError, core.SeverityError, "tool exec error", map[string]any{"tool": name, "error": result.Error})
		return result
	}
	r.emit(ctx, runID, core.EventToolExecEnd, core.SeverityInfo, "tool exec end", map[string]any{"tool": name})
	return result
}

// safeInvoke recovers a panicking handler into an EXEC_ERROR, since a
// single misbehaving tool must never take down the whole dispatch loop.
func (r *Registry) safeInvoke(ctx context.Context, tool Tool, args json.RawMessage) (result *core.ToolResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = core.NewError(core.KindExecError, "tool handler panicked", fmt.Errorf("%v", rec))
		}
	}()
	result, err = tool.Execute(ctx, args)
	if err != nil {
		err = core.NewError(core.KindExecError, "tool handler error", err)
	}
	return result, err
}

func (r *Registry) succeed(ctx context.Context, runID, name string, result *core.ToolResult) *core.ToolResult {
	result.Success = true
	r.emit(ctx, runID, core.EventToolExecEnd, core.SeverityInfo, "tool exec end", map[string]any{"tool": name})
	return result
}

func (r *Registry) fail(ctx context.Context, runID, name, reason string) *core.ToolResult {
	r.emit(ctx, runID, core.EventToolExecError, core.SeverityError, "tool exec error", map[string]any{"tool": name, "error": reason})
	return &core.ToolResult{Success: false, Error: reason}
}

func (r *Registry) emit(ctx context.Context, runID, eventType string, severity core.Severity, message string, data map[string]any) {
	if r.sink == nil {
		return
	}
	r.sink.Emit(ctx, &core.AuditEvent{RunID: runID, EventType: eventType, Severity: severity, Message: message, Data: data})
}
