package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/agentcore/core/internal/dispatch"
	"github.com/agentcore/core/internal/sandbox"
	"github.com/agentcore/core/pkg/core"
)

// Host adapts a Manager's connected MCP servers into C6 tools, namespaced
// `<server>__<tool-name>` per spec.md §4.9. It registers each tool
// straight into a dispatch.Registry so calls get the registry's ordinary
// schema validation, audit events, and panic recovery for free.
type Host struct {
	manager *Manager
	policy  *sandbox.Policy
	logger  *slog.Logger
}

// NewHost builds a Host. policy may be nil to skip the sandbox pre-check
// (tests, or a deployment with no sandbox configured).
func NewHost(manager *Manager, policy *sandbox.Policy) *Host {
	return &Host{
		manager: manager,
		policy:  policy,
		logger:  slog.Default().With("component", "mcp-host"),
	}
}

// Start connects every auto_start server. A server that fails to connect
// is logged and skipped; the host never aborts the agent over it.
func (h *Host) Start(ctx context.Context) {
	if h.manager == nil {
		return
	}
	if err := h.manager.Start(ctx); err != nil {
		h.logger.Warn("mcp host start encountered an error", "error", err)
	}
}

// Stop closes every connected transport.
func (h *Host) Stop() error {
	if h.manager == nil {
		return nil
	}
	return h.manager.Stop()
}

// RegisterTools wraps every connected server's listed tools in a
// sandbox-checked ToolBridge and registers them with r. It returns the
// registered names.
func (h *Host) RegisterTools(r *dispatch.Registry) ([]string, error) {
	if h.manager == nil {
		return nil, nil
	}
	entries := listToolsSorted(h.manager)
	used := make(map[string]struct{})
	registered := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := safeToolName(entry.serverID, entry.tool.Name, used)
		tool := &sandboxedTool{
			policy:   h.policy,
			serverID: entry.serverID,
			toolName: entry.tool.Name,
			inner:    NewToolBridge(h.manager, entry.serverID, entry.tool, name),
		}
		if err := r.Register(tool); err != nil {
			return registered, fmt.Errorf("mcp: register %q: %w", name, err)
		}
		registered = append(registered, name)
	}
	return registered, nil
}

// sandboxedTool runs the sandbox pre-check (the resolved Open Question:
// yes, MCP tool calls are routed through the sandbox policy like any
// other effect, using sandbox.KindOther since an MCP server's side
// effects are opaque to the host) before delegating to inner.
type sandboxedTool struct {
	policy   *sandbox.Policy
	serverID string
	toolName string
	inner    *ToolBridge
}

func (t *sandboxedTool) Name() string            { return t.inner.Name() }
func (t *sandboxedTool) Description() string     { return t.inner.Description() }
func (t *sandboxedTool) Schema() json.RawMessage { return t.inner.Schema() }

func (t *sandboxedTool) Execute(ctx context.Context, params json.RawMessage) (*core.ToolResult, error) {
	if t.policy != nil {
		verdict := t.policy.Decide(sandbox.Step{Kind: sandbox.KindOther, Path: t.serverID + "/" + t.toolName})
		if !verdict.Allow {
			return &core.ToolResult{Success: false, Error: fmt.Sprintf("Denied: %s", verdict.Reason)}, nil
		}
	}
	return t.inner.Execute(ctx, params)
}
