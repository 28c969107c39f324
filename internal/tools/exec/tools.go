package exec

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agentcore/core/internal/journal"
	"github.com/agentcore/core/internal/observability"
	"github.com/agentcore/core/internal/sandbox"
	"github.com/agentcore/core/internal/tools/security"
	"github.com/agentcore/core/pkg/core"
)

// ExecTool runs shell commands; it backs the spec's "terminal" built-in.
// Every command is judged by the sandbox policy before it runs and
// journaled as a non-reversible terminal_command entry afterward.
type ExecTool struct {
	name    string
	manager *Manager
	policy  *sandbox.Policy
	journal *journal.Journal
}

// NewExecTool creates an exec tool with the given name, gated by policy and
// journaled through jrnl. policy/jrnl may be nil (mainly for tests).
func NewExecTool(name string, manager *Manager, policy *sandbox.Policy, jrnl *journal.Journal) *ExecTool {
	if strings.TrimSpace(name) == "" {
		name = "terminal"
	}
	return &ExecTool{name: name, manager: manager, policy: policy, journal: jrnl}
}

func (t *ExecTool) Name() string { return t.name }

func (t *ExecTool) Description() string {
	return "Run a shell command in the workspace (supports optional background execution)."
}

func (t *ExecTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"command": map[string]interface{}{
				"type":        "string",
				"description": "Shell command to execute.",
			},
			"cwd": map[string]interface{}{
				"type":        "string",
				"description": "Working directory (relative to workspace).",
			},
			"env": map[string]interface{}{
				"type":        "object",
				"description": "Environment overrides (string values).",
			},
			"input": map[string]interface{}{
				"type":        "string",
				"description": "Stdin content to pass to the command.",
			},
			"timeout_seconds": map[string]interface{}{
				"type":        "integer",
				"description": "Timeout in seconds (0 = no timeout).",
				"minimum":     0,
			},
			"background": map[string]interface{}{
				"type":        "boolean",
				"description": "Run in background and return a process id.",
			},
		},
		"required": []string{"command"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *ExecTool) Execute(ctx context.Context, params json.RawMessage) (*core.ToolResult, error) {
	if t.manager == nil {
		return fail("exec manager unavailable"), nil
	}
	var input struct {
		Command        string            `json:"command"`
		Cwd            string            `json:"cwd"`
		Env            map[string]string `json:"env"`
		Input          string            `json:"input"`
		TimeoutSeconds int               `json:"timeout_seconds"`
		Background     bool              `json:"background"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	command := strings.TrimSpace(input.Command)
	if command == "" {
		return fail("command is required"), nil
	}

	if t.policy != nil {
		if verdict := t.policy.Decide(sandbox.Step{Kind: sandbox.KindTerminal, Command: command}); !verdict.Allow {
			return fail(fmt.Sprintf("Denied: %s", verdict.Reason)), nil
		}
	}

	runID := observability.GetRunID(ctx)
	timeout := time.Duration(input.TimeoutSeconds) * time.Second

	if input.Background {
		proc, err := t.manager.startBackground(ctx, command, input.Cwd, input.Env, input.Input, timeout)
		if err != nil {
			return fail(err.Error()), nil
		}
		if t.journal != nil {
			_, _ = t.journal.TerminalCommand(runID, command, "started in background: "+proc.id)
		}
		return ok(map[string]any{"status": "running", "process_id": proc.id}), nil
	}

	result, err := t.manager.runSync(ctx, command, input.Cwd, input.Env, input.Input, timeout)
	if err != nil {
		return fail(err.Error()), nil
	}
	if t.journal != nil {
		_, _ = t.journal.TerminalCommand(runID, command, result.Stdout)
	}

	analysis := security.AnalyzeCommandQuoteAware(command)
	return ok(map[string]any{
		"command":          result.Command,
		"cwd":              result.Cwd,
		"stdout":           result.Stdout,
		"stderr":           result.Stderr,
		"exit_code":        result.ExitCode,
		"duration":         result.Duration.String(),
		"dangerous_tokens": analysis.DangerousTokens,
	}), nil
}

// ProcessTool inspects and manages background exec processes.
type ProcessTool struct {
	manager *Manager
}

// NewProcessTool creates a process tool.
func NewProcessTool(manager *Manager) *ProcessTool {
	return &ProcessTool{manager: manager}
}

func (t *ProcessTool) Name() string { return "process" }

func (t *ProcessTool) Description() string {
	return "Manage background exec processes (list, status, log, write, kill, remove)."
}

func (t *ProcessTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"action": map[string]interface{}{
				"type":        "string",
				"description": "Action: list, status, log, write, kill, remove.",
			},
			"process_id": map[string]interface{}{
				"type":        "string",
				"description": "Process id for actions that target a process.",
			},
			"input": map[string]interface{}{
				"type":        "string",
				"description": "Input for write action.",
			},
		},
		"required": []string{"action"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *ProcessTool) Execute(ctx context.Context, params json.RawMessage) (*core.ToolResult, error) {
	if t.manager == nil {
		return fail("process manager unavailable"), nil
	}
	var input struct {
		Action    string `json:"action"`
		ProcessID string `json:"process_id"`
		Input     string `json:"input"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	action := strings.ToLower(strings.TrimSpace(input.Action))
	if action == "" {
		return fail("action is required"), nil
	}

	if action == "list" {
		return ok(map[string]any{"processes": t.manager.list()}), nil
	}

	if strings.TrimSpace(input.ProcessID) == "" {
		return fail("process_id is required"), nil
	}
	proc, found := t.manager.get(strings.TrimSpace(input.ProcessID))
	if !found {
		return fail("process not found"), nil
	}

	switch action {
	case "status":
		return ok(map[string]any{
			"id":         proc.id,
			"command":    proc.command,
			"status":     proc.status(),
			"started_at": proc.started,
			"exit_code":  proc.exitCode,
			"error":      errorString(proc.err),
		}), nil
	case "log":
		return ok(map[string]any{
			"stdout": proc.stdout.String(),
			"stderr": proc.stderr.String(),
			"status": proc.status(),
		}), nil
	case "write":
		if proc.stdin == nil {
			return fail("process stdin unavailable"), nil
		}
		if input.Input == "" {
			return fail("input is required"), nil
		}
		if _, err := proc.stdin.Write([]byte(input.Input)); err != nil {
			return fail(fmt.Sprintf("write stdin: %v", err)), nil
		}
		return ok(map[string]any{"status": "written"}), nil
	case "kill":
		if proc.cmd.Process == nil {
			return fail("process not running"), nil
		}
		if err := proc.cmd.Process.Kill(); err != nil {
			return fail(fmt.Sprintf("kill process: %v", err)), nil
		}
		return ok(map[string]any{"status": "killed"}), nil
	case "remove":
		if proc.status() == "running" {
			return fail("process still running"), nil
		}
		if !t.manager.remove(proc.id) {
			return fail("remove failed"), nil
		}
		return ok(map[string]any{"status": "removed"}), nil
	default:
		return fail("unsupported action"), nil
	}
}

func ok(output map[string]any) *core.ToolResult {
	return &core.ToolResult{Success: true, Output: output}
}

func fail(reason string) *core.ToolResult {
	return &core.ToolResult{Success: false, Error: reason}
}
