// Package filesystem implements the "filesystem" built-in tool of
// spec.md §4.6: read, write, mkdir, chmod, list, delete, move, copy, all
// gated by the sandbox policy (C2) and, for write/delete/modify, recorded
// in the run journal (C3).
package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/agentcore/core/internal/journal"
	"github.com/agentcore/core/internal/observability"
	"github.com/agentcore/core/internal/sandbox"
	"github.com/agentcore/core/internal/tools/files"
	"github.com/agentcore/core/pkg/core"
)

// Config controls filesystem tool defaults.
type Config struct {
	Workspace    string
	MaxReadBytes int
}

// Tool implements the filesystem built-in.
type Tool struct {
	resolver     files.Resolver
	policy       *sandbox.Policy
	journal      *journal.Journal
	maxReadBytes int
}

// New builds the filesystem tool scoped to cfg.Workspace, enforcing policy
// and journaling reversible operations through jrnl.
func New(cfg Config, policy *sandbox.Policy, jrnl *journal.Journal) *Tool {
	limit := cfg.MaxReadBytes
	if limit <= 0 {
		limit = 200000
	}
	return &Tool{
		resolver:     files.Resolver{Root: cfg.Workspace},
		policy:       policy,
		journal:      jrnl,
		maxReadBytes: limit,
	}
}

func (t *Tool) Name() string { return "filesystem" }

func (t *Tool) Description() string {
	return "Read, write, mkdir, chmod, list, delete, move, or copy files in the workspace."
}

func (t *Tool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"operation": map[string]interface{}{
				"type":        "string",
				"description": "One of: read, write, mkdir, chmod, list, delete, move, copy.",
				"enum":        []string{"read", "write", "mkdir", "chmod", "list", "delete", "move", "copy"},
			},
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path relative to the workspace.",
			},
			"dest": map[string]interface{}{
				"type":        "string",
				"description": "Destination path for move/copy.",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "File content for write.",
			},
			"append": map[string]interface{}{
				"type":        "boolean",
				"description": "Append instead of overwrite (write only).",
			},
			"mode": map[string]interface{}{
				"type":        "string",
				"description": "Octal permission string for chmod, e.g. \"755\".",
			},
			"offset": map[string]interface{}{
				"type":        "integer",
				"description": "Byte offset for read.",
				"minimum":     0,
			},
			"max_bytes": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum bytes to read.",
				"minimum":     0,
			},
		},
		"required": []string{"operation", "path"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

type params struct {
	Operation string `json:"operation"`
	Path      string `json:"path"`
	Dest      string `json:"dest"`
	Content   string `json:"content"`
	Append    bool   `json:"append"`
	Mode      string `json:"mode"`
	Offset    int64  `json:"offset"`
	MaxBytes  int    `json:"max_bytes"`
}

func (t *Tool) Execute(ctx context.Context, raw json.RawMessage) (*core.ToolResult, error) {
	var p params
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if strings.TrimSpace(p.Path) == "" {
		return fail("path is required"), nil
	}

	runID := observability.GetRunID(ctx)

	switch p.Operation {
	case "read":
		return t.read(p)
	case "list":
		return t.list(p)
	case "write":
		return t.write(ctx, runID, p)
	case "mkdir":
		return t.mkdir(ctx, runID, p)
	case "chmod":
		return t.chmod(p)
	case "delete":
		return t.delete(ctx, runID, p)
	case "move":
		return t.move(ctx, runID, p)
	case "copy":
		return t.copy(ctx, runID, p)
	default:
		return fail(fmt.Sprintf("unsupported operation: %s", p.Operation)), nil
	}
}

// checkPath enforces the sandbox policy on a resolved path, returning the
// "Denied: <reason>" error shape spec.md's S6 scenario names.
func (t *Tool) checkPath(path string) error {
	if t.policy == nil {
		return nil
	}
	verdict := t.policy.Decide(sandbox.Step{Kind: sandbox.KindFilesystem, Path: path})
	if !verdict.Allow {
		return fmt.Errorf("Denied: %s", verdict.Reason)
	}
	return nil
}

func (t *Tool) read(p params) (*core.ToolResult, error) {
	resolved, err := t.resolver.Resolve(p.Path)
	if err != nil {
		return fail(err.Error()), nil
	}
	if err := t.checkPath(resolved); err != nil {
		return fail(err.Error()), nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return fail(fmt.Sprintf("read file: %v", err)), nil
	}
	limit := t.maxReadBytes
	if p.MaxBytes > 0 && p.MaxBytes < limit {
		limit = p.MaxBytes
	}
	content := data
	truncated := false
	if p.Offset > 0 {
		if p.Offset >= int64(len(content)) {
			content = nil
		} else {
			content = content[p.Offset:]
		}
	}
	if len(content) > limit {
		content = content[:limit]
		truncated = true
	}
	return ok(map[string]any{
		"path":      p.Path,
		"content":   string(content),
		"bytes":     len(content),
		"truncated": truncated,
	}), nil
}

func (t *Tool) list(p params) (*core.ToolResult, error) {
	resolved, err := t.resolver.Resolve(p.Path)
	if err != nil {
		return fail(err.Error()), nil
	}
	if err := t.checkPath(resolved); err != nil {
		return fail(err.Error()), nil
	}
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return fail(fmt.Sprintf("list directory: %v", err)), nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return ok(map[string]any{"path": p.Path, "entries": names}), nil
}

func (t *Tool) write(ctx context.Context, runID string, p params) (*core.ToolResult, error) {
	resolved, err := t.resolver.Resolve(p.Path)
	if err != nil {
		return fail(err.Error()), nil
	}
	if err := t.checkPath(resolved); err != nil {
		return fail(err.Error()), nil
	}

	var before *string
	existed := false
	if data, readErr := os.ReadFile(resolved); readErr == nil {
		existed = true
		s := string(data)
		before = &s
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fail(fmt.Sprintf("create directory: %v", err)), nil
	}

	flags := os.O_CREATE | os.O_WRONLY
	if p.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(resolved, flags, 0o644)
	if err != nil {
		return fail(fmt.Sprintf("open file: %v", err)), nil
	}
	n, err := file.WriteString(p.Content)
	closeErr := file.Close()
	if err != nil {
		return fail(fmt.Sprintf("write file: %v", err)), nil
	}
	if closeErr != nil {
		return fail(fmt.Sprintf("close file: %v", closeErr)), nil
	}

	if t.journal != nil {
		if existed {
			after := p.Content
			if p.Append && before != nil {
				after = *before + p.Content
			}
			_, _ = t.journal.FileModify(runID, p.Path, derefOr(before, ""), after, "filesystem write")
		} else {
			_, _ = t.journal.FileCreate(runID, p.Path, p.Content)
		}
	}

	return ok(map[string]any{"path": p.Path, "bytes_written": n, "append": p.Append}), nil
}

func (t *Tool) mkdir(ctx context.Context, runID string, p params) (*core.ToolResult, error) {
	resolved, err := t.resolver.Resolve(p.Path)
	if err != nil {
		return fail(err.Error()), nil
	}
	if err := t.checkPath(resolved); err != nil {
		return fail(err.Error()), nil
	}
	if err := os.MkdirAll(resolved, 0o755); err != nil {
		return fail(fmt.Sprintf("mkdir: %v", err)), nil
	}
	if t.journal != nil {
		_, _ = t.journal.DirectoryCreate(runID, p.Path)
	}
	return ok(map[string]any{"path": p.Path}), nil
}

func (t *Tool) chmod(p params) (*core.ToolResult, error) {
	resolved, err := t.resolver.Resolve(p.Path)
	if err != nil {
		return fail(err.Error()), nil
	}
	if err := t.checkPath(resolved); err != nil {
		return fail(err.Error()), nil
	}
	mode, err := strconv.ParseUint(strings.TrimSpace(p.Mode), 8, 32)
	if err != nil {
		return fail(fmt.Sprintf("invalid mode: %v", err)), nil
	}
	if err := os.Chmod(resolved, os.FileMode(mode)); err != nil {
		return fail(fmt.Sprintf("chmod: %v", err)), nil
	}
	return ok(map[string]any{"path": p.Path, "mode": p.Mode}), nil
}

func (t *Tool) delete(ctx context.Context, runID string, p params) (*core.ToolResult, error) {
	resolved, err := t.resolver.Resolve(p.Path)
	if err != nil {
		return fail(err.Error()), nil
	}
	if err := t.checkPath(resolved); err != nil {
		return fail(err.Error()), nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return fail(fmt.Sprintf("read before delete: %v", err)), nil
	}
	if err := os.Remove(resolved); err != nil {
		return fail(fmt.Sprintf("delete: %v", err)), nil
	}
	if t.journal != nil {
		_, _ = t.journal.FileDelete(runID, p.Path, string(data))
	}
	return ok(map[string]any{"path": p.Path}), nil
}

func (t *Tool) move(ctx context.Context, runID string, p params) (*core.ToolResult, error) {
	if strings.TrimSpace(p.Dest) == "" {
		return fail("dest is required"), nil
	}
	src, err := t.resolver.Resolve(p.Path)
	if err != nil {
		return fail(err.Error()), nil
	}
	dest, err := t.resolver.Resolve(p.Dest)
	if err != nil {
		return fail(err.Error()), nil
	}
	if err := t.checkPath(src); err != nil {
		return fail(err.Error()), nil
	}
	if err := t.checkPath(dest); err != nil {
		return fail(err.Error()), nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fail(fmt.Sprintf("read source: %v", err)), nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fail(fmt.Sprintf("create destination directory: %v", err)), nil
	}
	if err := os.Rename(src, dest); err != nil {
		return fail(fmt.Sprintf("move: %v", err)), nil
	}
	if t.journal != nil {
		_, _ = t.journal.FileDelete(runID, p.Path, string(data))
		_, _ = t.journal.FileCreate(runID, p.Dest, string(data))
	}
	return ok(map[string]any{"from": p.Path, "to": p.Dest}), nil
}

func (t *Tool) copy(ctx context.Context, runID string, p params) (*core.ToolResult, error) {
	if strings.TrimSpace(p.Dest) == "" {
		return fail("dest is required"), nil
	}
	src, err := t.resolver.Resolve(p.Path)
	if err != nil {
		return fail(err.Error()), nil
	}
	dest, err := t.resolver.Resolve(p.Dest)
	if err != nil {
		return fail(err.Error()), nil
	}
	if err := t.checkPath(src); err != nil {
		return fail(err.Error()), nil
	}
	if err := t.checkPath(dest); err != nil {
		return fail(err.Error()), nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fail(fmt.Sprintf("read source: %v", err)), nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fail(fmt.Sprintf("create destination directory: %v", err)), nil
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fail(fmt.Sprintf("copy: %v", err)), nil
	}
	if t.journal != nil {
		_, _ = t.journal.FileCreate(runID, p.Dest, string(data))
	}
	return ok(map[string]any{"from": p.Path, "to": p.Dest}), nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func ok(output map[string]any) *core.ToolResult {
	return &core.ToolResult{Success: true, Output: output}
}

func fail(reason string) *core.ToolResult {
	return &core.ToolResult{Success: false, Error: reason}
}
