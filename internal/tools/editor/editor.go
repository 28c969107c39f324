// Package editor implements the "editor" built-in tool of spec.md §4.6:
// replace, insert, delete_lines, and patch operations on a single workspace
// file, each journaled as a modify entry carrying the full before/after
// content.
package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/agentcore/core/internal/journal"
	"github.com/agentcore/core/internal/observability"
	"github.com/agentcore/core/internal/sandbox"
	"github.com/agentcore/core/internal/tools/files"
	"github.com/agentcore/core/pkg/core"
)

// Config controls editor tool defaults.
type Config struct {
	Workspace string
}

// Tool implements the editor built-in.
type Tool struct {
	resolver files.Resolver
	policy   *sandbox.Policy
	journal  *journal.Journal
}

// New builds the editor tool scoped to cfg.Workspace.
func New(cfg Config, policy *sandbox.Policy, jrnl *journal.Journal) *Tool {
	return &Tool{resolver: files.Resolver{Root: cfg.Workspace}, policy: policy, journal: jrnl}
}

func (t *Tool) Name() string { return "editor" }

func (t *Tool) Description() string {
	return "Apply replace, insert, delete_lines, or unified-diff patch edits to a workspace file."
}

func (t *Tool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"operation": map[string]interface{}{
				"type": "string",
				"enum": []string{"replace", "insert", "delete_lines", "patch"},
			},
			"path": map[string]interface{}{
				"type":        "string",
				"description": "File to edit, relative to the workspace.",
			},
			"old_text": map[string]interface{}{
				"type":        "string",
				"description": "Text to find (replace operation).",
			},
			"new_text": map[string]interface{}{
				"type":        "string",
				"description": "Replacement or inserted text.",
			},
			"replace_all": map[string]interface{}{
				"type":        "boolean",
				"description": "Replace every occurrence instead of the first (replace operation).",
			},
			"line": map[string]interface{}{
				"type":        "integer",
				"description": "1-indexed line number (insert operation: insert before this line).",
				"minimum":     1,
			},
			"start_line": map[string]interface{}{
				"type":        "integer",
				"description": "1-indexed first line to delete (delete_lines operation).",
				"minimum":     1,
			},
			"end_line": map[string]interface{}{
				"type":        "integer",
				"description": "1-indexed last line to delete, inclusive (delete_lines operation).",
				"minimum":     1,
			},
			"patch": map[string]interface{}{
				"type":        "string",
				"description": "Unified diff patch (patch operation).",
			},
		},
		"required": []string{"operation"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

type params struct {
	Operation  string `json:"operation"`
	Path       string `json:"path"`
	OldText    string `json:"old_text"`
	NewText    string `json:"new_text"`
	ReplaceAll bool   `json:"replace_all"`
	Line       int    `json:"line"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Patch      string `json:"patch"`
}

func (t *Tool) Execute(ctx context.Context, raw json.RawMessage) (*core.ToolResult, error) {
	var p params
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	runID := observability.GetRunID(ctx)

	if p.Operation == "patch" {
		return t.patch(runID, p)
	}

	if strings.TrimSpace(p.Path) == "" {
		return fail("path is required"), nil
	}
	resolved, err := t.resolver.Resolve(p.Path)
	if err != nil {
		return fail(err.Error()), nil
	}
	if t.policy != nil {
		if verdict := t.policy.Decide(sandbox.Step{Kind: sandbox.KindFilesystem, Path: resolved}); !verdict.Allow {
			return fail(fmt.Sprintf("Denied: %s", verdict.Reason)), nil
		}
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return fail(fmt.Sprintf("read file: %v", err)), nil
	}
	before := string(data)

	var after string
	var summary map[string]any
	switch p.Operation {
	case "replace":
		after, summary, err = applyReplace(before, p)
	case "insert":
		after, summary, err = applyInsert(before, p)
	case "delete_lines":
		after, summary, err = applyDeleteLines(before, p)
	default:
		return fail(fmt.Sprintf("unsupported operation: %s", p.Operation)), nil
	}
	if err != nil {
		return fail(err.Error()), nil
	}

	if err := os.WriteFile(resolved, []byte(after), 0o644); err != nil {
		return fail(fmt.Sprintf("write file: %v", err)), nil
	}
	if t.journal != nil {
		_, _ = t.journal.FileModify(runID, p.Path, before, after, "editor "+p.Operation)
	}
	summary["path"] = p.Path
	return ok(summary), nil
}

func applyReplace(content string, p params) (string, map[string]any, error) {
	if p.OldText == "" {
		return "", nil, fmt.Errorf("old_text is required")
	}
	if !strings.Contains(content, p.OldText) {
		return "", nil, fmt.Errorf("old_text not found")
	}
	replacements := 1
	var after string
	if p.ReplaceAll {
		replacements = strings.Count(content, p.OldText)
		after = strings.ReplaceAll(content, p.OldText, p.NewText)
	} else {
		after = strings.Replace(content, p.OldText, p.NewText, 1)
	}
	return after, map[string]any{"replacements": replacements}, nil
}

func applyInsert(content string, p params) (string, map[string]any, error) {
	if p.Line < 1 {
		return "", nil, fmt.Errorf("line must be >= 1")
	}
	lines := splitKeepTrailing(content)
	idx := p.Line - 1
	if idx > len(lines) {
		idx = len(lines)
	}
	inserted := strings.Split(p.NewText, "\n")
	out := make([]string, 0, len(lines)+len(inserted))
	out = append(out, lines[:idx]...)
	out = append(out, inserted...)
	out = append(out, lines[idx:]...)
	return strings.Join(out, "\n"), map[string]any{"inserted_at": p.Line}, nil
}

func applyDeleteLines(content string, p params) (string, map[string]any, error) {
	if p.StartLine < 1 || p.EndLine < p.StartLine {
		return "", nil, fmt.Errorf("start_line/end_line invalid")
	}
	lines := splitKeepTrailing(content)
	start := p.StartLine - 1
	end := p.EndLine
	if start >= len(lines) {
		return "", nil, fmt.Errorf("start_line out of range")
	}
	if end > len(lines) {
		end = len(lines)
	}
	removed := end - start
	out := append(append([]string{}, lines[:start]...), lines[end:]...)
	return strings.Join(out, "\n"), map[string]any{"lines_removed": removed}, nil
}

func splitKeepTrailing(content string) []string {
	return strings.Split(content, "\n")
}

// --- unified diff patch support, grounded on the teacher's apply_patch tool ---

type filePatch struct {
	Path  string
	Hunks []hunk
}

type hunk struct {
	OldStart int
	Lines    []string
}

var hunkHeader = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

func (t *Tool) patch(runID string, p params) (*core.ToolResult, error) {
	if strings.TrimSpace(p.Patch) == "" {
		return fail("patch is required"), nil
	}
	patches, err := parseUnifiedDiff(p.Patch)
	if err != nil {
		return fail(err.Error()), nil
	}
	results := make([]map[string]any, 0, len(patches))
	for _, fp := range patches {
		resolved, err := t.resolver.Resolve(fp.Path)
		if err != nil {
			return fail(err.Error()), nil
		}
		if t.policy != nil {
			if verdict := t.policy.Decide(sandbox.Step{Kind: sandbox.KindFilesystem, Path: resolved}); !verdict.Allow {
				return fail(fmt.Sprintf("Denied: %s", verdict.Reason)), nil
			}
		}
		data, err := os.ReadFile(resolved)
		if err != nil {
			return fail(fmt.Sprintf("read file: %v", err)), nil
		}
		before := string(data)
		after, added, removed, err := applyFilePatch(before, fp)
		if err != nil {
			return fail(fmt.Sprintf("apply patch: %v", err)), nil
		}
		if err := os.WriteFile(resolved, []byte(after), 0o644); err != nil {
			return fail(fmt.Sprintf("write file: %v", err)), nil
		}
		if t.journal != nil {
			_, _ = t.journal.FileModify(runID, fp.Path, before, after, "editor patch")
		}
		results = append(results, map[string]any{
			"path":          fp.Path,
			"hunks":         len(fp.Hunks),
			"lines_added":   added,
			"lines_removed": removed,
		})
	}
	return ok(map[string]any{"applied": results}), nil
}

func parseUnifiedDiff(patch string) ([]filePatch, error) {
	lines := strings.Split(patch, "\n")
	var patches []filePatch
	var current *filePatch
	var currentHunk *hunk

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "diff ") || strings.HasPrefix(line, "index "):
			continue
		case strings.HasPrefix(line, "--- "):
			if i+1 >= len(lines) || !strings.HasPrefix(lines[i+1], "+++ ") {
				return nil, fmt.Errorf("invalid patch: missing +++ header")
			}
			newPath := strings.TrimSpace(strings.TrimPrefix(lines[i+1], "+++ "))
			newPath = strings.TrimPrefix(strings.TrimPrefix(newPath, "b/"), "a/")
			patches = append(patches, filePatch{Path: newPath})
			current = &patches[len(patches)-1]
			currentHunk = nil
			i++
		case strings.HasPrefix(line, "@@ "):
			if current == nil {
				return nil, fmt.Errorf("invalid patch: hunk without file header")
			}
			match := hunkHeader.FindStringSubmatch(line)
			if match == nil {
				return nil, fmt.Errorf("invalid patch: malformed hunk header")
			}
			h := hunk{OldStart: atoi(match[1])}
			current.Hunks = append(current.Hunks, h)
			currentHunk = &current.Hunks[len(current.Hunks)-1]
		default:
			if currentHunk == nil || line == "" || line == "\\ No newline at end of file" {
				continue
			}
			prefix := line[:1]
			if prefix != " " && prefix != "+" && prefix != "-" {
				return nil, fmt.Errorf("invalid patch line: %s", line)
			}
			currentHunk.Lines = append(currentHunk.Lines, line)
		}
	}
	if len(patches) == 0 {
		return nil, fmt.Errorf("invalid patch: no file headers found")
	}
	return patches, nil
}

func applyFilePatch(content string, patch filePatch) (string, int, int, error) {
	hadTrailing := strings.HasSuffix(content, "\n")
	trimmed := strings.TrimSuffix(content, "\n")
	var lines []string
	if trimmed != "" {
		lines = strings.Split(trimmed, "\n")
	}

	added, removed := 0, 0
	for _, h := range patch.Hunks {
		idx := h.OldStart - 1
		if idx < 0 {
			idx = 0
		}
		for _, line := range h.Lines {
			prefix := line[:1]
			text := ""
			if len(line) > 1 {
				text = line[1:]
			}
			switch prefix {
			case " ":
				if idx >= len(lines) || lines[idx] != text {
					return "", 0, 0, fmt.Errorf("context mismatch")
				}
				idx++
			case "-":
				if idx >= len(lines) || lines[idx] != text {
					return "", 0, 0, fmt.Errorf("delete mismatch")
				}
				lines = append(lines[:idx], lines[idx+1:]...)
				removed++
			case "+":
				lines = append(lines[:idx], append([]string{text}, lines[idx:]...)...)
				idx++
				added++
			}
		}
	}

	result := strings.Join(lines, "\n")
	if hadTrailing {
		result += "\n"
	}
	return result, added, removed, nil
}

func atoi(value string) int {
	out := 0
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0
		}
		out = out*10 + int(r-'0')
	}
	return out
}

func ok(output map[string]any) *core.ToolResult {
	return &core.ToolResult{Success: true, Output: output}
}

func fail(reason string) *core.ToolResult {
	return &core.ToolResult{Success: false, Error: reason}
}
