package editor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentcore/core/internal/journal"
	"github.com/agentcore/core/internal/sandbox"
)

func newTestTool(t *testing.T) (*Tool, string) {
	t.Helper()
	root := t.TempDir()
	jrnl, err := journal.New(filepath.Join(root, "journal"), filepath.Join(root, "backups"))
	if err != nil {
		t.Fatalf("journal.New() error = %v", err)
	}
	policy := sandbox.NewPolicy(root, nil)
	return New(Config{Workspace: root}, policy, jrnl), root
}

func marshal(t *testing.T, v map[string]any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	return data
}

func TestEditorReplace(t *testing.T) {
	tool, root := newTestTool(t)
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello world"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	result, err := tool.Execute(context.Background(), marshal(t, map[string]any{
		"operation": "replace",
		"path":      "notes.txt",
		"old_text":  "world",
		"new_text":  "agentcore",
	}))
	if err != nil || !result.Success {
		t.Fatalf("replace failed: result=%+v err=%v", result, err)
	}
	data, _ := os.ReadFile(filepath.Join(root, "notes.txt"))
	if string(data) != "hello agentcore" {
		t.Errorf("content = %q, want %q", data, "hello agentcore")
	}
}

func TestEditorInsert(t *testing.T) {
	tool, root := newTestTool(t)
	if err := os.WriteFile(filepath.Join(root, "f.txt"), []byte("a\nc"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	result, err := tool.Execute(context.Background(), marshal(t, map[string]any{
		"operation": "insert",
		"path":      "f.txt",
		"line":      2,
		"new_text":  "b",
	}))
	if err != nil || !result.Success {
		t.Fatalf("insert failed: result=%+v err=%v", result, err)
	}
	data, _ := os.ReadFile(filepath.Join(root, "f.txt"))
	if string(data) != "a\nb\nc" {
		t.Errorf("content = %q, want %q", data, "a\\nb\\nc")
	}
}

func TestEditorDeleteLines(t *testing.T) {
	tool, root := newTestTool(t)
	if err := os.WriteFile(filepath.Join(root, "f.txt"), []byte("a\nb\nc"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	result, err := tool.Execute(context.Background(), marshal(t, map[string]any{
		"operation":  "delete_lines",
		"path":       "f.txt",
		"start_line": 2,
		"end_line":   2,
	}))
	if err != nil || !result.Success {
		t.Fatalf("delete_lines failed: result=%+v err=%v", result, err)
	}
	data, _ := os.ReadFile(filepath.Join(root, "f.txt"))
	if string(data) != "a\nc" {
		t.Errorf("content = %q, want %q", data, "a\\nc")
	}
}

func TestEditorPatch(t *testing.T) {
	tool, root := newTestTool(t)
	if err := os.WriteFile(filepath.Join(root, "file.txt"), []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	patch := strings.Join([]string{
		"--- a/file.txt",
		"+++ b/file.txt",
		"@@ -1,3 +1,3 @@",
		" a",
		"-b",
		"+bb",
		" c",
		"",
	}, "\n")

	result, err := tool.Execute(context.Background(), marshal(t, map[string]any{
		"operation": "patch",
		"patch":     patch,
	}))
	if err != nil || !result.Success {
		t.Fatalf("patch failed: result=%+v err=%v", result, err)
	}
	data, _ := os.ReadFile(filepath.Join(root, "file.txt"))
	if string(data) != "a\nbb\nc\n" {
		t.Errorf("content = %q, want %q", data, "a\\nbb\\nc\\n")
	}
}

func TestEditorReplaceNotFound(t *testing.T) {
	tool, root := newTestTool(t)
	if err := os.WriteFile(filepath.Join(root, "f.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	result, err := tool.Execute(context.Background(), marshal(t, map[string]any{
		"operation": "replace",
		"path":      "f.txt",
		"old_text":  "missing",
		"new_text":  "y",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Success {
		t.Fatal("expected failure for missing old_text")
	}
}
