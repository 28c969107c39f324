package providers

import (
	"encoding/json"
	"testing"

	"github.com/agentcore/core/pkg/core"
)

func TestConvertOpenAIMessagesRoundTripsRolesAndToolCalls(t *testing.T) {
	messages := []core.Message{
		{Role: core.RoleSystem, Content: "be terse"},
		{Role: core.RoleUser, Content: "list files"},
		{
			Role: core.RoleAssistant,
			ToolCalls: []core.ToolCall{
				{ID: "call-1", ToolName: "list_files", Arguments: json.RawMessage(`{"path":"."}`)},
			},
		},
		{Role: core.RoleTool, Content: "a.txt\nb.txt", ToolCallID: "call-1"},
	}

	out := convertOpenAIMessages(messages)
	if len(out) != len(messages) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(messages))
	}
	if out[0].Role != "system" || out[0].Content != "be terse" {
		t.Errorf("system message not preserved: %+v", out[0])
	}
	if out[2].ToolCalls[0].Function.Name != "list_files" {
		t.Errorf("tool call name not preserved: %+v", out[2].ToolCalls)
	}
	if out[3].ToolCallID != "call-1" {
		t.Errorf("tool call id not preserved: %+v", out[3])
	}
}

func TestConvertOpenAIToolsBuildsFunctionDefinitions(t *testing.T) {
	tools := []core.ToolDefinition{
		{Name: "search", Description: "search the web", Schema: json.RawMessage(`{"type":"object","properties":{"q":{"type":"string"}}}`)},
	}
	out, err := convertOpenAITools(tools)
	if err != nil {
		t.Fatalf("convertOpenAITools() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Function.Name != "search" {
		t.Errorf("Function.Name = %q, want search", out[0].Function.Name)
	}
}

func TestConvertOpenAIToolsInvalidSchema(t *testing.T) {
	tools := []core.ToolDefinition{{Name: "bad", Schema: json.RawMessage(`not json`)}}
	if _, err := convertOpenAITools(tools); err == nil {
		t.Error("expected error for invalid schema JSON")
	}
}
