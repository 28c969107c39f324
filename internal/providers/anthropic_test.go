package providers

import (
	"encoding/json"
	"testing"

	"github.com/agentcore/core/pkg/core"
)

func TestConvertAnthropicMessagesExtractsSystemPrompt(t *testing.T) {
	messages := []core.Message{
		{Role: core.RoleSystem, Content: "be terse"},
		{Role: core.RoleSystem, Content: "avoid jargon"},
		{Role: core.RoleUser, Content: "hello"},
	}

	var system string
	out, err := convertAnthropicMessages(messages, &system)
	if err != nil {
		t.Fatalf("convertAnthropicMessages() error = %v", err)
	}
	if system != "be terse\navoid jargon" {
		t.Errorf("system = %q, want joined system prompts", system)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1 (system messages excluded)", len(out))
	}
}

func TestConvertAnthropicMessagesInvalidToolArgs(t *testing.T) {
	messages := []core.Message{
		{
			Role: core.RoleAssistant,
			ToolCalls: []core.ToolCall{
				{ID: "1", ToolName: "x", Arguments: json.RawMessage(`not json`)},
			},
		},
	}
	var system string
	if _, err := convertAnthropicMessages(messages, &system); err == nil {
		t.Error("expected error for invalid tool call arguments JSON")
	}
}

func TestConvertAnthropicToolsBuildsToolParams(t *testing.T) {
	tools := []core.ToolDefinition{
		{Name: "search", Description: "search the web", Schema: json.RawMessage(`{"type":"object","properties":{"q":{"type":"string"}}}`)},
	}
	out, err := convertAnthropicTools(tools)
	if err != nil {
		t.Fatalf("convertAnthropicTools() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
}
