package routing

import (
	"testing"

	"github.com/agentcore/core/pkg/core"
)

func TestHeuristicClassifier(t *testing.T) {
	tests := []struct {
		name    string
		content string
		tools   map[string]bool
		want    core.TaskType
	}{
		{"with tools is execution", "do something", map[string]bool{"write": true}, core.TaskExecution},
		{"empty is conversation", "", nil, core.TaskConversation},
		{"code fence", "```go\nfunc main() {}\n```", nil, core.TaskCoding},
		{"code keyword", "write a python def foo", nil, core.TaskCoding},
		{"analysis", "analyze the tradeoffs here", nil, core.TaskAnalysis},
		{"planning", "outline a plan for the migration", nil, core.TaskPlanning},
		{"search", "search for the latest news", nil, core.TaskSearch},
		{"vision", "describe this screenshot", nil, core.TaskVision},
		{"conversation fallback", "hello there", nil, core.TaskConversation},
	}
	c := HeuristicClassifier{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.content, tt.tools); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}
