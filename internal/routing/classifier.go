// Package routing implements the task-type classifier and rule-based
// provider router (C5): a pluggable Classifier interface with a
// heuristic default, RoutingRule-based provider selection, and a
// per-provider circuit breaker that drives the fallback chain.
package routing

import (
	"regexp"
	"strings"

	"github.com/agentcore/core/pkg/core"
)

// Classifier assigns a TaskType to a request given its last user-role
// message content and the set of tool names it declares.
type Classifier interface {
	Classify(lastUserContent string, toolNames map[string]bool) core.TaskType
}

var (
	codePattern      = regexp.MustCompile(`(?i)\b(func|class|def|package|import|select|insert|update|delete)\b`)
	codeFencePattern = regexp.MustCompile("```")
	analysisPattern  = regexp.MustCompile(`(?i)\b(analyze|reason|think through|derive|prove|tradeoff|compare)\b`)
	planningPattern  = regexp.MustCompile(`(?i)\b(plan|steps|roadmap|outline|schedule)\b`)
	searchPattern    = regexp.MustCompile(`(?i)\b(search|find|look up|latest|current|news)\b`)
	visionPattern    = regexp.MustCompile(`(?i)\b(image|photo|screenshot|picture|diagram)\b`)
)

// HeuristicClassifier tags requests using simple regex-based content
// heuristics, tried in a fixed priority order: execution (has tools),
// vision, coding, analysis, planning, search, else conversation.
type HeuristicClassifier struct{}

// Classify implements Classifier.
func (HeuristicClassifier) Classify(lastUserContent string, toolNames map[string]bool) core.TaskType {
	if len(toolNames) > 0 {
		return core.TaskExecution
	}
	content := strings.TrimSpace(lastUserContent)
	if content == "" {
		return core.TaskConversation
	}
	switch {
	case visionPattern.MatchString(content):
		return core.TaskVision
	case codeFencePattern.MatchString(content) || codePattern.MatchString(content):
		return core.TaskCoding
	case analysisPattern.MatchString(content):
		return core.TaskAnalysis
	case planningPattern.MatchString(content):
		return core.TaskPlanning
	case searchPattern.MatchString(content):
		return core.TaskSearch
	default:
		return core.TaskConversation
	}
}
