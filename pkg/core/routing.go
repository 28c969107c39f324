package core

import "strings"

// TaskType is the category the router's classifier assigns to a request,
// driving rule-based provider selection (C5).
type TaskType string

const (
	TaskSearch       TaskType = "search"
	TaskCoding       TaskType = "coding"
	TaskAnalysis     TaskType = "analysis"
	TaskPlanning     TaskType = "planning"
	TaskExecution    TaskType = "execution"
	TaskVision       TaskType = "vision"
	TaskConversation TaskType = "conversation"
)

// RoutingRule maps a matcher to a provider selection, per spec.md §3.
type RoutingRule struct {
	// TaskTypes, when non-empty, requires the classified task type to be
	// one of these.
	TaskTypes []TaskType `json:"taskTypes,omitempty" yaml:"taskTypes,omitempty"`
	// Keywords, when non-empty, requires at least one keyword to appear
	// in the last user-role message (case-insensitive).
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	// RequiredTools, when non-empty, requires the request to declare all
	// of these tool names.
	RequiredTools []string `json:"requiredTools,omitempty" yaml:"requiredTools,omitempty"`

	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	Reason   string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Matches reports whether rule applies to the given classified task type,
// the request's tools, and the last user message content.
func (r RoutingRule) Matches(taskType TaskType, lastUserContent string, toolNames map[string]bool) bool {
	if len(r.TaskTypes) > 0 {
		ok := false
		for _, t := range r.TaskTypes {
			if t == taskType {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(r.Keywords) > 0 {
		lower := strings.ToLower(lastUserContent)
		ok := false
		for _, kw := range r.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, name := range r.RequiredTools {
		if !toolNames[name] {
			return false
		}
	}
	return true
}
