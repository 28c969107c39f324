package core

import "testing"

func TestRoutingRuleMatches(t *testing.T) {
	tests := []struct {
		name       string
		rule       RoutingRule
		taskType   TaskType
		lastUser   string
		toolNames  map[string]bool
		wantMatch  bool
	}{
		{
			name:      "task type match",
			rule:      RoutingRule{TaskTypes: []TaskType{TaskCoding}},
			taskType:  TaskCoding,
			wantMatch: true,
		},
		{
			name:      "task type mismatch",
			rule:      RoutingRule{TaskTypes: []TaskType{TaskCoding}},
			taskType:  TaskSearch,
			wantMatch: false,
		},
		{
			name:      "keyword match is case insensitive",
			rule:      RoutingRule{Keywords: []string{"invoice"}},
			lastUser:  "please summarize this INVOICE pdf",
			wantMatch: true,
		},
		{
			name:      "keyword no match",
			rule:      RoutingRule{Keywords: []string{"invoice"}},
			lastUser:  "write me a poem",
			wantMatch: false,
		},
		{
			name:      "required tool present",
			rule:      RoutingRule{RequiredTools: []string{"terminal"}},
			toolNames: map[string]bool{"terminal": true},
			wantMatch: true,
		},
		{
			name:      "required tool missing",
			rule:      RoutingRule{RequiredTools: []string{"terminal"}},
			toolNames: map[string]bool{"search": true},
			wantMatch: false,
		},
		{
			name:      "empty rule matches anything",
			rule:      RoutingRule{},
			wantMatch: true,
		},
		{
			name:      "all constraints must hold",
			rule:      RoutingRule{TaskTypes: []TaskType{TaskCoding}, Keywords: []string{"bug"}},
			taskType:  TaskCoding,
			lastUser:  "unrelated text",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rule.Matches(tt.taskType, tt.lastUser, tt.toolNames)
			if got != tt.wantMatch {
				t.Errorf("Matches() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}
