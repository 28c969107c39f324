package core

import "time"

// Budgets are the strict upper bounds an agent loop run must respect.
type Budgets struct {
	MaxIterations int
	MaxToolCalls  int
}

// Run is a unit of orchestration: created at entry, mutated only by
// append (events/journal), never updated or destroyed while in-memory —
// its persistent artifacts (audit rows, journal file, backups) outlive
// the process.
type Run struct {
	ID        string    `json:"id"`
	Objective string    `json:"objective"`
	CreatedAt time.Time `json:"createdAt"`
	Budgets   Budgets   `json:"budgets"`
}

// AgentResult is what runObjective returns to its caller.
type AgentResult struct {
	Success       bool      `json:"success"`
	FinalResponse string    `json:"finalResponse"`
	Iterations    int       `json:"iterations"`
	ToolCalls     int       `json:"toolCalls"`
	Errors        []string  `json:"errors"`
	Context       []Message `json:"context"`
}
