package core

import "time"

// StepKind is the dispatch category of a PlanStep.
type StepKind string

const (
	StepFilesystem StepKind = "filesystem"
	StepTerminal   StepKind = "terminal"
	StepEditor     StepKind = "editor"
	StepVerify     StepKind = "verify"
	StepPolicy     StepKind = "policy"
	StepAudit      StepKind = "audit"
	StepCustom     StepKind = "custom"
)

// RetryPolicy controls the per-step retry/backoff shape used by the plan
// runner (C7). Defaults match spec.md §4.7: base=200ms, factor=2, jitter=0.2.
type RetryPolicy struct {
	Attempts      int     `json:"attempts" yaml:"attempts"`
	BaseDelayMs   int     `json:"baseDelayMs" yaml:"baseDelayMs"`
	Factor        float64 `json:"factor" yaml:"factor"`
	JitterFraction float64 `json:"jitterFraction" yaml:"jitterFraction"`
}

// DefaultRetryPolicy is applied to any PlanStep that declares none.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 1, BaseDelayMs: 200, Factor: 2, JitterFraction: 0.2}
}

// PlanStep is one node in the dependency DAG the plan runner executes.
type PlanStep struct {
	ID           string         `json:"id" yaml:"id"`
	Kind         StepKind       `json:"kind" yaml:"kind"`
	Params       map[string]any `json:"params" yaml:"params"`
	DependsOn    []string       `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
	Retry        *RetryPolicy   `json:"retry,omitempty" yaml:"retry,omitempty"`
	FallbackParams map[string]any `json:"fallbackParams,omitempty" yaml:"fallbackParams,omitempty"`
}

// Plan is an ordered collection of PlanSteps, as produced by generatePlan
// or loaded from a YAML plan file.
type Plan struct {
	Objective string     `json:"objective" yaml:"objective"`
	Steps     []PlanStep `json:"steps" yaml:"steps"`
}

// StepOutcome records the terminal state of one executed PlanStep.
type StepOutcome struct {
	StepID   string `json:"stepId"`
	Success  bool   `json:"success"`
	Retries  int    `json:"retries"`
	Fallback bool   `json:"fallback"`
	Error    string `json:"error,omitempty"`
}

// RunReport is the structured summary the plan runner emits on completion.
type RunReport struct {
	RunID       string        `json:"runId"`
	Summary     string        `json:"summary"`
	TotalMs     int64         `json:"totalMs"`
	Steps       int           `json:"steps"`
	OK          int           `json:"ok"`
	Retries     int           `json:"retries"`
	Fallbacks   int           `json:"fallbacks"`
	Outcomes    []StepOutcome `json:"outcomes"`
	GeneratedAt time.Time     `json:"generatedAt"`
}
