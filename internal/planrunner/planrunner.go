// Package planrunner implements the deterministic plan executor (C7):
// topologically order a plan's steps, run each through a retry/fallback
// attempt closure dispatched by step kind, and emit a structured
// RunReport. Unlike the agent loop (C8), nothing here calls an LM — a
// plan is a fixed list of steps decided ahead of time.
package planrunner

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agentcore/core/internal/audit"
	"github.com/agentcore/core/internal/backoff"
	"github.com/agentcore/core/pkg/core"
)

// Dispatcher is the subset of dispatch.Registry the plan runner needs.
type Dispatcher interface {
	Execute(ctx context.Context, runID, name string, args json.RawMessage) *core.ToolResult
}

// Runner executes a Plan deterministically against a Dispatcher.
type Runner struct {
	dispatcher Dispatcher
	sink       *audit.Sink
}

// New creates a Runner. sink may be nil to disable audit emission.
func New(dispatcher Dispatcher, sink *audit.Sink) *Runner {
	return &Runner{dispatcher: dispatcher, sink: sink}
}

// Run executes every step of plan in topological order, retrying and
// falling back per step policy, and returns the structured run report.
func (r *Runner) Run(ctx context.Context, runID string, plan core.Plan) *core.RunReport {
	start := time.Now()

	order, cyclic := topoSort(plan.Steps)
	if cyclic {
		r.emit(ctx, runID, "PLAN_CYCLE_FALLBACK", core.SeverityWarn, "dependency graph has a cycle; running steps in input order", nil)
	}

	var outcomes []core.StepOutcome
	okCount, totalRetries, totalFallbacks := 0, 0, 0

	for _, step := range order {
		r.emit(ctx, runID, core.EventStepStart, core.SeverityInfo, "step start", map[string]any{"stepId": step.ID})

		succeeded, retries, stepErr := r.attempt(ctx, runID, step, step.Params)
		fellBack := false
		if !succeeded && len(step.FallbackParams) > 0 {
			fbSucceeded, fbRetries, fbErr := r.attempt(ctx, runID, step, step.FallbackParams)
			retries += fbRetries
			if fbSucceeded {
				fellBack = true
				succeeded = true
				stepErr = nil
				r.emit(ctx, runID, core.EventFallbackApply, core.SeverityWarn, "fallback applied", map[string]any{"stepId": step.ID})
			} else {
				stepErr = fbErr
			}
		}

		outcome := core.StepOutcome{StepID: step.ID, Success: succeeded, Retries: retries, Fallback: fellBack}
		if !succeeded && stepErr != nil {
			outcome.Error = stepErr.Error()
		}
		outcomes = append(outcomes, outcome)
		totalRetries += retries
		if fellBack {
			totalFallbacks++
		}

		if succeeded {
			okCount++
			r.emit(ctx, runID, core.EventStepEnd, core.SeverityInfo, "step end", map[string]any{"stepId": step.ID})
			continue
		}
		r.emit(ctx, runID, core.EventStepFail, core.SeverityError, "step failed", map[string]any{"stepId": step.ID, "error": outcome.Error})
		break
	}

	report := &core.RunReport{
		RunID:       runID,
		Summary:     fmt.Sprintf("%d/%d steps ok", okCount, len(plan.Steps)),
		TotalMs:     time.Since(start).Milliseconds(),
		Steps:       len(plan.Steps),
		OK:          okCount,
		Retries:     totalRetries,
		Fallbacks:   totalFallbacks,
		Outcomes:    outcomes,
		GeneratedAt: time.Now(),
	}
	r.emit(ctx, runID, core.EventRunReport, core.SeverityInfo, report.Summary, map[string]any{
		"steps": report.Steps, "ok": report.OK, "retries": report.Retries, "fallbacks": report.Fallbacks,
	})
	return report
}

// attempt runs step's dispatch closure under its retry policy (defaults
// per core.DefaultRetryPolicy when none is declared). A denial is
// non-retryable: it short-circuits straight to the caller so the
// fallback (if any) can be tried without burning the retry budget.
func (r *Runner) attempt(ctx context.Context, runID string, step core.PlanStep, params map[string]any) (success bool, retries int, err error) {
	policy := step.Retry
	if policy == nil {
		d := core.DefaultRetryPolicy()
		policy = &d
	}
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		result, dispatchErr := r.dispatch(ctx, runID, step.Kind, params)
		if dispatchErr == nil && result != nil && result.Success {
			return true, i, nil
		}

		reason := ""
		if dispatchErr != nil {
			reason = dispatchErr.Error()
		} else if result != nil {
			reason = result.Error
		}
		lastErr = fmt.Errorf("%s", reason)

		if isDenied(reason) {
			return false, i, lastErr
		}
		if i < attempts-1 {
			delay := backoff.ComputeBackoff(toBackoffPolicy(*policy), i+1)
			sleepCtx(ctx, delay)
		}
	}
	return false, attempts - 1, lastErr
}

func isDenied(reason string) bool {
	return strings.HasPrefix(reason, "Denied:")
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// toBackoffPolicy adapts a step's spec-shaped RetryPolicy to the
// internal/backoff package's BackoffPolicy. MaxMs is left effectively
// unbounded since spec.md's retry policy carries no cap of its own.
func toBackoffPolicy(p core.RetryPolicy) backoff.BackoffPolicy {
	return backoff.BackoffPolicy{
		InitialMs: float64(p.BaseDelayMs),
		MaxMs:     1e9,
		Factor:    p.Factor,
		Jitter:    p.JitterFraction,
	}
}

// dispatch runs the pre-check → dispatch-by-kind → post-validate
// sequence of spec.md §4.7 step 2b for one step.
func (r *Runner) dispatch(ctx context.Context, runID string, kind core.StepKind, params map[string]any) (*core.ToolResult, error) {
	switch kind {
	case core.StepFilesystem:
		return r.call(ctx, runID, "filesystem", params)
	case core.StepEditor:
		return r.call(ctx, runID, "editor", params)
	case core.StepTerminal:
		return r.call(ctx, runID, "terminal", params)
	case core.StepAudit:
		message, _ := params["message"].(string)
		r.emit(ctx, runID, "STEP_AUDIT", core.SeverityInfo, message, params)
		return &core.ToolResult{Success: true}, nil
	case core.StepPolicy:
		// No side effect: a policy step's job is the pre-check itself,
		// which the owning tool (filesystem/terminal) already enforces
		// when dispatched; a bare policy step just asserts reachability.
		return &core.ToolResult{Success: true}, nil
	case core.StepVerify:
		return r.verify(ctx, runID, params)
	case core.StepCustom:
		return r.custom(ctx, runID, params)
	default:
		return nil, fmt.Errorf("unknown step kind: %s", kind)
	}
}

func (r *Runner) call(ctx context.Context, runID, tool string, params map[string]any) (*core.ToolResult, error) {
	if r.dispatcher == nil {
		return nil, fmt.Errorf("no dispatcher configured")
	}
	args, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal step params: %w", err)
	}
	return r.dispatcher.Execute(ctx, runID, tool, args), nil
}

// verify reads a file through the filesystem tool and checks that its
// content contains the declared substring, the post-validate half of a
// "write then verify" step pair.
func (r *Runner) verify(ctx context.Context, runID string, params map[string]any) (*core.ToolResult, error) {
	path, _ := params["path"].(string)
	contains, _ := params["contains"].(string)
	if path == "" {
		return &core.ToolResult{Success: false, Error: "verify: path is required"}, nil
	}
	result, err := r.call(ctx, runID, "filesystem", map[string]any{"operation": "read", "path": path})
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return result, nil
	}
	out, _ := result.Output.(map[string]any)
	content, _ := out["content"].(string)
	if contains != "" && !strings.Contains(content, contains) {
		return &core.ToolResult{Success: false, Error: fmt.Sprintf("verify: %q does not contain %q", path, contains)}, nil
	}
	return &core.ToolResult{Success: true, Output: map[string]any{"verified": path}}, nil
}

// custom dispatches params["tool"] with params["args"], letting a plan
// step invoke any registered tool by name rather than one of the fixed
// step kinds.
func (r *Runner) custom(ctx context.Context, runID string, params map[string]any) (*core.ToolResult, error) {
	tool, _ := params["tool"].(string)
	if tool == "" {
		return nil, fmt.Errorf("custom step missing \"tool\"")
	}
	args, err := json.Marshal(params["args"])
	if err != nil {
		return nil, fmt.Errorf("marshal custom step args: %w", err)
	}
	if r.dispatcher == nil {
		return nil, fmt.Errorf("no dispatcher configured")
	}
	return r.dispatcher.Execute(ctx, runID, tool, args), nil
}

func (r *Runner) emit(ctx context.Context, runID, eventType string, severity core.Severity, message string, data map[string]any) {
	if r.sink == nil {
		return
	}
	r.sink.Emit(ctx, &core.AuditEvent{RunID: runID, EventType: eventType, Severity: severity, Message: message, Data: data})
}

// topoSort orders steps by Kahn's algorithm over their DependsOn edges,
// breaking ties by input order for determinism. If the graph has a
// cycle, it returns the input order unchanged and cyclic=true (spec.md
// §4.7: never refuse to run).
func topoSort(steps []core.PlanStep) (ordered []core.PlanStep, cyclic bool) {
	indexOf := make(map[string]int, len(steps))
	for i, s := range steps {
		indexOf[s.ID] = i
	}

	inDegree := make([]int, len(steps))
	adjacency := make([][]int, len(steps))
	for i, s := range steps {
		for _, dep := range s.DependsOn {
			depIdx, ok := indexOf[dep]
			if !ok {
				continue
			}
			adjacency[depIdx] = append(adjacency[depIdx], i)
			inDegree[i]++
		}
	}

	var ready []int
	for i, d := range inDegree {
		if d == 0 {
			ready = append(ready, i)
		}
	}

	var orderIdx []int
	for len(ready) > 0 {
		sort.Ints(ready)
		next := ready[0]
		ready = ready[1:]
		orderIdx = append(orderIdx, next)
		for _, dependent := range adjacency[next] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(orderIdx) != len(steps) {
		return steps, true
	}

	out := make([]core.PlanStep, len(orderIdx))
	for i, idx := range orderIdx {
		out[i] = steps[idx]
	}
	return out, false
}
