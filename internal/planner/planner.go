// Package planner implements generatePlan (spec.md §6): it asks the LM
// router for a structured, dependency-ordered Plan rather than letting an
// agent loop work the objective turn by turn, so the result can be
// executed deterministically by C7.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentcore/core/internal/audit"
	"github.com/agentcore/core/internal/routing"
	"github.com/agentcore/core/pkg/core"
)

const systemPrompt = `You turn an objective into a JSON execution plan.
Respond with ONLY a JSON object of the form:
{"objective": "...", "steps": [{"id": "...", "kind": "filesystem|editor|terminal|verify|policy|audit|custom", "params": {...}, "dependsOn": ["..."]}]}
Each step id must be unique. dependsOn must reference only earlier step ids, forming a DAG. Do not include any prose before or after the JSON.`

// Planner turns an objective into a core.Plan using a completion request
// against the configured router, the same way C8's agent loop drives a
// conversation, but asking for one structured document instead of
// iterating turns.
type Planner struct {
	router *routing.Router
	sink   *audit.Sink
	model  string
}

// New builds a Planner over router, emitting AI_REQUEST/AI_RESPONSE audit
// events on sink (which may be nil).
func New(router *routing.Router, sink *audit.Sink, model string) *Planner {
	return &Planner{router: router, sink: sink, model: model}
}

// GeneratePlan asks the router to produce a Plan for objective. The
// assistant's response is expected to be a single JSON object matching
// core.Plan; a response wrapped in a ```json fenced code block is
// tolerated since that's a common LM habit even under a "JSON only"
// instruction.
func (p *Planner) GeneratePlan(ctx context.Context, runID, objective string) (*core.Plan, error) {
	req := &core.CompletionRequest{
		Model: p.model,
		Messages: []core.Message{
			{Role: core.RoleSystem, Content: systemPrompt},
			{Role: core.RoleUser, Content: objective},
		},
	}

	p.emit(ctx, runID, core.EventAIRequest, "generatePlan request", map[string]any{"objective": objective})
	resp, _, err := p.router.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("planner: complete: %w", err)
	}
	p.emit(ctx, runID, core.EventAIResponse, "generatePlan response", map[string]any{"provider": resp.Provider, "model": resp.Model})

	plan, err := parsePlan(resp.Message.Content)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	if plan.Objective == "" {
		plan.Objective = objective
	}
	return plan, nil
}

func parsePlan(content string) (*core.Plan, error) {
	body := stripCodeFence(content)
	var plan core.Plan
	if err := json.Unmarshal([]byte(body), &plan); err != nil {
		return nil, fmt.Errorf("parse plan json: %w", err)
	}
	if len(plan.Steps) == 0 {
		return nil, fmt.Errorf("plan has no steps")
	}
	seen := make(map[string]bool, len(plan.Steps))
	for _, step := range plan.Steps {
		if step.ID == "" {
			return nil, fmt.Errorf("plan step missing id")
		}
		if seen[step.ID] {
			return nil, fmt.Errorf("duplicate plan step id %q", step.ID)
		}
		seen[step.ID] = true
	}
	for _, step := range plan.Steps {
		for _, dep := range step.DependsOn {
			if !seen[dep] {
				return nil, fmt.Errorf("plan step %q depends on unknown step %q", step.ID, dep)
			}
		}
	}
	return &plan, nil
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

func (p *Planner) emit(ctx context.Context, runID, eventType, message string, data map[string]any) {
	if p.sink == nil {
		return
	}
	p.sink.EmitInfo(ctx, runID, eventType, message, data)
}
