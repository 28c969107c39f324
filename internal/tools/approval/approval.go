// Package approval implements the "request_approval" built-in: a tool
// call that lets the agent pause a sensitive action on human sign-off.
// The caller-declared impact level drives the decision: low impact
// auto-approves, anything higher goes pending and is surfaced through
// the audit sink for a human (or an injected Decider) to resolve out of
// band.
package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentcore/core/internal/audit"
	"github.com/agentcore/core/internal/observability"
	"github.com/agentcore/core/pkg/core"
)

// Impact is the caller-declared severity of the action awaiting approval.
type Impact string

const (
	ImpactLow      Impact = "low"
	ImpactMedium   Impact = "medium"
	ImpactHigh     Impact = "high"
	ImpactCritical Impact = "critical"
)

// Decision is the outcome recorded against a Request.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionPending  Decision = "pending"
)

// Request is one recorded approval request, auto-approved or pending.
type Request struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason"`
	Impact    Impact    `json:"impact"`
	Decision  Decision  `json:"decision"`
	CreatedAt time.Time `json:"created_at"`
	DecidedAt time.Time `json:"decided_at,omitempty"`
}

// Decider lets an embedder resolve pending requests (e.g. a UI prompt).
// When nil, pending requests stay pending until Resolve is called
// directly against the Tool's store.
type Decider interface {
	Decide(ctx context.Context, req *Request) (Decision, error)
}

// Tool backs the "request_approval" built-in (spec.md §4.6). Its routing
// axis is the caller-declared impact level rather than a fixed pattern
// list of allowed/denied actions.
type Tool struct {
	mu      sync.Mutex
	pending map[string]*Request
	sink    *audit.Sink
	decider Decider
}

// New creates an approval tool. sink may be nil (no audit emission,
// mainly for tests); decider may be nil (requests stay pending).
func New(sink *audit.Sink, decider Decider) *Tool {
	return &Tool{pending: make(map[string]*Request), sink: sink, decider: decider}
}

func (t *Tool) Name() string { return "request_approval" }

func (t *Tool) Description() string {
	return "Request human approval for an action; low impact auto-approves, higher impact pends for review."
}

func (t *Tool) Schema() json.RawMessage {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"description": "The action awaiting approval.",
			},
			"reason": map[string]any{
				"type":        "string",
				"description": "Why the action is being proposed.",
			},
			"impact": map[string]any{
				"type":        "string",
				"description": "Severity of the action.",
				"enum":        []string{"low", "medium", "high", "critical"},
			},
		},
		"required": []string{"action", "impact"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

type params struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
	Impact Impact `json:"impact"`
}

func (t *Tool) Execute(ctx context.Context, raw json.RawMessage) (*core.ToolResult, error) {
	var p params
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if strings.TrimSpace(p.Action) == "" {
		return fail("action is required"), nil
	}
	impact := Impact(strings.ToLower(strings.TrimSpace(string(p.Impact))))
	switch impact {
	case ImpactLow, ImpactMedium, ImpactHigh, ImpactCritical:
	default:
		return fail(fmt.Sprintf("unknown impact level: %q", p.Impact)), nil
	}

	runID := observability.GetRunID(ctx)
	req := &Request{
		ID:        uuid.NewString(),
		RunID:     runID,
		Action:    p.Action,
		Reason:    p.Reason,
		Impact:    impact,
		CreatedAt: time.Now(),
	}

	if impact == ImpactLow {
		req.Decision = DecisionApproved
		req.DecidedAt = req.CreatedAt
		return ok(map[string]any{
			"request_id": req.ID,
			"decision":   string(req.Decision),
			"impact":     string(req.Impact),
		}), nil
	}

	req.Decision = DecisionPending
	t.mu.Lock()
	t.pending[req.ID] = req
	t.mu.Unlock()

	if t.sink != nil {
		t.sink.EmitWarn(ctx, runID, core.EventApprovalRequested, p.Action, map[string]any{
			"request_id": req.ID,
			"impact":     string(impact),
			"reason":     p.Reason,
		})
	}

	if t.decider != nil {
		decision, err := t.decider.Decide(ctx, req)
		if err != nil {
			return fail(fmt.Sprintf("decider error: %v", err)), nil
		}
		t.resolve(req.ID, decision)
		return ok(map[string]any{
			"request_id": req.ID,
			"decision":   string(decision),
			"impact":     string(req.Impact),
		}), nil
	}

	return ok(map[string]any{
		"request_id": req.ID,
		"decision":   string(req.Decision),
		"impact":     string(req.Impact),
	}), nil
}

// Resolve lets an out-of-band caller (e.g. a CLI prompt or journal tool)
// settle a pending request.
func (t *Tool) Resolve(id string, decision Decision) (*Request, bool) {
	return t.resolve(id, decision)
}

func (t *Tool) resolve(id string, decision Decision) (*Request, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	req, ok := t.pending[id]
	if !ok {
		return nil, false
	}
	req.Decision = decision
	req.DecidedAt = time.Now()
	delete(t.pending, id)
	return req, true
}

// Pending returns a snapshot of the currently pending requests.
func (t *Tool) Pending() []*Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Request, 0, len(t.pending))
	for _, req := range t.pending {
		out = append(out, req)
	}
	return out
}

func ok(output map[string]any) *core.ToolResult {
	return &core.ToolResult{Success: true, Output: output}
}

func fail(reason string) *core.ToolResult {
	return &core.ToolResult{Success: false, Error: reason}
}
