package routing

import (
	"context"
	"fmt"

	"github.com/agentcore/core/pkg/core"
)

// Config configures a Router.
type Config struct {
	DefaultProvider string
	Rules           []core.RoutingRule
	Classifier      Classifier
	Breaker         CircuitBreakerConfig
}

// Router selects an LM provider per request: classify, match the first
// RoutingRule that applies, then fall back through the rule's provider,
// the configured default, and finally any remaining registered provider,
// skipping providers whose circuit is currently open.
type Router struct {
	providers       map[string]core.Provider
	defaultProvider string
	rules           []core.RoutingRule
	classifier      Classifier
	breaker         *CircuitBreaker
}

// NewRouter builds a Router over the given named providers.
func NewRouter(cfg Config, providers map[string]core.Provider) *Router {
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = HeuristicClassifier{}
	}
	return &Router{
		providers:       providers,
		defaultProvider: cfg.DefaultProvider,
		rules:           cfg.Rules,
		classifier:      classifier,
		breaker:         NewCircuitBreaker(cfg.Breaker),
	}
}

// Decision records why a provider/model was chosen, for audit logging.
type Decision struct {
	Provider string
	Model    string
	TaskType core.TaskType
	Reason   string
}

// Route classifies req and returns the ordered provider/model candidates
// a caller should try, most-preferred first.
func (r *Router) Route(req *core.CompletionRequest) ([]Decision, error) {
	toolNames := make(map[string]bool, len(req.Tools))
	for _, t := range req.Tools {
		toolNames[t.Name] = true
	}
	taskType := r.classifier.Classify(lastUserContent(req), toolNames)

	var decisions []Decision
	seen := make(map[string]bool)

	for _, rule := range r.rules {
		if rule.Matches(taskType, lastUserContent(req), toolNames) {
			if r.appendCandidate(&decisions, seen, rule.Provider, rule.Model, taskType, rule.Reason) {
				break
			}
		}
	}

	r.appendCandidate(&decisions, seen, r.defaultProvider, "", taskType, "default provider")
	for name := range r.providers {
		r.appendCandidate(&decisions, seen, name, "", taskType, "remaining registered provider")
	}

	if len(decisions) == 0 {
		return nil, fmt.Errorf("routing: no providers configured")
	}
	return decisions, nil
}

func (r *Router) appendCandidate(decisions *[]Decision, seen map[string]bool, name, model string, taskType core.TaskType, reason string) bool {
	if name == "" || seen[name] {
		return false
	}
	provider, ok := r.providers[name]
	if !ok || !provider.Available() {
		return false
	}
	seen[name] = true
	*decisions = append(*decisions, Decision{Provider: name, Model: model, TaskType: taskType, Reason: reason})
	return true
}

// Complete routes req and tries candidates in order, skipping any whose
// circuit breaker is open, until one succeeds or all have failed.
func (r *Router) Complete(ctx context.Context, req *core.CompletionRequest) (*core.CompletionResponse, Decision, error) {
	decisions, err := r.Route(req)
	if err != nil {
		return nil, Decision{}, err
	}

	var lastErr error
	for _, d := range decisions {
		if !r.breaker.Allow(d.Provider) {
			continue
		}
		provider := r.providers[d.Provider]
		callReq := *req
		if callReq.Model == "" && d.Model != "" {
			callReq.Model = d.Model
		}
		resp, err := provider.Complete(ctx, &callReq)
		if err == nil {
			r.breaker.RecordSuccess(d.Provider)
			return resp, d, nil
		}
		r.breaker.RecordFailure(d.Provider)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("routing: no available providers")
	}
	return nil, Decision{}, lastErr
}

func lastUserContent(req *core.CompletionRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == core.RoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}
