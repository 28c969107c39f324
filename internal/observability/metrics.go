package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is a centralized interface for the Prometheus counters this
// repo needs: LM request performance, tool execution outcomes, audit
// event volume, and plan-runner run outcomes.
//
// Usage:
//
//	metrics := observability.NewMetrics()
//	start := time.Now()
//	// ... issue completion request ...
//	metrics.RecordLLMRequest("anthropic", "claude-opus", "success", time.Since(start).Seconds(), 120, 340)
type Metrics struct {
	// LLMRequestDuration measures completion-request latency in seconds.
	// Labels: provider, model.
	LLMRequestDuration *prometheus.HistogramVec

	// LLMRequestCounter counts completion requests.
	// Labels: provider, model, status (success|error).
	LLMRequestCounter *prometheus.CounterVec

	// LLMTokensUsed tracks token consumption.
	// Labels: provider, model, type (prompt|completion).
	LLMTokensUsed *prometheus.CounterVec

	// ToolExecutionCounter counts dispatched tool calls.
	// Labels: tool_name, status (success|error).
	ToolExecutionCounter *prometheus.CounterVec

	// ToolExecutionDuration measures tool handler latency in seconds.
	// Labels: tool_name.
	ToolExecutionDuration *prometheus.HistogramVec

	// AuditEventCounter counts audit events by type.
	// Labels: event_type, severity.
	AuditEventCounter *prometheus.CounterVec

	// RunAttempts counts agent-loop / plan-runner run outcomes.
	// Labels: status (success|failed).
	RunAttempts *prometheus.CounterVec

	// FallbackApplied counts router and plan-step fallback applications.
	// Labels: component (router|plan_step).
	FallbackApplied *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics with the
// default registry. Call once at process startup.
func NewMetrics() *Metrics {
	return &Metrics{
		LLMRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentcore_llm_request_duration_seconds",
				Help:    "Duration of LM completion requests in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"provider", "model"},
		),

		LLMRequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentcore_llm_requests_total",
				Help: "Total number of LM completion requests by provider, model, and status",
			},
			[]string{"provider", "model", "status"},
		),

		LLMTokensUsed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentcore_llm_tokens_total",
				Help: "Total number of tokens used by provider, model, and type",
			},
			[]string{"provider", "model", "type"},
		),

		ToolExecutionCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentcore_tool_executions_total",
				Help: "Total number of tool executions by tool name and status",
			},
			[]string{"tool_name", "status"},
		),

		ToolExecutionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentcore_tool_execution_duration_seconds",
				Help:    "Duration of tool executions in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
			[]string{"tool_name"},
		),

		AuditEventCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentcore_audit_events_total",
				Help: "Total number of audit events by type and severity",
			},
			[]string{"event_type", "severity"},
		),

		RunAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentcore_run_attempts_total",
				Help: "Total number of agent-loop and plan-runner runs by outcome",
			},
			[]string{"status"},
		),

		FallbackApplied: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentcore_fallback_applied_total",
				Help: "Total number of fallback applications by component",
			},
			[]string{"component"},
		),
	}
}

// RecordLLMRequest records metrics for one completion request.
func (m *Metrics) RecordLLMRequest(provider, model, status string, durationSeconds float64, promptTokens, completionTokens int) {
	m.LLMRequestCounter.WithLabelValues(provider, model, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider, model).Observe(durationSeconds)
	if promptTokens > 0 {
		m.LLMTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.LLMTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
	}
}

// RecordToolExecution records metrics for one dispatched tool call.
func (m *Metrics) RecordToolExecution(toolName, status string, durationSeconds float64) {
	m.ToolExecutionCounter.WithLabelValues(toolName, status).Inc()
	m.ToolExecutionDuration.WithLabelValues(toolName).Observe(durationSeconds)
}

// RecordAuditEvent increments the audit event counter.
func (m *Metrics) RecordAuditEvent(eventType, severity string) {
	m.AuditEventCounter.WithLabelValues(eventType, severity).Inc()
}

// RecordRunAttempt records an agent-loop or plan-runner run outcome.
func (m *Metrics) RecordRunAttempt(status string) {
	m.RunAttempts.WithLabelValues(status).Inc()
}

// RecordFallback records a fallback application in the router or plan runner.
func (m *Metrics) RecordFallback(component string) {
	m.FallbackApplied.WithLabelValues(component).Inc()
}
