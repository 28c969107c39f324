// Package audit implements the append-only event sink (C1): a streaming
// structured log line per event, plus a durable sqlite-backed store keyed
// by run id. Writes are synchronous from the caller's perspective; the
// sink is a process-wide singleton with lazy initialization on first
// write, per spec.md §4.2.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/agentcore/core/internal/observability"
	"github.com/agentcore/core/pkg/core"
)

// Sink is the combined streaming + durable audit writer.
type Sink struct {
	logger  *slog.Logger
	store   *Store
	metrics *observability.Metrics
}

// NewSink builds a Sink. store may be nil, in which case events are
// streamed only (useful for tests and for runs with no data directory
// configured); metrics may be nil to disable prometheus counters.
func NewSink(store *Store, metrics *observability.Metrics) *Sink {
	return &Sink{
		logger:  slog.Default().With("component", "audit"),
		store:   store,
		metrics: metrics,
	}
}

var (
	singleton     *Sink
	singletonOnce sync.Once
	singletonMu   sync.Mutex
)

// Default returns the process-wide Sink, lazily constructing a
// stream-only sink (no durable store) on first call. Call SetDefault
// before any component writes an event if a durable store is wanted.
func Default() *Sink {
	singletonOnce.Do(func() {
		singletonMu.Lock()
		defer singletonMu.Unlock()
		if singleton == nil {
			singleton = NewSink(nil, nil)
		}
	})
	singletonMu.Lock()
	defer singletonMu.Unlock()
	return singleton
}

// SetDefault installs s as the process-wide Sink. Intended to be called
// once during startup, before any component calls Default().
func SetDefault(s *Sink) {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	singleton = s
	singletonOnce.Do(func() {})
}

// Emit writes event to the stream and, if configured, the durable store.
// Emit never returns an error: a durable-store write failure is logged
// and swallowed rather than propagated, since audit failures must never
// abort the run that produced them.
func (s *Sink) Emit(ctx context.Context, event *core.AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Severity == "" {
		event.Severity = core.SeverityInfo
	}
	if event.TraceID == "" {
		event.TraceID = observability.GetTraceID(ctx)
	}
	if event.SpanID == "" {
		event.SpanID = observability.GetSpanID(ctx)
	}

	s.logger.Log(ctx, slogLevel(event.Severity), event.Message,
		"run_id", event.RunID,
		"event_type", event.EventType,
		"trace_id", event.TraceID,
		"span_id", event.SpanID,
		"data", event.Data,
	)

	if s.metrics != nil {
		s.metrics.RecordAuditEvent(event.EventType, string(event.Severity))
	}

	if s.store != nil {
		if err := s.store.Insert(ctx, event); err != nil {
			s.logger.Error("durable audit write failed", "error", err, "event_type", event.EventType)
		}
	}
}

// EmitInfo is a convenience wrapper for the common case of an info-level
// event with a structured payload.
func (s *Sink) EmitInfo(ctx context.Context, runID, eventType, message string, data map[string]any) {
	s.Emit(ctx, &core.AuditEvent{RunID: runID, EventType: eventType, Severity: core.SeverityInfo, Message: message, Data: data})
}

// EmitWarn is the warning-level equivalent of EmitInfo.
func (s *Sink) EmitWarn(ctx context.Context, runID, eventType, message string, data map[string]any) {
	s.Emit(ctx, &core.AuditEvent{RunID: runID, EventType: eventType, Severity: core.SeverityWarn, Message: message, Data: data})
}

// EmitError is the error-level equivalent of EmitInfo.
func (s *Sink) EmitError(ctx context.Context, runID, eventType, message string, data map[string]any) {
	s.Emit(ctx, &core.AuditEvent{RunID: runID, EventType: eventType, Severity: core.SeverityError, Message: message, Data: data})
}

func slogLevel(sev core.Severity) slog.Level {
	switch sev {
	case core.SeverityWarn:
		return slog.LevelWarn
	case core.SeverityError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
