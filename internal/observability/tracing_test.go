package observability

import (
	"context"
	"errors"
	"testing"
)

func TestNewTracer(t *testing.T) {
	tests := []struct {
		name   string
		config TraceConfig
	}{
		{name: "named service", config: TraceConfig{ServiceName: "agentcore"}},
		{name: "defaults to agentcore", config: TraceConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer := NewTracer(tt.config)
			if tracer == nil {
				t.Fatal("NewTracer() returned nil")
			}
			if tracer.tracer == nil {
				t.Error("Tracer.tracer is nil")
			}
		})
	}
}

func TestTracerStartAndEnd(t *testing.T) {
	tracer := NewTracer(TraceConfig{ServiceName: "agentcore"})
	ctx, span := tracer.Start(context.Background(), "unit.test")
	if span == nil {
		t.Fatal("Start() returned nil span")
	}
	span.End()
	if ctx == nil {
		t.Fatal("Start() returned nil context")
	}
}

func TestTracerRecordErrorNilIsNoop(t *testing.T) {
	tracer := NewTracer(TraceConfig{})
	_, span := tracer.Start(context.Background(), "unit.test")
	defer span.End()

	tracer.RecordError(span, nil)
	tracer.RecordError(span, errors.New("boom"))
}

func TestTraceHelpers(t *testing.T) {
	tracer := NewTracer(TraceConfig{ServiceName: "agentcore"})

	_, runSpan := tracer.TraceAgentRun(context.Background(), "run-1", "do the thing")
	runSpan.End()

	_, llmSpan := tracer.TraceLLMRequest(context.Background(), "anthropic", "claude-opus")
	llmSpan.End()

	_, toolSpan := tracer.TraceToolExecution(context.Background(), "terminal")
	toolSpan.End()
}

func TestGetTraceIDAndSpanIDWithoutActiveSpan(t *testing.T) {
	ctx := context.Background()
	if got := GetTraceID(ctx); got != "" {
		t.Errorf("GetTraceID() = %q, want empty", got)
	}
	if got := GetSpanID(ctx); got != "" {
		t.Errorf("GetSpanID() = %q, want empty", got)
	}
}

func TestMapCarrier(t *testing.T) {
	c := MapCarrier{}
	c.Set("traceparent", "00-abc-def-01")
	if got := c.Get("traceparent"); got != "00-abc-def-01" {
		t.Errorf("Get() = %q, want traceparent value", got)
	}
	keys := c.Keys()
	if len(keys) != 1 || keys[0] != "traceparent" {
		t.Errorf("Keys() = %v, want [traceparent]", keys)
	}
}
