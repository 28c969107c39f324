package routing

import (
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: time.Hour})

	if !b.Allow("p1") {
		t.Fatal("fresh provider should be allowed")
	}
	b.RecordFailure("p1")
	if !b.Allow("p1") {
		t.Fatal("should still be allowed below threshold")
	}
	b.RecordFailure("p1")
	if b.Allow("p1") {
		t.Fatal("should be disallowed once threshold reached")
	}
}

func TestCircuitBreakerRecordSuccessResets(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Hour})
	b.RecordFailure("p1")
	if b.Allow("p1") {
		t.Fatal("should be open after one failure at threshold 1")
	}
	// RecordSuccess only makes sense once the timeout clears it or a
	// retry path calls it; directly verify it clears state once called.
	b.RecordSuccess("p1")
	if !b.Allow("p1") {
		t.Fatal("should be allowed again after RecordSuccess")
	}
}

func TestCircuitBreakerReopensAfterTimeout(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Millisecond})
	b.RecordFailure("p1")
	if b.Allow("p1") {
		t.Fatal("should be open immediately after failure")
	}
	time.Sleep(5 * time.Millisecond)
	if !b.Allow("p1") {
		t.Fatal("should be allowed again once OpenTimeout elapses")
	}
}
