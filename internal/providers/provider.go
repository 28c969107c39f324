// Package providers implements synchronous LM provider adapters (C4): one
// adapter per backend, each satisfying core.Provider with a single
// request/response Complete call, internal retry with exponential
// backoff, and provider error classification.
package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// retryConfig controls the exponential backoff applied around a single
// provider call. Delay for attempt n (0-indexed) is baseDelay * 2^n.
type retryConfig struct {
	maxRetries int
	baseDelay  time.Duration
}

func defaultRetryConfig() retryConfig {
	return retryConfig{maxRetries: 3, baseDelay: time.Second}
}

// withRetry runs fn, retrying up to cfg.maxRetries times on errors
// classified retryable by isRetryable, sleeping an exponentially growing
// delay between attempts and aborting early if ctx is cancelled.
func withRetry(ctx context.Context, cfg retryConfig, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) || attempt == cfg.maxRetries {
			return lastErr
		}
		delay := cfg.baseDelay * time.Duration(math.Pow(2, float64(attempt)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

// isRetryable classifies an error from any of the provider SDKs as
// transient (rate limit, server error, timeout, connection reset) or
// permanent, based on substring matching over the error text. Every
// provider SDK here surfaces errors as plain `error` values with the
// HTTP status folded into the message, so a single text-based
// classifier covers all of them without per-SDK type switches.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate_limit"),
		strings.Contains(msg, "429"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "500"),
		strings.Contains(msg, "502"),
		strings.Contains(msg, "503"),
		strings.Contains(msg, "504"),
		strings.Contains(msg, "internal server error"),
		strings.Contains(msg, "bad gateway"),
		strings.Contains(msg, "service unavailable"),
		strings.Contains(msg, "gateway timeout"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "connection refused"):
		return true
	default:
		return false
	}
}

func wrapProviderError(provider, model string, err error) error {
	return fmt.Errorf("%s: model %s: %w", provider, model, err)
}
