package crawler

import (
	"context"
	"errors"
	"time"
)

const defaultBackoffStep = time.Second

// LinearRetryPolicy retries failures not marked ErrNotRetryable up to
// maxRetries extra attempts, waiting step, 2*step, 3*step... between them.
type LinearRetryPolicy struct {
	maxRetries int
	step       time.Duration
}

// NewLinearRetryPolicy builds a policy. A non-positive step falls back to one second.
func NewLinearRetryPolicy(maxRetries int, step time.Duration) *LinearRetryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if step <= 0 {
		step = defaultBackoffStep
	}
	return &LinearRetryPolicy{
		maxRetries: maxRetries,
		step:       step,
	}
}

// MaxRetries returns the number of additional attempts allowed.
func (p *LinearRetryPolicy) MaxRetries() int {
	return p.maxRetries
}

// ShouldRetry decides whether the failed attempt (0-based) is retried.
func (p *LinearRetryPolicy) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}
	if attempt >= p.maxRetries {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, ErrNotRetryable)
}

// Backoff returns the wait duration after the given failed attempt.
func (p *LinearRetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return p.step * time.Duration(attempt+1)
}
