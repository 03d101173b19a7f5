package llm

import (
	"context"
	"net/http"
	"time"
)

// RetryPolicy decides whether and when a failed HTTP attempt is repeated.
// A request is attempted up to MaxRetries+1 times in total.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// Retryable reports whether a failed attempt should be repeated.
	// status is the HTTP status of the response, or 0 for transport
	// failures (including timeouts).
	Retryable func(status int) bool

	// Sleep is replaceable in tests. Defaults to a context-aware wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy mirrors the provider contract: transport failures,
// 408, 429 and 5xx responses are retried with exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   8 * time.Second,
		Retryable:  DefaultRetryable,
	}
}

// DefaultRetryable classifies a status code for retry purposes.
func DefaultRetryable(status int) bool {
	if status == 0 {
		return true // transport failure, no response received
	}
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500 && status <= 599
}

// Delay returns the backoff before retrying after the given zero-based
// attempt: min(MaxDelay, BaseDelay * 2^attempt).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do runs fn up to MaxRetries+1 times. fn reports the HTTP status of the
// attempt (0 when no response was received) together with its error. The
// error of the last attempt is returned.
func (p RetryPolicy) Do(ctx context.Context, fn func(attempt int) (int, error)) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = waitCtx
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = DefaultRetryable
	}

	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		status, err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == p.MaxRetries || !retryable(status) {
			break
		}
		if err := sleep(ctx, p.Delay(attempt)); err != nil {
			return lastErr
		}
	}
	return lastErr
}

func waitCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
