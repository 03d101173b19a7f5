package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{BaseDelay: 500 * time.Millisecond, MaxDelay: 3 * time.Second}

	assert.Equal(t, 500*time.Millisecond, p.Delay(0))
	assert.Equal(t, 1*time.Second, p.Delay(1))
	assert.Equal(t, 2*time.Second, p.Delay(2))
	// Capped at MaxDelay from here on.
	assert.Equal(t, 3*time.Second, p.Delay(3))
	assert.Equal(t, 3*time.Second, p.Delay(10))
}

func TestRetryPolicy_DoStopsOnSuccess(t *testing.T) {
	p := RetryPolicy{
		MaxRetries: 5,
		Sleep:      func(ctx context.Context, d time.Duration) error { return nil },
	}

	calls := 0
	err := p.Do(context.Background(), func(attempt int) (int, error) {
		calls++
		if calls < 3 {
			return http.StatusServiceUnavailable, errors.New("unavailable")
		}
		return http.StatusOK, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_DoStopsOnNonRetryable(t *testing.T) {
	p := RetryPolicy{
		MaxRetries: 5,
		Sleep:      func(ctx context.Context, d time.Duration) error { return nil },
	}

	calls := 0
	err := p.Do(context.Background(), func(attempt int) (int, error) {
		calls++
		return http.StatusBadRequest, errors.New("bad request")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_DoExhaustsAttempts(t *testing.T) {
	p := RetryPolicy{
		MaxRetries: 2,
		Sleep:      func(ctx context.Context, d time.Duration) error { return nil },
	}

	calls := 0
	err := p.Do(context.Background(), func(attempt int) (int, error) {
		calls++
		return 0, errors.New("connection refused")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_DoHonorsContextDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := RetryPolicy{
		MaxRetries: 5,
		BaseDelay:  time.Hour, // would hang without context awareness
	}

	calls := 0
	attemptErr := errors.New("unavailable")
	err := p.Do(ctx, func(attempt int) (int, error) {
		calls++
		return http.StatusServiceUnavailable, attemptErr
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, attemptErr, err)
}

func TestDefaultRetryable(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{0, true},
		{http.StatusRequestTimeout, true},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
		{599, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
		{http.StatusOK, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultRetryable(tt.status), "status %d", tt.status)
	}
}
