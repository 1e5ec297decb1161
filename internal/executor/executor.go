// Package executor wraps a single unreliable external action with terminal
// error classification and exponential backoff. Retries happen only for
// failures that waiting can fix; credential problems short-circuit.
package executor

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrAuthentication marks failures caused by bad credentials.
	ErrAuthentication = errors.New("authentication failed")
	// ErrAccessDenied marks failures caused by insufficient permissions.
	ErrAccessDenied = errors.New("access denied")
)

// Options configures PerformWithRetry. The zero value gets the defaults of
// three attempts and a one second initial delay.
type Options struct {
	MaxAttempts  int
	InitialDelay time.Duration

	// Sleep is overridable so tests can observe backoff without waiting.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (o *Options) fill() {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = time.Second
	}
	if o.Sleep == nil {
		o.Sleep = sleep
	}
}

// PerformWithRetry runs action up to MaxAttempts times. Terminal failures
// return immediately; retryable ones wait InitialDelay*2^attempt (0-based
// attempt index) before the next try. No wait follows the final attempt.
// The side effect behind action is not idempotent at the external service:
// a retry after a partial failure can create a duplicate remote record. The
// tracker offers no idempotency key, so this stays an accepted risk.
func PerformWithRetry[T any](ctx context.Context, action func(context.Context) (T, error), opts Options) (T, error) {
	opts.fill()

	var zero T
	var lastErr error

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		data, err := action(ctx)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if IsTerminal(err) {
			return zero, err
		}

		if attempt < opts.MaxAttempts-1 {
			delay := opts.InitialDelay * (1 << attempt)
			if sleepErr := opts.Sleep(ctx, delay); sleepErr != nil {
				return zero, sleepErr
			}
		}
	}

	return zero, lastErr
}

// IsTerminal reports whether retrying err cannot help. Typed sentinels cover
// errors produced by our own clients; message sniffing covers credential
// failures surfaced through wrapped transport errors.
func IsTerminal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthentication) || errors.Is(err, ErrAccessDenied) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"authentication failed",
		"bad credentials",
		"access denied",
		"permission denied",
		"unauthorized",
		"forbidden",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
