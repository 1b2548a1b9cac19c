// Package poll provides the shared bounded polling loop used by the
// asynchronous video providers.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAttemptsExhausted reports that the attempt budget ran out before the
// checked operation reached a terminal state.
var ErrAttemptsExhausted = errors.New("poll: attempts exhausted")

// Check inspects the current state of an asynchronous job. done=true ends the
// loop with result; a non-nil error ends the loop immediately.
type Check[T any] func(ctx context.Context) (result T, done bool, err error)

// Until invokes check every interval until it reports done, fails, or the
// attempt budget is spent. The first check runs after one interval, matching
// the submit-then-wait contract of the upstream job APIs.
func Until[T any](ctx context.Context, interval time.Duration, attempts int, check Check[T]) (T, error) {
	var zero T
	if attempts <= 0 {
		return zero, fmt.Errorf("poll: attempts must be positive, got %d", attempts)
	}
	if interval <= 0 {
		return zero, fmt.Errorf("poll: interval must be positive, got %s", interval)
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for attempt := 1; attempt <= attempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-timer.C:
		}

		result, done, err := check(ctx)
		if err != nil {
			return zero, err
		}
		if done {
			return result, nil
		}
		timer.Reset(interval)
	}
	return zero, fmt.Errorf("%w after %d attempts (%s interval)", ErrAttemptsExhausted, attempts, interval)
}
