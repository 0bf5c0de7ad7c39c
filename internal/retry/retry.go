// Package retry wraps fallible operations with deterministic exponential
// backoff.
package retry

import (
	"context"
	"time"

	"github.com/alvarorichard/anirelay/internal/util"
)

// Options controls a retry run.
type Options struct {
	// Attempts is the maximum number of invocations, including the first.
	Attempts int
	// BaseDelay is the wait after the first failure; it doubles after each
	// subsequent failure. No jitter.
	BaseDelay time.Duration
	// Op names the operation in retry logs.
	Op string
}

// Defaults applied when Options fields are left zero.
const (
	DefaultAttempts  = 3
	DefaultBaseDelay = time.Second
)

func (o Options) normalized() Options {
	if o.Attempts <= 0 {
		o.Attempts = DefaultAttempts
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	return o
}

// Do invokes op until it succeeds or opts.Attempts is exhausted. The delay
// before retry k+1 is BaseDelay * 2^(k-1). The last error is returned
// unchanged so callers can inspect it. Context cancellation aborts the wait.
func Do[T any](ctx context.Context, op func(context.Context) (T, error), opts Options) (T, error) {
	opts = opts.normalized()

	var zero T
	var lastErr error

	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == opts.Attempts {
			break
		}

		delay := opts.BaseDelay << (attempt - 1)
		util.Warn("retrying", "op", opts.Op, "attempt", attempt, "delay", delay, "err", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}
