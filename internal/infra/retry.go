package infra

import (
	"context"
	"errors"
	"net"
	"time"
)

// retryTransient runs fn up to attempts times, backing off 100ms, 200ms, ... between
// tries. Only transient failures (connection refused, timeouts) are retried.
func retryTransient(ctx context.Context, attempts int, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt*100) * time.Millisecond):
			}
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryableErr(err) {
			return err
		}
	}
	return lastErr
}

func isRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return false
}
