package director

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"
)

// calculateBackoff computes the delay before the next retry attempt,
// exponential with a cap.
func calculateBackoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	if attempt > 62 {
		return maxDelay
	}
	delay := time.Duration(1<<attempt) * initialDelay
	if maxDelay > 0 && delay > maxDelay {
		return maxDelay
	}
	return delay
}

// isTransientError checks if an error is likely to be temporary.
// Context cancellation is never transient; retrying a canceled call
// only delays shutdown.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	return false
}
