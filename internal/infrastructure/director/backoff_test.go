package director

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_CalculateBackoff_GrowsExponentially(t *testing.T) {
	t.Parallel()

	initial := 500 * time.Millisecond
	assert.Equal(t, 1*time.Second, calculateBackoff(1, initial, 10*time.Second))
	assert.Equal(t, 2*time.Second, calculateBackoff(2, initial, 10*time.Second))
	assert.Equal(t, 4*time.Second, calculateBackoff(3, initial, 10*time.Second))
}

func Test_CalculateBackoff_RespectsCap(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 10*time.Second, calculateBackoff(8, 500*time.Millisecond, 10*time.Second))
	assert.Equal(t, 10*time.Second, calculateBackoff(63, 500*time.Millisecond, 10*time.Second))
}

func Test_IsTransientError_ContextErrorsNeverRetry(t *testing.T) {
	t.Parallel()

	assert.False(t, isTransientError(context.Canceled))
	assert.False(t, isTransientError(context.DeadlineExceeded))
	assert.False(t, isTransientError(nil))
}

func Test_IsTransientError_ConnectionFailuresRetry(t *testing.T) {
	t.Parallel()

	assert.True(t, isTransientError(syscall.ECONNREFUSED))
	assert.True(t, isTransientError(syscall.ECONNRESET))
	assert.False(t, isTransientError(errors.New("permission denied")))
}
