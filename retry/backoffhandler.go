package retry

import (
	"context"
	"time"
)

const (
	DefaultBaseTime time.Duration = time.Second
)

// Redeclare time functions so they can be overridden in tests.
type Clock struct {
	Now   func() time.Time
	After func(d time.Duration) <-chan time.Time
}

// SystemClock is backed by the time package.
var SystemClock = Clock{Now: time.Now, After: time.After}

// BackoffHandler manages exponential backoff and limits the maximum number of retries.
// The n-th wait lasts baseTime * 2^(n-1): with the default base that is 1s, 2s, 4s...
// No jitter is applied so callers can rely on the exact schedule.
type BackoffHandler struct {
	// maxRetries sets the maximum number of retries to perform. The value
	// 0 disables retry completely.
	maxRetries uint
	// baseTime sets the initial backoff period.
	baseTime time.Duration

	retries uint

	Clock Clock
}

func NewBackoff(maxRetries uint, baseTime time.Duration) BackoffHandler {
	return BackoffHandler{
		maxRetries: maxRetries,
		baseTime:   baseTime,
		Clock:      SystemClock,
	}
}

// NextBackoffDuration reports how long the next call to Backoff will wait.
// It returns false when no retries are left or ctx is done.
func (b BackoffHandler) NextBackoffDuration(ctx context.Context) (time.Duration, bool) {
	select {
	case <-ctx.Done():
		return time.Duration(0), false
	default:
	}
	if b.retries >= b.maxRetries {
		return time.Duration(0), false
	}
	return b.GetBaseTime() * (1 << b.retries), true
}

// BackoffTimer returns a channel that sends the current time when the backoff
// period expires. Returns nil if the maximum number of retries have been used.
func (b *BackoffHandler) BackoffTimer() <-chan time.Time {
	if b.retries >= b.maxRetries {
		return nil
	}
	timeToWait := b.GetBaseTime() * (1 << b.retries)
	b.retries++
	after := b.Clock.After
	if after == nil {
		after = time.After
	}
	return after(timeToWait)
}

// Backoff is used to wait according to exponential backoff. Returns false if the
// maximum number of retries have been used or if the underlying context has been cancelled.
func (b *BackoffHandler) Backoff(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	c := b.BackoffTimer()
	if c == nil {
		return false
	}
	select {
	case <-c:
		return true
	case <-ctx.Done():
		return false
	}
}

func (b BackoffHandler) GetBaseTime() time.Duration {
	if b.baseTime == 0 {
		return DefaultBaseTime
	}
	return b.baseTime
}

// Retries returns the number of retries consumed so far.
func (b *BackoffHandler) Retries() int {
	return int(b.retries)
}

func (b *BackoffHandler) ReachedMaxRetries() bool {
	return b.retries >= b.maxRetries
}

func (b *BackoffHandler) Reset() {
	b.retries = 0
}
