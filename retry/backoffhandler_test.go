package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func immediateTimeAfter(time.Duration) <-chan time.Time {
	c := make(chan time.Time, 1)
	c <- time.Now()
	return c
}

// recordingClock fires immediately and remembers the requested waits.
type recordingClock struct {
	waits []time.Duration
}

func (r *recordingClock) clock() Clock {
	return Clock{
		Now: time.Now,
		After: func(d time.Duration) <-chan time.Time {
			r.waits = append(r.waits, d)
			return immediateTimeAfter(d)
		},
	}
}

func TestBackoffRetries(t *testing.T) {
	ctx := context.Background()
	backoff := NewBackoff(3, time.Second)
	backoff.Clock.After = immediateTimeAfter
	if !backoff.Backoff(ctx) {
		t.Fatalf("backoff failed immediately")
	}
	if !backoff.Backoff(ctx) {
		t.Fatalf("backoff failed after 1 retry")
	}
	if !backoff.Backoff(ctx) {
		t.Fatalf("backoff failed after 2 retry")
	}
	if backoff.Backoff(ctx) {
		t.Fatalf("backoff allowed after 3 (max) retries")
	}
	assert.True(t, backoff.ReachedMaxRetries())
	assert.Equal(t, 3, backoff.Retries())
}

func TestBackoffSchedule(t *testing.T) {
	rec := &recordingClock{}
	backoff := NewBackoff(3, time.Second)
	backoff.Clock = rec.clock()

	ctx := context.Background()
	for backoff.Backoff(ctx) {
	}
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, rec.waits)
}

func TestBackoffCancel(t *testing.T) {
	ctx, cancelFunc := context.WithCancel(context.Background())
	backoff := NewBackoff(3, time.Second)
	// prevent backoff from returning normally
	backoff.Clock.After = func(time.Duration) <-chan time.Time { return make(chan time.Time) }
	cancelFunc()
	if backoff.Backoff(ctx) {
		t.Fatalf("backoff allowed after cancel")
	}
	if _, ok := backoff.NextBackoffDuration(ctx); ok {
		t.Fatalf("backoff allowed after cancel")
	}
}

func TestBackoffCancelWhileWaiting(t *testing.T) {
	ctx, cancelFunc := context.WithCancel(context.Background())
	backoff := NewBackoff(3, time.Second)
	backoff.Clock.After = func(time.Duration) <-chan time.Time {
		cancelFunc()
		return make(chan time.Time)
	}
	assert.False(t, backoff.Backoff(ctx))
}

func TestNextBackoffDuration(t *testing.T) {
	ctx := context.Background()
	backoff := NewBackoff(2, 500*time.Millisecond)
	backoff.Clock.After = immediateTimeAfter

	d, ok := backoff.NextBackoffDuration(ctx)
	assert.True(t, ok)
	assert.Equal(t, 500*time.Millisecond, d)
	backoff.Backoff(ctx)

	d, ok = backoff.NextBackoffDuration(ctx)
	assert.True(t, ok)
	assert.Equal(t, time.Second, d)
	backoff.Backoff(ctx)

	_, ok = backoff.NextBackoffDuration(ctx)
	assert.False(t, ok)

	backoff.Reset()
	d, ok = backoff.NextBackoffDuration(ctx)
	assert.True(t, ok)
	assert.Equal(t, 500*time.Millisecond, d)
}

func TestDefaultBaseTime(t *testing.T) {
	backoff := NewBackoff(1, 0)
	assert.Equal(t, DefaultBaseTime, backoff.GetBaseTime())
}
