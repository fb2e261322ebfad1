package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticUnsubscribed struct {
	emails map[string]struct{}
	err    error
}

func (s staticUnsubscribed) Unsubscribed(context.Context) (map[string]struct{}, error) {
	return s.emails, s.err
}

func recipients(n int) []Recipient {
	out := make([]Recipient, n)
	for i := range out {
		out[i] = Recipient{UserID: fmt.Sprintf("u%d", i), Email: fmt.Sprintf("user%d@example.com", i)}
	}
	return out
}

func TestFanout_BoundsConcurrency(t *testing.T) {
	f := NewFanout(5, nil, TemplateDeadlineExtended)

	var (
		inFlight, peak atomic.Int64
		mu             sync.Mutex
		calls          = map[string]int{}
	)
	result, err := f.Notify(context.Background(), recipients(23), func(ctx context.Context, r Recipient) error {
		mu.Lock()
		calls[r.UserID]++
		mu.Unlock()

		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 23, result.Attempted)
	assert.Zero(t, result.Failed)
	assert.LessOrEqual(t, peak.Load(), int64(5))
	assert.Positive(t, peak.Load())

	require.Len(t, calls, 23)
	for _, r := range recipients(23) {
		assert.Equal(t, 1, calls[r.UserID], r.UserID)
	}
}

func TestFanout_SkipsUnsubscribed(t *testing.T) {
	unsub := staticUnsubscribed{emails: map[string]struct{}{
		"user1@example.com": {},
		"user3@example.com": {},
	}}
	f := NewFanout(5, unsub, TemplateDeadlineExtended)

	in := recipients(5)
	in[3].Email = "  USER3@Example.com "

	var mu sync.Mutex
	var attempted []string
	result, err := f.Notify(context.Background(), in, func(ctx context.Context, r Recipient) error {
		mu.Lock()
		defer mu.Unlock()
		attempted = append(attempted, r.UserID)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 3, result.Attempted)
	assert.ElementsMatch(t, []string{"u0", "u2", "u4"}, attempted)
}

func TestFanout_FailuresAreIsolated(t *testing.T) {
	f := NewFanout(2, nil, TemplateDeadlineExtended)

	var delivered atomic.Int64
	result, err := f.Notify(context.Background(), recipients(6), func(ctx context.Context, r Recipient) error {
		if r.UserID == "u1" || r.UserID == "u4" {
			return errors.New("mailbox full")
		}
		delivered.Add(1)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 6, result.Attempted)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, int64(4), delivered.Load())
}

func TestFanout_UnsubscribeLookupFailure(t *testing.T) {
	f := NewFanout(5, staticUnsubscribed{err: errors.New("db down")}, TemplateDeadlineExtended)

	called := false
	_, err := f.Notify(context.Background(), recipients(3), func(ctx context.Context, r Recipient) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, called)
}

func TestFanout_CancelStopsIntake(t *testing.T) {
	f := NewFanout(5, nil, TemplateDeadlineExtended)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{}, 10)
	release := make(chan struct{})
	var sendCtxErrs atomic.Int64

	done := make(chan FanoutResult, 1)
	go func() {
		result, err := f.Notify(ctx, recipients(10), func(sendCtx context.Context, r Recipient) error {
			started <- struct{}{}
			<-release
			if sendCtx.Err() != nil {
				sendCtxErrs.Add(1)
			}
			return nil
		})
		assert.NoError(t, err)
		done <- result
	}()

	for range 5 {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("sends did not start")
		}
	}

	cancel()
	// Give the blocked Acquire time to observe the cancellation.
	time.Sleep(50 * time.Millisecond)
	close(release)

	select {
	case result := <-done:
		assert.Equal(t, 5, result.Attempted)
		assert.Equal(t, 5, result.Abandoned)
		assert.Zero(t, result.Failed)
	case <-time.After(2 * time.Second):
		t.Fatal("fan-out did not return")
	}
	assert.Zero(t, sendCtxErrs.Load(), "in-flight sends must keep a live context")
	assert.Len(t, started, 0)
}
