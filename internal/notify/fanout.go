package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/yukikurage/listing-api/internal/metrics"
	"golang.org/x/sync/semaphore"
)

// Recipient is one addressee of a fan-out.
type Recipient struct {
	UserID string
	Email  string
}

// SendFunc delivers to a single recipient.
type SendFunc func(ctx context.Context, r Recipient) error

// FanoutResult summarizes one fan-out.
type FanoutResult struct {
	Attempted int
	Failed    int
	Skipped   int
	// Abandoned counts recipients never started because ctx was cancelled.
	Abandoned int
}

// Fanout dispatches one event to many recipients with at most limit sends in
// flight. A failed send is logged and counted, never returned.
type Fanout struct {
	limit    int64
	unsub    UnsubscribeProvider
	template string
}

// NewFanout creates a Fanout. A nil provider disables opt-out filtering.
func NewFanout(limit int, unsub UnsubscribeProvider, template string) *Fanout {
	if limit < 1 {
		limit = 1
	}
	return &Fanout{limit: int64(limit), unsub: unsub, template: template}
}

// Notify filters out unsubscribed recipients and sends to the rest. It returns
// once every started send has finished. Cancelling ctx stops new sends from
// starting; sends already in flight run to completion.
func (f *Fanout) Notify(ctx context.Context, recipients []Recipient, send SendFunc) (FanoutResult, error) {
	var result FanoutResult

	targets := recipients
	if f.unsub != nil {
		unsubscribed, err := f.unsub.Unsubscribed(ctx)
		if err != nil {
			return result, fmt.Errorf("load unsubscribed emails: %w", err)
		}
		targets = make([]Recipient, 0, len(recipients))
		for _, r := range recipients {
			if _, skip := unsubscribed[strings.ToLower(strings.TrimSpace(r.Email))]; skip {
				result.Skipped++
				continue
			}
			targets = append(targets, r)
		}
		metrics.NotificationsSkipped.WithLabelValues(f.template).Add(float64(result.Skipped))
	}

	sem := semaphore.NewWeighted(f.limit)
	sendCtx := context.WithoutCancel(ctx)

	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	for i, r := range targets {
		if err := sem.Acquire(ctx, 1); err != nil {
			result.Abandoned = len(targets) - i
			log.Printf("WARN: %s fan-out stopped, %d recipients not attempted: %v", f.template, result.Abandoned, err)
			break
		}
		result.Attempted++

		wg.Add(1)
		go func(r Recipient) {
			defer wg.Done()
			defer sem.Release(1)

			if err := send(sendCtx, r); err != nil {
				failed.Add(1)
				metrics.NotificationsFailed.WithLabelValues(f.template).Inc()
				log.Printf("ERROR: %s delivery to %s failed: %v", f.template, r.Email, err)
				return
			}
			metrics.NotificationsSent.WithLabelValues(f.template).Inc()
		}(r)
	}

	wg.Wait()
	result.Failed = int(failed.Load())
	return result, nil
}
