package worker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/yukikurage/listing-api/internal/constants"
	"github.com/yukikurage/listing-api/internal/metrics"
	"github.com/yukikurage/listing-api/internal/models"
	"github.com/yukikurage/listing-api/internal/repository"
)

// WebhookForwarder drains the listing webhook outbox into the automation endpoint.
type WebhookForwarder struct {
	Events      repository.WebhookEventRepository
	URL         string
	Client      *http.Client
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
	Lease       time.Duration
}

func NewWebhookForwarder(events repository.WebhookEventRepository, url string, interval time.Duration) *WebhookForwarder {
	return &WebhookForwarder{
		Events:      events,
		URL:         url,
		Client:      &http.Client{Timeout: 10 * time.Second},
		Interval:    interval,
		BatchSize:   constants.WebhookBatchSize,
		MaxAttempts: constants.MaxWebhookAttempts,
		Lease:       constants.WebhookClaimLease,
	}
}

// Run forwards pending events every Interval until ctx is cancelled.
func (w *WebhookForwarder) Run(ctx context.Context) {
	if w.URL == "" {
		log.Printf("WARN: WEBHOOK_URL is empty, webhook forwarder not started")
		return
	}

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.ForwardPending(ctx); err != nil {
				log.Printf("ERROR: webhook outbox fetch: %v", err)
			}
		}
	}
}

// ForwardPending claims and sends one batch of pending events and returns how
// many were delivered. Every replica may run a forwarder on the same outbox.
func (w *WebhookForwarder) ForwardPending(ctx context.Context) (int, error) {
	events, err := w.Events.ClaimPending(ctx, w.BatchSize, w.Lease)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, ev := range events {
		if ctx.Err() != nil {
			break
		}

		if err := w.post(ctx, ev); err != nil {
			w.recordFailure(ctx, ev, err)
			continue
		}

		if err := w.Events.MarkDelivered(ctx, ev.ID, time.Now()); err != nil {
			log.Printf("ERROR: mark webhook event %d delivered: %v", ev.ID, err)
			continue
		}
		metrics.WebhookForwarded.Inc()
		delivered++
	}
	return delivered, nil
}

func (w *WebhookForwarder) recordFailure(ctx context.Context, ev models.WebhookEvent, cause error) {
	metrics.WebhookFailed.Inc()

	attempts := ev.Attempts + 1
	status := models.WebhookPending
	if attempts >= w.MaxAttempts {
		status = models.WebhookFailed
	}
	log.Printf("ERROR: webhook event %d (%s listing=%s) attempt %d: %v", ev.ID, ev.Kind, ev.ListingID, attempts, cause)

	if err := w.Events.MarkAttempt(ctx, ev.ID, attempts, status, cause.Error()); err != nil {
		log.Printf("ERROR: record webhook attempt for event %d: %v", ev.ID, err)
	}
}

func (w *WebhookForwarder) post(ctx context.Context, ev models.WebhookEvent) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(ev.Payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Event", ev.Kind)

	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %s", resp.Status)
	}
	return nil
}
