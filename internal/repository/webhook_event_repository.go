package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/listing-api/internal/models"
	"gorm.io/gorm"
)

// GormWebhookEventRepository is a GORM implementation of WebhookEventRepository
type GormWebhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new WebhookEventRepository
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

// Enqueue stores a pending event
func (r *GormWebhookEventRepository) Enqueue(ctx context.Context, event *models.WebhookEvent) error {
	event.Status = models.WebhookPending
	return r.db.WithContext(ctx).Create(event).Error
}

// ListPending returns up to limit pending events, oldest first
func (r *GormWebhookEventRepository) ListPending(ctx context.Context, limit int) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.WebhookPending).
		Order("id ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ClaimPending claims pending events with a conditional update, so two
// forwarders polling the same outbox never receive the same row.
func (r *GormWebhookEventRepository) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]models.WebhookEvent, error) {
	now := time.Now().UTC()
	claimable := func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", models.WebhookPending).
			Where("(claimed_until IS NULL OR claimed_until < ?)", now)
	}

	var ids []uint64
	if err := r.db.WithContext(ctx).
		Model(&models.WebhookEvent{}).
		Scopes(claimable).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	token := uuid.NewString()
	if err := r.db.WithContext(ctx).
		Model(&models.WebhookEvent{}).
		Scopes(claimable).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"claim_token":   token,
			"claimed_until": now.Add(lease),
		}).Error; err != nil {
		return nil, err
	}

	var events []models.WebhookEvent
	if err := r.db.WithContext(ctx).
		Where("claim_token = ?", token).
		Order("id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// MarkDelivered records a successful forward
func (r *GormWebhookEventRepository) MarkDelivered(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.WebhookEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        models.WebhookDelivered,
			"delivered_at":  at,
			"attempts":      gorm.Expr("attempts + ?", 1),
			"last_error":    "",
			"claim_token":   "",
			"claimed_until": nil,
		}).Error
}

// MarkAttempt records a failed forward and the resulting status
func (r *GormWebhookEventRepository) MarkAttempt(ctx context.Context, id uint64, attempts int, status models.WebhookEventStatus, lastErr string) error {
	return r.db.WithContext(ctx).
		Model(&models.WebhookEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        status,
			"attempts":      attempts,
			"last_error":    lastErr,
			"claim_token":   "",
			"claimed_until": nil,
		}).Error
}
