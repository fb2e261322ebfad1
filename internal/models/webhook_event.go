package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookEventStatus string

const (
	WebhookPending   WebhookEventStatus = "pending"
	WebhookDelivered WebhookEventStatus = "delivered"
	WebhookFailed    WebhookEventStatus = "failed"
)

// WebhookEvent is an outbox row holding a listing snapshot to forward.
type WebhookEvent struct {
	ID          uint64             `gorm:"primarykey" json:"id"`
	Kind        string             `gorm:"type:varchar(50);not null" json:"kind"`
	ListingID   string             `gorm:"type:varchar(36);not null;index" json:"listing_id"`
	Payload     datatypes.JSON     `gorm:"not null" json:"payload"`
	Status      WebhookEventStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Attempts    int                `gorm:"not null;default:0" json:"attempts"`
	LastError   string             `gorm:"type:text" json:"last_error,omitempty"`
	DeliveredAt *time.Time         `json:"delivered_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`

	// Set while a forwarder owns the row
	ClaimToken   string     `gorm:"type:varchar(36);index" json:"-"`
	ClaimedUntil *time.Time `json:"-"`
}
