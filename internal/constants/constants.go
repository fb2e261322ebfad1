package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID        = "user_id"
	ContextKeySponsorMember = "sponsor_member"
	ContextKeyListing       = "listing"
	SessionCookieName       = "listing_session"
)

// Auth
const (
	MinPasswordLength = 8
	TokenTTL          = 7 * 24 * time.Hour
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Notifications
const (
	// MaxConcurrentDeliveries caps in-flight sends during a fan-out.
	MaxConcurrentDeliveries = 5
	UnsubscribedCacheKey    = "emails:unsubscribed"
	UnsubscribedCacheTTL    = 10 * time.Minute
)

// Listings
const (
	// MaxSlugInsertAttempts bounds retries after the store rejects a duplicate slug.
	MaxSlugInsertAttempts = 5
	MaxWebhookAttempts    = 8
	WebhookBatchSize      = 50
	// WebhookClaimLease is how long a forwarder owns claimed outbox rows
	// before another replica may pick them up.
	WebhookClaimLease = 2 * time.Minute
)

// Rate limiting
const (
	RequestsPerSecond = 10
	RequestBurst      = 20
)
