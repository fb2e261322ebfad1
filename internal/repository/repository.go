package repository

import (
	"context"
	"time"

	"github.com/yukikurage/listing-api/internal/models"
	"gorm.io/datatypes"
)

// ListingRepository defines the interface for listing data access
type ListingRepository interface {
	// Create inserts a new listing; a slug taken by another active listing yields gorm.ErrDuplicatedKey
	Create(ctx context.Context, listing *models.Listing) error

	// FindByID finds a listing by ID with optional preloading
	FindByID(ctx context.Context, id string, preload ...string) (*models.Listing, error)

	// FindBySlug finds a listing by slug, optionally restricted to active listings
	FindBySlug(ctx context.Context, slug string, activeOnly bool, preload ...string) (*models.Listing, error)

	// ExistsActiveSlug reports whether an active listing already uses slug
	ExistsActiveSlug(ctx context.Context, slug string) (bool, error)

	// UpdateScoped patches a listing only if it still belongs to sponsorID
	UpdateScoped(ctx context.Context, id, sponsorID string, patch map[string]any) (int64, error)

	// IncrementPaymentsMade adds one to total_payments_made
	IncrementPaymentsMade(ctx context.Context, id string) error

	// List retrieves listings with filtering and pagination
	List(ctx context.Context, filter ListingFilter) ([]models.Listing, int64, error)
}

// ListingFilter holds filtering options for listing listings
type ListingFilter struct {
	SponsorID   string
	Type        *models.ListingType
	ActiveOnly  bool
	IsPublished *bool
	Page        int
	PageSize    int
}

// SubmissionRepository defines the interface for submission data access
type SubmissionRepository interface {
	// Create creates a new submission
	Create(ctx context.Context, submission *models.Submission) error

	// FindByID finds a submission by ID with optional preloading
	FindByID(ctx context.Context, id string, preload ...string) (*models.Submission, error)

	// ListByListing lists a listing's submissions with their applicants
	ListByListing(ctx context.Context, listingID string) ([]models.Submission, error)

	// ClearWinners un-wins every submission of listingID holding one of positions
	ClearWinners(ctx context.Context, listingID string, positions []models.WinnerPosition) (int64, error)

	// UpdatePayment stores the payment flag and details
	UpdatePayment(ctx context.Context, id string, isPaid bool, details datatypes.JSON) error

	// SetWinner sets or, with a nil position, clears a submission's winner fields
	SetWinner(ctx context.Context, id string, position *models.WinnerPosition) error

	// FindWinnerAt finds the submission currently holding position on a listing
	FindWinnerAt(ctx context.Context, listingID string, position models.WinnerPosition) (*models.Submission, error)

	// CountWinners counts winning submissions of a listing
	CountWinners(ctx context.Context, listingID string) (int64, error)
}

// SubscriberRepository defines the interface for deadline subscriptions
type SubscriberRepository interface {
	// ListByListing lists subscribers of a listing with their users
	ListByListing(ctx context.Context, listingID string) ([]models.Subscriber, error)

	// Create subscribes a user, ignoring an existing subscription
	Create(ctx context.Context, subscriber *models.Subscriber) error

	// Delete removes a user's subscription
	Delete(ctx context.Context, listingID, userID string) error
}

// UnsubscribeRepository defines the interface for the global email opt-out list
type UnsubscribeRepository interface {
	// ListEmails returns every unsubscribed address
	ListEmails(ctx context.Context) ([]string, error)

	// Add records an address, ignoring duplicates
	Add(ctx context.Context, email string) error
}

// WebhookEventRepository defines the interface for the webhook outbox
type WebhookEventRepository interface {
	// Enqueue stores a pending event
	Enqueue(ctx context.Context, event *models.WebhookEvent) error

	// ListPending returns up to limit pending events, oldest first
	ListPending(ctx context.Context, limit int) ([]models.WebhookEvent, error)

	// ClaimPending takes ownership of up to limit unclaimed pending events for
	// lease and returns them, oldest first. Rows claimed by another caller
	// whose lease has not expired are skipped.
	ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]models.WebhookEvent, error)

	// MarkDelivered records a successful forward
	MarkDelivered(ctx context.Context, id uint64, at time.Time) error

	// MarkAttempt records a failed forward and the resulting status
	MarkAttempt(ctx context.Context, id uint64, attempts int, status models.WebhookEventStatus, lastErr string) error
}

// SponsorRepository defines the interface for sponsor data access
type SponsorRepository interface {
	// CreateWithOwner creates a sponsor, its owner membership and selects it for the owner
	CreateWithOwner(ctx context.Context, sponsor *models.Sponsor, member *models.SponsorMember) error

	// FindByID finds a sponsor by ID
	FindByID(ctx context.Context, id string) (*models.Sponsor, error)

	// FindByInviteCode finds a sponsor by invite code
	FindByInviteCode(ctx context.Context, code string) (*models.Sponsor, error)

	// Update updates a sponsor
	Update(ctx context.Context, sponsor *models.Sponsor) error

	// AddMember adds a member to a sponsor
	AddMember(ctx context.Context, member *models.SponsorMember) error

	// FindMember finds a specific sponsor member
	FindMember(ctx context.Context, sponsorID, userID string) (*models.SponsorMember, error)

	// ListMembersByUserID lists all sponsors a user is a member of
	ListMembersByUserID(ctx context.Context, userID string) ([]models.SponsorMember, error)
}

// HackathonRepository defines the interface for hackathon data access
type HackathonRepository interface {
	// Create creates a hackathon and makes creatorID its administrator
	Create(ctx context.Context, hackathon *models.Hackathon, creatorID string) error

	// FindByID finds a hackathon by ID
	FindByID(ctx context.Context, id string) (*models.Hackathon, error)

	// FindBySlug finds a hackathon by slug
	FindBySlug(ctx context.Context, slug string) (*models.Hackathon, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// SetCurrentSponsor changes the sponsor a user acts for
	SetCurrentSponsor(ctx context.Context, userID string, sponsorID *string) error
}
