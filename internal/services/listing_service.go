package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yukikurage/listing-api/internal/constants"
	"github.com/yukikurage/listing-api/internal/metrics"
	"github.com/yukikurage/listing-api/internal/models"
	"github.com/yukikurage/listing-api/internal/notify"
	"github.com/yukikurage/listing-api/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	WebhookListingCreated = "listing.created"
	WebhookListingUpdated = "listing.updated"
)

// ListingServiceOptions carries deployment settings into ListingService.
type ListingServiceOptions struct {
	// Production enables the automation webhook outbox.
	Production bool
	// SiteURL prefixes links in notification emails.
	SiteURL string
}

// ListingService runs the create, update and record-payment workflows.
type ListingService struct {
	repos      *repository.Repositories
	slugs      *SlugAllocator
	reconciler *ListingReconciler
	payments   *PaymentRecorder
	fanout     *notify.Fanout
	sender     notify.Sender
	opts       ListingServiceOptions
}

// NewListingService creates a new ListingService
func NewListingService(
	repos *repository.Repositories,
	slugs *SlugAllocator,
	reconciler *ListingReconciler,
	payments *PaymentRecorder,
	fanout *notify.Fanout,
	sender notify.Sender,
	opts ListingServiceOptions,
) *ListingService {
	return &ListingService{
		repos:      repos,
		slugs:      slugs,
		reconciler: reconciler,
		payments:   payments,
		fanout:     fanout,
		sender:     sender,
		opts:       opts,
	}
}

// CreateListingInput represents input for creating a listing
type CreateListingInput struct {
	ActorID   string
	Ownership OwnershipRequest
	Fields    ListingFields
}

// UpdateListingInput represents input for updating a listing
type UpdateListingInput struct {
	ActorID   string
	ListingID string
	Ownership OwnershipRequest
	Fields    ListingFields
}

// ListListingsInput represents filters for a sponsor's listings
type ListListingsInput struct {
	ActorID    string
	Type       *models.ListingType
	ActiveOnly bool
	Page       int
	PageSize   int
}

// Create validates ownership, allocates a unique slug and stores the listing.
// A duplicate-slug rejection from the store restarts allocation at the next suffix.
func (s *ListingService) Create(ctx context.Context, input CreateListingInput) (*models.Listing, error) {
	actor, err := loadActor(ctx, s.repos.Users, input.ActorID)
	if err != nil {
		return nil, err
	}

	own, err := s.reconciler.ResolveOwnership(ctx, actor, input.Ownership)
	if err != nil {
		return nil, err
	}

	if input.Fields.Title == nil || strings.TrimSpace(*input.Fields.Title) == "" {
		return nil, ErrTitleRequired
	}
	if err := ValidateFields(input.Fields); err != nil {
		return nil, err
	}

	listing := newListing(input.Fields, own)

	var created *models.Listing
	from := 0
	for attempt := 1; ; attempt++ {
		alloc, err := s.slugs.AllocateFrom(ctx, listing.Title, from)
		if err != nil {
			return nil, err
		}

		listing.ID = ""
		listing.Slug = alloc.Slug
		err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
			if err := tx.Listings.Create(ctx, listing); err != nil {
				return err
			}
			row, err := tx.Listings.FindByID(ctx, listing.ID, "Sponsor")
			if err != nil {
				return err
			}
			created = row
			return s.enqueueWebhook(ctx, tx, WebhookListingCreated, created)
		})
		if err == nil {
			break
		}

		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < constants.MaxSlugInsertAttempts {
			metrics.SlugInsertConflicts.Inc()
			log.Printf("slug %q was taken concurrently, retrying allocation", alloc.Slug)
			from = alloc.Suffix + 1
			continue
		}
		return nil, storeError("create listing", err, ErrListingNotFound)
	}

	return created, nil
}

// Update merges a partial update into a listing owned by the actor's sponsor,
// resets winners whose reward slot was removed, and notifies subscribers when
// the deadline moved.
func (s *ListingService) Update(ctx context.Context, input UpdateListingInput) (*models.Listing, error) {
	actor, err := loadActor(ctx, s.repos.Users, input.ActorID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repos.Listings.FindByID(ctx, input.ListingID)
	if err != nil {
		return nil, storeError("load listing", err, fmt.Errorf("%w: id=%s", ErrListingNotFound, input.ListingID))
	}

	own, err := s.reconciler.ResolveOwnership(ctx, actor, input.Ownership)
	if err != nil {
		return nil, err
	}
	if existing.SponsorID == nil || *existing.SponsorID != own.SponsorID {
		return nil, ErrNotListingSponsor
	}

	patch, reset, err := s.reconciler.BuildPatch(existing, input.Fields, own)
	if err != nil {
		return nil, err
	}

	// Compared against what the caller sent, before any hackathon override.
	deadlineChanged := input.Fields.DeadlineSet && DeadlineChanged(existing.Deadline, input.Fields.Deadline)

	var updated *models.Listing
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if reset != nil {
			if err := s.reconciler.ApplyWinnerReset(ctx, tx.Submissions, existing.ID, *reset); err != nil {
				return err
			}
		}

		affected, err := tx.Listings.UpdateScoped(ctx, existing.ID, own.SponsorID, patch)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotListingSponsor
		}

		updated, err = tx.Listings.FindByID(ctx, existing.ID, "Sponsor")
		if err != nil {
			return err
		}
		return s.enqueueWebhook(ctx, tx, WebhookListingUpdated, updated)
	})
	if err != nil {
		if errors.Is(err, ErrForbidden) || errors.Is(err, ErrTransient) {
			return nil, err
		}
		return nil, storeError("update listing", err, ErrListingNotFound)
	}

	if deadlineChanged {
		s.notifyDeadlineChanged(ctx, updated)
	}

	return updated, nil
}

// RecordPayment delegates to the PaymentRecorder.
func (s *ListingService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*models.Submission, error) {
	return s.payments.Record(ctx, input)
}

// GetBySlug returns the active listing with slug and its sponsor.
func (s *ListingService) GetBySlug(ctx context.Context, slug string) (*models.Listing, error) {
	listing, err := s.repos.Listings.FindBySlug(ctx, slug, true, "Sponsor", "Hackathon")
	if err != nil {
		return nil, storeError("load listing", err, fmt.Errorf("%w: slug=%s", ErrListingNotFound, slug))
	}
	return listing, nil
}

// ListForSponsor returns the listings of the actor's current sponsor.
func (s *ListingService) ListForSponsor(ctx context.Context, input ListListingsInput) ([]models.Listing, int64, error) {
	actor, err := loadActor(ctx, s.repos.Users, input.ActorID)
	if err != nil {
		return nil, 0, err
	}
	if actor.CurrentSponsorID == nil {
		return nil, 0, ErrNoCurrentSponsor
	}

	listings, total, err := s.repos.Listings.List(ctx, repository.ListingFilter{
		SponsorID:  *actor.CurrentSponsorID,
		Type:       input.Type,
		ActiveOnly: input.ActiveOnly,
		Page:       input.Page,
		PageSize:   input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list listings: %w", ErrTransient, err)
	}
	return listings, total, nil
}

// Deactivate soft-deletes a listing of the actor's current sponsor.
func (s *ListingService) Deactivate(ctx context.Context, actorID, listingID string) error {
	actor, err := loadActor(ctx, s.repos.Users, actorID)
	if err != nil {
		return err
	}
	if actor.CurrentSponsorID == nil {
		return ErrNoCurrentSponsor
	}

	affected, err := s.repos.Listings.UpdateScoped(ctx, listingID, *actor.CurrentSponsorID, map[string]any{
		"is_active":   false,
		"active_slug": nil,
	})
	if err != nil {
		return storeError("deactivate listing", err, ErrListingNotFound)
	}
	if affected == 0 {
		if _, err := s.repos.Listings.FindByID(ctx, listingID); err != nil {
			return storeError("load listing", err, ErrListingNotFound)
		}
		return ErrNotListingSponsor
	}
	return nil
}

// ListingLink is the public URL of a listing.
func (s *ListingService) ListingLink(listing *models.Listing) string {
	return fmt.Sprintf("%s/listings/%s/%s/", s.opts.SiteURL, listing.Type, listing.Slug)
}

func (s *ListingService) enqueueWebhook(ctx context.Context, tx *repository.Repositories, kind string, listing *models.Listing) error {
	if !s.opts.Production {
		return nil
	}

	payload, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	return tx.WebhookEvents.Enqueue(ctx, &models.WebhookEvent{
		Kind:      kind,
		ListingID: listing.ID,
		Payload:   datatypes.JSON(payload),
	})
}

// notifyDeadlineChanged emails every subscriber who has not opted out.
// Failures are logged only; the update is already committed.
func (s *ListingService) notifyDeadlineChanged(ctx context.Context, listing *models.Listing) {
	subscribers, err := s.repos.Subscribers.ListByListing(ctx, listing.ID)
	if err != nil {
		log.Printf("ERROR: failed to load subscribers of listing %s: %v", listing.ID, err)
		return
	}

	recipients := make([]notify.Recipient, 0, len(subscribers))
	for _, sub := range subscribers {
		recipients = append(recipients, notify.Recipient{UserID: sub.UserID, Email: sub.User.Email})
	}

	data := notify.DeadlineExtendedData{
		ListingName: listing.Title,
		Link:        s.ListingLink(listing),
	}
	result, err := s.fanout.Notify(ctx, recipients, func(ctx context.Context, r notify.Recipient) error {
		msg, err := notify.DeadlineExtended(r.Email, data)
		if err != nil {
			return err
		}
		return s.sender.Send(ctx, msg)
	})
	if err != nil {
		log.Printf("ERROR: deadline notifications for listing %s skipped: %v", listing.ID, err)
		return
	}

	log.Printf("deadline notifications for listing %s: attempted=%d failed=%d skipped=%d abandoned=%d",
		listing.ID, result.Attempted, result.Failed, result.Skipped, result.Abandoned)
}

func newListing(f ListingFields, own *Ownership) *models.Listing {
	listing := &models.Listing{
		Title:       strings.TrimSpace(*f.Title),
		Type:        models.ListingTypeBounty,
		SponsorID:   &own.SponsorID,
		HackathonID: own.HackathonID,
		Deadline:    f.Deadline,
		Skills:      f.Skills,
		Eligibility: f.Eligibility,
		References:  f.References,
		IsActive:    true,
	}
	if own.OverridesDeadline {
		listing.Deadline = own.Deadline
	}
	if own.HackathonID != nil {
		listing.Type = models.ListingTypeHackathon
	}
	if f.Type != nil {
		listing.Type = *f.Type
	}

	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&listing.Description, f.Description)
	assign(&listing.Requirements, f.Requirements)
	assign(&listing.Token, f.Token)
	assign(&listing.Region, f.Region)
	assign(&listing.ApplicationType, f.ApplicationType)
	assign(&listing.TimeToComplete, f.TimeToComplete)
	assign(&listing.PocSocials, f.PocSocials)
	assign(&listing.Status, f.Status)

	if f.RewardAmount != nil {
		listing.RewardAmount = *f.RewardAmount
	}
	rewards := models.Rewards{}
	if f.Rewards != nil {
		rewards = *f.Rewards
	}
	listing.Rewards = datatypes.NewJSONType(rewards)
	if f.IsPublished != nil {
		listing.IsPublished = *f.IsPublished
	}
	if f.IsPrivate != nil {
		listing.IsPrivate = *f.IsPrivate
	}
	return listing
}
