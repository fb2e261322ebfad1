package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/listing-api/internal/models"
	"github.com/yukikurage/listing-api/internal/repository"
	"gorm.io/datatypes"
)

// ListingFields carries the listing attributes a caller may set. Nil pointers
// and nil JSON values are left untouched on update.
type ListingFields struct {
	Title *string
	Type  *models.ListingType

	// DeadlineSet reports whether the caller sent a deadline at all;
	// Deadline nil with DeadlineSet true clears it.
	Deadline    *time.Time
	DeadlineSet bool

	Description     *string
	Requirements    *string
	Token           *string
	RewardAmount    *decimal.Decimal
	Rewards         *models.Rewards
	Region          *string
	Skills          datatypes.JSON
	Eligibility     datatypes.JSON
	References      datatypes.JSON
	ApplicationType *string
	TimeToComplete  *string
	PocSocials      *string
	Status          *string
	IsPublished     *bool
	IsPrivate       *bool
}

// OwnershipRequest is the optional hackathon context of a create or update.
type OwnershipRequest struct {
	HackathonSlug    string
	HackathonSponsor string
}

// Ownership is the resolved owner of a listing.
type Ownership struct {
	SponsorID   string
	HackathonID *string

	// OverridesDeadline is true for hackathon tracks, whose deadline always
	// follows the hackathon's.
	OverridesDeadline bool
	Deadline          *time.Time
}

// WinnerReset describes the winner state to clear after rewards shrink.
type WinnerReset struct {
	TotalWinnersSelected int
	Positions            []models.WinnerPosition
}

// ListingReconciler authorizes listing writes and merges partial updates.
type ListingReconciler struct {
	hackathons repository.HackathonRepository
	sponsors   repository.SponsorRepository
}

// NewListingReconciler creates a ListingReconciler.
func NewListingReconciler(hackathons repository.HackathonRepository, sponsors repository.SponsorRepository) *ListingReconciler {
	return &ListingReconciler{hackathons: hackathons, sponsors: sponsors}
}

// ResolveOwnership decides which sponsor, and optionally which hackathon, a
// listing written by actor belongs to.
func (r *ListingReconciler) ResolveOwnership(ctx context.Context, actor *models.User, req OwnershipRequest) (*Ownership, error) {
	if req.HackathonSlug == "" {
		if actor.CurrentSponsorID == nil || *actor.CurrentSponsorID == "" {
			return nil, ErrNoCurrentSponsor
		}
		return &Ownership{SponsorID: *actor.CurrentSponsorID}, nil
	}

	if actor.HackathonID == nil || *actor.HackathonID == "" {
		return nil, ErrNoHackathon
	}

	hackathon, err := r.hackathons.FindByID(ctx, *actor.HackathonID)
	if err != nil {
		return nil, storeError("load hackathon", err, ErrHackathonNotFound)
	}

	sponsorID := strings.TrimSpace(req.HackathonSponsor)
	if sponsorID == "" {
		return nil, ErrHackathonSponsorReq
	}
	if _, err := r.sponsors.FindByID(ctx, sponsorID); err != nil {
		return nil, storeError("load hackathon sponsor", err, fmt.Errorf("%w: id=%s", ErrUnknownSponsor, sponsorID))
	}

	return &Ownership{
		SponsorID:         sponsorID,
		HackathonID:       &hackathon.ID,
		OverridesDeadline: true,
		Deadline:          hackathon.Deadline,
	}, nil
}

// DeadlineChanged compares deadlines exactly, treating two nils as equal.
func DeadlineChanged(existing, incoming *time.Time) bool {
	if existing == nil || incoming == nil {
		return existing != incoming
	}
	return !existing.Equal(*incoming)
}

// PlanWinnerReset returns the reset needed when a listing that has
// currentWinners selected now offers only newRewardsCount reward slots.
func PlanWinnerReset(currentWinners, newRewardsCount int) (WinnerReset, bool) {
	if newRewardsCount >= currentWinners {
		return WinnerReset{}, false
	}
	if newRewardsCount < 0 {
		newRewardsCount = 0
	}

	start := min(newRewardsCount, len(models.WinnerPositions))
	positions := make([]models.WinnerPosition, len(models.WinnerPositions)-start)
	copy(positions, models.WinnerPositions[start:])

	return WinnerReset{
		TotalWinnersSelected: newRewardsCount,
		Positions:            positions,
	}, true
}

// ApplyWinnerReset clears winner fields on every submission holding a removed position.
func (r *ListingReconciler) ApplyWinnerReset(ctx context.Context, submissions repository.SubmissionRepository, listingID string, reset WinnerReset) error {
	if _, err := submissions.ClearWinners(ctx, listingID, reset.Positions); err != nil {
		return fmt.Errorf("%w: reset winners of listing %s: %w", ErrTransient, listingID, err)
	}
	return nil
}

// ValidateFields rejects malformed values before anything is written.
func ValidateFields(f ListingFields) error {
	if f.Title != nil && strings.TrimSpace(*f.Title) == "" {
		return ErrTitleRequired
	}
	if f.Type != nil && !f.Type.Valid() {
		return ErrInvalidListingType
	}
	if f.Rewards != nil {
		if err := f.Rewards.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	if f.RewardAmount != nil && f.RewardAmount.IsNegative() {
		return fmt.Errorf("%w: rewardAmount must not be negative", ErrValidation)
	}
	return nil
}

// BuildPatch merges fields into the column map for an update of existing.
// Ownership columns are always written. The returned reset is non-nil when
// the new rewards drop below the winners already selected.
func (r *ListingReconciler) BuildPatch(existing *models.Listing, f ListingFields, own *Ownership) (map[string]any, *WinnerReset, error) {
	if err := ValidateFields(f); err != nil {
		return nil, nil, err
	}

	patch := map[string]any{
		"sponsor_id": own.SponsorID,
	}
	if own.HackathonID != nil {
		patch["hackathon_id"] = *own.HackathonID
	}

	setString := func(column string, v *string) {
		if v != nil {
			patch[column] = *v
		}
	}
	setJSON := func(column string, v datatypes.JSON) {
		if v != nil {
			patch[column] = v
		}
	}

	if f.Title != nil {
		patch["title"] = strings.TrimSpace(*f.Title)
	}
	if f.Type != nil {
		patch["type"] = *f.Type
	}
	setString("description", f.Description)
	setString("requirements", f.Requirements)
	setString("token", f.Token)
	setString("region", f.Region)
	setString("application_type", f.ApplicationType)
	setString("time_to_complete", f.TimeToComplete)
	setString("poc_socials", f.PocSocials)
	setString("status", f.Status)
	setJSON("skills", f.Skills)
	setJSON("eligibility", f.Eligibility)
	setJSON("references", f.References)
	if f.RewardAmount != nil {
		patch["reward_amount"] = *f.RewardAmount
	}
	if f.IsPublished != nil {
		patch["is_published"] = *f.IsPublished
	}
	if f.IsPrivate != nil {
		patch["is_private"] = *f.IsPrivate
	}

	switch {
	case own.OverridesDeadline:
		patch["deadline"] = own.Deadline
	case f.DeadlineSet:
		patch["deadline"] = f.Deadline
	}

	var reset *WinnerReset
	if f.Rewards != nil {
		patch["rewards"] = datatypes.NewJSONType(*f.Rewards)
		if plan, ok := PlanWinnerReset(existing.TotalWinnersSelected, len(*f.Rewards)); ok {
			patch["total_winners_selected"] = plan.TotalWinnersSelected
			reset = &plan
		}
	}

	return patch, reset, nil
}
