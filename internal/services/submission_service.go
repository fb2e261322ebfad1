package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/listing-api/internal/models"
	"github.com/yukikurage/listing-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrListingClosed       = fmt.Errorf("%w: listing is not accepting submissions", ErrValidation)
	ErrPositionNotRewarded = fmt.Errorf("%w: position has no reward on this listing", ErrValidation)
	ErrPositionTaken       = fmt.Errorf("%w: position already has a winner", ErrConflict)
)

// SubmissionService handles applicant submissions and winner selection.
type SubmissionService struct {
	repos *repository.Repositories
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(repos *repository.Repositories) *SubmissionService {
	return &SubmissionService{repos: repos}
}

// SubmitInput represents an applicant's entry to a listing
type SubmitInput struct {
	ActorID   string
	ListingID string
	Link      string
	Notes     string
}

// SelectWinnerInput sets, or with a nil Position clears, a winner
type SelectWinnerInput struct {
	ActorID      string
	SubmissionID string
	Position     *models.WinnerPosition
}

// Submit records an applicant's submission to an active, published listing.
func (s *SubmissionService) Submit(ctx context.Context, input SubmitInput) (*models.Submission, error) {
	actor, err := loadActor(ctx, s.repos.Users, input.ActorID)
	if err != nil {
		return nil, err
	}

	listing, err := s.repos.Listings.FindByID(ctx, input.ListingID)
	if err != nil {
		return nil, storeError("load listing", err, ErrListingNotFound)
	}
	if !listing.IsActive || !listing.IsPublished {
		return nil, ErrListingClosed
	}
	if strings.TrimSpace(input.Link) == "" {
		return nil, fmt.Errorf("%w: link is required", ErrValidation)
	}

	submission := &models.Submission{
		ListingID: listing.ID,
		UserID:    actor.ID,
		Link:      strings.TrimSpace(input.Link),
		Notes:     input.Notes,
	}
	if err := s.repos.Submissions.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("%w: create submission: %w", ErrTransient, err)
	}
	return submission, nil
}

// ListForListing returns a listing's submissions to its sponsor.
func (s *SubmissionService) ListForListing(ctx context.Context, actorID string, listing *models.Listing) ([]models.Submission, error) {
	actor, err := loadActor(ctx, s.repos.Users, actorID)
	if err != nil {
		return nil, err
	}
	if !actsFor(actor, listing) {
		return nil, ErrNotListingSponsor
	}

	submissions, err := s.repos.Submissions.ListByListing(ctx, listing.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: list submissions: %w", ErrTransient, err)
	}
	return submissions, nil
}

// SelectWinner assigns a reward position to a submission and recounts the
// listing's selected winners.
func (s *SubmissionService) SelectWinner(ctx context.Context, input SelectWinnerInput) (*models.Submission, error) {
	actor, err := loadActor(ctx, s.repos.Users, input.ActorID)
	if err != nil {
		return nil, err
	}

	submission, err := s.repos.Submissions.FindByID(ctx, input.SubmissionID, "Listing")
	if err != nil {
		return nil, storeError("load submission", err, ErrSubmissionNotFound)
	}
	if submission.Listing == nil || !actsFor(actor, submission.Listing) {
		return nil, ErrNotListingSponsor
	}

	if input.Position != nil {
		if !input.Position.Valid() || !submission.Listing.RewardMap().Has(*input.Position) {
			return nil, ErrPositionNotRewarded
		}
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if input.Position != nil {
			holder, err := tx.Submissions.FindWinnerAt(ctx, submission.ListingID, *input.Position)
			switch {
			case err == nil && holder.ID != submission.ID:
				return ErrPositionTaken
			case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}

		if err := tx.Submissions.SetWinner(ctx, submission.ID, input.Position); err != nil {
			return err
		}

		count, err := tx.Submissions.CountWinners(ctx, submission.ListingID)
		if err != nil {
			return err
		}
		_, err = tx.Listings.UpdateScoped(ctx, submission.ListingID, *submission.Listing.SponsorID,
			map[string]any{"total_winners_selected": count})
		return err
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, err
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPositionTaken
		}
		return nil, storeError("select winner", err, ErrSubmissionNotFound)
	}

	updated, err := s.repos.Submissions.FindByID(ctx, submission.ID)
	if err != nil {
		return nil, storeError("reload submission", err, ErrSubmissionNotFound)
	}
	return updated, nil
}

func actsFor(actor *models.User, listing *models.Listing) bool {
	return actor.CurrentSponsorID != nil && listing.SponsorID != nil &&
		*actor.CurrentSponsorID == *listing.SponsorID
}
