package repository

import (
	"context"

	"github.com/yukikurage/listing-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormSubmissionRepository is a GORM implementation of SubmissionRepository
type GormSubmissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &GormSubmissionRepository{db: db}
}

// Create creates a new submission
func (r *GormSubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// FindByID finds a submission by ID with optional preloading
func (r *GormSubmissionRepository) FindByID(ctx context.Context, id string, preload ...string) (*models.Submission, error) {
	var submission models.Submission
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("id = ?", id).First(&submission).Error; err != nil {
		return nil, err
	}

	return &submission, nil
}

// ListByListing lists a listing's submissions with their applicants
func (r *GormSubmissionRepository) ListByListing(ctx context.Context, listingID string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("listing_id = ?", listingID).
		Order("created_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// ClearWinners un-wins every submission of listingID holding one of positions.
// Submissions themselves are kept.
func (r *GormSubmissionRepository) ClearWinners(ctx context.Context, listingID string, positions []models.WinnerPosition) (int64, error) {
	if len(positions) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("listing_id = ? AND is_winner = ? AND winner_position IN ?", listingID, true, positions).
		Updates(map[string]any{
			"is_winner":       false,
			"winner_position": nil,
		})
	return result.RowsAffected, result.Error
}

// UpdatePayment stores the payment flag and details
func (r *GormSubmissionRepository) UpdatePayment(ctx context.Context, id string, isPaid bool, details datatypes.JSON) error {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_paid":         isPaid,
			"payment_details": details,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetWinner sets or, with a nil position, clears a submission's winner fields
func (r *GormSubmissionRepository) SetWinner(ctx context.Context, id string, position *models.WinnerPosition) error {
	return r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_winner":       position != nil,
			"winner_position": position,
		}).Error
}

// FindWinnerAt finds the submission currently holding position on a listing
func (r *GormSubmissionRepository) FindWinnerAt(ctx context.Context, listingID string, position models.WinnerPosition) (*models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("listing_id = ? AND is_winner = ? AND winner_position = ?", listingID, true, position).
		First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// CountWinners counts winning submissions of a listing
func (r *GormSubmissionRepository) CountWinners(ctx context.Context, listingID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("listing_id = ? AND is_winner = ?", listingID, true).
		Count(&count).Error
	return count, err
}
