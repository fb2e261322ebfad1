package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/listing-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrCreateSponsor is returned when creating the sponsor row fails inside CreateWithOwner.
	ErrCreateSponsor = errors.New("sponsor repository: create sponsor failed")
	// ErrCreateSponsorMember is returned when creating the owner membership fails inside CreateWithOwner.
	ErrCreateSponsorMember = errors.New("sponsor repository: create sponsor member failed")
)

// GormSponsorRepository is a GORM implementation of SponsorRepository
type GormSponsorRepository struct {
	db *gorm.DB
}

// NewSponsorRepository creates a new SponsorRepository
func NewSponsorRepository(db *gorm.DB) SponsorRepository {
	return &GormSponsorRepository{db: db}
}

// CreateWithOwner creates a sponsor, the owner membership, and points the owner's
// current sponsor at it atomically.
func (r *GormSponsorRepository) CreateWithOwner(ctx context.Context, sponsor *models.Sponsor, member *models.SponsorMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sponsor).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateSponsor, err)
		}

		member.SponsorID = sponsor.ID
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateSponsorMember, err)
		}

		return tx.Model(&models.User{}).
			Where("id = ?", member.UserID).
			Update("current_sponsor_id", sponsor.ID).Error
	})
}

// FindByID finds a sponsor by ID
func (r *GormSponsorRepository) FindByID(ctx context.Context, id string) (*models.Sponsor, error) {
	var sponsor models.Sponsor
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&sponsor).Error; err != nil {
		return nil, err
	}
	return &sponsor, nil
}

// FindByInviteCode finds a sponsor by invite code
func (r *GormSponsorRepository) FindByInviteCode(ctx context.Context, code string) (*models.Sponsor, error) {
	var sponsor models.Sponsor
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&sponsor).Error; err != nil {
		return nil, err
	}
	return &sponsor, nil
}

// Update updates a sponsor
func (r *GormSponsorRepository) Update(ctx context.Context, sponsor *models.Sponsor) error {
	return r.db.WithContext(ctx).Save(sponsor).Error
}

// AddMember adds a member to a sponsor
func (r *GormSponsorRepository) AddMember(ctx context.Context, member *models.SponsorMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// FindMember finds a specific sponsor member
func (r *GormSponsorRepository) FindMember(ctx context.Context, sponsorID, userID string) (*models.SponsorMember, error) {
	var member models.SponsorMember
	if err := r.db.WithContext(ctx).
		Where("sponsor_id = ? AND user_id = ?", sponsorID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembersByUserID lists all sponsors a user is a member of
func (r *GormSponsorRepository) ListMembersByUserID(ctx context.Context, userID string) ([]models.SponsorMember, error) {
	var memberships []models.SponsorMember
	if err := r.db.WithContext(ctx).
		Preload("Sponsor").
		Where("user_id = ?", userID).
		Order("joined_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}
