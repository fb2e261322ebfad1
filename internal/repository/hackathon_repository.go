package repository

import (
	"context"

	"github.com/yukikurage/listing-api/internal/models"
	"gorm.io/gorm"
)

// GormHackathonRepository is a GORM implementation of HackathonRepository
type GormHackathonRepository struct {
	db *gorm.DB
}

// NewHackathonRepository creates a new HackathonRepository
func NewHackathonRepository(db *gorm.DB) HackathonRepository {
	return &GormHackathonRepository{db: db}
}

// Create creates a hackathon and makes creatorID its administrator
func (r *GormHackathonRepository) Create(ctx context.Context, hackathon *models.Hackathon, creatorID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(hackathon).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", creatorID).
			Update("hackathon_id", hackathon.ID).Error
	})
}

// FindByID finds a hackathon by ID
func (r *GormHackathonRepository) FindByID(ctx context.Context, id string) (*models.Hackathon, error) {
	var hackathon models.Hackathon
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&hackathon).Error; err != nil {
		return nil, err
	}
	return &hackathon, nil
}

// FindBySlug finds a hackathon by slug
func (r *GormHackathonRepository) FindBySlug(ctx context.Context, slug string) (*models.Hackathon, error) {
	var hackathon models.Hackathon
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&hackathon).Error; err != nil {
		return nil, err
	}
	return &hackathon, nil
}
