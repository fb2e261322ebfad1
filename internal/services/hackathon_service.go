package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/listing-api/internal/models"
	"github.com/yukikurage/listing-api/internal/repository"
	"gorm.io/gorm"
)

// HackathonService manages hackathons whose tracks are published as listings.
type HackathonService struct {
	repo repository.HackathonRepository
}

// NewHackathonService creates a new HackathonService
func NewHackathonService(repo repository.HackathonRepository) *HackathonService {
	return &HackathonService{repo: repo}
}

// CreateHackathonInput represents input for creating a hackathon
type CreateHackathonInput struct {
	Name      string
	Deadline  *time.Time
	CreatorID string
}

// Create stores a hackathon and makes the creator its administrator.
func (s *HackathonService) Create(ctx context.Context, input CreateHackathonInput) (*models.Hackathon, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: hackathon name is required", ErrValidation)
	}

	hackathon := &models.Hackathon{
		Name:     name,
		Slug:     NormalizeSlug(name),
		Deadline: input.Deadline,
	}
	if err := s.repo.Create(ctx, hackathon, input.CreatorID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: hackathon %q already exists", ErrConflict, hackathon.Slug)
		}
		return nil, fmt.Errorf("%w: create hackathon: %w", ErrTransient, err)
	}
	return hackathon, nil
}

// GetBySlug returns a hackathon by slug.
func (s *HackathonService) GetBySlug(ctx context.Context, slug string) (*models.Hackathon, error) {
	hackathon, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, storeError("load hackathon", err, ErrHackathonNotFound)
	}
	return hackathon, nil
}
