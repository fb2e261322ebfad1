package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/listing-api/internal/models"
	"github.com/yukikurage/listing-api/internal/repository"
	"github.com/yukikurage/listing-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrSponsorNotFound            = fmt.Errorf("%w: sponsor", ErrNotFound)
	ErrInvalidSponsorName         = fmt.Errorf("%w: sponsor name cannot be empty", ErrValidation)
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invite code")
	ErrInvalidInviteCode          = fmt.Errorf("%w: invalid invite code", ErrNotFound)
	ErrAlreadySponsorMember       = fmt.Errorf("%w: user is already a member of this sponsor", ErrConflict)
	ErrNotSponsorMember           = fmt.Errorf("%w: user is not a member of this sponsor", ErrForbidden)
	ErrSponsorNameTaken           = fmt.Errorf("%w: a sponsor with this name already exists", ErrConflict)
)

// SponsorService provides business logic for sponsor operations.
type SponsorService struct {
	sponsorRepo repository.SponsorRepository
	userRepo    repository.UserRepository
}

// NewSponsorService creates a new SponsorService.
func NewSponsorService(sponsorRepo repository.SponsorRepository, userRepo repository.UserRepository) *SponsorService {
	return &SponsorService{
		sponsorRepo: sponsorRepo,
		userRepo:    userRepo,
	}
}

// CreateSponsorInput represents parameters to create a new sponsor.
type CreateSponsorInput struct {
	Name    string
	LogoURL string
	OwnerID string
}

// CreateSponsor creates a sponsor, assigns the owner and makes it their current sponsor.
func (s *SponsorService) CreateSponsor(ctx context.Context, input CreateSponsorInput) (*models.Sponsor, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || NormalizeSlug(name) == "" {
		return nil, ErrInvalidSponsorName
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	sponsor := &models.Sponsor{
		Name:       name,
		Slug:       NormalizeSlug(name),
		LogoURL:    input.LogoURL,
		InviteCode: inviteCode,
	}
	member := &models.SponsorMember{
		UserID:   input.OwnerID,
		Role:     models.RoleOwner,
		JoinedAt: time.Now(),
	}

	if err := s.sponsorRepo.CreateWithOwner(ctx, sponsor, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSponsorNameTaken
		}
		return nil, fmt.Errorf("%w: create sponsor: %w", ErrTransient, err)
	}

	return sponsor, nil
}

// ListSponsorsForUser returns sponsors the user belongs to.
func (s *SponsorService) ListSponsorsForUser(ctx context.Context, userID string) ([]models.SponsorMember, error) {
	memberships, err := s.sponsorRepo.ListMembersByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list sponsors: %w", ErrTransient, err)
	}
	return memberships, nil
}

// JoinSponsorByInvite adds a user to a sponsor via invite code.
func (s *SponsorService) JoinSponsorByInvite(ctx context.Context, userID, inviteCode string) (*models.Sponsor, error) {
	sponsor, err := s.sponsorRepo.FindByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, storeError("find sponsor by invite code", err, ErrInvalidInviteCode)
	}

	if _, err := s.sponsorRepo.FindMember(ctx, sponsor.ID, userID); err == nil {
		return nil, ErrAlreadySponsorMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: verify membership: %w", ErrTransient, err)
	}

	member := &models.SponsorMember{
		SponsorID: sponsor.ID,
		UserID:    userID,
		Role:      models.RoleMember,
		JoinedAt:  time.Now(),
	}

	if err := s.sponsorRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("%w: add member: %w", ErrTransient, err)
	}

	return sponsor, nil
}

// SelectSponsor switches the sponsor a member acts for.
func (s *SponsorService) SelectSponsor(ctx context.Context, userID, sponsorID string) error {
	if _, err := s.sponsorRepo.FindMember(ctx, sponsorID, userID); err != nil {
		return storeError("verify membership", err, ErrNotSponsorMember)
	}

	if err := s.userRepo.SetCurrentSponsor(ctx, userID, &sponsorID); err != nil {
		return fmt.Errorf("%w: select sponsor: %w", ErrTransient, err)
	}
	return nil
}

// RegenerateInviteCode generates a new invite code for the sponsor.
func (s *SponsorService) RegenerateInviteCode(ctx context.Context, sponsorID string) (*models.Sponsor, error) {
	sponsor, err := s.sponsorRepo.FindByID(ctx, sponsorID)
	if err != nil {
		return nil, storeError("find sponsor", err, ErrSponsorNotFound)
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	sponsor.InviteCode = code
	if err := s.sponsorRepo.Update(ctx, sponsor); err != nil {
		return nil, fmt.Errorf("%w: update invite code: %w", ErrTransient, err)
	}

	return sponsor, nil
}
