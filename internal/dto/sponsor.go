package dto

import (
	"time"

	"github.com/yukikurage/listing-api/internal/models"
)

// SponsorDTO represents a sponsor in API responses
type SponsorDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	LogoURL    string `json:"logo_url,omitempty"`
	InviteCode string `json:"invite_code,omitempty"`
}

// SponsorWithRoleDTO represents a sponsor with the user's role
type SponsorWithRoleDTO struct {
	SponsorDTO
	Role     models.SponsorRole `json:"role"`
	JoinedAt time.Time          `json:"joined_at"`
}

// ToSponsorDTO converts a Sponsor model to SponsorDTO
func ToSponsorDTO(sponsor models.Sponsor, includeInviteCode bool) SponsorDTO {
	dto := SponsorDTO{
		ID:      sponsor.ID,
		Name:    sponsor.Name,
		Slug:    sponsor.Slug,
		LogoURL: sponsor.LogoURL,
	}
	if includeInviteCode {
		dto.InviteCode = sponsor.InviteCode
	}
	return dto
}

// ToSponsorWithRoleDTO converts a membership to DTO with role.
// Only owners see the invite code.
func ToSponsorWithRoleDTO(member models.SponsorMember) SponsorWithRoleDTO {
	return SponsorWithRoleDTO{
		SponsorDTO: ToSponsorDTO(member.Sponsor, member.Role == models.RoleOwner),
		Role:       member.Role,
		JoinedAt:   member.JoinedAt,
	}
}
