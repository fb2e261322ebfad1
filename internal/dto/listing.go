package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/listing-api/internal/models"
	"github.com/yukikurage/listing-api/internal/services"
	"github.com/yukikurage/listing-api/internal/utils"
	"gorm.io/datatypes"
)

// ListingPayload is a create or update body decoded key by key, so that an
// absent key and an explicit null can be told apart.
type ListingPayload map[string]json.RawMessage

// Fields extracts the listing fields that were sent.
func (p ListingPayload) Fields() (services.ListingFields, error) {
	var f services.ListingFields

	text := []struct {
		key string
		dst **string
	}{
		{"title", &f.Title},
		{"description", &f.Description},
		{"requirements", &f.Requirements},
		{"token", &f.Token},
		{"region", &f.Region},
		{"application_type", &f.ApplicationType},
		{"time_to_complete", &f.TimeToComplete},
		{"poc_socials", &f.PocSocials},
		{"status", &f.Status},
	}
	for _, t := range text {
		if err := decodeField(p, t.key, t.dst); err != nil {
			return f, err
		}
	}

	if raw, ok := p.present("type"); ok {
		var t models.ListingType
		if err := json.Unmarshal(raw, &t); err != nil {
			return f, invalidField("type", err)
		}
		f.Type = &t
	}

	if raw, ok := p["deadline"]; ok {
		f.DeadlineSet = true
		if !isNull(raw) {
			var deadline time.Time
			if err := json.Unmarshal(raw, &deadline); err != nil {
				return f, invalidField("deadline", err)
			}
			f.Deadline = &deadline
		}
	}

	if raw, ok := p.present("reward_amount"); ok {
		var amount decimal.Decimal
		if err := json.Unmarshal(raw, &amount); err != nil {
			return f, invalidField("reward_amount", err)
		}
		f.RewardAmount = &amount
	}

	if raw, ok := p["rewards"]; ok {
		rewards, err := decodeRewards(raw)
		if err != nil {
			return f, invalidField("rewards", err)
		}
		f.Rewards = &rewards
	}

	f.Skills = p.rawJSON("skills")
	f.Eligibility = p.rawJSON("eligibility")
	f.References = p.rawJSON("references")

	if err := decodeField(p, "is_published", &f.IsPublished); err != nil {
		return f, err
	}
	if err := decodeField(p, "is_private", &f.IsPrivate); err != nil {
		return f, err
	}

	return f, nil
}

// Ownership extracts the optional hackathon context.
func (p ListingPayload) Ownership() (services.OwnershipRequest, error) {
	var req services.OwnershipRequest
	var slug, sponsor *string
	if err := decodeField(p, "hackathon_slug", &slug); err != nil {
		return req, err
	}
	if err := decodeField(p, "hackathon_sponsor", &sponsor); err != nil {
		return req, err
	}
	if slug != nil {
		req.HackathonSlug = *slug
	}
	if sponsor != nil {
		req.HackathonSponsor = *sponsor
	}
	return req, nil
}

func (p ListingPayload) present(key string) (json.RawMessage, bool) {
	raw, ok := p[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

// decodeField unmarshals a non-null key into *dst, leaving it nil otherwise.
func decodeField[T any](p ListingPayload, key string, dst **T) error {
	raw, ok := p.present(key)
	if !ok {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return invalidField(key, err)
	}
	*dst = &v
	return nil
}

// rawJSON returns a JSON column value; an explicit null is stored as JSON null.
func (p ListingPayload) rawJSON(key string) datatypes.JSON {
	raw, ok := p[key]
	if !ok {
		return nil
	}
	return datatypes.JSON(raw)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func invalidField(key string, err error) error {
	return fmt.Errorf("%w: field %s: %v", services.ErrValidation, key, err)
}

// ListingListResponse represents a paginated list of listings
type ListingListResponse struct {
	Listings   []models.Listing         `json:"listings"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// NewListingListResponse builds a page of listings.
func NewListingListResponse(listings []models.Listing, page, pageSize int, total int64) ListingListResponse {
	if listings == nil {
		listings = []models.Listing{}
	}
	return ListingListResponse{
		Listings:   listings,
		Pagination: utils.NewPaginationResponse(page, pageSize, total),
	}
}

// SubmissionDTO represents a submission in sponsor-facing responses
type SubmissionDTO struct {
	ID             string                 `json:"id"`
	ListingID      string                 `json:"listing_id"`
	Link           string                 `json:"link"`
	Notes          string                 `json:"notes"`
	IsWinner       bool                   `json:"is_winner"`
	WinnerPosition *models.WinnerPosition `json:"winner_position"`
	IsPaid         bool                   `json:"is_paid"`
	PaymentDetails datatypes.JSON         `json:"payment_details,omitempty"`
	User           *UserDTO               `json:"user,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// ToSubmissionDTO converts a Submission model to SubmissionDTO
func ToSubmissionDTO(s models.Submission) SubmissionDTO {
	dto := SubmissionDTO{
		ID:             s.ID,
		ListingID:      s.ListingID,
		Link:           s.Link,
		Notes:          s.Notes,
		IsWinner:       s.IsWinner,
		WinnerPosition: s.WinnerPosition,
		IsPaid:         s.IsPaid,
		PaymentDetails: s.PaymentDetails,
		CreatedAt:      s.CreatedAt,
	}
	if s.User != nil {
		u := ToPublicUserDTO(*s.User)
		dto.User = &u
	}
	return dto
}

// decodeRewards reads a position to amount object. Positions set to null
// offer no reward and are left out, so they never count as a reward slot.
func decodeRewards(raw json.RawMessage) (models.Rewards, error) {
	rewards := models.Rewards{}
	if isNull(raw) {
		return rewards, nil
	}

	var entries map[models.WinnerPosition]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	for position, value := range entries {
		if isNull(value) {
			continue
		}
		var amount decimal.Decimal
		if err := json.Unmarshal(value, &amount); err != nil {
			return nil, err
		}
		rewards[position] = amount
	}
	return rewards, nil
}
