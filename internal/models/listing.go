package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ListingType string

const (
	ListingTypeBounty    ListingType = "bounty"
	ListingTypeProject   ListingType = "project"
	ListingTypeHackathon ListingType = "hackathon"
)

// Valid reports whether t is a known listing type.
func (t ListingType) Valid() bool {
	switch t {
	case ListingTypeBounty, ListingTypeProject, ListingTypeHackathon:
		return true
	}
	return false
}

type WinnerPosition string

const (
	PositionFirst  WinnerPosition = "first"
	PositionSecond WinnerPosition = "second"
	PositionThird  WinnerPosition = "third"
	PositionFourth WinnerPosition = "fourth"
	PositionFifth  WinnerPosition = "fifth"
)

// WinnerPositions is the fixed ranking order, first to fifth.
var WinnerPositions = []WinnerPosition{
	PositionFirst,
	PositionSecond,
	PositionThird,
	PositionFourth,
	PositionFifth,
}

// Valid reports whether p is one of the five ranked positions.
func (p WinnerPosition) Valid() bool {
	for _, known := range WinnerPositions {
		if p == known {
			return true
		}
	}
	return false
}

// Rewards maps a winner position to its payout.
type Rewards map[WinnerPosition]decimal.Decimal

// Validate rejects unknown positions and negative amounts.
func (r Rewards) Validate() error {
	for position, amount := range r {
		if !position.Valid() {
			return fmt.Errorf("unknown reward position %q", position)
		}
		if amount.IsNegative() {
			return fmt.Errorf("reward for %s must not be negative", position)
		}
	}
	return nil
}

// Has reports whether position carries a reward.
func (r Rewards) Has(position WinnerPosition) bool {
	_, ok := r[position]
	return ok
}

// Total sums every reward amount.
func (r Rewards) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range r {
		total = total.Add(amount)
	}
	return total
}

type Listing struct {
	ID                   string                      `gorm:"type:varchar(36);primarykey" json:"id"`
	Slug                 string                      `gorm:"type:varchar(255);not null;index" json:"slug"`
	Title                string                      `gorm:"type:varchar(255);not null" json:"title"`
	Type                 ListingType                 `gorm:"type:varchar(20);not null" json:"type"`
	SponsorID            *string                     `gorm:"type:varchar(36);index" json:"sponsor_id"`
	HackathonID          *string                     `gorm:"type:varchar(36);index" json:"hackathon_id"`
	Deadline             *time.Time                  `json:"deadline"`
	Description          string                      `gorm:"type:text" json:"description"`
	Requirements         string                      `gorm:"type:text" json:"requirements"`
	Token                string                      `gorm:"type:varchar(20)" json:"token"`
	RewardAmount         decimal.Decimal             `gorm:"type:decimal(20,6);not null;default:0" json:"reward_amount"`
	Rewards              datatypes.JSONType[Rewards] `json:"rewards"`
	Region               string                      `gorm:"type:varchar(50)" json:"region"`
	Skills               datatypes.JSON              `json:"skills"`
	Eligibility          datatypes.JSON              `json:"eligibility"`
	References           datatypes.JSON              `json:"references"`
	ApplicationType      string                      `gorm:"type:varchar(20)" json:"application_type"`
	TimeToComplete       string                      `gorm:"type:varchar(50)" json:"time_to_complete"`
	PocSocials           string                      `gorm:"type:varchar(255)" json:"poc_socials"`
	Status               string                      `gorm:"type:varchar(20)" json:"status"`
	TotalWinnersSelected int                         `gorm:"not null;default:0" json:"total_winners_selected"`
	TotalPaymentsMade    int                         `gorm:"not null;default:0" json:"total_payments_made"`
	IsPublished          bool                        `gorm:"not null" json:"is_published"`
	IsPrivate            bool                        `gorm:"not null" json:"is_private"`
	IsActive             bool                        `gorm:"not null" json:"is_active"`
	// ActiveSlug mirrors Slug while the listing is active and is NULL once
	// deactivated, so only active listings compete for a slug.
	ActiveSlug           *string                     `gorm:"type:varchar(255);uniqueIndex:idx_listings_active_slug" json:"-"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`

	// Relations
	Sponsor     *Sponsor     `gorm:"foreignKey:SponsorID" json:"sponsor,omitempty"`
	Hackathon   *Hackathon   `gorm:"foreignKey:HackathonID" json:"hackathon,omitempty"`
	Submissions []Submission `gorm:"foreignKey:ListingID" json:"-"`
	Subscribers []Subscriber `gorm:"foreignKey:ListingID" json:"-"`
}

// RewardMap returns the decoded reward structure, never nil.
func (l *Listing) RewardMap() Rewards {
	r := l.Rewards.Data()
	if r == nil {
		return Rewards{}
	}
	return r
}
