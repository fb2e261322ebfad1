package models

import (
	"time"

	"gorm.io/datatypes"
)

type Submission struct {
	ID             string          `gorm:"type:varchar(36);primarykey" json:"id"`
	ListingID      string          `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_submissions_listing_position,priority:1" json:"listing_id"`
	UserID         string          `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Link           string          `gorm:"type:varchar(500)" json:"link"`
	Notes          string          `gorm:"type:text" json:"notes"`
	IsWinner       bool            `gorm:"not null" json:"is_winner"`
	WinnerPosition *WinnerPosition `gorm:"type:varchar(10);uniqueIndex:idx_submissions_listing_position,priority:2" json:"winner_position"`
	IsPaid         bool            `gorm:"not null" json:"is_paid"`
	PaymentDetails datatypes.JSON  `json:"payment_details"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Relations
	Listing *Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
