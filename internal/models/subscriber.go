package models

import "time"

// Subscriber asks to be notified when a listing's deadline moves.
type Subscriber struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	ListingID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_subscribers_listing_user,priority:1" json:"listing_id"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_subscribers_listing_user,priority:2" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Listing Listing `gorm:"foreignKey:ListingID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// UnsubscribedEmail opts an address out of every marketing notification.
type UnsubscribedEmail struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
