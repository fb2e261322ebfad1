package models

import (
	"time"

	"gorm.io/gorm"
)

type Sponsor struct {
	ID         string         `gorm:"type:varchar(36);primarykey" json:"id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug       string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	LogoURL    string         `gorm:"type:varchar(500)" json:"logo_url"`
	InviteCode string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Members  []SponsorMember `gorm:"foreignKey:SponsorID" json:"members,omitempty"`
	Listings []Listing       `gorm:"foreignKey:SponsorID" json:"listings,omitempty"`
}
