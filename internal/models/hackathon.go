package models

import "time"

// Hackathon is an event whose tracks are published as listings.
type Hackathon struct {
	ID        string     `gorm:"type:varchar(36);primarykey" json:"id"`
	Slug      string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Deadline  *time.Time `json:"deadline"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
