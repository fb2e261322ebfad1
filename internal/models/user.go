package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID               string         `gorm:"type:varchar(36);primarykey" json:"id"`
	Email            string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username         string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	FirstName        string         `gorm:"type:varchar(100)" json:"first_name"`
	PublicKey        string         `gorm:"type:varchar(100)" json:"public_key"`
	PasswordHash     string         `gorm:"type:varchar(255);not null" json:"-"`
	CurrentSponsorID *string        `gorm:"type:varchar(36);index" json:"current_sponsor_id"`
	HackathonID      *string        `gorm:"type:varchar(36);index" json:"hackathon_id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Sponsors      []SponsorMember `gorm:"foreignKey:UserID" json:"-"`
	Subscriptions []Subscriber    `gorm:"foreignKey:UserID" json:"-"`
}
