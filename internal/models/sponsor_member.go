package models

import "time"

type SponsorRole string

const (
	RoleOwner  SponsorRole = "owner"
	RoleMember SponsorRole = "member"
)

type SponsorMember struct {
	SponsorID string      `gorm:"type:varchar(36);primarykey" json:"sponsor_id"`
	UserID    string      `gorm:"type:varchar(36);primarykey" json:"user_id"`
	Role      SponsorRole `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt  time.Time   `json:"joined_at"`

	// Relations
	Sponsor Sponsor `gorm:"foreignKey:SponsorID" json:"sponsor,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
