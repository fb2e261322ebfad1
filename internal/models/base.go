package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newID fills an empty string primary key before insert.
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	return nil
}

func (s *Sponsor) BeforeCreate(tx *gorm.DB) error {
	newID(&s.ID)
	return nil
}

func (h *Hackathon) BeforeCreate(tx *gorm.DB) error {
	newID(&h.ID)
	return nil
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	newID(&l.ID)
	l.ActiveSlug = nil
	if l.IsActive {
		slug := l.Slug
		l.ActiveSlug = &slug
	}
	return nil
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	newID(&s.ID)
	return nil
}

func (s *Subscriber) BeforeCreate(tx *gorm.DB) error {
	newID(&s.ID)
	return nil
}
