package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/listing-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// ActiveListings hides soft-deactivated listings.
func ActiveListings(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// SponsorScope matches a listing only while it still belongs to sponsorID.
func SponsorScope(id, sponsorID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ? AND sponsor_id = ?", id, sponsorID)
	}
}
