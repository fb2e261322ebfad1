package database

import (
	"fmt"
	"log"

	"github.com/yukikurage/listing-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the lookup indexes that gorm tags do not declare.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Winner reset filters by listing, flag and position
		{"submissions", "idx_submissions_listing_winner", "listing_id, is_winner"},
		{"submissions", "idx_submissions_user_id", "user_id"},

		// Sponsor dashboards list listings newest first
		{"listings", "idx_listings_sponsor_created", "sponsor_id, created_at"},
		{"listings", "idx_listings_deadline", "deadline"},

		// Forwarder drains the outbox oldest first
		{"webhook_events", "idx_webhook_events_status_id", "status, id"},

		{"sponsor_members", "idx_sponsor_members_user_id", "user_id"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			log.Printf("Index %s already exists, skipping", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}

// dropLegacyIndexes removes indexes that older schemas declared and the
// current models no longer do.
func dropLegacyIndexes(db *gorm.DB) error {
	migrator := db.Migrator()
	// (slug, is_active) allowed only one inactive copy of each slug.
	if migrator.HasIndex(&models.Listing{}, "idx_listings_slug_active") {
		if err := migrator.DropIndex(&models.Listing{}, "idx_listings_slug_active"); err != nil {
			return fmt.Errorf("failed to drop index idx_listings_slug_active: %w", err)
		}
		log.Printf("Dropped index idx_listings_slug_active")
	}
	return nil
}

// MigrateDatabase migrates every model and adds indexes on db.
func MigrateDatabase(db *gorm.DB) error {
	if db.Migrator().HasTable(&models.Listing{}) {
		if err := dropLegacyIndexes(db); err != nil {
			return err
		}
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := db.Model(&models.Listing{}).
		Where("is_active = ? AND active_slug IS NULL", true).
		Update("active_slug", gorm.Expr("slug")).Error; err != nil {
		return fmt.Errorf("failed to backfill active slugs: %w", err)
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
