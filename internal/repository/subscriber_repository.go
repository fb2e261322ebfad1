package repository

import (
	"context"

	"github.com/yukikurage/listing-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSubscriberRepository is a GORM implementation of SubscriberRepository
type GormSubscriberRepository struct {
	db *gorm.DB
}

// NewSubscriberRepository creates a new SubscriberRepository
func NewSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &GormSubscriberRepository{db: db}
}

// ListByListing lists subscribers of a listing with their users
func (r *GormSubscriberRepository) ListByListing(ctx context.Context, listingID string) ([]models.Subscriber, error) {
	var subscribers []models.Subscriber
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("listing_id = ?", listingID).
		Find(&subscribers).Error; err != nil {
		return nil, err
	}
	return subscribers, nil
}

// Create subscribes a user, ignoring an existing subscription
func (r *GormSubscriberRepository) Create(ctx context.Context, subscriber *models.Subscriber) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "listing_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(subscriber).Error
}

// Delete removes a user's subscription
func (r *GormSubscriberRepository) Delete(ctx context.Context, listingID, userID string) error {
	return r.db.WithContext(ctx).
		Where("listing_id = ? AND user_id = ?", listingID, userID).
		Delete(&models.Subscriber{}).Error
}

// GormUnsubscribeRepository is a GORM implementation of UnsubscribeRepository
type GormUnsubscribeRepository struct {
	db *gorm.DB
}

// NewUnsubscribeRepository creates a new UnsubscribeRepository
func NewUnsubscribeRepository(db *gorm.DB) UnsubscribeRepository {
	return &GormUnsubscribeRepository{db: db}
}

// ListEmails returns every unsubscribed address
func (r *GormUnsubscribeRepository) ListEmails(ctx context.Context) ([]string, error) {
	var emails []string
	if err := r.db.WithContext(ctx).
		Model(&models.UnsubscribedEmail{}).
		Pluck("email", &emails).Error; err != nil {
		return nil, err
	}
	return emails, nil
}

// Add records an address, ignoring duplicates
func (r *GormUnsubscribeRepository) Add(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(&models.UnsubscribedEmail{Email: email}).Error
}
