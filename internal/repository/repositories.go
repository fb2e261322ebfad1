package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository over one gorm handle so a workflow
// can run all of its writes inside a single transaction.
type Repositories struct {
	db *gorm.DB

	Users         UserRepository
	Sponsors      SponsorRepository
	Hackathons    HackathonRepository
	Listings      ListingRepository
	Submissions   SubmissionRepository
	Subscribers   SubscriberRepository
	Unsubscribes  UnsubscribeRepository
	WebhookEvents WebhookEventRepository
}

// NewRepositories creates the repository bundle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		Users:         NewUserRepository(db),
		Sponsors:      NewSponsorRepository(db),
		Hackathons:    NewHackathonRepository(db),
		Listings:      NewListingRepository(db),
		Submissions:   NewSubmissionRepository(db),
		Subscribers:   NewSubscriberRepository(db),
		Unsubscribes:  NewUnsubscribeRepository(db),
		WebhookEvents: NewWebhookEventRepository(db),
	}
}

// Transaction runs fn against repositories bound to one transaction.
// Returning an error from fn rolls every write back.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
