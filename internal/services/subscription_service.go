package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/yukikurage/listing-api/internal/models"
	"github.com/yukikurage/listing-api/internal/repository"
)

// cacheInvalidator is implemented by unsubscribe providers that cache the opt-out list.
type cacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// SubscriptionService manages deadline subscriptions and email opt-outs.
type SubscriptionService struct {
	repos *repository.Repositories
	cache cacheInvalidator
}

// NewSubscriptionService creates a new SubscriptionService. cache may be nil.
func NewSubscriptionService(repos *repository.Repositories, cache cacheInvalidator) *SubscriptionService {
	return &SubscriptionService{repos: repos, cache: cache}
}

// Subscribe asks for deadline notifications on listing.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID string, listing *models.Listing) error {
	if userID == "" {
		return ErrUnauthorized
	}
	err := s.repos.Subscribers.Create(ctx, &models.Subscriber{
		ListingID: listing.ID,
		UserID:    userID,
	})
	if err != nil {
		return fmt.Errorf("%w: subscribe: %w", ErrTransient, err)
	}
	return nil
}

// Unsubscribe stops deadline notifications on listing.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID string, listing *models.Listing) error {
	if userID == "" {
		return ErrUnauthorized
	}
	if err := s.repos.Subscribers.Delete(ctx, listing.ID, userID); err != nil {
		return fmt.Errorf("%w: unsubscribe: %w", ErrTransient, err)
	}
	return nil
}

// OptOutEmail adds the user's address to the global opt-out list.
func (s *SubscriptionService) OptOutEmail(ctx context.Context, userID string) error {
	user, err := loadActor(ctx, s.repos.Users, userID)
	if err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(user.Email))
	if err := s.repos.Unsubscribes.Add(ctx, email); err != nil {
		return fmt.Errorf("%w: opt out: %w", ErrTransient, err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Printf("WARN: failed to invalidate unsubscribed cache: %v", err)
		}
	}
	return nil
}
