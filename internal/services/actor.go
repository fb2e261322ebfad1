package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/listing-api/internal/models"
	"github.com/yukikurage/listing-api/internal/repository"
)

// loadActor resolves the authenticated user. A missing user means the
// credential no longer maps to anyone.
func loadActor(ctx context.Context, users repository.UserRepository, actorID string) (*models.User, error) {
	if actorID == "" {
		return nil, ErrUnauthorized
	}
	user, err := users.FindByID(ctx, actorID)
	if err != nil {
		return nil, storeError("load actor", err, fmt.Errorf("%w: unknown user", ErrUnauthorized))
	}
	return user, nil
}
