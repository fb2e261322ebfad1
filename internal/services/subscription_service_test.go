package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/listing-api/internal/models"
)

type countingCache struct {
	calls int
	err   error
}

func (c *countingCache) Invalidate(context.Context) error {
	c.calls++
	return c.err
}

func TestSubscriptionService(t *testing.T) {
	env := newServiceEnv(t, false)
	ctx := context.Background()
	cache := &countingCache{}
	svc := NewSubscriptionService(env.repos, cache)

	_, sponsor := env.createSponsorUser(t)
	listing := env.createListing(t, sponsor.ID, rewards(100))
	user := env.createUser(t)

	require.NoError(t, svc.Subscribe(ctx, user.ID, listing))
	require.NoError(t, svc.Subscribe(ctx, user.ID, listing))

	subscribers, err := env.repos.Subscribers.ListByListing(ctx, listing.ID)
	require.NoError(t, err)
	require.Len(t, subscribers, 1)
	assert.Equal(t, user.Email, subscribers[0].User.Email)

	require.NoError(t, svc.Unsubscribe(ctx, user.ID, listing))
	subscribers, err = env.repos.Subscribers.ListByListing(ctx, listing.ID)
	require.NoError(t, err)
	assert.Empty(t, subscribers)

	assert.ErrorIs(t, svc.Subscribe(ctx, "", listing), ErrUnauthorized)
}

func TestSubscriptionService_OptOutEmail(t *testing.T) {
	env := newServiceEnv(t, false)
	ctx := context.Background()
	cache := &countingCache{err: errors.New("redis down")}
	svc := NewSubscriptionService(env.repos, cache)
	user := env.createUser(t)

	require.NoError(t, svc.OptOutEmail(ctx, user.ID))
	require.NoError(t, svc.OptOutEmail(ctx, user.ID))
	assert.Equal(t, 2, cache.calls)

	var emails []models.UnsubscribedEmail
	require.NoError(t, env.db.Find(&emails).Error)
	require.Len(t, emails, 1)
	assert.Equal(t, strings.ToLower(user.Email), emails[0].Email)
}
