package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/listing-api/internal/repository"
)

// UnsubscribeProvider supplies the set of addresses that opted out of email.
type UnsubscribeProvider interface {
	Unsubscribed(ctx context.Context) (map[string]struct{}, error)
}

// StoreUnsubscribeProvider reads the opt-out list straight from the database.
type StoreUnsubscribeProvider struct {
	repo repository.UnsubscribeRepository
}

// NewStoreUnsubscribeProvider creates a StoreUnsubscribeProvider.
func NewStoreUnsubscribeProvider(repo repository.UnsubscribeRepository) *StoreUnsubscribeProvider {
	return &StoreUnsubscribeProvider{repo: repo}
}

func (p *StoreUnsubscribeProvider) Unsubscribed(ctx context.Context) (map[string]struct{}, error) {
	emails, err := p.repo.ListEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unsubscribed emails: %w", err)
	}
	return toSet(emails), nil
}

// CachedUnsubscribeProvider keeps the opt-out list in a redis set and refills
// it from the fallback provider when the key expires.
type CachedUnsubscribeProvider struct {
	rdb      *redis.Client
	fallback repository.UnsubscribeRepository
	key      string
	ttl      time.Duration
}

// NewCachedUnsubscribeProvider creates a CachedUnsubscribeProvider.
func NewCachedUnsubscribeProvider(rdb *redis.Client, fallback repository.UnsubscribeRepository, key string, ttl time.Duration) *CachedUnsubscribeProvider {
	return &CachedUnsubscribeProvider{rdb: rdb, fallback: fallback, key: key, ttl: ttl}
}

func (p *CachedUnsubscribeProvider) Unsubscribed(ctx context.Context) (map[string]struct{}, error) {
	exists, err := p.rdb.Exists(ctx, p.key).Result()
	if err == nil && exists > 0 {
		members, err := p.rdb.SMembers(ctx, p.key).Result()
		if err == nil {
			return toSet(members), nil
		}
		log.Printf("WARN: unsubscribed cache read failed, using database: %v", err)
	} else if err != nil {
		log.Printf("WARN: unsubscribed cache unavailable, using database: %v", err)
	}

	emails, err := p.fallback.ListEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unsubscribed emails: %w", err)
	}
	p.fill(ctx, emails)
	return toSet(emails), nil
}

// Invalidate drops the cached set so the next read reloads it.
func (p *CachedUnsubscribeProvider) Invalidate(ctx context.Context) error {
	return p.rdb.Del(ctx, p.key).Err()
}

func (p *CachedUnsubscribeProvider) fill(ctx context.Context, emails []string) {
	if len(emails) == 0 {
		return
	}
	members := make([]any, len(emails))
	for i, e := range emails {
		members[i] = e
	}
	pipe := p.rdb.TxPipeline()
	pipe.Del(ctx, p.key)
	pipe.SAdd(ctx, p.key, members...)
	pipe.Expire(ctx, p.key, p.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("WARN: failed to cache unsubscribed emails: %v", err)
	}
}

func toSet(emails []string) map[string]struct{} {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		set[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return set
}
