package notify

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/listing-api/internal/database"
	"github.com/yukikurage/listing-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

func newUnsubscribeRepo(t *testing.T, emails ...string) repository.UnsubscribeRepository {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"), logger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.MigrateDatabase(db))

	repo := repository.NewUnsubscribeRepository(db)
	for _, e := range emails {
		require.NoError(t, repo.Add(context.Background(), e))
	}
	return repo
}

func TestStoreUnsubscribeProvider(t *testing.T) {
	repo := newUnsubscribeRepo(t, "ada@example.com", "Grace@Example.com")

	set, err := NewStoreUnsubscribeProvider(repo).Unsubscribed(context.Background())
	require.NoError(t, err)
	assert.Len(t, set, 2)
	assert.Contains(t, set, "ada@example.com")
	assert.Contains(t, set, "grace@example.com")
}

func TestCachedUnsubscribeProvider_FallsBackWhenRedisIsDown(t *testing.T) {
	repo := newUnsubscribeRepo(t, "ada@example.com")
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	p := NewCachedUnsubscribeProvider(rdb, repo, "test:unsubscribed", time.Minute)
	set, err := p.Unsubscribed(context.Background())
	require.NoError(t, err)
	assert.Contains(t, set, "ada@example.com")

	assert.Error(t, p.Invalidate(context.Background()))
}
