package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/listing-api/internal/database"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := database.Open(postgres.New(postgres.Config{Conn: sqlDB}), logger.Silent)
	require.NoError(t, err)
	return db, mock
}

func TestListingRepository_UpdateScopedFiltersBySponsor(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewListingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "listings" SET .+ WHERE id = \$\d+ AND sponsor_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	rows, err := repo.UpdateScoped(context.Background(), "listing-1", "sponsor-b", map[string]any{"title": "Hijacked"})
	require.NoError(t, err)
	assert.Zero(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_IncrementPaymentsMade(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewListingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "listings" SET "total_payments_made"=total_payments_made + $1 WHERE id = $2`)).
		WithArgs(1, "listing-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.IncrementPaymentsMade(context.Background(), "listing-1"))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "listings" SET "total_payments_made"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	assert.ErrorIs(t, repo.IncrementPaymentsMade(context.Background(), "missing"), gorm.ErrRecordNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_ListWithoutSponsorReturnsNothing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewListingRepository(db)

	listings, total, err := repo.List(context.Background(), ListingFilter{})
	require.NoError(t, err)
	assert.Empty(t, listings)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
