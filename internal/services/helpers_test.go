package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/listing-api/internal/constants"
	"github.com/yukikurage/listing-api/internal/database"
	"github.com/yukikurage/listing-api/internal/models"
	"github.com/yukikurage/listing-api/internal/notify"
	"github.com/yukikurage/listing-api/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a migrated in-memory sqlite database. A single connection
// keeps every query, transactions included, on the same memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"), logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.MigrateDatabase(db))
	return db
}

// recordingSender captures messages and fails for addresses in failFor.
type recordingSender struct {
	mu      sync.Mutex
	sent    []notify.Message
	failFor map[string]bool
}

func (s *recordingSender) Send(_ context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[msg.To] {
		return errors.New("mailbox unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) messages() []notify.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Message(nil), s.sent...)
}

type serviceEnv struct {
	db       *gorm.DB
	repos    *repository.Repositories
	sender   *recordingSender
	listings *ListingService
}

func newServiceEnv(t *testing.T, production bool) *serviceEnv {
	t.Helper()

	db := newTestDB(t)
	repos := repository.NewRepositories(db)
	sender := &recordingSender{failFor: map[string]bool{}}
	fanout := notify.NewFanout(
		constants.MaxConcurrentDeliveries,
		notify.NewStoreUnsubscribeProvider(repos.Unsubscribes),
		notify.TemplateDeadlineExtended,
	)

	listings := NewListingService(
		repos,
		NewSlugAllocator(repos.Listings),
		NewListingReconciler(repos.Hackathons, repos.Sponsors),
		NewPaymentRecorder(repos, sender),
		fanout,
		sender,
		ListingServiceOptions{Production: production, SiteURL: "https://listings.test"},
	)

	return &serviceEnv{db: db, repos: repos, sender: sender, listings: listings}
}

func (e *serviceEnv) createUser(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{
		Email:        gofakeit.Email(),
		Username:     gofakeit.Username() + gofakeit.DigitN(6),
		FirstName:    gofakeit.FirstName(),
		PublicKey:    gofakeit.UUID(),
		PasswordHash: "hashed",
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

// createSponsorUser creates a sponsor and a user acting for it.
func (e *serviceEnv) createSponsorUser(t *testing.T) (*models.User, *models.Sponsor) {
	t.Helper()
	user := e.createUser(t)
	sponsor := &models.Sponsor{
		Name:       gofakeit.Company(),
		Slug:       gofakeit.UUID(),
		InviteCode: gofakeit.UUID(),
	}
	require.NoError(t, e.repos.Sponsors.CreateWithOwner(context.Background(), sponsor, &models.SponsorMember{
		UserID:   user.ID,
		Role:     models.RoleOwner,
		JoinedAt: time.Now(),
	}))
	require.NoError(t, e.db.First(user, "id = ?", user.ID).Error)
	return user, sponsor
}

func (e *serviceEnv) createListing(t *testing.T, sponsorID string, rewards models.Rewards) *models.Listing {
	t.Helper()
	deadline := time.Now().Add(14 * 24 * time.Hour).UTC().Truncate(time.Second)
	listing := &models.Listing{
		Slug:        gofakeit.UUID(),
		Title:       gofakeit.JobTitle(),
		Type:        models.ListingTypeBounty,
		SponsorID:   &sponsorID,
		Deadline:    &deadline,
		Token:       "USDC",
		Rewards:     datatypes.NewJSONType(rewards),
		IsPublished: true,
		IsActive:    true,
	}
	require.NoError(t, e.db.Create(listing).Error)
	return listing
}

func (e *serviceEnv) createSubmission(t *testing.T, listingID, userID string, position *models.WinnerPosition) *models.Submission {
	t.Helper()
	submission := &models.Submission{
		ListingID:      listingID,
		UserID:         userID,
		Link:           gofakeit.URL(),
		IsWinner:       position != nil,
		WinnerPosition: position,
	}
	require.NoError(t, e.db.Create(submission).Error)
	return submission
}

func ptr[T any](v T) *T {
	return &v
}

func rewards(amounts ...int64) models.Rewards {
	r := models.Rewards{}
	for i, a := range amounts {
		r[models.WinnerPositions[i]] = decimal.NewFromInt(a)
	}
	return r
}
