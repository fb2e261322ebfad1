package handlers

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/listing-api/internal/constants"
	"github.com/yukikurage/listing-api/internal/database"
	"github.com/yukikurage/listing-api/internal/models"
	"github.com/yukikurage/listing-api/internal/notify"
	"github.com/yukikurage/listing-api/internal/repository"
	"github.com/yukikurage/listing-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

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

func testContext(method, url string, body []byte, userID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if userID != "" {
		c.Set(constants.ContextKeyUserID, userID)
	}

	return c, w
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    username,
		PasswordHash: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createTestSponsorUser creates a user acting for a freshly created sponsor.
func createTestSponsorUser(t *testing.T, db *gorm.DB, username string) (*models.User, *models.Sponsor) {
	t.Helper()
	user := createTestUser(t, db, username)
	sponsor := &models.Sponsor{Name: username + " Inc", Slug: username + "-inc", InviteCode: username + "-code"}
	require.NoError(t, repository.NewSponsorRepository(db).CreateWithOwner(context.Background(), sponsor, &models.SponsorMember{
		UserID:   user.ID,
		Role:     models.RoleOwner,
		JoinedAt: time.Now(),
	}))
	require.NoError(t, db.First(user, "id = ?", user.ID).Error)
	return user, sponsor
}

func newTestListingService(db *gorm.DB) *services.ListingService {
	repos := repository.NewRepositories(db)
	sender := notify.LogSender{}
	fanout := notify.NewFanout(constants.MaxConcurrentDeliveries,
		notify.NewStoreUnsubscribeProvider(repos.Unsubscribes), notify.TemplateDeadlineExtended)

	return services.NewListingService(
		repos,
		services.NewSlugAllocator(repos.Listings),
		services.NewListingReconciler(repos.Hackathons, repos.Sponsors),
		services.NewPaymentRecorder(repos, sender),
		fanout,
		sender,
		services.ListingServiceOptions{SiteURL: "https://listings.test"},
	)
}
