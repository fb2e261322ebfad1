package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/listing-api/internal/dto"
	apierrors "github.com/yukikurage/listing-api/internal/errors"
	"github.com/yukikurage/listing-api/internal/models"
	"github.com/yukikurage/listing-api/internal/services"
	"gorm.io/gorm"
)

type listingTestEnv struct {
	db      *gorm.DB
	handler *ListingHandler
}

func setupListingTestEnv(t *testing.T) listingTestEnv {
	t.Helper()

	db := newTestDB(t)
	return listingTestEnv{
		db:      db,
		handler: NewListingHandler(newTestListingService(db), services.NewAIService("")),
	}
}

func (env listingTestEnv) create(t *testing.T, userID, body string) (*models.Listing, int) {
	t.Helper()
	c, w := testContext(http.MethodPost, "/api/sponsor/listings", []byte(body), userID)
	env.handler.CreateListing(c)
	if w.Code != http.StatusOK {
		return nil, w.Code
	}
	var listing models.Listing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	return &listing, w.Code
}

func (env listingTestEnv) update(t *testing.T, userID, id, body string) ([]byte, int) {
	t.Helper()
	c, w := testContext(http.MethodPatch, "/api/sponsor/listings/"+id, []byte(body), userID)
	c.Params = gin.Params{{Key: "id", Value: id}}
	env.handler.UpdateListing(c)
	return w.Body.Bytes(), w.Code
}

func TestListingHandler_CreateListing(t *testing.T) {
	env := setupListingTestEnv(t)
	user, sponsor := createTestSponsorUser(t, env.db, "acme")

	first, code := env.create(t, user.ID, `{"title": "Design a Logo", "rewards": {"first": 500}}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "design-a-logo", first.Slug)
	require.NotNil(t, first.SponsorID)
	assert.Equal(t, sponsor.ID, *first.SponsorID)

	second, code := env.create(t, user.ID, `{"title": "Design a Logo"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "design-a-logo-1", second.Slug)

	_, code = env.create(t, user.ID, `{"description": "no title"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = env.create(t, user.ID, `{"title": "Bad", "type": "raffle"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = env.create(t, user.ID, `not json`)
	assert.Equal(t, http.StatusBadRequest, code)

	loner := createTestUser(t, env.db, "loner")
	_, code = env.create(t, loner.ID, `{"title": "Orphan"}`)
	assert.Equal(t, http.StatusForbidden, code)

	_, code = env.create(t, "", `{"title": "Anonymous"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestListingHandler_UpdateListing(t *testing.T) {
	env := setupListingTestEnv(t)
	user, _ := createTestSponsorUser(t, env.db, "acme")
	other, _ := createTestSponsorUser(t, env.db, "globex")

	listing, code := env.create(t, user.ID, `{"title": "Write Docs", "description": "v1", "token": "USDC"}`)
	require.Equal(t, http.StatusOK, code)

	res, code := env.update(t, user.ID, listing.ID, `{"description": "v2"}`)
	require.Equal(t, http.StatusOK, code)

	var updated models.Listing
	require.NoError(t, json.Unmarshal(res, &updated))
	assert.Equal(t, "Write Docs", updated.Title)
	assert.Equal(t, "v2", updated.Description)
	assert.Equal(t, "USDC", updated.Token)

	_, code = env.update(t, other.ID, listing.ID, `{"title": "Hijacked"}`)
	assert.Equal(t, http.StatusForbidden, code)

	_, code = env.update(t, user.ID, "missing-id", `{"title": "Ghost"}`)
	assert.Equal(t, http.StatusNotFound, code)

	_, code = env.update(t, user.ID, listing.ID, `{"deadline": "tomorrow"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	var stored models.Listing
	require.NoError(t, env.db.First(&stored, "id = ?", listing.ID).Error)
	assert.Equal(t, "Write Docs", stored.Title)
}

func TestListingHandler_GetAndDeactivate(t *testing.T) {
	env := setupListingTestEnv(t)
	user, _ := createTestSponsorUser(t, env.db, "acme")
	listing, code := env.create(t, user.ID, `{"title": "Audit Contract"}`)
	require.Equal(t, http.StatusOK, code)

	c, w := testContext(http.MethodGet, "/api/listings/audit-contract", nil, "")
	c.Params = gin.Params{{Key: "slug", Value: "audit-contract"}}
	env.handler.GetListing(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = testContext(http.MethodDelete, "/api/sponsor/listings/"+listing.ID, nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: listing.ID}}
	env.handler.DeactivateListing(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = testContext(http.MethodGet, "/api/listings/audit-contract", nil, "")
	c.Params = gin.Params{{Key: "slug", Value: "audit-contract"}}
	env.handler.GetListing(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListingHandler_ListListings(t *testing.T) {
	env := setupListingTestEnv(t)
	user, _ := createTestSponsorUser(t, env.db, "acme")
	for i := range 3 {
		_, code := env.create(t, user.ID, fmt.Sprintf(`{"title": "Task %d"}`, i))
		require.Equal(t, http.StatusOK, code)
	}

	c, w := testContext(http.MethodGet, "/api/sponsor/listings?page=1&limit=2", nil, user.ID)
	env.handler.ListListings(c)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.ListingListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Listings, 2)
	assert.Equal(t, int64(3), response.Pagination.Total)
	assert.Equal(t, 2, response.Pagination.TotalPages)

	c, w = testContext(http.MethodGet, "/api/sponsor/listings?type=raffle", nil, user.ID)
	env.handler.ListListings(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListingHandler_DraftListingWithoutAI(t *testing.T) {
	env := setupListingTestEnv(t)
	user := createTestUser(t, env.db, "drafter")

	c, w := testContext(http.MethodPost, "/api/sponsor/listings/draft", []byte(`{"brief": "a logo for our DEX"}`), user.ID)
	env.handler.DraftListing(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrUnauthorized, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized},
		{services.ErrNotListingSponsor, http.StatusForbidden, apierrors.ErrCodeForbidden},
		{services.ErrListingNotFound, http.StatusNotFound, apierrors.ErrCodeNotFound},
		{services.ErrTitleRequired, http.StatusBadRequest, apierrors.ErrCodeInvalidInput},
		{services.ErrPositionTaken, http.StatusConflict, apierrors.ErrCodeConflict},
		{fmt.Errorf("%w: db down", services.ErrTransient), http.StatusServiceUnavailable, apierrors.ErrCodeServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, apierrors.ErrCodeInternalError},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			c, w := testContext(http.MethodGet, "/", nil, "")
			respondError(c, tc.err)

			require.Equal(t, tc.status, w.Code)
			var body apierrors.APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}
