package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/listing-api/internal/dto"
	"github.com/yukikurage/listing-api/internal/repository"
	"github.com/yukikurage/listing-api/internal/services"
	"gorm.io/gorm"
)

type sponsorTestEnv struct {
	db      *gorm.DB
	handler *SponsorHandler
}

func setupSponsorTestEnv(t *testing.T) sponsorTestEnv {
	t.Helper()

	db := newTestDB(t)
	svc := services.NewSponsorService(repository.NewSponsorRepository(db), repository.NewUserRepository(db))

	return sponsorTestEnv{db: db, handler: NewSponsorHandler(svc)}
}

func TestSponsorHandler_CreateSponsor(t *testing.T) {
	env := setupSponsorTestEnv(t)
	user := createTestUser(t, env.db, "owner")

	body, err := json.Marshal(map[string]string{"name": "Solar Labs"})
	require.NoError(t, err)

	c, w := testContext(http.MethodPost, "/api/sponsors", body, user.ID)
	env.handler.CreateSponsor(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.SponsorDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Solar Labs", response.Name)
	require.Equal(t, "solar-labs", response.Slug)
	require.NotEmpty(t, response.InviteCode)

	c, w = testContext(http.MethodPost, "/api/sponsors", body, user.ID)
	env.handler.CreateSponsor(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestSponsorHandler_ListSponsors(t *testing.T) {
	env := setupSponsorTestEnv(t)
	user, sponsor := createTestSponsorUser(t, env.db, "lister")

	c, w := testContext(http.MethodGet, "/api/sponsors", nil, user.ID)
	env.handler.ListSponsors(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Sponsors []dto.SponsorWithRoleDTO `json:"sponsors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Sponsors, 1)
	require.Equal(t, sponsor.ID, response.Sponsors[0].ID)
	require.Equal(t, sponsor.InviteCode, response.Sponsors[0].InviteCode)
}

func TestSponsorHandler_JoinAndSelect(t *testing.T) {
	env := setupSponsorTestEnv(t)
	_, sponsor := createTestSponsorUser(t, env.db, "host")
	joiner := createTestUser(t, env.db, "joiner")

	body, err := json.Marshal(map[string]string{"invite_code": "invalid-code"})
	require.NoError(t, err)
	c, w := testContext(http.MethodPost, "/api/sponsors/join", body, joiner.ID)
	env.handler.JoinSponsor(c)
	require.Equal(t, http.StatusNotFound, w.Code)

	c, w = testContext(http.MethodPost, "/api/sponsors/"+sponsor.ID+"/select", nil, joiner.ID)
	c.Params = gin.Params{{Key: "id", Value: sponsor.ID}}
	env.handler.SelectSponsor(c)
	require.Equal(t, http.StatusForbidden, w.Code)

	body, err = json.Marshal(map[string]string{"invite_code": sponsor.InviteCode})
	require.NoError(t, err)
	c, w = testContext(http.MethodPost, "/api/sponsors/join", body, joiner.ID)
	env.handler.JoinSponsor(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = testContext(http.MethodPost, "/api/sponsors/"+sponsor.ID+"/select", nil, joiner.ID)
	c.Params = gin.Params{{Key: "id", Value: sponsor.ID}}
	env.handler.SelectSponsor(c)
	require.Equal(t, http.StatusOK, w.Code)
}
