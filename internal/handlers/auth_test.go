package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/listing-api/internal/constants"
	"github.com/yukikurage/listing-api/internal/dto"
	"github.com/yukikurage/listing-api/internal/middleware"
	"github.com/yukikurage/listing-api/internal/repository"
	"github.com/yukikurage/listing-api/internal/services"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db          *gorm.DB
	handler     *AuthHandler
	authService *services.AuthService
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db := newTestDB(t)
	authService := services.NewAuthService(repository.NewUserRepository(db), "test-jwt-secret")

	return authTestEnv{
		db:          db,
		handler:     NewAuthHandler(authService),
		authService: authService,
	}
}

func (env authTestEnv) router() *gin.Engine {
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.POST("/api/auth/signup", env.handler.Signup)
	r.POST("/api/auth/login", env.handler.Login)
	r.POST("/api/auth/token", env.handler.IssueToken)
	r.GET("/api/auth/me", middleware.RequireAuth(env.authService), env.handler.GetCurrentUser)
	return r
}

func postJSON(t *testing.T, r http.Handler, url string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := env.router()

	payload := map[string]string{
		"email":      "newuser@example.com",
		"username":   "newuser",
		"first_name": "New",
		"password":   "supersecret",
	}
	w := postJSON(t, r, "/api/auth/signup", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, payload["username"], response.Username)
	require.Equal(t, payload["email"], response.Email)

	w = postJSON(t, r, "/api/auth/signup", payload)
	require.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(t, r, "/api/auth/signup", map[string]string{"username": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(context.Background(), services.SignupInput{
		Email:    "existing@example.com",
		Username: "existing",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := env.router()
	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"username": "existing",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "existing", response.Username)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	me := httptest.NewRecorder()
	r.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)

	w = postJSON(t, r, "/api/auth/login", map[string]string{
		"username": "existing",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_IssueTokenAndBearerAuth(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.authService.Signup(context.Background(), services.SignupInput{
		Email:    "api@example.com",
		Username: "api-user",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := env.router()
	w := postJSON(t, r, "/api/auth/token", map[string]string{
		"username": "api-user",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var issued struct {
		Token string      `json:"token"`
		User  dto.UserDTO `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issued))
	require.NotEmpty(t, issued.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	me := httptest.NewRecorder()
	r.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)

	var current dto.UserDTO
	require.NoError(t, json.Unmarshal(me.Body.Bytes(), &current))
	require.Equal(t, user.ID, current.ID)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer forged")
	bad := httptest.NewRecorder()
	r.ServeHTTP(bad, req)
	require.Equal(t, http.StatusUnauthorized, bad.Code)

	anonymous := httptest.NewRecorder()
	r.ServeHTTP(anonymous, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	require.Equal(t, http.StatusUnauthorized, anonymous.Code)
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.authService.Signup(context.Background(), services.SignupInput{
		Email:    "current@example.com",
		Username: "current-user",
		Password: "supersecret",
	})
	require.NoError(t, err)

	c, w := testContext(http.MethodGet, "/api/auth/me", nil, user.ID)
	env.handler.GetCurrentUser(c)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, user.ID, response.ID)

	c, w = testContext(http.MethodGet, "/api/auth/me", nil, "")
	env.handler.GetCurrentUser(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
