package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/listing-api/internal/repository"
)

const testJWTSecret = "test-jwt-secret"

func TestAuthService_SignupAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), testJWTSecret)
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupInput{
		Email:     " Ada@Example.com ",
		Username:  "ada",
		FirstName: "Ada",
		Password:  "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "password123", user.PasswordHash)

	_, err = svc.Signup(ctx, SignupInput{Email: "other@example.com", Username: "ada", Password: "password123"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Signup(ctx, SignupInput{Email: "ADA@example.com", Username: "ada2", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Signup(ctx, SignupInput{Email: "not-an-email", Username: "bob", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Signup(ctx, SignupInput{Email: "bob@example.com", Username: "bob", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	loggedIn, err := svc.Login(ctx, LoginInput{Username: "ada", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = svc.Login(ctx, LoginInput{Username: "ada", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Username: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), testJWTSecret)

	user, err := svc.Signup(context.Background(), SignupInput{
		Email: "grace@example.com", Username: "grace", Password: "password123",
	})
	require.NoError(t, err)

	token, expiresAt, err := svc.IssueToken(user)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	id, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	other := NewAuthService(repository.NewUserRepository(db), "another-secret")
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_ParseTokenRejectsExpiredAndOtherAlgorithms(t *testing.T) {
	svc := NewAuthService(nil, testJWTSecret)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		ID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = svc.ParseToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, TokenClaims{ID: "user-1"}).
		SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = svc.ParseToken(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{}).
		SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = svc.ParseToken(noID)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
