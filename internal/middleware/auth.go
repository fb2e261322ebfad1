package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/listing-api/internal/constants"
	apierrors "github.com/yukikurage/listing-api/internal/errors"
)

// TokenParser verifies a bearer token and returns the user id it carries.
type TokenParser interface {
	ParseToken(raw string) (string, error)
}

// RequireAuth checks if the user is authenticated via session, falling back
// to an "Authorization: Bearer" API token when tokens is non-nil.
func RequireAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID, ok := session.Get(constants.ContextKeyUserID).(string); ok && userID != "" {
			c.Set(constants.ContextKeyUserID, userID)
			c.Next()
			return
		}

		if tokens != nil {
			header := c.GetHeader("Authorization")
			if raw, found := strings.CutPrefix(header, "Bearer "); found {
				userID, err := tokens.ParseToken(strings.TrimSpace(raw))
				if err != nil {
					apierrors.Unauthorized(c, "Invalid or expired token")
					c.Abort()
					return
				}
				c.Set(constants.ContextKeyUserID, userID)
				c.Next()
				return
			}
		}

		apierrors.Unauthorized(c, "")
		c.Abort()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
