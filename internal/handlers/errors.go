package handlers

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/listing-api/internal/errors"
	"github.com/yukikurage/listing-api/internal/middleware"
	"github.com/yukikurage/listing-api/internal/services"
)

// respondError maps the service error taxonomy onto HTTP responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrValidation):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrTransient):
		log.Printf("ERROR: %s: %v", c.FullPath(), err)
		apierrors.ServiceUnavailable(c, "")
	default:
		log.Printf("ERROR: %s: %v", c.FullPath(), err)
		apierrors.InternalError(c, "")
	}
}

// requireUser returns the authenticated user id or writes a 401.
func requireUser(c *gin.Context) (string, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return "", false
	}
	return userID, true
}
