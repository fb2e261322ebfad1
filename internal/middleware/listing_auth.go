package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/listing-api/internal/constants"
	"github.com/yukikurage/listing-api/internal/database"
	apierrors "github.com/yukikurage/listing-api/internal/errors"
	"github.com/yukikurage/listing-api/internal/models"
	"gorm.io/gorm"
)

// LoadActiveListing loads the active listing named by the :slug parameter
func LoadActiveListing() gin.HandlerFunc {
	return func(c *gin.Context) {
		var listing models.Listing
		err := database.GetDB().
			WithContext(c.Request.Context()).
			Scopes(database.ActiveListings).
			Where("slug = ?", c.Param("slug")).
			First(&listing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.NotFound(c, "Listing not found")
			} else {
				apierrors.ServiceUnavailable(c, "Failed to load listing")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyListing, &listing)
		c.Next()
	}
}

// GetListing retrieves the listing set by LoadActiveListing
func GetListing(c *gin.Context) (*models.Listing, bool) {
	value, exists := c.Get(constants.ContextKeyListing)
	if !exists {
		return nil, false
	}
	listing, ok := value.(*models.Listing)
	return listing, ok
}
