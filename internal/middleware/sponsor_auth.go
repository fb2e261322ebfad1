package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/listing-api/internal/constants"
	"github.com/yukikurage/listing-api/internal/database"
	apierrors "github.com/yukikurage/listing-api/internal/errors"
	"github.com/yukikurage/listing-api/internal/models"
)

// RequireSponsorAccess checks if the user is a member of the sponsor in the :id parameter
func RequireSponsorAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		sponsorID := c.Param("id")

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		var member models.SponsorMember
		err := database.GetDB().
			Preload("Sponsor").
			Where("sponsor_id = ? AND user_id = ?", sponsorID, userID).
			First(&member).Error
		if err != nil {
			// 404 instead of 403 so sponsor ids cannot be probed
			apierrors.NotFound(c, "Sponsor not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeySponsorMember, member)
		c.Next()
	}
}

// RequireSponsorOwner checks if the user owns the sponsor; it runs after RequireSponsorAccess
func RequireSponsorOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(constants.ContextKeySponsorMember)
		if !exists {
			apierrors.Forbidden(c, "Sponsor access required")
			c.Abort()
			return
		}

		member, ok := value.(models.SponsorMember)
		if !ok {
			apierrors.InternalError(c, "Invalid sponsor member data")
			c.Abort()
			return
		}

		if member.Role != models.RoleOwner {
			apierrors.Forbidden(c, "Only sponsor owners can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}
