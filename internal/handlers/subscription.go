package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/listing-api/internal/errors"
	"github.com/yukikurage/listing-api/internal/middleware"
	"github.com/yukikurage/listing-api/internal/services"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// Subscribe asks for deadline notifications on the listing
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	h.toggle(c, true)
}

// Unsubscribe stops deadline notifications on the listing
func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	h.toggle(c, false)
}

func (h *SubscriptionHandler) toggle(c *gin.Context, subscribe bool) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	listing, ok := middleware.GetListing(c)
	if !ok {
		apierrors.InternalError(c, "Listing not found in context")
		return
	}

	var err error
	if subscribe {
		err = h.subscriptionService.Subscribe(c.Request.Context(), userID, listing)
	} else {
		err = h.subscriptionService.Unsubscribe(c.Request.Context(), userID, listing)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listing_id": listing.ID, "subscribed": subscribe})
}

// OptOut stops every notification email to the current user's address
func (h *SubscriptionHandler) OptOut(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.subscriptionService.OptOutEmail(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed from notification emails"})
}
