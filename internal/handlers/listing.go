package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/listing-api/internal/dto"
	apierrors "github.com/yukikurage/listing-api/internal/errors"
	"github.com/yukikurage/listing-api/internal/models"
	"github.com/yukikurage/listing-api/internal/services"
	"github.com/yukikurage/listing-api/internal/utils"
)

type ListingHandler struct {
	listingService *services.ListingService
	aiService      *services.AIService
}

func NewListingHandler(listingService *services.ListingService, aiService *services.AIService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		aiService:      aiService,
	}
}

// bindListingPayload reads the body key by key so absent fields stay untouched
func bindListingPayload(c *gin.Context) (services.ListingFields, services.OwnershipRequest, bool) {
	var payload dto.ListingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return services.ListingFields{}, services.OwnershipRequest{}, false
	}

	fields, err := payload.Fields()
	if err != nil {
		respondError(c, err)
		return services.ListingFields{}, services.OwnershipRequest{}, false
	}
	ownership, err := payload.Ownership()
	if err != nil {
		respondError(c, err)
		return services.ListingFields{}, services.OwnershipRequest{}, false
	}
	return fields, ownership, true
}

// CreateListing creates a listing for the current sponsor or hackathon
func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	fields, ownership, ok := bindListingPayload(c)
	if !ok {
		return
	}

	listing, err := h.listingService.Create(c.Request.Context(), services.CreateListingInput{
		ActorID:   userID,
		Ownership: ownership,
		Fields:    fields,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// UpdateListing merges the sent fields into a listing
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	fields, ownership, ok := bindListingPayload(c)
	if !ok {
		return
	}

	listing, err := h.listingService.Update(c.Request.Context(), services.UpdateListingInput{
		ActorID:   userID,
		ListingID: c.Param("id"),
		Ownership: ownership,
		Fields:    fields,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// GetListing returns an active listing by slug
func (h *ListingHandler) GetListing(c *gin.Context) {
	listing, err := h.listingService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// ListListings returns the current sponsor's listings
// Can filter by type and active=true
func (h *ListingHandler) ListListings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var listingType *models.ListingType
	if raw := c.Query("type"); raw != "" {
		t := models.ListingType(raw)
		if !t.Valid() {
			apierrors.BadRequest(c, "Invalid type")
			return
		}
		listingType = &t
	}

	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "false"))
	params := utils.GetPaginationParams(c)

	listings, total, err := h.listingService.ListForSponsor(c.Request.Context(), services.ListListingsInput{
		ActorID:    userID,
		Type:       listingType,
		ActiveOnly: activeOnly,
		Page:       params.Page,
		PageSize:   params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListingListResponse(listings, params.Page, params.Limit, total))
}

// DeactivateListing hides a listing and frees its slug
func (h *ListingHandler) DeactivateListing(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.listingService.Deactivate(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Listing deactivated successfully",
	})
}

// DraftListing suggests listing fields from a free-form brief
func (h *ListingHandler) DraftListing(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}

	type DraftRequest struct {
		Brief string `json:"brief" binding:"required"`
	}

	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	draft, err := h.aiService.GenerateListingDraft(c.Request.Context(), req.Brief)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}
