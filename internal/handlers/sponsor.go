package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/listing-api/internal/dto"
	apierrors "github.com/yukikurage/listing-api/internal/errors"
	"github.com/yukikurage/listing-api/internal/services"
)

type SponsorHandler struct {
	sponsorService *services.SponsorService
}

func NewSponsorHandler(sponsorService *services.SponsorService) *SponsorHandler {
	return &SponsorHandler{sponsorService: sponsorService}
}

// CreateSponsor creates a sponsor owned by the current user
func (h *SponsorHandler) CreateSponsor(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type CreateSponsorRequest struct {
		Name    string `json:"name" binding:"required"`
		LogoURL string `json:"logo_url"`
	}

	var req CreateSponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	sponsor, err := h.sponsorService.CreateSponsor(c.Request.Context(), services.CreateSponsorInput{
		Name:    req.Name,
		LogoURL: req.LogoURL,
		OwnerID: userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSponsorDTO(*sponsor, true))
}

// ListSponsors returns all sponsors the user is a member of
func (h *SponsorHandler) ListSponsors(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	memberships, err := h.sponsorService.ListSponsorsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	sponsors := make([]dto.SponsorWithRoleDTO, 0, len(memberships))
	for _, m := range memberships {
		sponsors = append(sponsors, dto.ToSponsorWithRoleDTO(m))
	}

	c.JSON(http.StatusOK, gin.H{"sponsors": sponsors})
}

// JoinSponsor adds the current user to a sponsor by invite code
func (h *SponsorHandler) JoinSponsor(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type JoinSponsorRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	var req JoinSponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	sponsor, err := h.sponsorService.JoinSponsorByInvite(c.Request.Context(), userID, req.InviteCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully joined sponsor",
		"sponsor": dto.ToSponsorDTO(*sponsor, false),
	})
}

// SelectSponsor makes :id the sponsor the current user acts for
func (h *SponsorHandler) SelectSponsor(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.sponsorService.SelectSponsor(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"current_sponsor_id": c.Param("id")})
}

// RegenerateInviteCode issues a fresh invite code; owners only
func (h *SponsorHandler) RegenerateInviteCode(c *gin.Context) {
	sponsor, err := h.sponsorService.RegenerateInviteCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSponsorDTO(*sponsor, true))
}
