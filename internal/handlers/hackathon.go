package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/listing-api/internal/errors"
	"github.com/yukikurage/listing-api/internal/services"
)

type HackathonHandler struct {
	hackathonService *services.HackathonService
}

func NewHackathonHandler(hackathonService *services.HackathonService) *HackathonHandler {
	return &HackathonHandler{hackathonService: hackathonService}
}

// CreateHackathon creates a hackathon administered by the current user
func (h *HackathonHandler) CreateHackathon(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type CreateHackathonRequest struct {
		Name     string     `json:"name" binding:"required"`
		Deadline *time.Time `json:"deadline"`
	}

	var req CreateHackathonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	hackathon, err := h.hackathonService.Create(c.Request.Context(), services.CreateHackathonInput{
		Name:      req.Name,
		Deadline:  req.Deadline,
		CreatorID: userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, hackathon)
}

// GetHackathon returns a hackathon by slug
func (h *HackathonHandler) GetHackathon(c *gin.Context) {
	hackathon, err := h.hackathonService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, hackathon)
}
