package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yukikurage/listing-api/internal/dto"
	apierrors "github.com/yukikurage/listing-api/internal/errors"
	"github.com/yukikurage/listing-api/internal/middleware"
	"github.com/yukikurage/listing-api/internal/models"
	"github.com/yukikurage/listing-api/internal/services"
	"gorm.io/datatypes"
)

type SubmissionHandler struct {
	listingService    *services.ListingService
	submissionService *services.SubmissionService
}

func NewSubmissionHandler(listingService *services.ListingService, submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		listingService:    listingService,
		submissionService: submissionService,
	}
}

// Submit enters the current user into the listing loaded by LoadActiveListing
func (h *SubmissionHandler) Submit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	listing, ok := middleware.GetListing(c)
	if !ok {
		apierrors.InternalError(c, "Listing not found in context")
		return
	}

	type SubmitRequest struct {
		Link  string `json:"link" binding:"required"`
		Notes string `json:"notes"`
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), services.SubmitInput{
		ActorID:   userID,
		ListingID: listing.ID,
		Link:      req.Link,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSubmissionDTO(*submission))
}

// ListSubmissions returns the submissions of a listing to its sponsor
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	listing, ok := middleware.GetListing(c)
	if !ok {
		apierrors.InternalError(c, "Listing not found in context")
		return
	}

	submissions, err := h.submissionService.ListForListing(c.Request.Context(), userID, listing)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.SubmissionDTO, 0, len(submissions))
	for _, s := range submissions {
		out = append(out, dto.ToSubmissionDTO(s))
	}
	c.JSON(http.StatusOK, gin.H{"submissions": out})
}

// SelectWinner sets or clears the winner position of a submission
func (h *SubmissionHandler) SelectWinner(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type SelectWinnerRequest struct {
		Position *models.WinnerPosition `json:"winner_position"`
	}

	var req SelectWinnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	submission, err := h.submissionService.SelectWinner(c.Request.Context(), services.SelectWinnerInput{
		ActorID:      userID,
		SubmissionID: c.Param("id"),
		Position:     req.Position,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubmissionDTO(*submission))
}

// RecordPayment marks a submission as paid or unpaid
func (h *SubmissionHandler) RecordPayment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type RecordPaymentRequest struct {
		IsPaid         *bool           `json:"is_paid" binding:"required"`
		Amount         decimal.Decimal `json:"amount"`
		PaymentDetails json.RawMessage `json:"payment_details"`
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var details datatypes.JSON
	if len(req.PaymentDetails) > 0 {
		details = datatypes.JSON(req.PaymentDetails)
	}

	submission, err := h.listingService.RecordPayment(c.Request.Context(), services.RecordPaymentInput{
		ActorID:        userID,
		SubmissionID:   c.Param("id"),
		Amount:         req.Amount,
		IsPaid:         *req.IsPaid,
		PaymentDetails: details,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubmissionDTO(*submission))
}
