// Package innovations provides REST API handlers for innovation proposals
// and their admin review cycle.
package innovations

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Howards254/maathai-innovation-catalyst/internal/api/middleware"
	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
	"github.com/Howards254/maathai-innovation-catalyst/internal/repository"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/innovations"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

// InnovationService interface for innovation operations.
type InnovationService interface {
	Submit(ctx context.Context, userID uint, title, summary string) (*models.InnovationSubmission, error)
	Review(ctx context.Context, actor *models.User, submissionID uint, approved bool) (*models.InnovationSubmission, error)
	Resubmit(ctx context.Context, userID, submissionID uint, title, summary string) (*models.InnovationSubmission, error)
	ListMine(ctx context.Context, userID uint) ([]models.InnovationSubmission, error)
	ListPending(ctx context.Context, actor *models.User) ([]models.InnovationSubmission, error)
}

// Handler handles innovation API requests.
type Handler struct {
	innovationService InnovationService
	log               *logger.Logger
}

// NewHandler creates a new innovation handler.
func NewHandler(innovationService *innovations.Service, log *logger.Logger) *Handler {
	return &Handler{innovationService: innovationService, log: log}
}

// NewHandlerWithInterfaces creates a new innovation handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(innovationService InnovationService, log *logger.Logger) *Handler {
	return &Handler{innovationService: innovationService, log: log}
}

type submitRequest struct {
	Title   string `json:"title" binding:"required"`
	Summary string `json:"summary"`
}

// Submit creates a pending innovation proposal.
// POST /api/v1/innovations.
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	sub, err := h.innovationService.Submit(c.Request.Context(), user.ID, req.Title, req.Summary)
	if err != nil {
		h.serviceError(c, err, "Failed to submit innovation")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"submission": sub})
}

// ListMine lists the authenticated user's proposals.
// GET /api/v1/innovations.
func (h *Handler) ListMine(c *gin.Context) {
	user := middleware.CurrentUser(c)
	subs, err := h.innovationService.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		h.serviceError(c, err, "Failed to list innovations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": subs,
		"total":       len(subs),
	})
}

// ListPending lists the review queue. Admin only.
// GET /api/v1/innovations/pending.
func (h *Handler) ListPending(c *gin.Context) {
	subs, err := h.innovationService.ListPending(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		h.serviceError(c, err, "Failed to list pending innovations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": subs,
		"total":       len(subs),
	})
}

type reviewRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// Review applies an admin decision to a pending proposal.
// POST /api/v1/innovations/:id/review.
func (h *Handler) Review(c *gin.Context) {
	submissionID, err := h.parseID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.innovationService.Review(c.Request.Context(), middleware.CurrentUser(c), submissionID, *req.Approved)
	if err != nil {
		h.serviceError(c, err, "Failed to review innovation")
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": sub})
}

type resubmitRequest struct {
	Title   string `json:"title" binding:"required"`
	Summary string `json:"summary"`
}

// Resubmit returns a rejected proposal to the review queue. Owner only.
// POST /api/v1/innovations/:id/resubmit.
func (h *Handler) Resubmit(c *gin.Context) {
	submissionID, err := h.parseID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req resubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	sub, err := h.innovationService.Resubmit(c.Request.Context(), user.ID, submissionID, req.Title, req.Summary)
	if err != nil {
		h.serviceError(c, err, "Failed to resubmit innovation")
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": sub})
}

// Helper functions

func (h *Handler) parseID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid submission ID: %s", idStr)
	}
	return uint(id), nil
}

// serviceError maps service-layer errors onto HTTP status codes.
func (h *Handler) serviceError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, innovations.ErrUnauthorized),
		errors.Is(err, innovations.ErrNotOwner):
		h.errorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, innovations.ErrInvalidInput):
		h.errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrAlreadyDecided),
		errors.Is(err, repository.ErrInvalidTransition):
		h.errorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		h.errorResponse(c, http.StatusNotFound, "Not found")
	default:
		h.log.Error().Err(err).Msg(logMsg)
		h.errorResponse(c, http.StatusInternalServerError, logMsg)
	}
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
