// Package feed provides REST API handlers for discussions, comments and votes.
package feed

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
	"github.com/Howards254/maathai-innovation-catalyst/internal/rules"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/feed"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

// FeedService interface for discussion operations.
type FeedService interface {
	CreateDiscussion(ctx context.Context, userID uint, anonymous bool, title, body string) (*models.Discussion, error)
	GetDiscussion(ctx context.Context, id uint) (*models.Discussion, []models.Comment, error)
	AddComment(ctx context.Context, discussionID, userID uint, body string) (*models.Comment, error)
	Vote(ctx context.Context, discussionID, userID uint, direction string) (*feed.VoteResult, error)
	ListRanked(ctx context.Context, mode rules.RankMode) ([]models.Discussion, error)
}

// Handler handles feed API requests.
type Handler struct {
	feedService FeedService
	log         *logger.Logger
}

// NewHandler creates a new feed handler.
func NewHandler(feedService *feed.Service, log *logger.Logger) *Handler {
	return &Handler{feedService: feedService, log: log}
}

// NewHandlerWithInterfaces creates a new feed handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(feedService FeedService, log *logger.Logger) *Handler {
	return &Handler{feedService: feedService, log: log}
}

// List returns discussions ranked by the requested mode.
// GET /api/v1/feed?sort=hot.
func (h *Handler) List(c *gin.Context) {
	mode := rules.RankMode(c.DefaultQuery("sort", string(rules.RankHot)))

	discussions, err := h.feedService.ListRanked(c.Request.Context(), mode)
	if err != nil {
		h.serviceError(c, err, "Failed to list discussions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"discussions": discussions,
		"sort":        mode,
		"total":       len(discussions),
	})
}

type createDiscussionRequest struct {
	Title     string `json:"title" binding:"required"`
	Body      string `json:"body"`
	Anonymous bool   `json:"anonymous"`
}

// Create creates a discussion. Anonymous posts carry no author and earn no
// points.
// POST /api/v1/feed.
func (h *Handler) Create(c *gin.Context) {
	var req createDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	discussion, err := h.feedService.CreateDiscussion(c.Request.Context(), user.ID, req.Anonymous, req.Title, req.Body)
	if err != nil {
		h.serviceError(c, err, "Failed to create discussion")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"discussion": discussion})
}

// Get returns a discussion with its comments.
// GET /api/v1/feed/:id.
func (h *Handler) Get(c *gin.Context) {
	discussionID, err := h.parseID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	discussion, comments, err := h.feedService.GetDiscussion(c.Request.Context(), discussionID)
	if err != nil {
		h.serviceError(c, err, "Failed to get discussion")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"discussion": discussion,
		"comments":   comments,
	})
}

type addCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// AddComment adds a comment to a discussion.
// POST /api/v1/feed/:id/comments.
func (h *Handler) AddComment(c *gin.Context) {
	discussionID, err := h.parseID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	comment, err := h.feedService.AddComment(c.Request.Context(), discussionID, user.ID, req.Body)
	if err != nil {
		h.serviceError(c, err, "Failed to add comment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

type voteRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// Vote toggles the authenticated user's vote on a discussion. Repeating the
// same direction clears the vote; the opposite direction replaces it.
// POST /api/v1/feed/:id/vote.
func (h *Handler) Vote(c *gin.Context) {
	discussionID, err := h.parseID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	result, err := h.feedService.Vote(c.Request.Context(), discussionID, user.ID, req.Direction)
	if err != nil {
		h.serviceError(c, err, "Failed to vote")
		return
	}

	c.JSON(http.StatusOK, gin.H{"vote": result})
}

// Helper functions

func (h *Handler) parseID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid discussion ID: %s", idStr)
	}
	return uint(id), nil
}

// serviceError maps service-layer errors onto HTTP status codes.
func (h *Handler) serviceError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, feed.ErrInvalidInput),
		errors.Is(err, feed.ErrInvalidRankMode),
		errors.Is(err, feed.ErrInvalidVote):
		h.errorResponse(c, http.StatusBadRequest, err.Error())
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
