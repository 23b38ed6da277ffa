// Package api exposes the claim pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/claim-ranker/internal/database"
	"github.com/jonesrussell/claim-ranker/internal/domain"
	"github.com/jonesrussell/claim-ranker/internal/events"
)

// Recent-claims listing bounds. The cap is enforced here so the
// repository never sees an unbounded limit.
const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// ClaimProcessor runs a submission through the processing pipeline.
type ClaimProcessor interface {
	Process(ctx context.Context, rawText, declaredLanguage string) (*domain.Claim, error)
}

// ClaimReader serves the query endpoints.
type ClaimReader interface {
	GetRecent(ctx context.Context, limit int) ([]domain.Claim, error)
	GetByStatus(ctx context.Context, status domain.Status) ([]domain.Claim, error)
	GetByTimeRange(ctx context.Context, start, end time.Time) ([]domain.Claim, error)
	GetOpenLastHour(ctx context.Context) ([]domain.Claim, error)
	CloseByID(ctx context.Context, id string) error
}

// Logger defines the logging interface
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Handler handles HTTP requests for the claim ranker API
type Handler struct {
	processor ClaimProcessor
	claims    ClaimReader
	publisher *events.Publisher
	logger    Logger
}

// NewHandler creates a new API handler. The publisher may be nil.
func NewHandler(processor ClaimProcessor, claims ClaimReader, publisher *events.Publisher, logger Logger) *Handler {
	return &Handler{
		processor: processor,
		claims:    claims,
		publisher: publisher,
		logger:    logger,
	}
}

// SubmitClaim handles POST /api/v1/claims
func (h *Handler) SubmitClaim(c *gin.Context) {
	var req SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid claim submission", "error", err)
		writeError(c, http.StatusBadRequest, CodeValidation, "text is required")
		return
	}

	claim, err := h.processor.Process(c.Request.Context(), req.Text, req.Language)
	if err != nil {
		h.writeProcessError(c, err)
		return
	}

	h.logger.Info("Claim accepted",
		"claim_id", claim.ID,
		"category", claim.Category,
		"priority", claim.Priority,
	)

	c.JSON(http.StatusCreated, claim)
}

// writeProcessError translates pipeline failures into API errors.
func (h *Handler) writeProcessError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrEmptyClaim) {
		writeError(c, http.StatusBadRequest, CodeValidation, "claim text is empty")
		return
	}

	var stageErr *domain.StageError
	if errors.As(err, &stageErr) {
		h.logger.Error("Claim processing failed",
			"claim_id", stageErr.ClaimID,
			"reason", stageErr.Reason,
			"error", err,
		)
		writeStageError(c, stageErr)
		return
	}

	h.logger.Error("Claim processing failed", "error", err)
	writeError(c, http.StatusInternalServerError, CodeStorage, "claim processing failed")
}

// ListRecent handles GET /api/v1/claims/recent
func (h *Handler) ListRecent(c *gin.Context) {
	limit := defaultRecentLimit
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 {
			writeError(c, http.StatusBadRequest, CodeValidation, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	claims, err := h.claims.GetRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list recent claims", "error", err)
		writeError(c, http.StatusInternalServerError, CodeStorage, "failed to load claims")
		return
	}

	c.JSON(http.StatusOK, ClaimsListResponse{Claims: claims, Total: len(claims)})
}

// ListByStatus handles GET /api/v1/claims?status=stored
func (h *Handler) ListByStatus(c *gin.Context) {
	statusParam := c.Query("status")
	if statusParam == "" {
		writeError(c, http.StatusBadRequest, CodeValidation, "status query parameter is required")
		return
	}

	status := domain.Status(statusParam)
	if !domain.ValidStatus(status) {
		writeError(c, http.StatusBadRequest, CodeValidation, "unknown status: "+statusParam)
		return
	}

	claims, err := h.claims.GetByStatus(c.Request.Context(), status)
	if err != nil {
		h.logger.Error("Failed to list claims by status", "status", statusParam, "error", err)
		writeError(c, http.StatusInternalServerError, CodeStorage, "failed to load claims")
		return
	}

	c.JSON(http.StatusOK, ClaimsListResponse{Claims: claims, Total: len(claims)})
}

// ListByRange handles GET /api/v1/claims/range?start=...&end=...
// Timestamps are RFC3339 and the range is inclusive on both ends.
func (h *Handler) ListByRange(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		writeError(c, http.StatusBadRequest, CodeValidation, "start must be an RFC3339 timestamp")
		return
	}

	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		writeError(c, http.StatusBadRequest, CodeValidation, "end must be an RFC3339 timestamp")
		return
	}

	if start.After(end) {
		writeError(c, http.StatusBadRequest, CodeValidation, "start must not be after end")
		return
	}

	claims, err := h.claims.GetByTimeRange(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("Failed to list claims by range", "error", err)
		writeError(c, http.StatusInternalServerError, CodeStorage, "failed to load claims")
		return
	}

	c.JSON(http.StatusOK, ClaimsListResponse{Claims: claims, Total: len(claims)})
}

// ListOpenLastHour handles GET /api/v1/claims/open-last-hour
func (h *Handler) ListOpenLastHour(c *gin.Context) {
	claims, err := h.claims.GetOpenLastHour(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list open claims", "error", err)
		writeError(c, http.StatusInternalServerError, CodeStorage, "failed to load claims")
		return
	}

	c.JSON(http.StatusOK, OpenClaimsResponse{
		Categories: groupByCategory(claims, domain.CategoryUncategorized),
		Total:      len(claims),
	})
}

// CloseClaim handles POST /api/v1/claims/:id/close. Closing an already
// closed claim succeeds.
func (h *Handler) CloseClaim(c *gin.Context) {
	id := c.Param("id")

	if err := h.claims.CloseByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrClaimNotFound) {
			writeError(c, http.StatusNotFound, CodeNotFound, "claim not found: "+id)
			return
		}
		h.logger.Error("Failed to close claim", "claim_id", id, "error", err)
		writeError(c, http.StatusInternalServerError, CodeStorage, "failed to close claim")
		return
	}

	h.publisher.PublishAsync(events.NewClaimClosed(id))
	h.logger.Info("Claim closed", "claim_id", id)

	c.JSON(http.StatusOK, CloseClaimResponse{ID: id, Resolution: domain.ResolutionClosed})
}
