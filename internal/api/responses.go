package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/claim-ranker/internal/domain"
)

// Error codes returned by the API.
const (
	CodeValidation = "validation_error"
	CodeProvider   = "provider_error"
	CodeStorage    = "storage_error"
	CodeNotFound   = "not_found"
)

// SubmitClaimRequest represents a claim submission.
type SubmitClaimRequest struct {
	Text     string `json:"text" binding:"required"`
	Language string `json:"language"`
}

// ClaimsListResponse represents a list of claims with a count.
type ClaimsListResponse struct {
	Claims []domain.Claim `json:"claims"`
	Total  int            `json:"total"`
}

// OpenClaimsResponse groups open claims by category for triage views.
type OpenClaimsResponse struct {
	Categories map[string][]domain.Claim `json:"categories"`
	Total      int                       `json:"total"`
}

// CloseClaimResponse acknowledges a close request.
type CloseClaimResponse struct {
	ID         string `json:"id"`
	Resolution string `json:"resolution"`
}

// ErrorBody carries a machine-readable code alongside the message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	ClaimID string `json:"claim_id,omitempty"`
}

// ErrorResponse is the envelope for all error replies.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// writeError sends a structured error response.
func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// writeStageError maps a pipeline stage failure to the API taxonomy:
// provider failures are 502, storage failures 500.
func writeStageError(c *gin.Context, stageErr *domain.StageError) {
	status := http.StatusBadGateway
	code := CodeProvider
	if stageErr.Reason == domain.FailReasonPersistence {
		status = http.StatusInternalServerError
		code = CodeStorage
	}

	c.JSON(status, ErrorResponse{Error: ErrorBody{
		Code:    code,
		Message: stageErr.Reason,
		ClaimID: stageErr.ClaimID,
	}})
}

// groupByCategory buckets claims for the open-claims view. Claims that
// failed before categorization land in the default bucket.
func groupByCategory(claims []domain.Claim, defaultCategory string) map[string][]domain.Claim {
	grouped := make(map[string][]domain.Claim)
	for i := range claims {
		key := claims[i].Category
		if key == "" {
			key = defaultCategory
		}
		grouped[key] = append(grouped[key], claims[i])
	}
	return grouped
}
