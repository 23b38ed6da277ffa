// Package events provides claim lifecycle events published over Redis
// Streams for downstream consumers.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/claim-ranker/internal/domain"
)

// StreamName is the default Redis stream for claim events.
const StreamName = "claim-events"

// EventType represents the type of claim event.
type EventType string

const (
	// ClaimStored indicates a claim finished the pipeline and was persisted.
	ClaimStored EventType = "claim.stored"
	// ClaimFailed indicates a claim aborted at a pipeline stage.
	ClaimFailed EventType = "claim.failed"
	// ClaimClosed indicates a claim's case was closed via the API.
	ClaimClosed EventType = "claim.closed"
)

// ClaimEvent is the envelope for all claim events.
type ClaimEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType EventType `json:"event_type"`
	ClaimID   string    `json:"claim_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// ClaimStoredPayload contains data for claim.stored events.
type ClaimStoredPayload struct {
	Category       string  `json:"category"`
	CategorySource string  `json:"category_source"`
	Priority       int     `json:"priority"`
	SentimentScore float64 `json:"sentiment_score"`
	Language       string  `json:"language"`
}

// ClaimFailedPayload contains data for claim.failed events.
type ClaimFailedPayload struct {
	Reason string `json:"reason"`
}

// ClaimClosedPayload contains data for claim.closed events.
type ClaimClosedPayload struct {
	ClosedBy string `json:"closed_by"` // "api" or "system"
}

// NewClaimStored builds the event for a successfully persisted claim.
func NewClaimStored(claim *domain.Claim) ClaimEvent {
	return ClaimEvent{
		EventID:   uuid.New(),
		EventType: ClaimStored,
		ClaimID:   claim.ID,
		Timestamp: time.Now().UTC(),
		Payload: ClaimStoredPayload{
			Category:       claim.Category,
			CategorySource: claim.CategorySource,
			Priority:       claim.Priority,
			SentimentScore: claim.SentimentScore,
			Language:       claim.Language,
		},
	}
}

// NewClaimFailed builds the event for a claim that failed processing.
func NewClaimFailed(claim *domain.Claim) ClaimEvent {
	return ClaimEvent{
		EventID:   uuid.New(),
		EventType: ClaimFailed,
		ClaimID:   claim.ID,
		Timestamp: time.Now().UTC(),
		Payload: ClaimFailedPayload{
			Reason: claim.FailReason,
		},
	}
}

// NewClaimClosed builds the event for a claim closed through the API.
func NewClaimClosed(claimID string) ClaimEvent {
	return ClaimEvent{
		EventID:   uuid.New(),
		EventType: ClaimClosed,
		ClaimID:   claimID,
		Timestamp: time.Now().UTC(),
		Payload: ClaimClosedPayload{
			ClosedBy: "api",
		},
	}
}
