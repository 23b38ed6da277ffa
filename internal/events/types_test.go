// Package events_test provides tests for claim lifecycle event types.
package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/claim-ranker/internal/domain"
	"github.com/jonesrussell/claim-ranker/internal/events"
)

func TestClaimEvent_MarshalJSON(t *testing.T) {
	t.Helper()

	eventID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440001")
	timestamp := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	event := events.ClaimEvent{
		EventID:   eventID,
		EventType: events.ClaimStored,
		ClaimID:   "claim-1",
		Timestamp: timestamp,
		Payload: events.ClaimStoredPayload{
			Category:       "damage",
			CategorySource: "local",
			Priority:       5,
			SentimentScore: -0.8,
			Language:       "ru",
		},
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded events.ClaimEvent
	unmarshalErr := json.Unmarshal(data, &decoded)
	if unmarshalErr != nil {
		t.Fatalf("unmarshal failed: %v", unmarshalErr)
	}

	if decoded.EventType != events.ClaimStored {
		t.Errorf("expected event type %s, got %s", events.ClaimStored, decoded.EventType)
	}
	if decoded.ClaimID != "claim-1" {
		t.Errorf("expected claim ID claim-1, got %s", decoded.ClaimID)
	}
	if decoded.EventID != eventID {
		t.Errorf("expected event ID %s, got %s", eventID, decoded.EventID)
	}
}

func TestEventType_Constants(t *testing.T) {
	t.Helper()

	tests := []struct {
		eventType events.EventType
		expected  string
	}{
		{events.ClaimStored, "claim.stored"},
		{events.ClaimFailed, "claim.failed"},
		{events.ClaimClosed, "claim.closed"},
	}

	for _, tt := range tests {
		if string(tt.eventType) != tt.expected {
			t.Errorf("expected %s, got %s", tt.expected, tt.eventType)
		}
	}
}

func TestNewClaimStored(t *testing.T) {
	t.Helper()

	claim := &domain.Claim{
		ID:             "claim-1",
		Language:       "ru",
		SentimentScore: -0.8,
		Category:       "damage",
		CategorySource: "local",
		Priority:       5,
		Status:         domain.StatusStored,
	}

	event := events.NewClaimStored(claim)

	if event.EventType != events.ClaimStored {
		t.Errorf("expected claim.stored, got %s", event.EventType)
	}
	if event.ClaimID != "claim-1" {
		t.Errorf("expected claim-1, got %s", event.ClaimID)
	}
	if event.EventID == uuid.Nil {
		t.Error("expected generated event ID")
	}
	if event.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	payload, ok := event.Payload.(events.ClaimStoredPayload)
	if !ok {
		t.Fatalf("expected ClaimStoredPayload, got %T", event.Payload)
	}
	if payload.Category != "damage" || payload.Priority != 5 {
		t.Errorf("payload not populated from claim: %+v", payload)
	}
}

func TestNewClaimFailed(t *testing.T) {
	t.Helper()

	claim := &domain.Claim{
		ID:         "claim-2",
		Status:     domain.StatusFailed,
		FailReason: domain.FailReasonSentiment,
	}

	event := events.NewClaimFailed(claim)

	if event.EventType != events.ClaimFailed {
		t.Errorf("expected claim.failed, got %s", event.EventType)
	}

	payload, ok := event.Payload.(events.ClaimFailedPayload)
	if !ok {
		t.Fatalf("expected ClaimFailedPayload, got %T", event.Payload)
	}
	if payload.Reason != domain.FailReasonSentiment {
		t.Errorf("expected sentiment_error, got %s", payload.Reason)
	}
}

func TestNewClaimClosed(t *testing.T) {
	t.Helper()

	event := events.NewClaimClosed("claim-3")

	if event.EventType != events.ClaimClosed {
		t.Errorf("expected claim.closed, got %s", event.EventType)
	}
	if event.ClaimID != "claim-3" {
		t.Errorf("expected claim-3, got %s", event.ClaimID)
	}

	payload, ok := event.Payload.(events.ClaimClosedPayload)
	if !ok {
		t.Fatalf("expected ClaimClosedPayload, got %T", event.Payload)
	}
	if payload.ClosedBy != "api" {
		t.Errorf("expected closed_by api, got %s", payload.ClosedBy)
	}
}
