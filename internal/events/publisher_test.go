// Package events_test provides tests for the events package.
package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonesrussell/claim-ranker/internal/events"
)

func TestPublisher_NewPublisher_RequiresClient(t *testing.T) {
	t.Helper()

	pub := events.NewPublisher(nil, "", nil)
	if pub != nil {
		t.Error("expected nil publisher when client is nil")
	}
}

func TestPublisher_Publish_NilReceiverIsNoOp(t *testing.T) {
	t.Helper()

	var pub *events.Publisher
	event := events.NewClaimClosed("claim-1")

	// Should not panic and return nil
	err := pub.Publish(context.Background(), event)
	if err != nil {
		t.Errorf("expected nil error for nil receiver, got: %v", err)
	}
}

func TestPublisher_PublishAsync_NilReceiverIsNoOp(t *testing.T) {
	t.Helper()

	var pub *events.Publisher
	event := events.NewClaimClosed("claim-1")

	// Should not panic
	pub.PublishAsync(event)

	// Give the goroutine a chance to run (though it should return immediately)
	time.Sleep(10 * time.Millisecond)
}
