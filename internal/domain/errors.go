package domain

import (
	"errors"
	"fmt"
)

// Stage errors form the pipeline's failure taxonomy. Translation,
// sentiment and persistence errors are fatal to the claim;
// classification errors are absorbed with the fallback category.
var (
	ErrTranslation    = errors.New("translation failed")
	ErrSentiment      = errors.New("sentiment scoring failed")
	ErrClassification = errors.New("classification failed")
	ErrPersistence    = errors.New("persistence failed")
)

// ErrEmptyClaim rejects submissions with no text.
var ErrEmptyClaim = errors.New("claim text is empty")

// StageError wraps a stage failure with the claim it aborted and the
// recorded fail reason.
type StageError struct {
	ClaimID string
	Reason  string
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("claim %s: %s: %v", e.ClaimID, e.Reason, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError builds a StageError wrapping the taxonomy sentinel for
// the given fail reason.
func NewStageError(claimID, reason string, cause error) *StageError {
	var sentinel error
	switch reason {
	case FailReasonTranslation:
		sentinel = ErrTranslation
	case FailReasonSentiment:
		sentinel = ErrSentiment
	case FailReasonPersistence:
		sentinel = ErrPersistence
	default:
		sentinel = ErrClassification
	}
	return &StageError{
		ClaimID: claimID,
		Reason:  reason,
		Err:     fmt.Errorf("%w: %w", sentinel, cause),
	}
}
