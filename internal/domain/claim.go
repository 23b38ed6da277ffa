package domain

import "time"

// Claim represents a customer-submitted claim moving through the
// processing pipeline.
type Claim struct {
	ID             string  `json:"id" db:"id"`
	RawText        string  `json:"raw_text" db:"raw_text"`
	Language       string  `json:"language" db:"language"` // BCP-47 base tag, e.g. "en", "ru"
	TranslatedText string  `json:"translated_text" db:"translated_text"`
	SentimentLabel string  `json:"sentiment_label,omitempty" db:"sentiment_label"`
	SentimentScore float64 `json:"sentiment_score" db:"sentiment_score"` // clamped to [-1.0, 1.0]
	Category       string  `json:"category,omitempty" db:"category"`
	CategorySource string  `json:"category_source,omitempty" db:"category_source"` // "local", "remote", "fallback"
	Priority       int     `json:"priority" db:"priority"`                         // 1-5, 5 most urgent

	Status     Status `json:"status" db:"status"`
	FailReason string `json:"fail_reason,omitempty" db:"fail_reason"`

	// Resolution is the case state, independent of processing status.
	Resolution string `json:"resolution" db:"resolution"` // "open" or "closed"

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Status is the processing status of a claim. It advances strictly
// forward through the pipeline, except that any non-terminal status may
// transition to StatusFailed.
type Status string

const (
	StatusReceived    Status = "received"
	StatusTranslated  Status = "translated"
	StatusScored      Status = "scored"
	StatusCategorized Status = "categorized"
	StatusRanked      Status = "ranked"
	StatusStored      Status = "stored"
	StatusFailed      Status = "failed"
)

// statusOrder maps each non-terminal status to its pipeline position.
var statusOrder = map[Status]int{
	StatusReceived:    0,
	StatusTranslated:  1,
	StatusScored:      2,
	StatusCategorized: 3,
	StatusRanked:      4,
	StatusStored:      5,
}

// Resolution states for a claim's case lifecycle.
const (
	ResolutionOpen   = "open"
	ResolutionClosed = "closed"
)

// ValidStatus reports whether s is a known claim status.
func ValidStatus(s Status) bool {
	if s == StatusFailed {
		return true
	}
	_, ok := statusOrder[s]
	return ok
}

// IsTerminal reports whether the status ends processing.
func (s Status) IsTerminal() bool {
	return s == StatusStored || s == StatusFailed
}

// CanTransitionTo reports whether a claim may advance from s to next.
// Transitions move forward one or more steps; any non-terminal status
// may fail; terminal statuses never transition.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StatusFailed {
		return true
	}
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	return to > from
}

// Fail reasons recorded on claims that reach StatusFailed.
const (
	FailReasonTranslation = "translation_error"
	FailReasonSentiment   = "sentiment_error"
	FailReasonPersistence = "persistence_error"
)
