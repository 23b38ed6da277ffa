// Package sentiment provides the HTTP client for the sentiment scoring provider.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonesrussell/claim-ranker/internal/domain"
	"github.com/jonesrussell/claim-ranker/internal/transport"
)

// ErrUnavailable indicates the sentiment provider is unreachable.
var ErrUnavailable = errors.New("sentiment provider unavailable")

// Label-derived scores used when the provider omits a numeric score.
const (
	derivedNegativeScore = -0.6
	derivedNeutralScore  = 0.0
	derivedPositiveScore = 0.6
)

// Client is an HTTP client for the sentiment provider.
// The provider takes the raw UTF-8 text as the request body and
// authenticates with an apikey header.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// scoreResponse is the response body from the sentiment endpoint.
// Score is optional; some deployments return only the label.
type scoreResponse struct {
	Sentiment string   `json:"sentiment"`
	Score     *float64 `json:"score"`
}

// NewClient creates a new sentiment client.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = transport.DefaultTimeout
	}
	return &Client{
		url:        url,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Score analyzes the sentiment of English text.
// Returns ErrUnavailable when the provider cannot be reached.
func (c *Client) Score(ctx context.Context, text string) (domain.SentimentResult, error) {
	headers := map[string]string{"apikey": c.apiKey}

	var resp scoreResponse
	_, _, err := transport.DoPostRaw(ctx, c.httpClient, c.url, headers, []byte(text), &resp)
	if err != nil {
		return domain.SentimentResult{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	label := strings.ToLower(strings.TrimSpace(resp.Sentiment))
	switch label {
	case domain.SentimentNegative, domain.SentimentNeutral, domain.SentimentPositive:
	default:
		return domain.SentimentResult{}, fmt.Errorf("unrecognized sentiment label %q", resp.Sentiment)
	}

	score := derivedScore(label)
	if resp.Score != nil {
		score = domain.ClampSentimentScore(*resp.Score)
	}

	return domain.SentimentResult{Label: label, Score: score}, nil
}

func derivedScore(label string) float64 {
	switch label {
	case domain.SentimentNegative:
		return derivedNegativeScore
	case domain.SentimentPositive:
		return derivedPositiveScore
	default:
		return derivedNeutralScore
	}
}
