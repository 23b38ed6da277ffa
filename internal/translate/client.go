// Package translate provides the HTTP client for the translation sidecar.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jonesrussell/claim-ranker/internal/transport"
)

// ErrUnavailable indicates the translation sidecar is unreachable.
var ErrUnavailable = errors.New("translator unavailable")

// Client is an HTTP client for the translation sidecar.
type Client struct {
	endpoint   string
	healthBase string
	httpClient *http.Client
}

// translateRequest is the request body for the translate endpoint.
type translateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
}

// translateResponse is the response body from the translate endpoint.
type translateResponse struct {
	TranslatedText string `json:"translated_text"`
}

// NewClient creates a new translator client for the given endpoint URL.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = transport.DefaultTimeout
	}
	return &Client{
		endpoint:   endpoint,
		healthBase: originOf(endpoint),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// originOf reduces a full endpoint URL to scheme://host for health probing.
func originOf(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return endpoint
	}
	return u.Scheme + "://" + u.Host
}

// Translate converts text in sourceLang to English.
// Returns ErrUnavailable when the sidecar cannot be reached or responds
// with an empty translation.
func (c *Client) Translate(ctx context.Context, text, sourceLang string) (string, error) {
	var resp translateResponse
	_, _, err := transport.DoPost(ctx, c.httpClient, c.endpoint, nil,
		translateRequest{Text: text, SourceLanguage: sourceLang}, &resp)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if resp.TranslatedText == "" {
		return "", fmt.Errorf("%w: empty translation", ErrUnavailable)
	}
	return resp.TranslatedText, nil
}

// Health checks if the translation sidecar is healthy.
func (c *Client) Health(ctx context.Context) error {
	reachable, _, _, err := transport.DoHealth(ctx, c.httpClient, c.healthBase)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if !reachable {
		return ErrUnavailable
	}
	return nil
}
