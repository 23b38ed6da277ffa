// Package transport provides shared HTTP transport for provider sidecar calls and health.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds provider calls when the caller supplies no client.
const DefaultTimeout = 5 * time.Second

// healthResponse is the JSON shape returned by GET /health (version optional).
type healthResponse struct {
	Version string `json:"version"`
}

func httpClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: DefaultTimeout}
}

// DoPost sends payload as a JSON POST to url, decoding the response into respPtr.
// Extra headers are set on the request. Returns request latency and raw response
// size alongside the decode target for telemetry.
func DoPost(ctx context.Context, client *http.Client, url string, headers map[string]string, payload, respPtr any) (latencyMs int64, responseSizeBytes int, err error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, 0, fmt.Errorf("marshal request: %w", err)
	}
	return doRequest(ctx, client, url, headers, "application/json", body, respPtr)
}

// DoPostRaw sends body verbatim as a POST to url, decoding the JSON response
// into respPtr. Used for providers that take the document text as the request
// body rather than a JSON envelope.
func DoPostRaw(ctx context.Context, client *http.Client, url string, headers map[string]string, body []byte, respPtr any) (latencyMs int64, responseSizeBytes int, err error) {
	return doRequest(ctx, client, url, headers, "text/plain; charset=utf-8", body, respPtr)
}

func doRequest(ctx context.Context, client *http.Client, url string, headers map[string]string, contentType string, body []byte, respPtr any) (latencyMs int64, responseSizeBytes int, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := httpClient(client).Do(httpReq)
	latencyMs = time.Since(start).Milliseconds()
	if err != nil {
		return latencyMs, 0, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return latencyMs, 0, fmt.Errorf("read response: %w", err)
	}
	responseSizeBytes = len(respBody)

	if resp.StatusCode != http.StatusOK {
		return latencyMs, responseSizeBytes, fmt.Errorf("provider returned %d", resp.StatusCode)
	}

	if decodeErr := json.Unmarshal(respBody, respPtr); decodeErr != nil {
		return latencyMs, responseSizeBytes, fmt.Errorf("decode response: %w", decodeErr)
	}

	return latencyMs, responseSizeBytes, nil
}

// DoHealth calls GET /health at baseURL and returns reachable, latencyMs, version, and any error.
func DoHealth(ctx context.Context, client *http.Client, baseURL string) (reachable bool, latencyMs int64, version string, err error) {
	start := time.Now()

	httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", http.NoBody)
	if reqErr != nil {
		return false, 0, "", fmt.Errorf("create request: %w", reqErr)
	}

	resp, doErr := httpClient(client).Do(httpReq)
	latencyMs = time.Since(start).Milliseconds()
	if doErr != nil {
		return false, latencyMs, "", fmt.Errorf("service unreachable: %w", doErr)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, latencyMs, "", fmt.Errorf("unhealthy status: %d", resp.StatusCode)
	}

	reachable = true
	var healthResp healthResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&healthResp); decodeErr == nil {
		version = healthResp.Version
	}
	return reachable, latencyMs, version, nil
}
