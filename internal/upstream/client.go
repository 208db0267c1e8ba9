package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// KeyHeader is the header carrying the Gemini API key, both inbound from
// the browser and outbound to the upstream service.
const KeyHeader = "x-goog-api-key"

// Client talks to the upstream Gemini-compatible API. One attempt per call,
// no retries: the UI already gives users a resubmit affordance, and stacking
// retries under it only multiplies load on a failing upstream.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ForwardResult is a verbatim copy of the upstream reply.
type ForwardResult struct {
	StatusCode int
	Body       []byte
}

// Forward relays one request to the configured upstream, preserving method,
// path, query and JSON body, and injecting the caller's API key. The upstream
// status and body are returned untouched; a non-JSON upstream body is treated
// as a failure because every caller of this surface expects JSON.
func (c *Client) Forward(ctx context.Context, method, path, query, apiKey string, body []byte) (*ForwardResult, error) {
	targetURL := c.baseURL + path
	if query != "" {
		targetURL += "?" + query
	}

	slog.Info("proxying upstream request", "method", method, "url", targetURL)

	var reqBody io.Reader
	if method != http.MethodGet && len(body) > 0 {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, targetURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(KeyHeader, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	if !json.Valid(respBody) {
		return nil, fmt.Errorf("upstream returned non-JSON response (status %d)", resp.StatusCode)
	}

	return &ForwardResult{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// ProbeResult is the structured outcome of a connectivity test. Failures are
// reported in-band; TestConnection never returns an error to the caller.
type ProbeResult struct {
	Success    bool
	ModelCount int
	Error      string
}

// TestConnection issues one GET {apiURL}/models with the given key and
// reports whether the pair is usable. It is a user-facing diagnostic: every
// failure mode, transport errors included, comes back as a readable message.
func (c *Client) TestConnection(ctx context.Context, apiURL, apiKey string) ProbeResult {
	if apiURL == "" || apiKey == "" {
		return ProbeResult{Error: "apiUrl and apiKey are required"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/models", nil)
	if err != nil {
		return ProbeResult{Error: "connection failed: " + err.Error()}
	}
	req.Header.Set(KeyHeader, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ProbeResult{Error: "connection failed: " + err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ProbeResult{Error: "connection failed: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ProbeResult{Error: upstreamErrorMessage(body, resp.StatusCode)}
	}

	var listing struct {
		Models []json.RawMessage `json:"models"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return ProbeResult{Error: upstreamErrorMessage(body, resp.StatusCode)}
	}

	return ProbeResult{Success: true, ModelCount: len(listing.Models)}
}

// upstreamErrorMessage digs a human-readable message out of a Gemini-style
// error body, falling back to the bare status code.
func upstreamErrorMessage(body []byte, status int) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return fmt.Sprintf("upstream returned status %d", status)
}
