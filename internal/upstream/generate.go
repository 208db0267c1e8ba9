package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var ErrNotConfigured = errors.New("upstream API is not configured")

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// GenerateContent sends one prompt to {apiURL}/models/{model}:generateContent
// and reshapes the reply through the adapter matching the model name. Unlike
// Forward, the target comes from the user's stored settings, not the
// configured proxy base.
func (c *Client) GenerateContent(ctx context.Context, apiURL, apiKey, model, message string) (*Result, error) {
	if apiURL == "" || apiKey == "" {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(generateContentRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: message}},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", apiURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
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

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New(upstreamErrorMessage(body, resp.StatusCode))
	}

	return AdapterFor(model).Extract(body)
}
