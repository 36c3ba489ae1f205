// Package ocrapi is the HTTP client for the external OCR engine. The
// engine returns text detections in reading order; that order is
// load-bearing for the ID-card extractor downstream.
package ocrapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/trungnq/frontdesk/internal/fault"
)

// Reading is one detected text region.
type Reading struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Client talks to the OCR engine with the same timeout and retry behavior
// as the embedding client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

// NewClient creates a client for the engine at baseURL.
func NewClient(baseURL string, timeout time.Duration, maxRetries int) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}
}

type readRequest struct {
	Image string `json:"image"` // base64-encoded bytes
}

type readResponse struct {
	Results []Reading `json:"results"`
}

// ReadText sends an image to the engine and returns its detections in
// reading order. An image with no readable text yields an empty slice.
func (c *Client) ReadText(ctx context.Context, imageData []byte) ([]Reading, error) {
	req := readRequest{Image: base64.StdEncoding.EncodeToString(imageData)}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	backoff := 200 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fault.ExternalService(ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		var resp readResponse
		lastErr = c.doPost(ctx, jsonBody, &resp)
		if lastErr == nil {
			return resp.Results, nil
		}
		if errors.Is(lastErr, errPermanent) {
			break
		}
	}
	return nil, fault.ExternalService(lastErr)
}

var errPermanent = errors.New("permanent engine failure")

func (c *Client) doPost(ctx context.Context, jsonBody []byte, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/readtext", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return fmt.Errorf("%w: status %d: %s", errPermanent, resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("could not unmarshal response: %w", err)
	}
	return nil
}
