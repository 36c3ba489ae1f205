// Package faceapi is the HTTP client for the external face embedding
// engine. The engine detects faces in an image and returns one feature
// vector per detection.
package faceapi

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

// Detection is a single detected face: raw pixel bounding box and the
// embedding produced by the model.
type Detection struct {
	BBox      [4]float64 `json:"bbox"` // x1, y1, x2, y2
	Score     float64    `json:"score"`
	Embedding []float32  `json:"embedding"`
}

// Client talks to the embedding engine. Engine calls are synchronous and
// may be slow; every request runs under the configured timeout and failed
// attempts are retried with backoff before surfacing ErrExternalService.
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

type extractRequest struct {
	Image string `json:"image"` // base64-encoded bytes
}

type extractResponse struct {
	Detections []Detection `json:"detections"`
}

// Extract sends an image to the engine and returns all detected faces.
// An image without faces yields an empty slice, not an error.
func (c *Client) Extract(ctx context.Context, imageData []byte) ([]Detection, error) {
	req := extractRequest{Image: base64.StdEncoding.EncodeToString(imageData)}

	var resp extractResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/embeddings", req, &resp, c.maxRetries); err != nil {
		return nil, err
	}
	return resp.Detections, nil
}

// LargestFace picks the detection with the largest bounding-box area.
// Returns false for an empty detection list.
func LargestFace(detections []Detection) (Detection, bool) {
	if len(detections) == 0 {
		return Detection{}, false
	}
	best := detections[0]
	bestArea := bboxArea(best.BBox)
	for _, d := range detections[1:] {
		if area := bboxArea(d.BBox); area > bestArea {
			best = d
			bestArea = area
		}
	}
	return best, true
}

func bboxArea(b [4]float64) float64 {
	return (b[2] - b[0]) * (b[3] - b[1])
}

// postJSON performs a POST with a JSON body, retrying transient failures
// (network errors and 5xx responses) with doubling backoff.
func postJSON(ctx context.Context, client *http.Client, url string, body, result any, maxRetries int) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("could not marshal request body: %w", err)
	}

	backoff := 200 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fault.ExternalService(ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		lastErr = doPost(ctx, client, url, jsonBody, result)
		if lastErr == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(lastErr, &perm) {
			break
		}
	}
	return fault.ExternalService(lastErr)
}

// permanentError marks responses that will not improve with a retry.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func doPost(ctx context.Context, client *http.Client, url string, jsonBody []byte, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return &permanentError{err: err}
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("could not unmarshal response: %w", err)
	}
	return nil
}
