package faceapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/trungnq/frontdesk/internal/fault"
)

func TestExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %q, want /embeddings", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req["image"] == "" {
			t.Error("request missing image payload")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"detections": []map[string]any{
				{"bbox": []float64{0, 0, 10, 10}, "score": 0.99, "embedding": []float32{1, 2, 3}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, 0)
	detections, err := client.Extract(context.Background(), []byte("fake-image"))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(detections) != 1 {
		t.Fatalf("detection count = %d, want 1", len(detections))
	}
	if len(detections[0].Embedding) != 3 {
		t.Errorf("embedding length = %d, want 3", len(detections[0].Embedding))
	}
}

func TestExtractNoFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"detections": []any{}})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, 0)
	detections, err := client.Extract(context.Background(), []byte("fake-image"))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(detections) != 0 {
		t.Errorf("detection count = %d, want 0", len(detections))
	}
}

func TestExtractRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"detections": []any{}})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, 3)
	_, err := client.Extract(context.Background(), []byte("fake-image"))
	if err != nil {
		t.Fatalf("Extract failed after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestExtractDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad image", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, 3)
	_, err := client.Extract(context.Background(), []byte("fake-image"))
	if !errors.Is(err, fault.ErrExternalService) {
		t.Errorf("Extract = %v, want ErrExternalService", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 400)", calls.Load())
	}
}

func TestExtractEngineDown(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 500*time.Millisecond, 1)
	_, err := client.Extract(context.Background(), []byte("fake-image"))
	if !errors.Is(err, fault.ErrExternalService) {
		t.Errorf("Extract = %v, want ErrExternalService", err)
	}
}

func TestLargestFace(t *testing.T) {
	detections := []Detection{
		{BBox: [4]float64{0, 0, 10, 10}},   // area 100
		{BBox: [4]float64{0, 0, 50, 40}},   // area 2000
		{BBox: [4]float64{10, 10, 30, 30}}, // area 400
	}
	best, ok := LargestFace(detections)
	if !ok {
		t.Fatal("LargestFace reported no face")
	}
	if best.BBox != detections[1].BBox {
		t.Errorf("LargestFace picked bbox %v, want %v", best.BBox, detections[1].BBox)
	}

	if _, ok := LargestFace(nil); ok {
		t.Error("LargestFace on empty list should report no face")
	}
}
