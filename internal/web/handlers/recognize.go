package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/trungnq/frontdesk/internal/recognition"
)

const maxUploadMemory = 32 << 20 // 32 MB

// RecognizeHandler handles face recognition requests.
type RecognizeHandler struct {
	service *recognition.Service
}

// NewRecognizeHandler creates a new recognize handler.
func NewRecognizeHandler(svc *recognition.Service) *RecognizeHandler {
	return &RecognizeHandler{service: svc}
}

// recognizeRequest is the JSON alternative to a multipart upload.
type recognizeRequest struct {
	Images    []string `json:"images"` // base64-encoded
	ImageRefs []string `json:"image_refs,omitempty"`
}

// RecognizeResponse is the API shape of a recognition outcome.
type RecognizeResponse struct {
	Matched    bool              `json:"matched"`
	Created    bool              `json:"created"`
	Customer   *CustomerResponse `json:"customer,omitempty"`
	Confidence float64           `json:"confidence,omitempty"`
}

// Recognize accepts probe images as multipart form files under "images" or
// as a JSON body with base64 payloads, and answers with the matched or newly
// created customer.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	images, refs, ok := h.readImages(w, r)
	if !ok {
		return
	}

	result, err := h.service.Recognize(r.Context(), images, refs)
	if err != nil {
		respondFault(w, err)
		return
	}

	resp := RecognizeResponse{
		Matched:    result.Matched,
		Created:    result.Created,
		Confidence: result.Confidence,
	}
	if result.Customer != nil {
		c := customerToResponse(result.Customer)
		resp.Customer = &c
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *RecognizeHandler) readImages(w http.ResponseWriter, r *http.Request) ([][]byte, []string, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return h.readMultipart(w, r)
	}

	var req recognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return nil, nil, false
	}

	images := make([][]byte, 0, len(req.Images))
	for _, encoded := range req.Images {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid base64 image")
			return nil, nil, false
		}
		images = append(images, data)
	}
	return images, req.ImageRefs, true
}

func (h *RecognizeHandler) readMultipart(w http.ResponseWriter, r *http.Request) ([][]byte, []string, bool) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return nil, nil, false
	}

	files := r.MultipartForm.File["images"]
	images := make([][]byte, 0, len(files))
	refs := make([]string, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			respondError(w, http.StatusBadRequest, "unreadable image upload")
			return nil, nil, false
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respondError(w, http.StatusBadRequest, "unreadable image upload")
			return nil, nil, false
		}
		images = append(images, data)
		refs = append(refs, fh.Filename)
	}
	return images, refs, true
}
