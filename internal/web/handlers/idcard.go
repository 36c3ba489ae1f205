package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/trungnq/frontdesk/internal/recognition"
)

// IDCardHandler handles ID card field extraction.
type IDCardHandler struct {
	service *recognition.Service
}

// NewIDCardHandler creates a new ID card handler.
func NewIDCardHandler(svc *recognition.Service) *IDCardHandler {
	return &IDCardHandler{service: svc}
}

type extractRequest struct {
	Image string `json:"image"` // base64-encoded
}

// Extract accepts an ID card photo as a multipart form file under "image"
// or as a JSON body with a base64 payload, and answers with the extracted
// identity fields.
func (h *IDCardHandler) Extract(w http.ResponseWriter, r *http.Request) {
	image, ok := h.readImage(w, r)
	if !ok {
		return
	}

	identity, err := h.service.ExtractIDCard(r.Context(), image)
	if err != nil {
		respondFault(w, err)
		return
	}

	respondJSON(w, http.StatusOK, identity)
}

func (h *IDCardHandler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart form")
			return nil, false
		}
		f, _, err := r.FormFile("image")
		if err != nil {
			respondError(w, http.StatusBadRequest, "missing image upload")
			return nil, false
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			respondError(w, http.StatusBadRequest, "unreadable image upload")
			return nil, false
		}
		return data, true
	}

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid base64 image")
		return nil, false
	}
	return data, true
}
