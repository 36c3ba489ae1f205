package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/trungnq/frontdesk/internal/customer"
	"github.com/trungnq/frontdesk/internal/fault"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondFault maps the error taxonomy onto HTTP statuses.
func respondFault(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fault.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, fault.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, fault.ErrImageDecode):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, fault.ErrExternalService):
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// CustomerResponse represents a customer in API responses. Embeddings stay
// internal; only their count is exposed.
type CustomerResponse struct {
	ID               string `json:"id"`
	FullName         string `json:"full_name,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	IDNumber         string `json:"id_number,omitempty"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	Gender           string `json:"gender,omitempty"`
	Nationality      string `json:"nationality,omitempty"`
	PlaceOfOrigin    string `json:"place_of_origin,omitempty"`
	PlaceOfResidence string `json:"place_of_residence,omitempty"`
	IDImage          string `json:"id_image,omitempty"`
	FaceCount        int    `json:"face_count"`
	CreatedAt        string `json:"created_at,omitempty"`
	UpdatedAt        string `json:"updated_at,omitempty"`
}

func customerToResponse(c *customer.Record) CustomerResponse {
	resp := CustomerResponse{
		ID:               c.ID,
		FullName:         c.FullName,
		Email:            c.Email,
		Phone:            c.Phone,
		IDNumber:         c.IDNumber,
		DateOfBirth:      c.DateOfBirth,
		Gender:           c.Gender,
		Nationality:      c.Nationality,
		PlaceOfOrigin:    c.PlaceOfOrigin,
		PlaceOfResidence: c.PlaceOfResidence,
		IDImage:          c.IDImage,
		FaceCount:        len(c.Embeddings),
	}
	if !c.CreatedAt.IsZero() {
		resp.CreatedAt = c.CreatedAt.Format(time.RFC3339)
	}
	if !c.UpdatedAt.IsZero() {
		resp.UpdatedAt = c.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

// IdentityFields is the JSON shape of a partial identity update. Absent
// fields stay untouched.
type IdentityFields struct {
	FullName         *string `json:"full_name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	IDNumber         *string `json:"id_number,omitempty"`
	DateOfBirth      *string `json:"date_of_birth,omitempty"`
	Gender           *string `json:"gender,omitempty"`
	Nationality      *string `json:"nationality,omitempty"`
	PlaceOfOrigin    *string `json:"place_of_origin,omitempty"`
	PlaceOfResidence *string `json:"place_of_residence,omitempty"`
	IDImage          *string `json:"id_image,omitempty"`
}

func (f IdentityFields) toFieldUpdate() customer.FieldUpdate {
	return customer.FieldUpdate{
		FullName:         f.FullName,
		Email:            f.Email,
		Phone:            f.Phone,
		IDNumber:         f.IDNumber,
		DateOfBirth:      f.DateOfBirth,
		Gender:           f.Gender,
		Nationality:      f.Nationality,
		PlaceOfOrigin:    f.PlaceOfOrigin,
		PlaceOfResidence: f.PlaceOfResidence,
		IDImage:          f.IDImage,
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
