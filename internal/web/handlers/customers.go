package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trungnq/frontdesk/internal/customer"
	"github.com/trungnq/frontdesk/internal/recognition"
)

// CustomersHandler handles customer record endpoints.
type CustomersHandler struct {
	service *recognition.Service
	store   customer.Store
}

// NewCustomersHandler creates a new customers handler.
func NewCustomersHandler(svc *recognition.Service, store customer.Store) *CustomersHandler {
	return &CustomersHandler{service: svc, store: store}
}

// List returns all customers.
func (h *CustomersHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.FindAll(r.Context())
	if err != nil {
		respondFault(w, err)
		return
	}

	response := make([]CustomerResponse, len(records))
	for i := range records {
		response[i] = customerToResponse(&records[i])
	}
	respondJSON(w, http.StatusOK, response)
}

// Get returns a single customer by id.
func (h *CustomersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customerToResponse(rec))
}

// Update applies a partial identity update to a customer.
func (h *CustomersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fields IdentityFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if err := h.service.UpdateCustomer(r.Context(), id, fields.toFieldUpdate()); err != nil {
		respondFault(w, err)
		return
	}

	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customerToResponse(rec))
}

// SaveIdentity persists extracted ID card fields, deduplicating on the
// national id number.
func (h *CustomersHandler) SaveIdentity(w http.ResponseWriter, r *http.Request) {
	var fields IdentityFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	id, err := h.service.SaveIdentity(r.Context(), fields.toFieldUpdate())
	if err != nil {
		respondFault(w, err)
		return
	}

	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customerToResponse(rec))
}
