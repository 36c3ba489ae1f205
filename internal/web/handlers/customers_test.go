package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trungnq/frontdesk/internal/customer"
	"github.com/trungnq/frontdesk/internal/customer/memory"
)

func newCustomersHandler(store *memory.Store) *CustomersHandler {
	return NewCustomersHandler(newTestService(store, &stubFaces{}, &stubOCR{}), store)
}

func TestCustomersHandler_List(t *testing.T) {
	store := memory.NewStore()
	for _, name := range []string{"A", "B"} {
		if _, err := store.Insert(context.Background(), &customer.Record{FullName: name}); err != nil {
			t.Fatalf("seeding store: %v", err)
		}
	}

	handler := newCustomersHandler(store)
	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest("GET", "/api/v1/customers", nil))

	assertStatusCode(t, rec, http.StatusOK)

	var resp []CustomerResponse
	parseJSONResponse(t, rec, &resp)
	if len(resp) != 2 {
		t.Errorf("expected 2 customers, got %d", len(resp))
	}
}

func TestCustomersHandler_Get(t *testing.T) {
	store := memory.NewStore()
	id, err := store.Insert(context.Background(), &customer.Record{
		FullName:   "Nguyen Van A",
		Embeddings: [][]float32{{1, 0}},
	})
	if err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	handler := newCustomersHandler(store)
	rec := httptest.NewRecorder()
	handler.Get(rec, requestWithURLParam(t, "GET", "/api/v1/customers/"+id, "id", id, nil))

	assertStatusCode(t, rec, http.StatusOK)

	var resp CustomerResponse
	parseJSONResponse(t, rec, &resp)
	if resp.ID != id || resp.FullName != "Nguyen Van A" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.FaceCount != 1 {
		t.Errorf("FaceCount = %d, want 1", resp.FaceCount)
	}
}

func TestCustomersHandler_GetMissing(t *testing.T) {
	handler := newCustomersHandler(memory.NewStore())
	rec := httptest.NewRecorder()
	handler.Get(rec, requestWithURLParam(t, "GET", "/api/v1/customers/nope", "id", "nope", nil))

	assertStatusCode(t, rec, http.StatusNotFound)
}

func TestCustomersHandler_Update(t *testing.T) {
	store := memory.NewStore()
	id, err := store.Insert(context.Background(), &customer.Record{FullName: "A"})
	if err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"email": "a@example.com", "phone": "0900000000"})
	handler := newCustomersHandler(store)
	rec := httptest.NewRecorder()
	handler.Update(rec, requestWithURLParam(t, "PUT", "/api/v1/customers/"+id, "id", id, body))

	assertStatusCode(t, rec, http.StatusOK)

	var resp CustomerResponse
	parseJSONResponse(t, rec, &resp)
	if resp.Email != "a@example.com" || resp.Phone != "0900000000" {
		t.Errorf("unexpected response %+v", resp)
	}
	// Untouched fields survive a partial update.
	if resp.FullName != "A" {
		t.Errorf("FullName = %q, want %q", resp.FullName, "A")
	}
}

func TestCustomersHandler_UpdateEmptyBody(t *testing.T) {
	store := memory.NewStore()
	id, err := store.Insert(context.Background(), &customer.Record{})
	if err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	handler := newCustomersHandler(store)
	rec := httptest.NewRecorder()
	handler.Update(rec, requestWithURLParam(t, "PUT", "/api/v1/customers/"+id, "id", id, []byte("{}")))

	assertStatusCode(t, rec, http.StatusBadRequest)
}

func TestCustomersHandler_SaveIdentity(t *testing.T) {
	store := memory.NewStore()
	handler := newCustomersHandler(store)

	body, _ := json.Marshal(map[string]string{
		"full_name": "NGUYEN VAN A",
		"id_number": "012345678901",
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/customers/identity", bytes.NewReader(body))
	handler.SaveIdentity(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var first CustomerResponse
	parseJSONResponse(t, rec, &first)
	if first.IDNumber != "012345678901" {
		t.Fatalf("IDNumber = %q, want 012345678901", first.IDNumber)
	}

	// Saving the same id number again updates the existing record.
	body, _ = json.Marshal(map[string]string{
		"full_name": "NGUYEN VAN B",
		"id_number": "012345678901",
	})
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/v1/customers/identity", bytes.NewReader(body))
	handler.SaveIdentity(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var second CustomerResponse
	parseJSONResponse(t, rec, &second)
	if second.ID != first.ID {
		t.Errorf("expected dedup onto %s, got %s", first.ID, second.ID)
	}
	if second.FullName != "NGUYEN VAN B" {
		t.Errorf("FullName = %q, want NGUYEN VAN B", second.FullName)
	}
}
