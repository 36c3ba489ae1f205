// Package memory provides an in-memory customer store. It backs unit tests
// and lets the server run without a database for local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trungnq/frontdesk/internal/customer"
	"github.com/trungnq/frontdesk/internal/fault"
)

// Store is an in-memory customer.Store. The mutex makes the
// read-modify-write of AppendEmbeddings atomic, so concurrent recognitions
// resolving to the same customer cannot lose updates.
type Store struct {
	mu       sync.RWMutex
	records  map[string]*customer.Record
	truncate customer.TruncatePolicy

	// Error injection for tests.
	InsertError error
	GetError    error
	FindError   error
	UpdateError error
	AppendError error
}

// NewStore creates an empty store with the default keep-oldest policy.
func NewStore() *Store {
	return &Store{
		records:  make(map[string]*customer.Record),
		truncate: customer.KeepOldest,
	}
}

// SetTruncatePolicy overrides the capacity policy used by AppendEmbeddings.
func (s *Store) SetTruncatePolicy(p customer.TruncatePolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.truncate = p
}

func (s *Store) Insert(ctx context.Context, r *customer.Record) (string, error) {
	if s.InsertError != nil {
		return "", fault.Persistence(s.InsertError)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	r.Embeddings = customer.MergeEmbeddings(nil, r.Embeddings, s.truncate)

	clone := cloneRecord(r)
	s.records[r.ID] = &clone
	return r.ID, nil
}

func (s *Store) Get(ctx context.Context, id string) (*customer.Record, error) {
	if s.GetError != nil {
		return nil, fault.Persistence(s.GetError)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, fault.NotFound(id)
	}
	clone := cloneRecord(r)
	return &clone, nil
}

func (s *Store) FindAll(ctx context.Context) ([]customer.Record, error) {
	if s.FindError != nil {
		return nil, fault.Persistence(s.FindError)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]customer.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, cloneRecord(r))
	}
	// Deterministic order for scans and tests.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) FindByIDNumber(ctx context.Context, idNumber string) (*customer.Record, error) {
	if s.FindError != nil {
		return nil, fault.Persistence(s.FindError)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.IDNumber == idNumber {
			clone := cloneRecord(r)
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateFields(ctx context.Context, id string, fields customer.FieldUpdate) error {
	if s.UpdateError != nil {
		return fault.Persistence(s.UpdateError)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return fault.NotFound(id)
	}
	fields.Apply(r)
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) AppendEmbeddings(ctx context.Context, id string, embeddings [][]float32) error {
	if s.AppendError != nil {
		return fault.Persistence(s.AppendError)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return fault.NotFound(id)
	}
	r.Embeddings = customer.MergeEmbeddings(r.Embeddings, cloneEmbeddings(embeddings), s.truncate)
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) AppendFaceImages(ctx context.Context, id string, paths []string) error {
	if s.AppendError != nil {
		return fault.Persistence(s.AppendError)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return fault.NotFound(id)
	}
	r.FaceImages = append(r.FaceImages, paths...)
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func cloneRecord(r *customer.Record) customer.Record {
	clone := *r
	clone.Embeddings = cloneEmbeddings(r.Embeddings)
	clone.FaceImages = append([]string(nil), r.FaceImages...)
	return clone
}

func cloneEmbeddings(embeddings [][]float32) [][]float32 {
	if embeddings == nil {
		return nil
	}
	out := make([][]float32, len(embeddings))
	for i, e := range embeddings {
		out[i] = append([]float32(nil), e...)
	}
	return out
}
