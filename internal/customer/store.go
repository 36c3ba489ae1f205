// Package customer defines the customer record model and the store contract
// implemented by the postgres and memory backends.
package customer

import "context"

// Store is the persistence contract for customer records.
// Read methods return fault.ErrNotFound (wrapped) for missing records;
// backend failures surface as fault.ErrPersistence.
type Store interface {
	// Insert stores a new record and returns its generated id.
	Insert(ctx context.Context, r *Record) (string, error)

	// Get retrieves a record by id.
	Get(ctx context.Context, id string) (*Record, error)

	// FindAll returns all records. The matcher scans this corpus read-only.
	FindAll(ctx context.Context) ([]Record, error)

	// FindByIDNumber returns the record with the given national id number,
	// or nil when none exists. Used for dedup on the identity-save path.
	FindByIDNumber(ctx context.Context, idNumber string) (*Record, error)

	// UpdateFields applies a partial identity update and bumps updated_at.
	UpdateFields(ctx context.Context, id string, fields FieldUpdate) error

	// AppendEmbeddings appends new embeddings to a record, applying the
	// capacity policy atomically per customer. Existing vectors keep their
	// insertion order. Not idempotent: repeated calls grow the record
	// again while capacity allows.
	AppendEmbeddings(ctx context.Context, id string, embeddings [][]float32) error

	// AppendFaceImages appends stored face image references to a record.
	AppendFaceImages(ctx context.Context, id string, paths []string) error
}
