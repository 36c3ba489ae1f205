package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/trungnq/frontdesk/internal/customer"
	"github.com/trungnq/frontdesk/internal/fault"
)

// Store implements customer.Store on PostgreSQL. AppendEmbeddings runs
// inside a transaction holding a row lock on the customer, so concurrent
// recognitions resolving to the same customer serialize instead of losing
// updates.
type Store struct {
	pool     *pgxpool.Pool
	truncate customer.TruncatePolicy
}

// NewStore creates a store with the default keep-oldest capacity policy.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, truncate: customer.KeepOldest}
}

// SetTruncatePolicy overrides the capacity policy used by AppendEmbeddings.
func (s *Store) SetTruncatePolicy(p customer.TruncatePolicy) {
	s.truncate = p
}

const recordColumns = `id, full_name, email, phone, id_number, date_of_birth,
	gender, nationality, place_of_origin, place_of_residence, id_image,
	face_images, created_at, updated_at`

func (s *Store) Insert(ctx context.Context, r *customer.Record) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fault.Persistence(err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO customers (id, full_name, email, phone, id_number,
			date_of_birth, gender, nationality, place_of_origin,
			place_of_residence, id_image, face_images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, r.ID, r.FullName, r.Email, r.Phone, r.IDNumber, r.DateOfBirth,
		r.Gender, r.Nationality, r.PlaceOfOrigin, r.PlaceOfResidence,
		r.IDImage, r.FaceImages)
	if err != nil {
		return "", fault.Persistence(err)
	}

	capped := customer.MergeEmbeddings(nil, r.Embeddings, s.truncate)
	if err := insertEmbeddings(ctx, tx, r.ID, 0, capped); err != nil {
		return "", fault.Persistence(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fault.Persistence(err)
	}
	return r.ID, nil
}

func (s *Store) Get(ctx context.Context, id string) (*customer.Record, error) {
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM customers WHERE id = $1", recordColumns), id)

	r, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.NotFound(id)
	}
	if err != nil {
		return nil, fault.Persistence(err)
	}

	if err := s.loadEmbeddings(ctx, map[string]*customer.Record{r.ID: r}); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) FindAll(ctx context.Context) ([]customer.Record, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf("SELECT %s FROM customers ORDER BY id", recordColumns))
	if err != nil {
		return nil, fault.Persistence(err)
	}
	defer rows.Close()

	byID := make(map[string]*customer.Record)
	var order []string
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fault.Persistence(err)
		}
		byID[r.ID] = r
		order = append(order, r.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Persistence(err)
	}

	if err := s.loadEmbeddings(ctx, byID); err != nil {
		return nil, err
	}

	out := make([]customer.Record, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

func (s *Store) FindByIDNumber(ctx context.Context, idNumber string) (*customer.Record, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM customers WHERE id_number = $1 ORDER BY id LIMIT 1
	`, recordColumns), idNumber)

	r, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fault.Persistence(err)
	}

	if err := s.loadEmbeddings(ctx, map[string]*customer.Record{r.ID: r}); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) UpdateFields(ctx context.Context, id string, fields customer.FieldUpdate) error {
	set := "updated_at = NOW()"
	args := []any{id}
	add := func(column string, v *string) {
		if v != nil {
			args = append(args, *v)
			set += fmt.Sprintf(", %s = $%d", column, len(args))
		}
	}
	add("full_name", fields.FullName)
	add("email", fields.Email)
	add("phone", fields.Phone)
	add("id_number", fields.IDNumber)
	add("date_of_birth", fields.DateOfBirth)
	add("gender", fields.Gender)
	add("nationality", fields.Nationality)
	add("place_of_origin", fields.PlaceOfOrigin)
	add("place_of_residence", fields.PlaceOfResidence)
	add("id_image", fields.IDImage)

	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf("UPDATE customers SET %s WHERE id = $1", set), args...)
	if err != nil {
		return fault.Persistence(err)
	}
	if tag.RowsAffected() == 0 {
		return fault.NotFound(id)
	}
	return nil
}

func (s *Store) AppendEmbeddings(ctx context.Context, id string, embeddings [][]float32) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fault.Persistence(err)
	}
	defer tx.Rollback(ctx)

	// Row lock serializes concurrent appends for the same customer.
	var locked string
	err = tx.QueryRow(ctx,
		"SELECT id FROM customers WHERE id = $1 FOR UPDATE", id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return fault.NotFound(id)
	}
	if err != nil {
		return fault.Persistence(err)
	}

	existing, err := readEmbeddings(ctx, tx, id)
	if err != nil {
		return fault.Persistence(err)
	}

	merged := customer.MergeEmbeddings(existing, embeddings, s.truncate)

	// Rewrite the sequence under the held lock: simpler than diffing and
	// the cap keeps it at most MaxFacesPerPerson rows.
	_, err = tx.Exec(ctx, "DELETE FROM customer_embeddings WHERE customer_id = $1", id)
	if err != nil {
		return fault.Persistence(err)
	}
	if err := insertEmbeddings(ctx, tx, id, 0, merged); err != nil {
		return fault.Persistence(err)
	}

	_, err = tx.Exec(ctx, "UPDATE customers SET updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		return fault.Persistence(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fault.Persistence(err)
	}
	return nil
}

func (s *Store) AppendFaceImages(ctx context.Context, id string, paths []string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE customers
		SET face_images = face_images || $2, updated_at = NOW()
		WHERE id = $1
	`, id, paths)
	if err != nil {
		return fault.Persistence(err)
	}
	if tag.RowsAffected() == 0 {
		return fault.NotFound(id)
	}
	return nil
}

// loadEmbeddings populates the Embeddings slice of every record in byID,
// preserving the stored position order.
func (s *Store) loadEmbeddings(ctx context.Context, byID map[string]*customer.Record) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT customer_id, embedding
		FROM customer_embeddings
		WHERE customer_id = ANY($1)
		ORDER BY customer_id, position
	`, ids)
	if err != nil {
		return fault.Persistence(err)
	}
	defer rows.Close()

	for rows.Next() {
		var customerID string
		var vec pgvector.Vector
		if err := rows.Scan(&customerID, &vec); err != nil {
			return fault.Persistence(err)
		}
		if r, ok := byID[customerID]; ok {
			r.Embeddings = append(r.Embeddings, vec.Slice())
		}
	}
	if err := rows.Err(); err != nil {
		return fault.Persistence(err)
	}
	return nil
}

func readEmbeddings(ctx context.Context, tx pgx.Tx, id string) ([][]float32, error) {
	rows, err := tx.Query(ctx, `
		SELECT embedding FROM customer_embeddings
		WHERE customer_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]float32
	for rows.Next() {
		var vec pgvector.Vector
		if err := rows.Scan(&vec); err != nil {
			return nil, err
		}
		out = append(out, vec.Slice())
	}
	return out, rows.Err()
}

func insertEmbeddings(ctx context.Context, tx pgx.Tx, id string, from int, embeddings [][]float32) error {
	for i, e := range embeddings {
		_, err := tx.Exec(ctx, `
			INSERT INTO customer_embeddings (customer_id, position, embedding)
			VALUES ($1, $2, $3)
		`, id, from+i, pgvector.NewVector(e))
		if err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*customer.Record, error) {
	var r customer.Record
	err := row.Scan(&r.ID, &r.FullName, &r.Email, &r.Phone, &r.IDNumber,
		&r.DateOfBirth, &r.Gender, &r.Nationality, &r.PlaceOfOrigin,
		&r.PlaceOfResidence, &r.IDImage, &r.FaceImages,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
