// Package postgres implements the customer store on PostgreSQL with
// pgvector columns for face embeddings.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FaceEmbeddingDim is the fixed dimension of face embeddings produced by
// the external embedding engine (512 for ArcFace/buffalo_l models).
const FaceEmbeddingDim = 512

// Connect creates a connection pool from a PostgreSQL URL.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Migrate creates the customer tables and the pgvector extension.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS customers (
			id                 VARCHAR(64) PRIMARY KEY,
			full_name          TEXT NOT NULL DEFAULT '',
			email              TEXT NOT NULL DEFAULT '',
			phone              TEXT NOT NULL DEFAULT '',
			id_number          TEXT NOT NULL DEFAULT '',
			date_of_birth      TEXT NOT NULL DEFAULT '',
			gender             TEXT NOT NULL DEFAULT '',
			nationality        TEXT NOT NULL DEFAULT '',
			place_of_origin    TEXT NOT NULL DEFAULT '',
			place_of_residence TEXT NOT NULL DEFAULT '',
			id_image           TEXT NOT NULL DEFAULT '',
			face_images        TEXT[] NOT NULL DEFAULT '{}',
			created_at         TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at         TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create customers table: %w", err)
	}

	createEmbeddings := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS customer_embeddings (
			id           BIGSERIAL PRIMARY KEY,
			customer_id  VARCHAR(64) NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
			position     INTEGER NOT NULL,
			embedding    vector(%d) NOT NULL,
			created_at   TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE(customer_id, position)
		)
	`, FaceEmbeddingDim)

	_, err = pool.Exec(ctx, createEmbeddings)
	if err != nil {
		return fmt.Errorf("failed to create customer_embeddings table: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS customer_embeddings_customer_idx
		ON customer_embeddings(customer_id)
	`)
	if err != nil {
		return fmt.Errorf("failed to create customer_embeddings index: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS customers_id_number_idx ON customers(id_number)
	`)
	if err != nil {
		return fmt.Errorf("failed to create id_number index: %w", err)
	}

	return nil
}
