package session

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSchema creates the sessions table used by PostgresStore.
// Production deployments apply it through their migration tooling.
const PostgresSchema = `
CREATE SCHEMA IF NOT EXISTS tessera;
CREATE TABLE IF NOT EXISTS tessera.sessions (
	id               text   PRIMARY KEY,
	secret_hash      bytea  NOT NULL,
	created_at       bigint NOT NULL,
	last_verified_at bigint NOT NULL,
	CONSTRAINT sessions_verified_after_created CHECK (last_verified_at >= created_at)
);
`

// PostgresStore implements Store using PostgreSQL (tessera.sessions).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed session store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// CreateSchema applies PostgresSchema. It is idempotent.
func (s *PostgresStore) CreateSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, PostgresSchema)
	return err
}

// Insert inserts a new session row.
func (s *PostgresStore) Insert(ctx context.Context, rec Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tessera.sessions (id, secret_hash, created_at, last_verified_at)
		VALUES ($1, $2, $3, $4)
	`, rec.ID, rec.SecretHash, rec.CreatedAt, rec.LastVerifiedAt)
	return err
}

// GetByID loads a session row by ID.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (Record, error) {
	var rec Record

	err := s.pool.QueryRow(ctx, `
		SELECT id, secret_hash, created_at, last_verified_at
		FROM tessera.sessions
		WHERE id = $1
	`, id).Scan(
		&rec.ID,
		&rec.SecretHash,
		&rec.CreatedAt,
		&rec.LastVerifiedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, err
	}

	return rec, nil
}

// UpdateLastVerifiedAt moves last_verified_at forward (never backwards).
func (s *PostgresStore) UpdateLastVerifiedAt(ctx context.Context, id string, at int64) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tessera.sessions
		SET last_verified_at = GREATEST(last_verified_at, $2)
		WHERE id = $1
	`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete removes a session row (idempotent).
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM tessera.sessions WHERE id = $1`, id)
	return err
}
