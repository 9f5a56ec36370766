package session

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// sessionModel is the Bun model for the sessions table.
type sessionModel struct {
	bun.BaseModel `bun:"table:sessions"`

	ID             string `bun:"id,pk"`
	SecretHash     []byte `bun:"secret_hash,notnull"`
	CreatedAt      int64  `bun:"created_at,notnull"`
	LastVerifiedAt int64  `bun:"last_verified_at,notnull"`
}

// SQLStore implements Store on top of Bun. It is used with SQLite in
// single-node deployments and works with any dialect Bun supports.
type SQLStore struct {
	db bun.IDB
}

// NewSQLStore creates a Bun-backed session store.
func NewSQLStore(db bun.IDB) *SQLStore {
	return &SQLStore{db: db}
}

// CreateSchema creates the sessions table if it does not exist.
func (s *SQLStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*sessionModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// Insert inserts a new session row.
func (s *SQLStore) Insert(ctx context.Context, rec Record) error {
	m := sessionModel{
		ID:             rec.ID,
		SecretHash:     rec.SecretHash,
		CreatedAt:      rec.CreatedAt,
		LastVerifiedAt: rec.LastVerifiedAt,
	}
	_, err := s.db.NewInsert().Model(&m).Exec(ctx)
	return err
}

// GetByID loads a session row by ID.
func (s *SQLStore) GetByID(ctx context.Context, id string) (Record, error) {
	var m sessionModel
	err := s.db.NewSelect().
		Model(&m).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:             m.ID,
		SecretHash:     m.SecretHash,
		CreatedAt:      m.CreatedAt,
		LastVerifiedAt: m.LastVerifiedAt,
	}, nil
}

// UpdateLastVerifiedAt moves last_verified_at forward (never backwards).
func (s *SQLStore) UpdateLastVerifiedAt(ctx context.Context, id string, at int64) error {
	expr := "last_verified_at = MAX(last_verified_at, ?)"
	if s.db.Dialect().Name() == dialect.PG {
		expr = "last_verified_at = GREATEST(last_verified_at, ?)"
	}

	res, err := s.db.NewUpdate().
		Model((*sessionModel)(nil)).
		Set(expr, at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete removes a session row (idempotent).
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.NewDelete().
		Model((*sessionModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
