package session

import (
	"context"
	"errors"
	"sync"
)

// MemoryStore is a dev-only Store used when no database is configured.
// All methods hold one mutex, which makes every call atomic.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]Record
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]Record)}
}

// Insert stores a copy of rec.
func (s *MemoryStore) Insert(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.ID == "" {
		return errors.New("memory store: empty id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rows[rec.ID]; exists {
		return errors.New("memory store: duplicate id")
	}
	rec.SecretHash = append([]byte(nil), rec.SecretHash...)
	s.rows[rec.ID] = rec
	return nil
}

// GetByID returns a copy of the row.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.rows[id]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	rec.SecretHash = append([]byte(nil), rec.SecretHash...)
	return rec, nil
}

// UpdateLastVerifiedAt moves last_verified_at forward.
func (s *MemoryStore) UpdateLastVerifiedAt(ctx context.Context, id string, at int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.rows[id]
	if !ok {
		return ErrRecordNotFound
	}
	if at > rec.LastVerifiedAt {
		rec.LastVerifiedAt = at
		s.rows[id] = rec
	}
	return nil
}

// Delete removes the row if present.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rows, id)
	return nil
}

// Len returns the number of stored rows.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
