package session

import (
	"context"
)

// Record mirrors a sessions row. Timestamps are unix seconds.
type Record struct {
	ID             string
	SecretHash     []byte
	CreatedAt      int64
	LastVerifiedAt int64
}

func (r Record) session() Session {
	return Session{
		ID:             r.ID,
		SecretHash:     r.SecretHash,
		CreatedAt:      fromUnix(r.CreatedAt),
		LastVerifiedAt: fromUnix(r.LastVerifiedAt),
	}
}

func recordOf(s Session) Record {
	return Record{
		ID:             s.ID,
		SecretHash:     s.SecretHash,
		CreatedAt:      toUnix(s.CreatedAt),
		LastVerifiedAt: toUnix(s.LastVerifiedAt),
	}
}

// Store abstracts persistence for session records.
//
// Each call must be atomic for its row. In particular UpdateLastVerifiedAt
// must never recreate a deleted row and must never move the timestamp
// backwards, so a concurrent refresh and inactivity delete leave the row
// either fresh or absent.
type Store interface {
	// Insert creates a new row. The id must not exist.
	Insert(ctx context.Context, rec Record) error

	// GetByID loads a row, or returns ErrRecordNotFound.
	GetByID(ctx context.Context, id string) (Record, error)

	// UpdateLastVerifiedAt sets last_verified_at = max(last_verified_at, at).
	// It returns ErrRecordNotFound if the row does not exist.
	UpdateLastVerifiedAt(ctx context.Context, id string, at int64) error

	// Delete removes a row. Deleting a missing row is not an error.
	Delete(ctx context.Context, id string) error
}
