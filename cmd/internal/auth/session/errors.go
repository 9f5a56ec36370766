package session

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is the single outcome for malformed credentials,
	// unknown ids, secret or signature mismatches and expired sessions or claims.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrStoreUnavailable is matched by every *StoreError.
	ErrStoreUnavailable = errors.New("session store unavailable")

	// ErrRecordNotFound is returned by Store implementations when no row matches.
	// It never leaves this package's Service.
	ErrRecordNotFound = errors.New("session record not found")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)

// StoreError wraps a persistence failure. Callers should treat it as
// "could not determine", not as "not authenticated".
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreUnavailable.Error(), e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStoreUnavailable, e.Err} }
