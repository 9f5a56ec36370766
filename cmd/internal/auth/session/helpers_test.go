package session

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tessera/cmd/security/token"
)

var testKeyHex = strings.Repeat("ab", 32)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ClaimKeyHex = testKeyHex
	return cfg
}

func newTestService(t *testing.T, store Store, opts ...Option) *Service {
	t.Helper()

	svc, err := NewService(testConfig(), store, token.NewHasher(nil), opts...)
	require.NoError(t, err)
	return svc
}

func newTestCodec(t *testing.T) *ClaimCodec {
	t.Helper()

	keys, err := testConfig().ClaimKeys()
	require.NoError(t, err)
	codec, err := NewClaimCodec(keys, DefaultClaimTTL)
	require.NoError(t, err)
	return codec
}

func mustCreate(t *testing.T, svc *Service, now time.Time) Created {
	t.Helper()

	created, err := svc.Create(context.Background(), now)
	require.NoError(t, err)
	return created
}

// countingStore records how often each method is called and can inject errors.
type countingStore struct {
	Store

	gets    atomic.Int64
	updates atomic.Int64
	deletes atomic.Int64

	getErr    error
	updateErr error
	deleteErr error
}

func (s *countingStore) GetByID(ctx context.Context, id string) (Record, error) {
	s.gets.Add(1)
	if s.getErr != nil {
		return Record{}, s.getErr
	}
	return s.Store.GetByID(ctx, id)
}

func (s *countingStore) UpdateLastVerifiedAt(ctx context.Context, id string, at int64) error {
	s.updates.Add(1)
	if s.updateErr != nil {
		return s.updateErr
	}
	return s.Store.UpdateLastVerifiedAt(ctx, id, at)
}

func (s *countingStore) Delete(ctx context.Context, id string) error {
	s.deletes.Add(1)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.Store.Delete(ctx, id)
}

var errBoom = errors.New("boom")
