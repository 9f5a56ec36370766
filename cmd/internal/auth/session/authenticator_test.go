package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *countingStore) {
	t.Helper()

	store := &countingStore{Store: NewMemoryStore()}
	return NewAuthenticator(newTestService(t, store), newTestCodec(t)), store
}

func TestAuthenticate_ClaimFastPath(t *testing.T) {
	auth, store := newTestAuthenticator(t)
	created := mustCreate(t, auth.Service(), t0)
	claim, _, err := auth.Codec().Mint(created.Session, t0)
	require.NoError(t, err)

	res, err := auth.Authenticate(context.Background(), t0.Add(time.Second), Credentials{Claim: claim, Token: created.Token})
	require.NoError(t, err)
	assert.Equal(t, SourceClaim, res.Source)
	assert.Equal(t, created.Session.ID, res.Session.ID)
	assert.Empty(t, res.Claim)
	assert.EqualValues(t, 0, store.gets.Load())
}

func TestAuthenticate_FallbackMintsClaim(t *testing.T) {
	auth, store := newTestAuthenticator(t)
	created := mustCreate(t, auth.Service(), t0)
	now := t0.Add(5 * time.Minute)

	for name, claim := range map[string]string{"no claim": "", "bad claim": "x.y.z"} {
		t.Run(name, func(t *testing.T) {
			res, err := auth.Authenticate(context.Background(), now, Credentials{Claim: claim, Token: created.Token})
			require.NoError(t, err)
			assert.Equal(t, SourceToken, res.Source)
			assert.Equal(t, created.Session.Public(), res.Session)
			assert.Equal(t, now.Add(DefaultClaimTTL), res.ClaimExpiresAt)

			v, err := auth.Codec().Verify(res.Claim, now)
			require.NoError(t, err)
			assert.Equal(t, created.Session.ID, v.ID)
		})
	}
	assert.EqualValues(t, 2, store.gets.Load())
}

func TestAuthenticate_ExpiredClaimFallsBack(t *testing.T) {
	auth, _ := newTestAuthenticator(t)
	created := mustCreate(t, auth.Service(), t0)
	claim, _, err := auth.Codec().Mint(created.Session, t0)
	require.NoError(t, err)

	res, err := auth.Authenticate(context.Background(), t0.Add(2*time.Minute), Credentials{Claim: claim, Token: created.Token})
	require.NoError(t, err)
	assert.Equal(t, SourceToken, res.Source)
}

func TestAuthenticate_Failures(t *testing.T) {
	auth, _ := newTestAuthenticator(t)
	ctx := context.Background()

	_, err := auth.Authenticate(ctx, t0, Credentials{})
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = auth.Authenticate(ctx, t0, Credentials{Claim: "bogus"})
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = auth.Authenticate(ctx, t0, Credentials{Token: "bogus"})
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthenticate_RequestCache(t *testing.T) {
	auth, store := newTestAuthenticator(t)
	created := mustCreate(t, auth.Service(), t0)
	cred := Credentials{Token: created.Token}

	ctx := WithRequestCache(context.Background())
	for i := 0; i < 3; i++ {
		_, err := auth.Authenticate(ctx, t0, cred)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, store.gets.Load())
	assert.Equal(t, 1, RequestCacheFrom(ctx).Len())

	// Failures are memoized too.
	bad := Credentials{Token: "nope"}
	_, err := auth.Authenticate(ctx, t0, bad)
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = auth.Authenticate(ctx, t0, bad)
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, 2, RequestCacheFrom(ctx).Len())

	// A new request gets a new cache.
	_, err = auth.Authenticate(WithRequestCache(context.Background()), t0, cred)
	require.NoError(t, err)
	assert.EqualValues(t, 2, store.gets.Load())
}

func TestAuthenticate_StoreErrorsNotCached(t *testing.T) {
	auth, store := newTestAuthenticator(t)
	created := mustCreate(t, auth.Service(), t0)
	cred := Credentials{Token: created.Token}
	ctx := WithRequestCache(context.Background())

	store.getErr = errBoom
	_, err := auth.Authenticate(ctx, t0, cred)
	require.ErrorIs(t, err, ErrStoreUnavailable)

	store.getErr = nil
	_, err = auth.Authenticate(ctx, t0, cred)
	require.NoError(t, err)
}

func TestRequestCacheFrom_Absent(t *testing.T) {
	assert.Nil(t, RequestCacheFrom(context.Background()))
	assert.Equal(t, 0, RequestCacheFrom(context.Background()).Len())
}
