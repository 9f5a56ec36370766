// Package session implements tessera's session lifecycle.
//
// A session is created with two independent random strings: a public id and
// a secret. The client receives "<id>.<secret>" exactly once; the store keeps
// only a digest of the secret. Validation splits the token, looks the id up,
// purges the record if it has been idle longer than the inactivity timeout,
// compares digests in constant time and, at most once per activity-check
// interval, moves last_verified_at forward.
//
// Expiry is lazy: nothing sweeps the store in the background. The effective
// idle timeout is InactivityTimeout ± ActivityCheckInterval.
//
// ClaimCodec mints short-lived HS256 claims that let a caller skip the store
// lookup. They are an optimization only: Authenticator tries the claim first
// and falls back to the token. A claim stays valid until its own expiry even
// if the session is revoked in the meantime; the claim lifetime bounds that
// window.
//
// Every authentication failure is reported as ErrUnauthenticated. Store
// failures are reported as *StoreError and match ErrStoreUnavailable.
package session
