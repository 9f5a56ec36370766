// Package token provides the primitives behind tessera session tokens.
//
// It is the single source of truth for:
//   - identifier/secret generation (Generate): 24 symbols over a 32-symbol
//     alphabet without look-alike characters, 120 bits from crypto/rand.
//   - secret digests for storage (Hasher): SHA-256, or HMAC-SHA256 when a
//     server-side key is configured. Output is always 32 bytes.
//   - timing-safe comparison (Equal).
//
// Environment:
//   - TESSERA_TOKEN_HMAC_KEY: when set, enables HMAC mode.
//
// Policy:
//   - If TESSERA_REQUIRE_TOKEN_HMAC=true, callers MUST enforce a minimum key
//     size (>= 32 bytes) and MUST use HMAC (no SHA fallback).
package token
