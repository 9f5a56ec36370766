package app

import (
	"errors"

	"tessera/cmd/security/token"
)

const minTokenHMACKeyBytes = 32

// NewTokenHasher builds the secret hasher and enforces the HMAC policy.
//
// With RequireTokenHMAC set, startup fails unless TESSERA_TOKEN_HMAC_KEY is
// present and long enough. Without it, a configured key is still used and an
// absent key falls back to plain SHA-256.
func NewTokenHasher(cfg Config) (token.Hasher, error) {
	if !cfg.RequireTokenHMAC {
		return token.HasherFromEnv(), nil
	}

	// Bytes, not runes: the key is used as raw bytes.
	key, err := token.HMACKeyFromEnv(minTokenHMACKeyBytes)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrHMACKeyMissing):
			return token.Hasher{}, errors.New("security policy: TESSERA_REQUIRE_TOKEN_HMAC=true but TESSERA_TOKEN_HMAC_KEY is missing")
		case errors.Is(err, token.ErrHMACKeyTooShort):
			return token.Hasher{}, errors.New("security policy: TESSERA_REQUIRE_TOKEN_HMAC=true but TESSERA_TOKEN_HMAC_KEY is too short (min 32 bytes)")
		default:
			return token.Hasher{}, err
		}
	}

	h := token.NewHasher(key)
	if !h.Keyed() {
		return token.Hasher{}, errors.New("security policy: TESSERA_REQUIRE_TOKEN_HMAC=true but token hasher is not in HMAC mode")
	}
	return h, nil
}
