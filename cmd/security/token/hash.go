package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"os"
	"strings"
)

const (
	// HMACEnvKey is the env var name for the token HMAC secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	HMACEnvKey = "TESSERA_TOKEN_HMAC_KEY"

	// DigestSize is the fixed length of every secret digest.
	DigestSize = sha256.Size
)

// Hasher digests session secrets for storage and comparison.
// The zero value hashes with plain SHA-256.
type Hasher struct {
	key []byte
}

// NewHasher returns a Hasher. A non-empty key switches to HMAC-SHA256.
func NewHasher(key []byte) Hasher {
	if len(key) == 0 {
		return Hasher{}
	}
	k := make([]byte, len(key))
	copy(k, key)
	return Hasher{key: k}
}

// HasherFromEnv builds a Hasher from TESSERA_TOKEN_HMAC_KEY.
// If the env var is blank it falls back to SHA-256 (dev mode).
func HasherFromEnv() Hasher {
	key := strings.TrimSpace(os.Getenv(HMACEnvKey))
	if key == "" {
		return Hasher{}
	}
	return NewHasher([]byte(key))
}

// Keyed reports whether the hasher runs in HMAC mode.
func (h Hasher) Keyed() bool { return len(h.key) > 0 }

// Digest returns the 32-byte digest of secret.
func (h Hasher) Digest(secret []byte) []byte {
	var m hash.Hash
	if h.Keyed() {
		m = hmac.New(sha256.New, h.key)
	} else {
		m = sha256.New()
	}
	_, _ = m.Write(secret)
	return m.Sum(nil)
}

// DigestString is Digest for string secrets.
func (h Hasher) DigestString(secret string) []byte {
	return h.Digest([]byte(secret))
}

// DigestHex returns the hex encoding of Digest(secret).
func (h Hasher) DigestHex(secret string) string {
	return hex.EncodeToString(h.DigestString(secret))
}

// HMACKeyFromEnv returns the configured HMAC key bytes (trimmed), enforcing a minimum byte length.
// If the env var is missing/blank -> ErrHMACKeyMissing.
// If too short -> ErrHMACKeyTooShort.
func HMACKeyFromEnv(minBytes int) ([]byte, error) {
	raw := strings.TrimSpace(os.Getenv(HMACEnvKey))
	if raw == "" {
		return nil, ErrHMACKeyMissing
	}
	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return nil, ErrHMACKeyTooShort
	}
	return b, nil
}
