package password

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"
)

// ScryptCost is the tunable work factor for DeriveKey.
// N = 2^LogN; memory use is roughly 128 * N * R bytes.
type ScryptCost struct {
	LogN   uint8
	R      int
	P      int
	KeyLen int
}

// DefaultScryptCost matches the common interactive-login baseline (N=16384, r=8, p=1)
// with a 64-byte output.
func DefaultScryptCost() ScryptCost {
	return ScryptCost{LogN: 14, R: 8, P: 1, KeyLen: 64}
}

func (c ScryptCost) validate() error {
	if c.LogN < 10 || c.LogN > 22 {
		return fmt.Errorf("%w: log_n %d out of range [10..22]", ErrInvalidCost, c.LogN)
	}
	if c.R < 1 || c.R > 32 {
		return fmt.Errorf("%w: r %d out of range [1..32]", ErrInvalidCost, c.R)
	}
	if c.P < 1 || c.P > 16 {
		return fmt.Errorf("%w: p %d out of range [1..16]", ErrInvalidCost, c.P)
	}
	if c.KeyLen < 16 || c.KeyLen > 128 {
		return fmt.Errorf("%w: key_len %d out of range [16..128]", ErrInvalidCost, c.KeyLen)
	}
	return nil
}

// DeriveKey derives a hex-encoded key from password and salt using scrypt.
//
// The password is NFC-normalized first so visually identical input typed on
// different platforms derives the same key. The salt is used as given and
// must be non-empty.
func DeriveKey(password, salt string, cost ScryptCost) (string, error) {
	if salt == "" {
		return "", ErrInvalidSalt
	}
	if err := cost.validate(); err != nil {
		return "", err
	}

	key, err := scrypt.Key(
		[]byte(norm.NFC.String(password)),
		[]byte(salt),
		1<<cost.LogN,
		cost.R,
		cost.P,
		cost.KeyLen,
	)
	if err != nil {
		return "", fmt.Errorf("scrypt: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// NewSalt returns n random bytes, hex-encoded, for use with DeriveKey.
func NewSalt(n int) (string, error) {
	if n < 8 || n > 64 {
		return "", ErrInvalidSalt
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Derive runs the policy check and DeriveKey with the configured cost.
func (c Config) Derive(password, salt string) (string, error) {
	if err := c.Validate(password); err != nil {
		return "", err
	}
	return DeriveKey(password, salt, c.Scrypt)
}
