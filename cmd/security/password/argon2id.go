package password

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"tessera/cmd/security/token"

	"golang.org/x/crypto/argon2"
)

const phcVersion = argon2.Version // 0x13 (19)

var phcB64 = base64.RawStdEncoding

// Hash hashes a password with Argon2id and returns the encoded form
// $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<hash_b64>.
func (c Config) Hash(password string) (string, error) {
	if err := c.Validate(password); err != nil {
		return "", err
	}

	p := c.Argon2
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.MemoryKiB, p.Parallelism, p.KeyLength)
	return encodePHC(p, salt, key), nil
}

// Verify checks password against an encoded hash.
// Returns (true, nil) on match, (false, nil) on mismatch and
// (false, ErrInvalidHash) when the encoded hash is malformed or its
// parameters fall outside what this process is willing to compute.
func (c Config) Verify(encoded, password string) (bool, error) {
	got, salt, want, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}
	if !got.within(c.Argon2) {
		return false, ErrInvalidHash
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		got.Iterations,
		got.MemoryKiB,
		got.Parallelism,
		uint32(len(want)), // #nosec G115 -- bounded by within().
	)
	return token.Equal(key, want), nil
}

func encodePHC(p Argon2idParams, salt, key []byte) string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		phcVersion,
		p.MemoryKiB,
		p.Iterations,
		p.Parallelism,
		phcB64.EncodeToString(salt),
		phcB64.EncodeToString(key),
	)
}

// decodePHC treats encoded as untrusted input.
func decodePHC(encoded string) (Argon2idParams, []byte, []byte, error) {
	fail := func() (Argon2idParams, []byte, []byte, error) {
		return Argon2idParams{}, nil, nil, ErrInvalidHash
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return fail()
	}
	if parts[2] != fmt.Sprintf("v=%d", phcVersion) {
		return fail()
	}

	var mem, iter, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iter, &par); err != nil {
		return fail()
	}
	if mem == 0 || iter == 0 || par == 0 || par > 255 {
		return fail()
	}

	salt, err := phcB64.DecodeString(parts[4])
	if err != nil {
		return fail()
	}
	key, err := phcB64.DecodeString(parts[5])
	if err != nil {
		return fail()
	}

	return Argon2idParams{
		MemoryKiB:   mem,
		Iterations:  iter,
		Parallelism: uint8(par),        // #nosec G115 -- checked <= 255 above.
		SaltLength:  uint32(len(salt)), // #nosec G115 -- bounded by input length.
		KeyLength:   uint32(len(key)),  // #nosec G115 -- bounded by input length.
	}, salt, key, nil
}

// within allows hashes produced with older/smaller settings but rejects
// wildly larger ones, so an attacker-supplied hash cannot pin a CPU.
func (got Argon2idParams) within(limits Argon2idParams) bool {
	switch {
	case got.MemoryKiB > limits.MemoryKiB*2:
		return false
	case got.Iterations > limits.Iterations*2:
		return false
	case got.Parallelism > limits.Parallelism*2:
		return false
	case got.SaltLength < 8 || got.SaltLength > 64:
		return false
	case got.KeyLength < 16 || got.KeyLength > 128:
		return false
	}
	return true
}
