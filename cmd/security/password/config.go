package password

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy controls password validation and anti-DoS boundaries.
type Policy struct {
	MinLength int
	MaxLength int
	// If true, enable an extra, minimal weak-pattern rejection.
	RejectVeryWeak bool
}

// Config is the single configuration surface for this package.
type Config struct {
	Argon2 Argon2idParams
	Scrypt ScryptCost
	Policy Policy
}

// DefaultConfig returns a strong baseline for interactive logins.
func DefaultConfig() Config {
	// Parallelism follows the CPU count, clamped to [1..4] so containers stay predictable.
	threads := min(max(runtime.NumCPU(), 1), 4)

	return Config{
		Argon2: Argon2idParams{
			MemoryKiB:   64 * 1024, // 64 MiB
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4].
			SaltLength:  16,
			KeyLength:   32,
		},
		Scrypt: DefaultScryptCost(),
		Policy: Policy{
			MinLength: 12,
			MaxLength: 256,
		},
	}
}

// FromEnv loads config from environment variables.
//
// Env surface:
//   - TESSERA_PASSWORD_MIN_LEN
//   - TESSERA_PASSWORD_MAX_LEN
//   - TESSERA_PASSWORD_REJECT_VERY_WEAK (true/false)
//   - TESSERA_ARGON2_MEMORY_KIB
//   - TESSERA_ARGON2_ITERATIONS
//   - TESSERA_ARGON2_PARALLELISM
//   - TESSERA_ARGON2_SALT_LEN
//   - TESSERA_ARGON2_KEY_LEN
//   - TESSERA_SCRYPT_LOG_N
//   - TESSERA_SCRYPT_R
//   - TESSERA_SCRYPT_P
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	ints := []struct {
		key      string
		min, max int
		dst      *int
	}{
		{"TESSERA_PASSWORD_MIN_LEN", 1, 1024, &cfg.Policy.MinLength},
		{"TESSERA_PASSWORD_MAX_LEN", 1, 4096, &cfg.Policy.MaxLength},
		{"TESSERA_SCRYPT_R", 1, 32, &cfg.Scrypt.R},
		{"TESSERA_SCRYPT_P", 1, 16, &cfg.Scrypt.P},
	}
	for _, it := range ints {
		v, ok := os.LookupEnv(it.key)
		if !ok {
			continue
		}
		n, err := parseBounded(v, uint64(it.min), uint64(it.max))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", it.key, err)
		}
		*it.dst = int(n) // #nosec G115 -- bounded above.
	}

	u32s := []struct {
		key      string
		min, max uint64
		dst      *uint32
	}{
		{"TESSERA_ARGON2_MEMORY_KIB", 8 * 1024, 1024 * 1024, &cfg.Argon2.MemoryKiB}, // 8 MiB .. 1 GiB
		{"TESSERA_ARGON2_ITERATIONS", 1, 20, &cfg.Argon2.Iterations},
		{"TESSERA_ARGON2_SALT_LEN", 8, 64, &cfg.Argon2.SaltLength},
		{"TESSERA_ARGON2_KEY_LEN", 16, 64, &cfg.Argon2.KeyLength},
	}
	for _, it := range u32s {
		v, ok := os.LookupEnv(it.key)
		if !ok {
			continue
		}
		n, err := parseBounded(v, it.min, it.max)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", it.key, err)
		}
		*it.dst = uint32(n) // #nosec G115 -- bounded above.
	}

	if v, ok := os.LookupEnv("TESSERA_ARGON2_PARALLELISM"); ok {
		n, err := parseBounded(v, 1, math.MaxUint8)
		if err != nil {
			return Config{}, fmt.Errorf("TESSERA_ARGON2_PARALLELISM: %w", err)
		}
		cfg.Argon2.Parallelism = uint8(n) // #nosec G115 -- bounded above.
	}

	if v, ok := os.LookupEnv("TESSERA_SCRYPT_LOG_N"); ok {
		n, err := parseBounded(v, 10, 22)
		if err != nil {
			return Config{}, fmt.Errorf("TESSERA_SCRYPT_LOG_N: %w", err)
		}
		cfg.Scrypt.LogN = uint8(n) // #nosec G115 -- bounded above.
	}

	if v, ok := os.LookupEnv("TESSERA_PASSWORD_REJECT_VERY_WEAK"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("TESSERA_PASSWORD_REJECT_VERY_WEAK: invalid boolean")
		}
		cfg.Policy.RejectVeryWeak = b
	}

	if cfg.Policy.MinLength > cfg.Policy.MaxLength {
		return Config{}, fmt.Errorf(
			"password policy invalid: min_len(%d) > max_len(%d)",
			cfg.Policy.MinLength,
			cfg.Policy.MaxLength,
		)
	}

	return cfg, nil
}

func parseBounded(s string, minVal, maxVal uint64) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer")
	}
	if n < minVal || n > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return n, nil
}
