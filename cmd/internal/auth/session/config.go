package session

import (
	"encoding/hex"
	"os"
	"strings"
	"time"
)

const (
	// DefaultActivityCheckInterval bounds how often validation writes last_verified_at.
	DefaultActivityCheckInterval = time.Hour
	// DefaultInactivityTimeout is the idle time after which a session is purged on access.
	DefaultInactivityTimeout = 24 * time.Hour
	// DefaultClaimTTL is the lifetime of a signed claim.
	DefaultClaimTTL = 60 * time.Second
	// DefaultClaimKeyID is used when TESSERA_CLAIM_KEY_ID is not set.
	DefaultClaimKeyID = "k1"

	minClaimKeyBytes = 32
)

// Config defines all runtime configuration for the session subsystem.
type Config struct {
	// ActivityCheckInterval is the idle time a successful validation must
	// exceed before it refreshes last_verified_at.
	ActivityCheckInterval time.Duration

	// InactivityTimeout is the idle time which, once exceeded, gets a session
	// deleted on its next lookup.
	InactivityTimeout time.Duration

	// ClaimTTL is the lifetime of signed claims.
	ClaimTTL time.Duration

	// ClaimKeyID names the key used to sign new claims.
	ClaimKeyID string

	// ClaimKeyHex is the hex-encoded HMAC-SHA256 signing key (>= 32 bytes).
	ClaimKeyHex string

	// ClaimVerifyKeys holds retired keys still accepted for verification,
	// as "kid=hex,kid=hex".
	ClaimVerifyKeys string
}

// DefaultConfig returns the reference policy. It carries no signing key.
func DefaultConfig() Config {
	return Config{
		ActivityCheckInterval: DefaultActivityCheckInterval,
		InactivityTimeout:     DefaultInactivityTimeout,
		ClaimTTL:              DefaultClaimTTL,
		ClaimKeyID:            DefaultClaimKeyID,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - TESSERA_CLAIM_KEY_HEX
//
// Optional (durations must be valid Go duration strings):
//   - TESSERA_SESSION_ACTIVITY_CHECK_INTERVAL
//   - TESSERA_SESSION_INACTIVITY_TIMEOUT
//   - TESSERA_CLAIM_TTL
//   - TESSERA_CLAIM_KEY_ID
//   - TESSERA_CLAIM_VERIFY_KEYS
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"TESSERA_SESSION_ACTIVITY_CHECK_INTERVAL", &cfg.ActivityCheckInterval},
		{"TESSERA_SESSION_INACTIVITY_TIMEOUT", &cfg.InactivityTimeout},
		{"TESSERA_CLAIM_TTL", &cfg.ClaimTTL},
	}
	for _, d := range durations {
		v := strings.TrimSpace(os.Getenv(d.key))
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed <= 0 {
			return Config{}, ErrConfig
		}
		*d.dst = parsed
	}

	if v := strings.TrimSpace(os.Getenv("TESSERA_CLAIM_KEY_ID")); v != "" {
		cfg.ClaimKeyID = v
	}
	cfg.ClaimKeyHex = strings.TrimSpace(os.Getenv("TESSERA_CLAIM_KEY_HEX"))
	cfg.ClaimVerifyKeys = strings.TrimSpace(os.Getenv("TESSERA_CLAIM_VERIFY_KEYS"))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the policy invariants and decodes the claim keys once.
func (c Config) Validate() error {
	if c.ActivityCheckInterval <= 0 || c.InactivityTimeout <= 0 || c.ClaimTTL <= 0 {
		return ErrConfig
	}
	// A refresh interval at or beyond the idle timeout would let sessions
	// expire between two permitted refreshes.
	if c.ActivityCheckInterval >= c.InactivityTimeout {
		return ErrConfig
	}
	_, err := c.ClaimKeys()
	return err
}

// ClaimKeys decodes the signing key and any verify-only keys into a key set.
func (c Config) ClaimKeys() (ClaimKeySet, error) {
	kid := strings.TrimSpace(c.ClaimKeyID)
	if kid == "" {
		return ClaimKeySet{}, ErrConfig
	}
	active, err := decodeClaimKey(c.ClaimKeyHex)
	if err != nil {
		return ClaimKeySet{}, err
	}

	keys := map[string][]byte{kid: active}
	if c.ClaimVerifyKeys != "" {
		for _, pair := range strings.Split(c.ClaimVerifyKeys, ",") {
			id, raw, ok := strings.Cut(strings.TrimSpace(pair), "=")
			id = strings.TrimSpace(id)
			if !ok || id == "" {
				return ClaimKeySet{}, ErrConfig
			}
			if _, dup := keys[id]; dup {
				return ClaimKeySet{}, ErrConfig
			}
			k, err := decodeClaimKey(raw)
			if err != nil {
				return ClaimKeySet{}, err
			}
			keys[id] = k
		}
	}

	return ClaimKeySet{ActiveKID: kid, Keys: keys}, nil
}

func decodeClaimKey(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil || len(b) < minClaimKeyBytes {
		return nil, ErrConfig
	}
	return b, nil
}
