package authapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

// Config controls session API transport behavior.
type Config struct {
	MaxBodyBytes int64

	// CookieTransport also returns credentials as cookies on create.
	CookieTransport bool
	TokenCookieName string
	ClaimCookieName string
	ClaimHeaderName string

	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite
}

// DefaultConfig returns the defaults used when no env is set.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:    1 << 16,
		CookieTransport: true,
		TokenCookieName: "session",
		ClaimCookieName: "session_claim",
		ClaimHeaderName: "X-Session-Claim",
		CookiePath:      "/",
		CookieSecure:    true,
		CookieSameSite:  http.SameSiteLaxMode,
	}
}

// LoadConfigFromEnv loads API config from environment variables with safe defaults.
func LoadConfigFromEnv() Config {
	def := DefaultConfig()
	cfg := Config{
		MaxBodyBytes:    envInt64("TESSERA_AUTH_MAX_BODY_BYTES", def.MaxBodyBytes),
		CookieTransport: envBool("TESSERA_AUTH_COOKIE_TRANSPORT", def.CookieTransport),
		TokenCookieName: envString("TESSERA_AUTH_TOKEN_COOKIE_NAME", def.TokenCookieName),
		ClaimCookieName: envString("TESSERA_AUTH_CLAIM_COOKIE_NAME", def.ClaimCookieName),
		ClaimHeaderName: envString("TESSERA_AUTH_CLAIM_HEADER", def.ClaimHeaderName),
		CookiePath:      envString("TESSERA_AUTH_COOKIE_PATH", def.CookiePath),
		CookieDomain:    envString("TESSERA_AUTH_COOKIE_DOMAIN", ""),
		CookieSecure:    envBool("TESSERA_AUTH_COOKIE_SECURE", def.CookieSecure),
		CookieSameSite:  parseSameSite(envString("TESSERA_AUTH_COOKIE_SAMESITE", "lax")),
	}

	// The two cookies must never collide.
	if cfg.ClaimCookieName == cfg.TokenCookieName {
		cfg.ClaimCookieName = cfg.TokenCookieName + "_claim"
	}
	// Browsers drop SameSite=None cookies that are not Secure.
	if cfg.CookieSameSite == http.SameSiteNoneMode {
		cfg.CookieSecure = true
	}

	return cfg
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	case "default":
		return http.SameSiteDefaultMode
	default:
		return http.SameSiteLaxMode
	}
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
