package app

import (
	"fmt"
	"strings"
	"time"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string // json | pretty | text
	LogColor  bool

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// Store selects the session backend. Empty means postgres when
	// DatabaseURL is set and memory otherwise.
	Store       string
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	SQLiteDSN   string

	// AutoMigrate creates the sessions table at startup.
	AutoMigrate bool

	// If true, /readyz returns 503 unless a durable store is configured and reachable.
	ReadinessRequireDB bool

	// If true, TESSERA_TOKEN_HMAC_KEY MUST be set (>= 32 bytes) and secret
	// digests are HMAC-based.
	RequireTokenHMAC bool

	MetricsEnabled bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("TESSERA_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("TESSERA_LOG_LEVEL", "info"),
		LogFormat: EnvString("TESSERA_LOG_FORMAT", "json"),
		LogColor:  EnvBool("TESSERA_LOG_COLOR", false),

		ReadHeaderTimeout: EnvDuration("TESSERA_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("TESSERA_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("TESSERA_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("TESSERA_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("TESSERA_HTTP_MAX_HEADER_BYTES", 1<<20),

		Store:       strings.ToLower(EnvString("TESSERA_STORE", "")),
		DatabaseURL: EnvString("TESSERA_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("TESSERA_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("TESSERA_DB_MIN_CONNS", 0),
		SQLiteDSN:   EnvString("TESSERA_SQLITE_DSN", "file:tessera.db?cache=shared"),

		AutoMigrate: EnvBool("TESSERA_AUTO_MIGRATE", false),

		ReadinessRequireDB: EnvBool("TESSERA_READINESS_REQUIRE_DB", false),

		RequireTokenHMAC: EnvBool("TESSERA_REQUIRE_TOKEN_HMAC", false),

		MetricsEnabled: EnvBool("TESSERA_METRICS_ENABLED", true),
	}
}

// StoreKind resolves the effective store backend.
func (c Config) StoreKind() (string, error) {
	switch c.Store {
	case "":
		if c.DatabaseURL != "" {
			return StorePostgres, nil
		}
		return StoreMemory, nil
	case StoreMemory, StoreSQLite:
		return c.Store, nil
	case StorePostgres:
		if c.DatabaseURL == "" {
			return "", fmt.Errorf("config: TESSERA_STORE=postgres requires TESSERA_DATABASE_URL")
		}
		return StorePostgres, nil
	default:
		return "", fmt.Errorf("config: unknown TESSERA_STORE %q", c.Store)
	}
}
