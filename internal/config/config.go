// Package config loads service settings from the environment and league
// settings from YAML.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is populated from environment variables
type Config struct {
	Port        string
	GRPCPort    string
	Environment string // development, staging, production

	DBDriver    string // memory, sqlite, postgres
	SQLiteFile  string
	DatabaseURL string

	NATSURL     string
	NATSSubject string

	ClickHouseAddr     string
	ClickHouseDB       string
	ClickHouseUser     string
	ClickHousePassword string

	OIDCBaseURL      string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	CORSAllowOrigins []string

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	LeagueFile   string
	PlayersFile  string
	FixturesFile string
	DraftSeed    uint64
	ADPRefresh   time.Duration
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	c := &Config{
		Port:        envOr("PORT", "3000"),
		GRPCPort:    envOr("GRPC_PORT", "50051"),
		Environment: envOr("ENVIRONMENT", "development"),

		DBDriver:    envOr("DB_DRIVER", "memory"),
		SQLiteFile:  envOr("SQLITE_FILE", "dev.sqlite"),
		DatabaseURL: envOr("DATABASE_URL", ""),

		NATSURL:     envOr("NATS_URL", "nats://localhost:4222"),
		NATSSubject: envOr("NATS_SUBJECT", "draft.events"),

		ClickHouseAddr:     envOr("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDB:       envOr("CLICKHOUSE_DB", "default"),
		ClickHouseUser:     envOr("CLICKHOUSE_USER", "default"),
		ClickHousePassword: envOr("CLICKHOUSE_PASSWORD", ""),

		OIDCBaseURL:      envOr("OIDC_BASE_URL", ""),
		OIDCClientID:     envOr("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: envOr("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  envOr("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		LeagueFile:   envOr("LEAGUE_FILE", ""),
		PlayersFile:  envOr("PLAYERS_FILE", ""),
		FixturesFile: envOr("FIXTURES_FILE", ""),
		DraftSeed:    envUint("DRAFT_SEED", 0),
		ADPRefresh:   time.Duration(envInt("ADP_REFRESH_MINUTES", 5)) * time.Minute,
	}

	switch c.DBDriver {
	case "memory", "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q (valid: memory, sqlite, postgres)", c.DBDriver)
	}
	if !c.IsDevelopment() && (c.OIDCBaseURL == "" || c.OIDCClientID == "" || c.OIDCClientSecret == "") {
		return nil, fmt.Errorf("OIDC_BASE_URL, OIDC_CLIENT_ID and OIDC_CLIENT_SECRET are required outside development")
	}
	return c, nil
}

// IsDevelopment reports whether in-process stand-ins replace NATS,
// ClickHouse and the identity provider
func (c *Config) IsDevelopment() bool {
	return c.Environment == "" || c.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envUint(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
