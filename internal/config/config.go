package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Vocabulary: optional TOML extension file and catalog seeding.
	VocabFile   string
	SeedCatalog bool

	// Request limits
	MaxBatch           int
	RateLimit          int
	CORSAllowedOrigins []string

	// Selector lookup cache
	SelectorCacheSize int

	// Lint workers
	LintWorkers int

	// Webhook callback delivery
	CallbackTimeout time.Duration

	// Background worker poll intervals
	RequeueInterval time.Duration
	StaleJobAfter   time.Duration
	AuditInterval   time.Duration
	AuditRecheck    time.Duration

	// Logging: optional rotating file sink next to stderr.
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		VocabFile:   getEnv("VOCAB_FILE", ""),
		SeedCatalog: getBool("SEED_CATALOG", true),

		MaxBatch:           getInt("MAX_BATCH", 1000),
		RateLimit:          getInt("RATE_LIMIT", 100),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		SelectorCacheSize: getInt("SELECTOR_CACHE_SIZE", 4096),

		LintWorkers: getInt("LINT_WORKERS", 5),

		CallbackTimeout: getDuration("CALLBACK_TIMEOUT", 10*time.Second),

		RequeueInterval: getDuration("REQUEUE_INTERVAL", 30*time.Second),
		StaleJobAfter:   getDuration("STALE_JOB_AFTER", 2*time.Minute),
		AuditInterval:   getDuration("AUDIT_INTERVAL", 10*time.Minute),
		AuditRecheck:    getDuration("AUDIT_RECHECK", 24*time.Hour),

		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getInt("LOG_MAX_AGE_DAYS", 30),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
