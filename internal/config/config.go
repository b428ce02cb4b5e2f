// Package config loads typed runtime settings from the environment and an optional .env file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	domainPayroll "studio/internal/domain/payroll"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Defaults
const (
	DefaultAddr          = ":8080"
	DefaultDBPath        = "studio.db"
	DefaultEmailFrom     = "Studio <noreply@studio.local>"
	DefaultSlowQueryMs   = 50
	DefaultSlowRequestMs = 200
)

var (
	ErrInvalidCSRFKey   = errors.New("STUDIO_CSRF_KEY must be 64 hex characters (32 bytes)")
	ErrMissingCSRFKey   = errors.New("STUDIO_CSRF_KEY is required in production")
	ErrInvalidFeeRate   = errors.New("STUDIO_FEE_RATE must be a number between 0 and 1")
	ErrInvalidFeeFixed  = errors.New("STUDIO_FEE_FIXED_CENTS must be a non-negative integer")
	ErrInvalidLogLevel  = errors.New("STUDIO_LOG_LEVEL must be one of: debug, info, warn, error")
	ErrInvalidThreshold = errors.New("slow thresholds must be positive integers (milliseconds)")
)

// Config is the full set of runtime settings.
type Config struct {
	Env         string
	Addr        string
	DBPath      string
	LogLevel    slog.Level
	CSRFKey     []byte // nil means generate one per process (development only)
	ResendKey   string
	EmailFrom   string
	Fees        domainPayroll.FeePolicy
	SlowQuery   time.Duration
	SlowRequest time.Duration
}

// IsProduction reports whether the service runs with production safeguards.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads .env (when present) and then the process environment.
// PRE: none
// POST: Returns a fully defaulted Config or the first invalid setting
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from any key lookup, which keeps parsing testable.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := Config{
		Env:       get("STUDIO_ENV", EnvDevelopment),
		Addr:      get("STUDIO_ADDR", DefaultAddr),
		DBPath:    get("STUDIO_DB_PATH", DefaultDBPath),
		ResendKey: get("STUDIO_RESEND_KEY", ""),
		EmailFrom: get("STUDIO_EMAIL_FROM", DefaultEmailFrom),
		Fees:      domainPayroll.DefaultFeePolicy,
	}

	level, err := parseLevel(get("STUDIO_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	if keyHex := get("STUDIO_CSRF_KEY", ""); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return Config{}, ErrInvalidCSRFKey
		}
		cfg.CSRFKey = key
	} else if cfg.IsProduction() {
		return Config{}, ErrMissingCSRFKey
	}

	if v := get("STUDIO_FEE_RATE", ""); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil || rate < 0 || rate > 1 {
			return Config{}, ErrInvalidFeeRate
		}
		cfg.Fees.Rate = rate
	}
	if v := get("STUDIO_FEE_FIXED_CENTS", ""); v != "" {
		fixed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || fixed < 0 {
			return Config{}, ErrInvalidFeeFixed
		}
		cfg.Fees.FixedCents = fixed
	}

	if cfg.SlowQuery, err = millis(get("STUDIO_SLOW_QUERY_MS", ""), DefaultSlowQueryMs); err != nil {
		return Config{}, err
	}
	if cfg.SlowRequest, err = millis(get("STUDIO_SLOW_REQUEST_MS", ""), DefaultSlowRequestMs); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewLogger builds the process logger: JSON in production, text elsewhere.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, ErrInvalidLogLevel
}

func millis(v string, fallback int) (time.Duration, error) {
	if v == "" {
		return time.Duration(fallback) * time.Millisecond, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, ErrInvalidThreshold
	}
	return time.Duration(n) * time.Millisecond, nil
}
