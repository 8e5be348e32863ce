// Package config loads process settings from COACHHUB_* environment variables,
// optionally seeded from a .env file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix.
const Prefix = "COACHHUB"

// Identity providers.
const (
	ProviderLocal    = "local"
	ProviderSupabase = "supabase"
)

// Config errors
var (
	ErrMissingCSRFKey   = errors.New("COACHHUB_CSRF_KEY must be 64 hex characters in production")
	ErrMissingJWTSecret = errors.New("COACHHUB_JWT_SECRET is required in production")
	ErrUnknownProvider  = errors.New("COACHHUB_IDENTITY_PROVIDER must be local or supabase")
	ErrSupabaseConfig   = errors.New("supabase provider needs SUPABASE_URL, SUPABASE_ANON_KEY, SUPABASE_SERVICE_KEY and SUPABASE_JWT_SECRET")
)

// Config is the whole process configuration.
type Config struct {
	Env      string `envconfig:"ENV" default:"development"`
	Addr     string `envconfig:"ADDR" default:":8080"`
	DBPath   string `envconfig:"DB_PATH" default:"coachhub.db"`
	BaseURL  string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	Timezone string `envconfig:"TIMEZONE" default:"UTC"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	CSRFKey   string        `envconfig:"CSRF_KEY"`
	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"60m"`

	IdentityProvider   string `envconfig:"IDENTITY_PROVIDER" default:"local"`
	SupabaseURL        string `envconfig:"SUPABASE_URL"`
	SupabaseAnonKey    string `envconfig:"SUPABASE_ANON_KEY"`
	SupabaseServiceKey string `envconfig:"SUPABASE_SERVICE_KEY"`
	SupabaseJWTSecret  string `envconfig:"SUPABASE_JWT_SECRET"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@coachhub.local"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	ResendKey string `envconfig:"RESEND_KEY"`
	EmailFrom string `envconfig:"EMAIL_FROM" default:"CoachHub <bookings@coachhub.local>"`
	ReplyTo   string `envconfig:"REPLY_TO"`

	TwilioAccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFrom       string `envconfig:"TWILIO_FROM"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"coachhub.events"`

	RedisURL string `envconfig:"REDIS_URL"`

	RateLimit     float64 `envconfig:"RATE_LIMIT" default:"20"`
	SlowQueryMs   int     `envconfig:"SLOW_QUERY_MS" default:"50"`
	SlowRequestMs int     `envconfig:"SLOW_REQUEST_MS" default:"500"`
}

// Load reads .env (when present) and then the environment.
// Variables already set in the environment win over .env.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	return c, nil
}

// IsProduction reports whether Env is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate enforces the settings the chosen mode depends on.
func (c Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.IdentityProvider {
	case ProviderLocal:
	case ProviderSupabase:
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" || c.SupabaseServiceKey == "" || c.SupabaseJWTSecret == "" {
			return ErrSupabaseConfig
		}
	default:
		return ErrUnknownProvider
	}
	if c.IsProduction() {
		if _, err := c.CSRFKeyBytes(); err != nil {
			return err
		}
		if c.IdentityProvider == ProviderLocal && c.JWTSecret == "" {
			return ErrMissingJWTSecret
		}
	}
	return nil
}

// Location loads the marketplace time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("COACHHUB_TIMEZONE: %w", err)
	}
	return loc, nil
}

// CSRFKeyBytes decodes the 32-byte CSRF key.
func (c Config) CSRFKeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(c.CSRFKey)
	if err != nil || len(key) != 32 {
		return nil, ErrMissingCSRFKey
	}
	return key, nil
}

// SlogLevel maps LogLevel to a slog level; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger builds the process logger: JSON in production, text otherwise.
func (c Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
