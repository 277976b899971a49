// Package config loads server configuration from the environment.
//
// A .env file in the working directory is read first when present
// (development convenience); real environment variables always win.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DevJWTSecret is the JWT_SECRET default. It is refused in production.
const DevJWTSecret = "dev_secret_change_me"

// Root word selection modes.
const (
	ModeRandom = "random"
	ModeDaily  = "daily"
)

// Config holds all server configuration.
type Config struct {
	Port         string `env:"PORT" envDefault:"5175"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	Env          string `env:"APP_ENV" envDefault:"development"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // json | console

	JWTSecret       string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresHours int    `env:"JWT_EXPIRES_HOURS" envDefault:"24"`

	Language          string        `env:"GAME_LANGUAGE" envDefault:"en"`
	StartWordsFile    string        `env:"WORDS_START_FILE"`
	DictionaryFile    string        `env:"DICTIONARY_FILE"`
	DictionaryDB      string        `env:"DICTIONARY_DB"`
	DictionaryTimeout time.Duration `env:"DICTIONARY_TIMEOUT" envDefault:"2s"`

	RootWordMode string `env:"ROOT_WORD_MODE" envDefault:"random"`
	DailySalt    string `env:"DAILY_SALT" envDefault:"local_dev_salt"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"2h"`
}

// Load reads .env (if any) and parses the environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the current environment without touching .env.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.RootWordMode {
	case ModeRandom, ModeDaily:
	default:
		return fmt.Errorf("config: ROOT_WORD_MODE must be %q or %q, got %q", ModeRandom, ModeDaily, c.RootWordMode)
	}
	if c.IsProduction() && c.JWTSecret == DevJWTSecret {
		return fmt.Errorf("config: JWT_SECRET must be set when APP_ENV=production")
	}
	if c.JWTExpiresHours <= 0 {
		return fmt.Errorf("config: JWT_EXPIRES_HOURS must be positive, got %d", c.JWTExpiresHours)
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Addr returns the listen address.
func (c *Config) Addr() string { return ":" + c.Port }

// TokenTTL returns the lifetime of session tokens.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiresHours) * time.Hour
}
