// Package config reads server and CLI settings from the environment. A .env
// file in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds every setting the API server needs.
type Config struct {
	Port           string        `env:"PORT"            envDefault:"3000"`
	DBDriver       string        `env:"DB_DRIVER"       envDefault:"postgres"`
	DBURL          string        `env:"DB_URL"`
	SQLitePath     string        `env:"SQLITE_PATH"     envDefault:"calorie-tracker.db"`
	OpenAIKey      string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string        `env:"OPENAI_BASE_URL"`
	OpenAIModel    string        `env:"OPENAI_MODEL"    envDefault:"gpt-4o-mini"`
	PredictTimeout time.Duration `env:"PREDICT_TIMEOUT" envDefault:"20s"`
	GinMode        string        `env:"GIN_MODE"        envDefault:"debug"`
	TrustedProxies []string      `env:"TRUSTED_PROXIES" envSeparator:","`
}

// Load reads .env (if any) and then the environment. Variables already set in
// the environment win over .env values.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	return cfg, cfg.Validate()
}

// Validate checks combinations env tags cannot express.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres:
		if c.DBURL == "" {
			return errors.New("DB_URL is required for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DBDriver)
	}
	if c.PredictTimeout <= 0 {
		return errors.New("PREDICT_TIMEOUT must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
