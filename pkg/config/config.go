// Package config loads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendGorm = "gorm"
	BackendBun  = "bun"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	RouterMux       = "mux"
	RouterBunRouter = "bunrouter"
)

// Config holds the runtime settings of the json-server API
type Config struct {
	Addr      string `env:"ADDR" envDefault:":8080"`
	APIPrefix string `env:"API_PREFIX" envDefault:"/api"`

	// DBBackend selects the ORM behind the common.Database adapter
	DBBackend string `env:"DB_BACKEND" envDefault:"gorm"`
	DBDriver  string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN     string `env:"DB_DSN" envDefault:"raspec.db"`

	Router string `env:"ROUTER" envDefault:"mux"`

	CORSAllowOrigin string `env:"CORS_ALLOW_ORIGIN" envDefault:"*"`

	LogDev bool `env:"LOG_DEV" envDefault:"true"`
	SQLLog bool `env:"SQL_LOG" envDefault:"false"`
}

// Prefix is prepended to every variable name
const Prefix = "RASPEC_"

// Load reads the given .env files (missing files are skipped) and parses the
// RASPEC_* environment variables into a Config.
func Load(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: Prefix}); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings
func (c *Config) Validate() error {
	c.DBBackend = strings.ToLower(c.DBBackend)
	c.DBDriver = strings.ToLower(c.DBDriver)
	c.Router = strings.ToLower(c.Router)

	switch c.DBBackend {
	case BackendGorm, BackendBun:
	default:
		return fmt.Errorf("config: unknown %sDB_BACKEND %q", Prefix, c.DBBackend)
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unknown %sDB_DRIVER %q", Prefix, c.DBDriver)
	}
	switch c.Router {
	case RouterMux, RouterBunRouter:
	default:
		return fmt.Errorf("config: unknown %sROUTER %q", Prefix, c.Router)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("config: %sDB_DSN must not be empty", Prefix)
	}
	return nil
}
