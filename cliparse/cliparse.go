// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// APIVersionPath is appended to every environment origin.
const APIVersionPath = "/api/v1"

// Deployment environments
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

var origins = map[string]string{
	EnvDevelopment: "http://localhost:3318",
	EnvTest:        "http://localhost:3319",
	EnvProduction:  "https://api.wayfare.travel",
}

// ResolveBaseURL maps a deployment environment to the API base URL
func ResolveBaseURL(env string) (string, error) {
	origin, ok := origins[strings.ToLower(strings.TrimSpace(env))]
	if !ok {
		return "", fmt.Errorf("unknown environment %q (want development, test or production)", env)
	}
	return origin + APIVersionPath, nil
}

// LoadDotEnv loads .env style files into the process environment.
// Missing files are skipped; variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Config is the mock API server configuration.
type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	TokenSalt    string
	SeedDemo     bool
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("wayfare-mockapi", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.BoolVar(&cfg.SeedDemo, "seed", false, "Insert demo destinations and vouchers")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.TokenSalt, "token-salt", "", "Bearer token salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType != "sqlite" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "file:wayfare-mock.db"
	}

	if !cfg.SeedDemo {
		cfg.SeedDemo = os.Getenv("SEED_DEMO") == "true"
	}

	// Secrets - MUST be provided
	if cfg.TokenSalt == "" {
		cfg.TokenSalt = os.Getenv("TOKEN_SALT")
	}
	if cfg.TokenSalt == "" {
		return Config{}, errors.New("TOKEN_SALT required")
	}

	return cfg, nil
}

// ClientConfig configures the API client, its cache, and the CLI.
type ClientConfig struct {
	Env         string
	BaseURL     string
	Timeout     time.Duration
	Credentials bool
	CacheDB     string
	CacheDBType string
	Verbose     bool
}

// Resolve fills unset fields from WAYFARE_* environment variables and
// defaults. Values already set (from flags) take precedence.
func (c *ClientConfig) Resolve() error {
	if c.Env == "" {
		c.Env = os.Getenv("WAYFARE_ENV")
		if c.Env == "" {
			c.Env = EnvDevelopment
		}
	}

	if c.BaseURL == "" {
		c.BaseURL = os.Getenv("WAYFARE_API_URL")
	}
	if c.BaseURL == "" {
		base, err := ResolveBaseURL(c.Env)
		if err != nil {
			return err
		}
		c.BaseURL = base
	}

	if c.Timeout == 0 {
		if raw := os.Getenv("WAYFARE_TIMEOUT"); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("invalid WAYFARE_TIMEOUT: %w", err)
			}
			c.Timeout = d
		} else {
			c.Timeout = 30 * time.Second
		}
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}

	if c.CacheDB == "" {
		c.CacheDB = os.Getenv("WAYFARE_CACHE_DB")
	}
	if c.CacheDBType == "" {
		c.CacheDBType = os.Getenv("WAYFARE_CACHE_DB_TYPE")
		if c.CacheDBType == "" {
			c.CacheDBType = "sqlite"
		}
	}

	return nil
}
