// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration for the mock API server and the
client CLI.

# Mock API Server

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Fields:

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite file or PostgreSQL URL (default: file:wayfare-mock.db)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - TokenSalt: Secret for bearer token HMAC (required)
  - SeedDemo: Insert demo destinations and vouchers

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	TOKEN_SALT    → --token-salt
	SEED_DEMO     → --seed

CLI flags take precedence over environment variables.

# Client

ClientConfig is filled from flags by the CLI, then Resolve fills the rest
from the environment:

	WAYFARE_ENV            development | test | production
	WAYFARE_API_URL        explicit base URL, overrides WAYFARE_ENV
	WAYFARE_TIMEOUT        request timeout (Go duration, default 30s)
	WAYFARE_CACHE_DB       cache database; empty keeps the cache in memory
	WAYFARE_CACHE_DB_TYPE  sqlite or postgres (default sqlite)

ResolveBaseURL maps an environment to its origin plus APIVersionPath:

	base, _ := cliparse.ResolveBaseURL("production")
	// https://api.wayfare.travel/api/v1

# Dotenv

LoadDotEnv reads .env files before flags are parsed. Existing environment
variables win over file values.
*/
package cliparse
