// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to SQLite ("sqlite") or PostgreSQL ("postgres") and pings it.
// SQLite connections enable foreign keys and use a single connection so
// that ":memory:" databases are shared by every query.
func Open(dbType, url string) (*sql.DB, error) {
	var driver string
	switch dbType {
	case "sqlite":
		driver = "sqlite"
		if !strings.Contains(url, "_pragma=") {
			sep := "?"
			if strings.Contains(url, "?") {
				sep = "&"
			}
			url += sep + "_pragma=foreign_keys(1)"
		}
	case "postgres":
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}
	if dbType == "sqlite" {
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dbType, err)
	}
	return conn, nil
}

// CreateSchema creates all tables needed for the mock API.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Statements are limited to the subset shared by SQLite and PostgreSQL.
const schema = `
-- Users
CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    home_city TEXT NOT NULL DEFAULT '',
    currency TEXT NOT NULL DEFAULT 'USD',
    created_at TIMESTAMP NOT NULL
);

-- Destinations (tags are comma separated)
CREATE TABLE IF NOT EXISTS destination (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    country TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    rating REAL NOT NULL DEFAULT 0,
    tags TEXT NOT NULL DEFAULT ''
);

-- Saved (favorited) destinations
CREATE TABLE IF NOT EXISTS saved_destination (
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    destination_id TEXT NOT NULL REFERENCES destination(id) ON DELETE CASCADE,
    saved_at TIMESTAMP NOT NULL,
    PRIMARY KEY (user_id, destination_id)
);

-- Itineraries
CREATE TABLE IF NOT EXISTS itinerary (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    destination_id TEXT NOT NULL REFERENCES destination(id),
    title TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'planned' CHECK (status IN ('planned', 'active', 'completed')),
    start_date TIMESTAMP NOT NULL,
    end_date TIMESTAMP NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_itinerary_user_id ON itinerary(user_id);

-- Wallets
CREATE TABLE IF NOT EXISTS wallet (
    user_id TEXT PRIMARY KEY REFERENCES app_user(id) ON DELETE CASCADE,
    balance_minor BIGINT NOT NULL DEFAULT 0,
    currency TEXT NOT NULL DEFAULT 'USD',
    updated_at TIMESTAMP NOT NULL
);

-- Vouchers (single use)
CREATE TABLE IF NOT EXISTS voucher (
    code TEXT PRIMARY KEY,
    amount_minor BIGINT NOT NULL CHECK (amount_minor > 0),
    redeemed_by TEXT REFERENCES app_user(id),
    redeemed_at TIMESTAMP
);

-- Wallet ledger
CREATE TABLE IF NOT EXISTS wallet_transaction (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    kind TEXT NOT NULL,
    amount_minor BIGINT NOT NULL,
    reference TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_wallet_transaction_user_id ON wallet_transaction(user_id);
`
