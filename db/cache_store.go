// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/wayfare/auth"
	"github.com/danielhkuo/wayfare/syncer"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS cache_entry (
    kind TEXT NOT NULL,
    id TEXT NOT NULL DEFAULT '',
    data TEXT NOT NULL,
    version BIGINT NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (kind, id)
);

CREATE TABLE IF NOT EXISTS client_session (
    slot INTEGER PRIMARY KEY CHECK (slot = 1),
    user_id TEXT NOT NULL,
    email TEXT NOT NULL,
    token TEXT NOT NULL,
    signed_in_at TIMESTAMP NOT NULL
);
`

// ErrStaleRecord is returned by Save when the stored record has a newer
// version than the one being written. The stored record is kept.
var ErrStaleRecord = errors.New("stored cache record is newer")

// CacheStore persists confirmed client cache values and the signed-in
// session. It implements syncer.Persister.
type CacheStore struct {
	db *sql.DB
}

var _ syncer.Persister = (*CacheStore)(nil)

// NewCacheStore creates the cache tables if needed.
func NewCacheStore(db *sql.DB) (*CacheStore, error) {
	if _, err := db.Exec(cacheSchema); err != nil {
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}
	return &CacheStore{db: db}, nil
}

func (s *CacheStore) LoadAll(ctx context.Context) ([]syncer.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, id, data, version, updated_at
		FROM cache_entry
		ORDER BY kind, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache entries: %w", err)
	}
	defer rows.Close()

	var recs []syncer.Record
	for rows.Next() {
		var (
			kind, id, data string
			version        int64
			rec            syncer.Record
		)
		if err := rows.Scan(&kind, &id, &data, &version, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		rec.Key = syncer.Entity(syncer.Kind(kind), id)
		rec.Data = []byte(data)
		rec.Version = uint64(version)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Save upserts rec unless a newer version is already stored, in which case
// it returns ErrStaleRecord.
func (s *CacheStore) Save(ctx context.Context, rec syncer.Record) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entry (kind, id, data, version, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (kind, id) DO UPDATE SET
			data = excluded.data,
			version = excluded.version,
			updated_at = excluded.updated_at
		WHERE excluded.version >= cache_entry.version
	`, string(rec.Key.Kind), rec.Key.ID, string(rec.Data), int64(rec.Version), rec.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save cache entry %s: %w", rec.Key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("cache entry %s version %d: %w", rec.Key, rec.Version, ErrStaleRecord)
	}
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, key syncer.Key) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cache_entry WHERE kind = $1 AND id = $2`,
		string(key.Kind), key.ID)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry %s: %w", key, err)
	}
	return nil
}

// Clear removes every cached value.
func (s *CacheStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entry`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// SaveSession stores id as the signed-in identity, replacing any other.
func (s *CacheStore) SaveSession(ctx context.Context, id auth.Identity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO client_session (slot, user_id, email, token, signed_in_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (slot) DO UPDATE SET
			user_id = excluded.user_id,
			email = excluded.email,
			token = excluded.token,
			signed_in_at = excluded.signed_in_at
	`, id.UserID, id.Email, id.Token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession returns the stored identity. ok is false when nobody is
// signed in.
func (s *CacheStore) LoadSession(ctx context.Context) (id auth.Identity, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT user_id, email, token FROM client_session WHERE slot = 1
	`).Scan(&id.UserID, &id.Email, &id.Token)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Identity{}, false, nil
	}
	if err != nil {
		return auth.Identity{}, false, fmt.Errorf("failed to load session: %w", err)
	}
	return id, true, nil
}

func (s *CacheStore) ClearSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM client_session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
