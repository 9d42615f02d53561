package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv_store (
	key TEXT PRIMARY KEY,
	value JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore keeps snapshots in a single key/value table.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore instantiates a PostgreSQL-backed store.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the kv_store table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, kvSchema); err != nil {
		return storageFailure(err, "create kv_store table")
	}
	return nil
}

// Get fetches the value stored under key.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv_store WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, keyNotFound(key)
		}
		return nil, storageFailure(err, "select %s", key)
	}
	return value, nil
}

// Put upserts the value under key. The payload is sent as text; lib/pq would
// encode a []byte parameter as bytea.
func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	const query = `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := s.db.ExecContext(ctx, query, key, string(value)); err != nil {
		return storageFailure(err, "upsert %s", key)
	}
	return nil
}
