package sqlxkv

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/sahayak/core"
)

const (
	getQuery    = `SELECT value FROM kv_store WHERE key = $1`
	setQuery    = `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, now()) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteQuery = `DELETE FROM kv_store WHERE key = $1`
)

// Store keeps values in the kv_store table (see database.Migrate).
type Store struct {
	db sqlx.ExtContext
}

var _ core.KVStore = (*Store)(nil) // interface compliance check

func New(db sqlx.ExtContext) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := sqlx.GetContext(ctx, s.db, &value, getQuery, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrKeyNotFound
		}
		return nil, errors.Wrapf(err, "selecting %s", key)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	if _, err := s.db.ExecContext(ctx, setQuery, key, value); err != nil {
		return errors.Wrapf(err, "upserting %s", key)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteQuery, key); err != nil {
		return errors.Wrapf(err, "deleting %s", key)
	}
	return nil
}
