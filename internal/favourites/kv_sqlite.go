package favourites

import (
	"context"

	"github.com/stwalsh4118/streamvault/internal/db"
)

// SQLiteKV stores documents in the kv_entries table
type SQLiteKV struct {
	repo *db.KVRepository
}

// NewSQLiteKV creates a KV over the key/value repository
func NewSQLiteKV(repo *db.KVRepository) *SQLiteKV {
	return &SQLiteKV{repo: repo}
}

func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.repo.Get(ctx, key)
	if db.IsNotFound(err) {
		return nil, ErrKeyNotFound
	}
	return value, err
}

func (s *SQLiteKV) Put(ctx context.Context, key string, value []byte) error {
	return s.repo.Put(ctx, key, value)
}
