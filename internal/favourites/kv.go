package favourites

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by a KV when nothing is stored under the key
var ErrKeyNotFound = errors.New("key not found")

// KV persists a single document under a string key
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
