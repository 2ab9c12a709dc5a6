// Package favourites keeps the set of favourited channel ids.
//
// Two stores exist side by side: Local persists opaque catalog ids for the
// anonymous viewer, and Backend reads and toggles the favourites the backend
// tracks for an authenticated principal. They are never reconciled.
package favourites

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/stwalsh4118/streamvault/internal/logger"
	"github.com/stwalsh4118/streamvault/internal/metrics"
)

// Store names used in metrics and logs
const (
	StoreLocal   = "local"
	StoreBackend = "backend"
)

// Store is a favourites set that can be read and toggled
type Store interface {
	IDs(ctx context.Context) (map[string]struct{}, error)
	Toggle(ctx context.Context, id string) (bool, error)
}

// Local is the device-local persisted favourites set
type Local struct {
	mu    sync.RWMutex
	kv    KV
	key   string
	order []string
	ids   map[string]struct{}
}

// LoadLocal reads the set stored under key. Missing or unreadable data yields
// an empty set.
func LoadLocal(ctx context.Context, kv KV, key string) *Local {
	l := &Local{kv: kv, key: key, ids: make(map[string]struct{})}

	raw, err := kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			logger.Log.Warn().Err(err).Str("key", key).Msg("Failed to read favourites, starting empty")
		}
		return l
	}

	var stored []string
	if err := json.Unmarshal(raw, &stored); err != nil {
		logger.Log.Warn().Err(err).Str("key", key).Msg("Discarding corrupt favourites")
		return l
	}

	for _, id := range stored {
		if _, dup := l.ids[id]; dup {
			continue
		}
		l.ids[id] = struct{}{}
		l.order = append(l.order, id)
	}
	return l
}

// Contains reports whether id is a favourite
func (l *Local) Contains(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.ids[id]
	return ok
}

// List returns the favourite ids in the order they were added
func (l *Local) List() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Snapshot returns a copy of the set
func (l *Local) Snapshot() map[string]struct{} {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]struct{}, len(l.ids))
	for id := range l.ids {
		out[id] = struct{}{}
	}
	return out
}

// IDs implements Store. It never fails.
func (l *Local) IDs(ctx context.Context) (map[string]struct{}, error) {
	return l.Snapshot(), nil
}

// Toggle adds id if absent and removes it if present, then writes the whole set
// before returning. Write failures are logged and do not undo the change.
func (l *Local) Toggle(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, present := l.ids[id]
	if present {
		delete(l.ids, id)
		for i, v := range l.order {
			if v == id {
				l.order = append(l.order[:i], l.order[i+1:]...)
				break
			}
		}
	} else {
		l.ids[id] = struct{}{}
		l.order = append(l.order, id)
	}

	metrics.RecordFavouriteToggle(StoreLocal)
	l.persist(ctx)
	return !present, nil
}

// persist must be called with l.mu held
func (l *Local) persist(ctx context.Context) {
	order := l.order
	if order == nil {
		order = []string{}
	}

	data, err := json.Marshal(order)
	if err == nil {
		err = l.kv.Put(ctx, l.key, data)
	}
	if err != nil {
		metrics.FavouritePersistFailures.Inc()
		logger.Log.Error().Err(err).Str("key", l.key).Msg("Failed to persist favourites")
	}
}
