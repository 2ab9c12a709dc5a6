package db

import (
	"context"
	"fmt"
	"time"

	"github.com/stwalsh4118/streamvault/internal/models"
	"gorm.io/gorm/clause"
)

// KVRepository stores small documents under string keys
type KVRepository struct {
	db *DB
}

// NewKVRepository creates a new key/value repository
func NewKVRepository(db *DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get returns the value stored under key, or ErrNotFound
func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.KVEntry
	result := r.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return entry.Value, nil
}

// Put stores value under key, replacing any previous value
func (r *KVRepository) Put(ctx context.Context, key string, value []byte) error {
	entry := &models.KVEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(entry)
	if result.Error != nil {
		return fmt.Errorf("failed to put %s: %w", key, MapGormError(result.Error))
	}
	return nil
}
