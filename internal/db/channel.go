// Package db provides database connection management and repository interfaces.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/stwalsh4118/streamvault/internal/models"
)

// ChannelRepository handles database operations for backend channels
type ChannelRepository struct {
	db *DB
}

// NewChannelRepository creates a new channel repository
func NewChannelRepository(db *DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// Create inserts a new channel into the database
func (r *ChannelRepository) Create(ctx context.Context, channel *models.BackendChannel) error {
	result := r.db.WithContext(ctx).Create(channel)
	if result.Error != nil {
		return fmt.Errorf("failed to create channel: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a channel by its id
func (r *ChannelRepository) GetByID(ctx context.Context, id int64) (*models.BackendChannel, error) {
	var channel models.BackendChannel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&channel)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &channel, nil
}

// List retrieves all channels in insertion order
func (r *ChannelRepository) List(ctx context.Context) ([]models.BackendChannel, error) {
	var channels []models.BackendChannel
	result := r.db.WithContext(ctx).Order("id ASC").Find(&channels)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list channels: %w", MapGormError(result.Error))
	}
	return channels, nil
}

// Update updates an existing channel
func (r *ChannelRepository) Update(ctx context.Context, channel *models.BackendChannel) error {
	channel.UpdatedAt = time.Now().UTC()

	// Select forces zero values such as an emptied language to be written
	result := r.db.WithContext(ctx).
		Where("id = ?", channel.ID).
		Select("name", "stream_url", "language", "country", "thumbnail_url", "updated_at").
		Updates(channel)
	if result.Error != nil {
		return fmt.Errorf("failed to update channel: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a channel by its id (cascades to favourites and playlist membership)
func (r *ChannelRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.BackendChannel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete channel: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
