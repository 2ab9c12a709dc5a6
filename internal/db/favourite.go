package db

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/streamvault/internal/models"
	"gorm.io/gorm"
)

// FavouriteRepository handles database operations for principal-scoped favourites
type FavouriteRepository struct {
	db *DB
}

// NewFavouriteRepository creates a new favourite repository
func NewFavouriteRepository(db *DB) *FavouriteRepository {
	return &FavouriteRepository{db: db}
}

// ListChannelIDs returns the favourited channel ids of a principal, oldest first
func (r *FavouriteRepository) ListChannelIDs(ctx context.Context, principal models.Principal) ([]int64, error) {
	var ids []int64
	result := r.db.WithContext(ctx).
		Model(&models.Favourite{}).
		Where("principal = ?", principal).
		Order("created_at ASC, channel_id ASC").
		Pluck("channel_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list favourites: %w", MapGormError(result.Error))
	}
	return ids, nil
}

// Toggle adds the favourite if absent and removes it if present. It reports
// whether the channel is a favourite afterwards.
func (r *FavouriteRepository) Toggle(ctx context.Context, principal models.Principal, channelID int64) (bool, error) {
	var favourited bool
	err := r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		result := tx.Where("principal = ? AND channel_id = ?", principal, channelID).
			Delete(&models.Favourite{})
		if result.Error != nil {
			return MapGormError(result.Error)
		}
		if result.RowsAffected > 0 {
			favourited = false
			return nil
		}

		if err := tx.Create(&models.Favourite{Principal: principal, ChannelID: channelID}).Error; err != nil {
			return MapGormError(err)
		}
		favourited = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle favourite: %w", err)
	}
	return favourited, nil
}
