package db

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/streamvault/internal/models"
	"gorm.io/gorm"
)

// PlaylistRepository handles database operations for playlists and their channel membership
type PlaylistRepository struct {
	db *DB
}

// NewPlaylistRepository creates a new playlist repository
func NewPlaylistRepository(db *DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new, empty playlist
func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	result := r.db.WithContext(ctx).Create(playlist)
	if result.Error != nil {
		return fmt.Errorf("failed to create playlist: %w", MapGormError(result.Error))
	}
	playlist.ChannelIDs = []int64{}
	return nil
}

// GetByID retrieves a playlist with its channel ids in position order
func (r *PlaylistRepository) GetByID(ctx context.Context, id int64) (*models.Playlist, error) {
	var playlist models.Playlist
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&playlist)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}

	members, err := r.channelIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	playlist.ChannelIDs = members[id]
	if playlist.ChannelIDs == nil {
		playlist.ChannelIDs = []int64{}
	}
	return &playlist, nil
}

// ListByOwner retrieves the playlists of a principal with their channel ids
func (r *PlaylistRepository) ListByOwner(ctx context.Context, owner models.Principal) ([]models.Playlist, error) {
	var playlists []models.Playlist
	result := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("id ASC").
		Find(&playlists)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", MapGormError(result.Error))
	}
	if len(playlists) == 0 {
		return playlists, nil
	}

	ids := make([]int64, len(playlists))
	for i := range playlists {
		ids[i] = playlists[i].ID
	}
	members, err := r.channelIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range playlists {
		playlists[i].ChannelIDs = members[playlists[i].ID]
		if playlists[i].ChannelIDs == nil {
			playlists[i].ChannelIDs = []int64{}
		}
	}
	return playlists, nil
}

func (r *PlaylistRepository) channelIDs(ctx context.Context, playlistIDs []int64) (map[int64][]int64, error) {
	var rows []models.PlaylistChannel
	result := r.db.WithContext(ctx).
		Where("playlist_id IN ?", playlistIDs).
		Order("playlist_id ASC, position ASC").
		Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list playlist channels: %w", MapGormError(result.Error))
	}

	out := make(map[int64][]int64, len(playlistIDs))
	for _, row := range rows {
		out[row.PlaylistID] = append(out[row.PlaylistID], row.ChannelID)
	}
	return out, nil
}

// Delete deletes a playlist and its membership rows
func (r *PlaylistRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", id).Delete(&models.PlaylistChannel{}).Error; err != nil {
			return MapGormError(err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Playlist{})
		if result.Error != nil {
			return MapGormError(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AddChannel appends a channel to the end of a playlist
func (r *PlaylistRepository) AddChannel(ctx context.Context, playlistID, channelID int64) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		var next int
		err := tx.Model(&models.PlaylistChannel{}).
			Where("playlist_id = ?", playlistID).
			Select("COALESCE(MAX(position) + 1, 0)").
			Scan(&next).Error
		if err != nil {
			return MapGormError(err)
		}

		row := &models.PlaylistChannel{PlaylistID: playlistID, ChannelID: channelID, Position: next}
		if err := tx.Create(row).Error; err != nil {
			return MapGormError(err)
		}
		return nil
	})
}

// RemoveChannel removes a channel from a playlist
func (r *PlaylistRepository) RemoveChannel(ctx context.Context, playlistID, channelID int64) error {
	result := r.db.WithContext(ctx).
		Where("playlist_id = ? AND channel_id = ?", playlistID, channelID).
		Delete(&models.PlaylistChannel{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove playlist channel: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveChannelFromAll drops a channel from every playlist. Channel ids are not
// tied to the channels table, so backend channel deletes clean up here.
func (r *PlaylistRepository) RemoveChannelFromAll(ctx context.Context, channelID int64) error {
	result := r.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Delete(&models.PlaylistChannel{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove channel from playlists: %w", MapGormError(result.Error))
	}
	return nil
}
