package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/stwalsh4118/streamvault/internal/db"
	"github.com/stwalsh4118/streamvault/internal/logger"
	"github.com/stwalsh4118/streamvault/internal/models"
)

// ListPlaylists returns the caller's playlists with their channel ids
func (s *Service) ListPlaylists(ctx context.Context, caller models.Principal) ([]models.Playlist, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}

	playlists, err := s.repos.Playlists.ListByOwner(ctx, caller)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("caller", string(caller)).
			Msg("Failed to list playlists")
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	return playlists, nil
}

// GetPlaylist returns one of the caller's playlists. Playlists owned by
// other principals are reported as not found.
func (s *Service) GetPlaylist(ctx context.Context, caller models.Principal, id int64) (*models.Playlist, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}

	playlist, err := s.repos.Playlists.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrPlaylistNotFound
		}
		logger.Log.Error().
			Err(err).
			Int64("playlist_id", id).
			Msg("Failed to get playlist")
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	if playlist.Owner != caller {
		return nil, ErrPlaylistNotFound
	}
	return playlist, nil
}

// CreatePlaylist creates an empty playlist owned by the caller
func (s *Service) CreatePlaylist(ctx context.Context, caller models.Principal, name string) (*models.Playlist, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidPlaylist
	}

	playlist := &models.Playlist{Owner: caller, Name: name}
	if err := s.repos.Playlists.Create(ctx, playlist); err != nil {
		logger.Log.Error().
			Err(err).
			Str("caller", string(caller)).
			Str("name", name).
			Msg("Failed to create playlist")
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	logger.Log.Info().
		Int64("playlist_id", playlist.ID).
		Str("caller", string(caller)).
		Str("name", name).
		Msg("Playlist created successfully")

	return playlist, nil
}

// DeletePlaylist deletes one of the caller's playlists
func (s *Service) DeletePlaylist(ctx context.Context, caller models.Principal, id int64) error {
	if _, err := s.GetPlaylist(ctx, caller, id); err != nil {
		return err
	}

	if err := s.repos.Playlists.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return ErrPlaylistNotFound
		}
		logger.Log.Error().
			Err(err).
			Int64("playlist_id", id).
			Msg("Failed to delete playlist")
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	logger.Log.Info().
		Int64("playlist_id", id).
		Msg("Playlist deleted successfully")

	return nil
}

// AddChannelToPlaylist appends a channel to one of the caller's playlists
func (s *Service) AddChannelToPlaylist(ctx context.Context, caller models.Principal, playlistID, channelID int64) (*models.Playlist, error) {
	if _, err := s.GetPlaylist(ctx, caller, playlistID); err != nil {
		return nil, err
	}
	if channelID < 0 {
		return nil, ErrChannelNotFound
	}
	if s.knownChannelsOnly {
		if _, err := s.GetChannel(ctx, channelID); err != nil {
			return nil, err
		}
	}

	if err := s.repos.Playlists.AddChannel(ctx, playlistID, channelID); err != nil {
		if db.IsDuplicate(err) {
			return nil, ErrAlreadyInPlaylist
		}
		logger.Log.Error().
			Err(err).
			Int64("playlist_id", playlistID).
			Int64("channel_id", channelID).
			Msg("Failed to add channel to playlist")
		return nil, fmt.Errorf("failed to add channel to playlist: %w", err)
	}

	return s.GetPlaylist(ctx, caller, playlistID)
}

// RemoveChannelFromPlaylist removes a channel from one of the caller's playlists
func (s *Service) RemoveChannelFromPlaylist(ctx context.Context, caller models.Principal, playlistID, channelID int64) (*models.Playlist, error) {
	if _, err := s.GetPlaylist(ctx, caller, playlistID); err != nil {
		return nil, err
	}

	if err := s.repos.Playlists.RemoveChannel(ctx, playlistID, channelID); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotInPlaylist
		}
		logger.Log.Error().
			Err(err).
			Int64("playlist_id", playlistID).
			Int64("channel_id", channelID).
			Msg("Failed to remove channel from playlist")
		return nil, fmt.Errorf("failed to remove channel from playlist: %w", err)
	}

	return s.GetPlaylist(ctx, caller, playlistID)
}
