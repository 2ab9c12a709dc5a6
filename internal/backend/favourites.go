package backend

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/streamvault/internal/db"
	"github.com/stwalsh4118/streamvault/internal/logger"
	"github.com/stwalsh4118/streamvault/internal/models"
)

// GetFavourites returns the favourite channel ids of the caller
func (s *Service) GetFavourites(ctx context.Context, caller models.Principal) ([]int64, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}

	ids, err := s.repos.Favourites.ListChannelIDs(ctx, caller)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("caller", string(caller)).
			Msg("Failed to list favourites")
		return nil, fmt.Errorf("failed to get favourites: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// ToggleFavourite flips the favourite state of a channel for the caller and
// reports whether it is now a favourite
func (s *Service) ToggleFavourite(ctx context.Context, caller models.Principal, channelID int64) (bool, error) {
	if err := requireIdentity(caller); err != nil {
		return false, err
	}

	on, err := s.repos.Favourites.Toggle(ctx, caller, channelID)
	if err != nil {
		if db.IsForeignKey(err) {
			return false, ErrChannelNotFound
		}
		logger.Log.Error().
			Err(err).
			Str("caller", string(caller)).
			Int64("channel_id", channelID).
			Msg("Failed to toggle favourite")
		return false, fmt.Errorf("failed to toggle favourite: %w", err)
	}

	logger.Log.Debug().
		Str("caller", string(caller)).
		Int64("channel_id", channelID).
		Bool("favourite", on).
		Msg("Favourite toggled")

	return on, nil
}
