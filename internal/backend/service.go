// Package backend implements the structured channel backend: channels,
// per-principal favourites and playlists, profiles and roles.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/stwalsh4118/streamvault/internal/db"
	"github.com/stwalsh4118/streamvault/internal/logger"
	"github.com/stwalsh4118/streamvault/internal/models"
)

// Service handles backend business logic
type Service struct {
	repos             *db.Repositories
	knownChannelsOnly bool
}

// Option configures a Service
type Option func(*Service)

// WithKnownChannelsOnly restricts playlist entries to channels stored in the
// backend. Without it playlists hold any channel number, such as the position
// of a channel in a parsed playlist.
func WithKnownChannelsOnly() Option {
	return func(s *Service) {
		s.knownChannelsOnly = true
	}
}

// NewService creates a new backend service instance
func NewService(repos *db.Repositories, opts ...Option) *Service {
	s := &Service{
		repos: repos,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChannelInput holds the editable fields of a backend channel
type ChannelInput struct {
	Name         string `json:"name"`
	StreamURL    string `json:"stream_url"`
	Language     string `json:"language"`
	Country      string `json:"country"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (in ChannelInput) normalize() (ChannelInput, error) {
	out := ChannelInput{
		Name:         strings.TrimSpace(in.Name),
		StreamURL:    strings.TrimSpace(in.StreamURL),
		Language:     strings.TrimSpace(in.Language),
		Country:      strings.TrimSpace(in.Country),
		ThumbnailURL: strings.TrimSpace(in.ThumbnailURL),
	}
	if out.Name == "" || out.StreamURL == "" {
		return ChannelInput{}, ErrInvalidChannel
	}
	return out, nil
}

func requireIdentity(principal models.Principal) error {
	if principal.IsAnonymous() {
		return ErrUnauthenticated
	}
	return nil
}

// requireAdmin fails with ErrUnauthenticated or ErrForbidden
func (s *Service) requireAdmin(ctx context.Context, principal models.Principal) error {
	if err := requireIdentity(principal); err != nil {
		return err
	}
	admin, err := s.IsCallerAdmin(ctx, principal)
	if err != nil {
		return err
	}
	if !admin {
		return ErrForbidden
	}
	return nil
}

// ListChannels returns every backend channel. No identity is needed.
func (s *Service) ListChannels(ctx context.Context) ([]models.BackendChannel, error) {
	channels, err := s.repos.Channels.List(ctx)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to list channels")
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	logger.Log.Debug().
		Int("count", len(channels)).
		Msg("Listed channels")

	return channels, nil
}

// GetChannel retrieves a channel by id
func (s *Service) GetChannel(ctx context.Context, id int64) (*models.BackendChannel, error) {
	channel, err := s.repos.Channels.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrChannelNotFound
		}
		logger.Log.Error().
			Err(err).
			Int64("channel_id", id).
			Msg("Failed to get channel by ID")
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	return channel, nil
}

// AddChannel creates a channel. Admin only.
func (s *Service) AddChannel(ctx context.Context, caller models.Principal, input ChannelInput) (*models.BackendChannel, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}

	in, err := input.normalize()
	if err != nil {
		return nil, err
	}

	channel := &models.BackendChannel{
		Name:         in.Name,
		StreamURL:    in.StreamURL,
		Language:     in.Language,
		Country:      in.Country,
		ThumbnailURL: in.ThumbnailURL,
	}
	if err := s.repos.Channels.Create(ctx, channel); err != nil {
		logger.Log.Error().
			Err(err).
			Str("name", in.Name).
			Msg("Failed to create channel in database")
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	logger.Log.Info().
		Int64("channel_id", channel.ID).
		Str("name", channel.Name).
		Str("caller", string(caller)).
		Msg("Channel created successfully")

	return channel, nil
}

// UpdateChannel replaces the fields of a channel. Admin only.
func (s *Service) UpdateChannel(ctx context.Context, caller models.Principal, id int64, input ChannelInput) (*models.BackendChannel, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}

	in, err := input.normalize()
	if err != nil {
		return nil, err
	}

	channel, err := s.GetChannel(ctx, id)
	if err != nil {
		return nil, err
	}

	channel.Name = in.Name
	channel.StreamURL = in.StreamURL
	channel.Language = in.Language
	channel.Country = in.Country
	channel.ThumbnailURL = in.ThumbnailURL

	if err := s.repos.Channels.Update(ctx, channel); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrChannelNotFound
		}
		logger.Log.Error().
			Err(err).
			Int64("channel_id", id).
			Msg("Failed to update channel in database")
		return nil, fmt.Errorf("failed to update channel: %w", err)
	}

	logger.Log.Info().
		Int64("channel_id", id).
		Str("name", channel.Name).
		Msg("Channel updated successfully")

	return channel, nil
}

// DeleteChannel deletes a channel and its favourites. Playlist entries go too
// when playlists are restricted to backend channels. Admin only.
func (s *Service) DeleteChannel(ctx context.Context, caller models.Principal, id int64) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}

	if err := s.repos.Channels.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return ErrChannelNotFound
		}
		logger.Log.Error().
			Err(err).
			Int64("channel_id", id).
			Msg("Failed to delete channel")
		return fmt.Errorf("failed to delete channel: %w", err)
	}

	if s.knownChannelsOnly {
		if err := s.repos.Playlists.RemoveChannelFromAll(ctx, id); err != nil {
			logger.Log.Error().
				Err(err).
				Int64("channel_id", id).
				Msg("Failed to remove deleted channel from playlists")
			return fmt.Errorf("failed to delete channel: %w", err)
		}
	}

	logger.Log.Info().
		Int64("channel_id", id).
		Msg("Channel deleted successfully")

	return nil
}
