package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/stwalsh4118/streamvault/internal/db"
	"github.com/stwalsh4118/streamvault/internal/logger"
	"github.com/stwalsh4118/streamvault/internal/models"
)

// GetCallerProfile returns the caller's saved profile
func (s *Service) GetCallerProfile(ctx context.Context, caller models.Principal) (*models.UserProfile, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}
	return s.getProfile(ctx, caller)
}

// SaveCallerProfile creates or replaces the caller's profile
func (s *Service) SaveCallerProfile(ctx context.Context, caller models.Principal, name string) (*models.UserProfile, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidProfile
	}

	profile := &models.UserProfile{Principal: caller, Name: name}
	if err := s.repos.Profiles.Save(ctx, profile); err != nil {
		logger.Log.Error().
			Err(err).
			Str("caller", string(caller)).
			Msg("Failed to save profile")
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}

// GetUserProfile returns the profile of user. Callers may read their own
// profile; admins may read anyone's.
func (s *Service) GetUserProfile(ctx context.Context, caller, user models.Principal) (*models.UserProfile, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}
	if caller != user {
		if err := s.requireAdmin(ctx, caller); err != nil {
			return nil, err
		}
	}
	return s.getProfile(ctx, user)
}

func (s *Service) getProfile(ctx context.Context, principal models.Principal) (*models.UserProfile, error) {
	profile, err := s.repos.Profiles.Get(ctx, principal)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrProfileNotFound
		}
		logger.Log.Error().
			Err(err).
			Str("principal", string(principal)).
			Msg("Failed to get profile")
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// GetCallerRole returns the caller's role. Anonymous callers are guests and
// authenticated callers without an assignment are users.
func (s *Service) GetCallerRole(ctx context.Context, caller models.Principal) (models.UserRole, error) {
	if caller.IsAnonymous() {
		return models.RoleGuest, nil
	}

	role, err := s.repos.Roles.Get(ctx, caller)
	if err != nil {
		if db.IsNotFound(err) {
			return models.RoleUser, nil
		}
		logger.Log.Error().
			Err(err).
			Str("caller", string(caller)).
			Msg("Failed to get role")
		return "", fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

// IsCallerAdmin reports whether the caller holds the admin role
func (s *Service) IsCallerAdmin(ctx context.Context, caller models.Principal) (bool, error) {
	role, err := s.GetCallerRole(ctx, caller)
	if err != nil {
		return false, err
	}
	return role == models.RoleAdmin, nil
}

// AssignRole sets the role of user. Admin only, except that while no admin
// exists a caller may make itself admin.
func (s *Service) AssignRole(ctx context.Context, caller, user models.Principal, role models.UserRole) error {
	if err := requireIdentity(caller); err != nil {
		return err
	}
	if user.IsAnonymous() || !role.Valid() {
		return ErrInvalidRole
	}

	if err := s.requireAdmin(ctx, caller); err != nil {
		if !IsForbidden(err) {
			return err
		}
		bootstrap, berr := s.canBootstrap(ctx, caller, user, role)
		if berr != nil {
			return berr
		}
		if !bootstrap {
			return err
		}
	}

	if err := s.repos.Roles.Set(ctx, user, role); err != nil {
		logger.Log.Error().
			Err(err).
			Str("caller", string(caller)).
			Str("user", string(user)).
			Msg("Failed to assign role")
		return fmt.Errorf("failed to assign role: %w", err)
	}

	logger.Log.Info().
		Str("caller", string(caller)).
		Str("user", string(user)).
		Str("role", string(role)).
		Msg("Role assigned")

	return nil
}

func (s *Service) canBootstrap(ctx context.Context, caller, user models.Principal, role models.UserRole) (bool, error) {
	if caller != user || role != models.RoleAdmin {
		return false, nil
	}
	admins, err := s.repos.Roles.Count(ctx, models.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to count admins: %w", err)
	}
	return admins == 0, nil
}
