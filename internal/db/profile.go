package db

import (
	"context"
	"fmt"
	"time"

	"github.com/stwalsh4118/streamvault/internal/models"
	"gorm.io/gorm/clause"
)

// ProfileRepository handles database operations for user profiles
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get retrieves the profile of a principal
func (r *ProfileRepository) Get(ctx context.Context, principal models.Principal) (*models.UserProfile, error) {
	var profile models.UserProfile
	result := r.db.WithContext(ctx).Where("principal = ?", principal).First(&profile)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &profile, nil
}

// Save creates or replaces the profile of a principal
func (r *ProfileRepository) Save(ctx context.Context, profile *models.UserProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "principal"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).
		Create(profile)
	if result.Error != nil {
		return fmt.Errorf("failed to save profile: %w", MapGormError(result.Error))
	}
	return nil
}
