package db

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/streamvault/internal/models"
	"gorm.io/gorm/clause"
)

// RoleRepository handles database operations for role assignments
type RoleRepository struct {
	db *DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Get retrieves the role assigned to a principal
func (r *RoleRepository) Get(ctx context.Context, principal models.Principal) (models.UserRole, error) {
	var assignment models.RoleAssignment
	result := r.db.WithContext(ctx).Where("principal = ?", principal).First(&assignment)
	if result.Error != nil {
		return "", MapGormError(result.Error)
	}
	return assignment.Role, nil
}

// Set assigns a role to a principal, replacing any previous one
func (r *RoleRepository) Set(ctx context.Context, principal models.Principal, role models.UserRole) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "principal"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Create(&models.RoleAssignment{Principal: principal, Role: role})
	if result.Error != nil {
		return fmt.Errorf("failed to set role: %w", MapGormError(result.Error))
	}
	return nil
}

// Count returns how many principals hold role
func (r *RoleRepository) Count(ctx context.Context, role models.UserRole) (int64, error) {
	var n int64
	result := r.db.WithContext(ctx).Model(&models.RoleAssignment{}).Where("role = ?", role).Count(&n)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count roles: %w", MapGormError(result.Error))
	}
	return n, nil
}
