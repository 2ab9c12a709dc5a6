package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// WithTransaction runs fn in a transaction bound to ctx. Returning an error
// from fn rolls back; the error comes back mapped through MapGormError so
// callers can keep using IsNotFound, IsDuplicate and IsForeignKey.
func (db *DB) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := db.DB.WithContext(ctx).Transaction(fn); err != nil {
		return fmt.Errorf("transaction rolled back: %w", MapGormError(err))
	}
	return nil
}
