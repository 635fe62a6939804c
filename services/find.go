package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// FindOrFail loads the first T matching conds from tx.
// A missing row yields ErrNotFound; any other store failure is wrapped.
func FindOrFail[T any](ctx context.Context, tx *gorm.DB, conds ...interface{}) (*T, error) {
	var out T
	err := tx.WithContext(ctx).First(&out, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %T: %w", out, err)
	}
	return &out, nil
}
