package crud

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ChildrenOf returns the parent entity of type P together with every
// child of type C whose foreign key column references it. The parent is
// fetched on its own first so a missing parent surfaces as a clean
// ErrNotFound instead of an empty, ambiguous join result. A parent with
// zero children answers with an empty slice.
func ChildrenOf[P, C any](ctx context.Context, db *gorm.DB, parentID uint, fkColumn string) (*P, []C, error) {
	var parent P
	err := db.WithContext(ctx).First(&parent, parentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("parent %d: %w", parentID, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("fetch parent %d: %w", parentID, err)
	}

	children := make([]C, 0)
	if err := db.WithContext(ctx).Where(fkColumn+" = ?", parentID).Find(&children).Error; err != nil {
		return nil, nil, fmt.Errorf("load children of parent %d: %w", parentID, err)
	}

	return &parent, children, nil
}
