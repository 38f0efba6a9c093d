// Package repo – media attachments.
//
// Media rows are attached to their owner through an explicit
// (owner_type, owner_id) pair. Replacement is delete-then-recreate; callers
// are expected to run ReplaceMediaForOwner inside a transaction so no
// partial state is observable.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/oshxona/go-food-backend/internal/domain"
)

// CreateMedia inserts one media row.
func CreateMedia(ctx context.Context, db *gorm.DB, m *domain.Media) error {
	return db.WithContext(ctx).Create(m).Error
}

// ListMediaForOwner returns all media rows of one owner, in creation order.
func ListMediaForOwner(ctx context.Context, db *gorm.DB, owner domain.MediaOwner, ownerID uint) ([]domain.Media, error) {
	var out []domain.Media
	err := db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", owner, ownerID).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// ListMediaForOwners batch-loads media for many owners of the same kind and
// groups the rows by owner id. Used by listing endpoints to avoid per-row
// queries.
func ListMediaForOwners(ctx context.Context, db *gorm.DB, owner domain.MediaOwner, ownerIDs []uint) (map[uint][]domain.Media, error) {
	grouped := make(map[uint][]domain.Media, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return grouped, nil
	}
	var rows []domain.Media
	err := db.WithContext(ctx).
		Where("owner_type = ? AND owner_id IN ?", owner, ownerIDs).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, m := range rows {
		grouped[m.OwnerID] = append(grouped[m.OwnerID], m)
	}
	return grouped, nil
}

// DeleteMediaForOwner removes every media row of one owner.
func DeleteMediaForOwner(ctx context.Context, db *gorm.DB, owner domain.MediaOwner, ownerID uint) error {
	return db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", owner, ownerID).
		Delete(&domain.Media{}).Error
}

// ReplaceMediaForOwner swaps the owner's whole media set for the given rows.
// Run inside a transaction.
func ReplaceMediaForOwner(ctx context.Context, db *gorm.DB, owner domain.MediaOwner, ownerID uint, media []domain.Media) error {
	if err := DeleteMediaForOwner(ctx, db, owner, ownerID); err != nil {
		return err
	}
	for i := range media {
		media[i].OwnerType = owner
		media[i].OwnerID = ownerID
		if err := CreateMedia(ctx, db, &media[i]); err != nil {
			return err
		}
	}
	return nil
}
