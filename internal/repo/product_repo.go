// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Product
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a product is not found, functions return gorm.ErrRecordNotFound
//     (also exported in this package as ErrNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/oshxona/go-food-backend/internal/domain"
)

// CreateProduct inserts a new product row. The BeforeCreate/BeforeSave hooks
// assign the public UUID and recompute real_price.
func CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	return db.WithContext(ctx).Create(p).Error
}

// GetProduct fetches a product by id regardless of its active flag; soft
// deleted products stay retrievable by direct lookup. Returns ErrNotFound
// when the row does not exist.
func GetProduct(ctx context.Context, db *gorm.DB, id uint) (*domain.Product, error) {
	var p domain.Product
	if err := db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProduct persists all fields of an existing product, re-running the
// pricing hook.
func SaveProduct(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	return db.WithContext(ctx).Save(p).Error
}

// CountActiveProducts returns the number of active (not soft-deleted)
// products.
func CountActiveProducts(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("is_active = ?", true).
		Count(&total).Error
	return total, err
}

// ListActiveProductsPage returns a page of active products, newest first.
func ListActiveProductsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// SoftDeleteProduct flips is_active to false, leaving the row and its media
// in place. Returns ErrNotFound when no row matched.
func SoftDeleteProduct(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountActiveProductsByIDs returns how many of the given ids exist as
// active products. Used to validate recipe ingredient references.
func CountActiveProductsByIDs(ctx context.Context, db *gorm.DB, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id IN ? AND is_active = ?", ids, true).
		Count(&total).Error
	return total, err
}
