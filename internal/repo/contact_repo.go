// Package repo – contact directory. Plain CRUD, most recently added first.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/oshxona/go-food-backend/internal/domain"
)

// CreateContact inserts a contact row.
func CreateContact(ctx context.Context, db *gorm.DB, c *domain.Contact) error {
	return db.WithContext(ctx).Create(c).Error
}

// GetContact fetches a contact by id. Returns ErrNotFound when missing.
func GetContact(ctx context.Context, db *gorm.DB, id uint) (*domain.Contact, error) {
	var c domain.Contact
	if err := db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveContact persists all contact columns.
func SaveContact(ctx context.Context, db *gorm.DB, c *domain.Contact) error {
	return db.WithContext(ctx).Save(c).Error
}

// CountContacts returns the total number of contacts.
func CountContacts(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Contact{}).Count(&total).Error
	return total, err
}

// ListContactsPage returns a page of contacts ordered by descending id.
func ListContactsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Contact, error) {
	var out []domain.Contact
	err := db.WithContext(ctx).
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// DeleteContact hard-deletes a contact. Returns ErrNotFound when no row
// matched.
func DeleteContact(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.Contact{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
