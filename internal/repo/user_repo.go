// Package repo – users, devices, and app versions.
//
// Lookup helpers exist per login identifier kind (email, phone, username)
// so the auth service can pick the path by inspecting the identifier shape.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oshxona/go-food-backend/internal/domain"
)

// CreateUser inserts a user row.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Create(u).Error
}

// GetUserByID fetches a user by primary key. Returns ErrNotFound when
// missing.
func GetUserByID(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail fetches a user by exact email.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	return getUserBy(ctx, db, "email = ?", email)
}

// GetUserByPhone fetches a user by exact phone number.
func GetUserByPhone(ctx context.Context, db *gorm.DB, phone string) (*domain.User, error) {
	return getUserBy(ctx, db, "phone_number = ?", phone)
}

// GetUserByUsername fetches a user by exact username.
func GetUserByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	return getUserBy(ctx, db, "username = ?", username)
}

func getUserBy(ctx context.Context, db *gorm.DB, query string, arg string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UserExists reports whether any user matches the given column filter.
// Used for pre-emptive uniqueness checks at registration.
func UserExists(ctx context.Context, db *gorm.DB, query string, arg string) (bool, error) {
	var u domain.User
	err := db.WithContext(ctx).Select("id").Where(query, arg).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FindOrCreateAppVersion returns the row for a client version string,
// creating it on first sight.
func FindOrCreateAppVersion(ctx context.Context, db *gorm.DB, version string) (*domain.AppVersion, error) {
	var v domain.AppVersion
	err := db.WithContext(ctx).
		Where(domain.AppVersion{Version: version}).
		FirstOrCreate(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// UpsertDevice registers a device fingerprint. A device that already exists
// (same device_id) has its mutable fields refreshed instead of erroring on
// the unique constraint.
func UpsertDevice(ctx context.Context, db *gorm.DB, d *domain.Device) error {
	var existing domain.Device
	err := db.WithContext(ctx).Where("device_id = ?", d.DeviceID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return db.WithContext(ctx).Create(d).Error
		}
		return err
	}

	d.ID = existing.ID
	d.CreatedAt = existing.CreatedAt
	return db.WithContext(ctx).Save(d).Error
}
