// Package services – ContactService
//
// Plain CRUD over contact channel entries. The only business rule is the
// type allow-list; deletion is a hard delete.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/oshxona/go-food-backend/internal/domain"
	"github.com/oshxona/go-food-backend/internal/repo"
)

// ContactService implements the use-cases around contact entries.
type ContactService struct {
	// DB is the database handle used for all contact operations.
	DB *gorm.DB
}

// ContactInput carries a full contact payload.
type ContactInput struct {
	Type  string
	Title string
	Value string
}

// ContactUpdate carries a partial contact payload. Nil fields are left
// untouched.
type ContactUpdate struct {
	Type  *string
	Title *string
	Value *string
}

func validateContactInput(in ContactInput) map[string]string {
	fields := map[string]string{}
	if !domain.ValidContactType(domain.ContactType(in.Type)) {
		fields["type"] = "unknown contact type"
	}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "this field is required"
	}
	if strings.TrimSpace(in.Value) == "" {
		fields["value"] = "this field is required"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Create validates and stores a contact entry.
func (s *ContactService) Create(ctx context.Context, in ContactInput) (*domain.Contact, error) {
	if fields := validateContactInput(in); fields != nil {
		return nil, NewValidationError(fields)
	}
	c := &domain.Contact{
		Type:  domain.ContactType(in.Type),
		Title: in.Title,
		Value: in.Value,
	}
	if err := repo.CreateContact(ctx, s.DB, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get fetches one contact entry by id.
func (s *ContactService) Get(ctx context.Context, id uint) (*domain.Contact, error) {
	c, err := repo.GetContact(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return c, nil
}

// Update applies a partial payload and revalidates the merged state.
func (s *ContactService) Update(ctx context.Context, id uint, in ContactUpdate) (*domain.Contact, error) {
	c, err := repo.GetContact(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	if in.Type != nil {
		c.Type = domain.ContactType(*in.Type)
	}
	if in.Title != nil {
		c.Title = *in.Title
	}
	if in.Value != nil {
		c.Value = *in.Value
	}
	if fields := validateContactInput(ContactInput{Type: string(c.Type), Title: c.Title, Value: c.Value}); fields != nil {
		return nil, NewValidationError(fields)
	}

	if err := repo.SaveContact(ctx, s.DB, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns one page of contacts (newest first) and the total count.
func (s *ContactService) List(ctx context.Context, page, pageSize int) ([]domain.Contact, int64, error) {
	total, err := repo.CountContacts(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	contacts, err := repo.ListContactsPage(ctx, s.DB, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

// Delete removes a contact entry outright.
func (s *ContactService) Delete(ctx context.Context, id uint) error {
	err := repo.DeleteContact(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrContactNotFound
		}
		return err
	}
	return nil
}
