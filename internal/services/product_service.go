// Package services – ProductService
//
// This file implements the ProductService, which governs the product
// catalog: creation with locale defaulting and derived pricing, partial
// updates, soft deletion, and paginated active listings. Media attachments
// are replaced wholesale together with the owning row inside one
// transaction. Service-level errors (ErrProductNotFound, ErrValidation)
// are returned for predictable cases so handlers can map them to HTTP
// results consistently.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/oshxona/go-food-backend/internal/domain"
	"github.com/oshxona/go-food-backend/internal/repo"
)

// ProductService implements the use-cases around catalog products.
type ProductService struct {
	// DB is the database handle used for all product operations.
	DB *gorm.DB
}

// ProductInput carries a full product payload for creation.
type ProductInput struct {
	TitleUz       string
	TitleRu       string
	TitleEn       string
	DescriptionUz string
	DescriptionRu string
	DescriptionEn string

	Price           float64
	Discount        int
	Category        string
	MeasurementType string
}

// ProductUpdate carries a partial product payload. Nil fields are left
// untouched.
type ProductUpdate struct {
	TitleUz       *string
	TitleRu       *string
	TitleEn       *string
	DescriptionUz *string
	DescriptionRu *string
	DescriptionEn *string

	Price           *float64
	Discount        *int
	Category        *string
	MeasurementType *string
}

func validateProductInput(in ProductInput) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(in.TitleUz) == "" {
		fields["title_uz"] = "this field is required"
	}
	if strings.TrimSpace(in.DescriptionUz) == "" {
		fields["description_uz"] = "this field is required"
	}
	if in.Price <= 0 {
		fields["price"] = "price must be greater than zero"
	}
	if in.Discount < 0 || in.Discount > 100 {
		fields["discount"] = "discount must be between 0 and 100"
	}
	if !domain.ValidCategory(domain.ProductCategory(in.Category)) {
		fields["category"] = "unknown category"
	}
	if !domain.ValidMeasurement(domain.MeasurementType(in.MeasurementType)) {
		fields["measurement_type"] = "unknown measurement type"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// defaultLocale returns v, or fallback when v is blank. Uz is the canonical
// locale, so blank Ru/En variants inherit it at write time.
func defaultLocale(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// Create validates the payload, fills blank locale variants from the uz
// values, and persists the product together with its media rows in one
// transaction. The derived real_price is computed by the model hook.
func (s *ProductService) Create(ctx context.Context, in ProductInput, media []domain.Media) (*domain.Product, error) {
	if fields := validateProductInput(in); fields != nil {
		return nil, NewValidationError(fields)
	}

	p := &domain.Product{
		TitleUz:         in.TitleUz,
		TitleRu:         defaultLocale(in.TitleRu, in.TitleUz),
		TitleEn:         defaultLocale(in.TitleEn, in.TitleUz),
		DescriptionUz:   in.DescriptionUz,
		DescriptionRu:   defaultLocale(in.DescriptionRu, in.DescriptionUz),
		DescriptionEn:   defaultLocale(in.DescriptionEn, in.DescriptionUz),
		Price:           in.Price,
		Discount:        in.Discount,
		Category:        domain.ProductCategory(in.Category),
		MeasurementType: domain.MeasurementType(in.MeasurementType),
		IsActive:        true,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateProduct(ctx, tx, p); err != nil {
			return err
		}
		for i := range media {
			media[i].OwnerType = domain.OwnerProduct
			media[i].OwnerID = p.ID
			if err := repo.CreateMedia(ctx, tx, &media[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Get fetches one product by id regardless of active state, with its media.
func (s *ProductService) Get(ctx context.Context, id uint) (*domain.Product, []domain.Media, error) {
	p, err := repo.GetProduct(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrProductNotFound
		}
		return nil, nil, err
	}
	media, err := repo.ListMediaForOwner(ctx, s.DB, domain.OwnerProduct, p.ID)
	if err != nil {
		return nil, nil, err
	}
	return p, media, nil
}

// Update applies a partial payload. When media is non-nil the attachment
// set is replaced wholesale in the same transaction; nil media leaves the
// existing attachments alone.
func (s *ProductService) Update(ctx context.Context, id uint, in ProductUpdate, media []domain.Media) (*domain.Product, error) {
	var updated *domain.Product

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := repo.GetProduct(ctx, tx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrProductNotFound
			}
			return err
		}

		applyProductUpdate(p, in)
		if fields := validateProductInput(productAsInput(p)); fields != nil {
			return NewValidationError(fields)
		}

		if err := repo.SaveProduct(ctx, tx, p); err != nil {
			return err
		}
		if media != nil {
			for i := range media {
				media[i].OwnerType = domain.OwnerProduct
				media[i].OwnerID = p.ID
			}
			if err := repo.ReplaceMediaForOwner(ctx, tx, domain.OwnerProduct, p.ID, media); err != nil {
				return err
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyProductUpdate(p *domain.Product, in ProductUpdate) {
	if in.TitleUz != nil {
		p.TitleUz = *in.TitleUz
	}
	if in.TitleRu != nil {
		p.TitleRu = *in.TitleRu
	}
	if in.TitleEn != nil {
		p.TitleEn = *in.TitleEn
	}
	if in.DescriptionUz != nil {
		p.DescriptionUz = *in.DescriptionUz
	}
	if in.DescriptionRu != nil {
		p.DescriptionRu = *in.DescriptionRu
	}
	if in.DescriptionEn != nil {
		p.DescriptionEn = *in.DescriptionEn
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Discount != nil {
		p.Discount = *in.Discount
	}
	if in.Category != nil {
		p.Category = domain.ProductCategory(*in.Category)
	}
	if in.MeasurementType != nil {
		p.MeasurementType = domain.MeasurementType(*in.MeasurementType)
	}
}

func productAsInput(p *domain.Product) ProductInput {
	return ProductInput{
		TitleUz:         p.TitleUz,
		DescriptionUz:   p.DescriptionUz,
		Price:           p.Price,
		Discount:        p.Discount,
		Category:        string(p.Category),
		MeasurementType: string(p.MeasurementType),
	}
}

// List returns one page of active products (newest first) plus their media
// grouped by product id and the total active count.
func (s *ProductService) List(ctx context.Context, page, pageSize int) ([]domain.Product, map[uint][]domain.Media, int64, error) {
	total, err := repo.CountActiveProducts(ctx, s.DB)
	if err != nil {
		return nil, nil, 0, err
	}

	offset := (page - 1) * pageSize
	products, err := repo.ListActiveProductsPage(ctx, s.DB, offset, pageSize)
	if err != nil {
		return nil, nil, 0, err
	}

	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	media, err := repo.ListMediaForOwners(ctx, s.DB, domain.OwnerProduct, ids)
	if err != nil {
		return nil, nil, 0, err
	}
	return products, media, total, nil
}

// Delete deactivates a product. The row and its media stay in place so
// existing recipes keep resolving their ingredients.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	err := repo.SoftDeleteProduct(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}
