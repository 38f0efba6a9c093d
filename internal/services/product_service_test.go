package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oshxona/go-food-backend/internal/domain"
	"github.com/oshxona/go-food-backend/internal/repo"
)

// newServiceDB opens a throwaway sqlite database migrated with the full
// schema so services can be exercised against real persistence.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "svc.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func validProductInput() ProductInput {
	return ProductInput{
		TitleUz:         "Lag'mon",
		DescriptionUz:   "Qo'l tortma lag'mon",
		Price:           45000,
		Discount:        10,
		Category:        "FOOD",
		MeasurementType: "PIECE",
	}
}

func TestProductService_CreateDefaultsLocalesAndComputesPrice(t *testing.T) {
	svc := &ProductService{DB: newServiceDB(t)}
	ctx := context.Background()

	p, err := svc.Create(ctx, validProductInput(), []domain.Media{
		{File: "product/a.jpg", MediaType: "image", OriginalFilename: "a.jpg"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.UUID == "" {
		t.Fatal("uuid not assigned")
	}
	if p.TitleRu != "Lag'mon" || p.TitleEn != "Lag'mon" {
		t.Fatalf("blank locales must inherit uz: ru=%q en=%q", p.TitleRu, p.TitleEn)
	}
	if p.RealPrice != 40500 {
		t.Fatalf("real price = %v, want 40500", p.RealPrice)
	}

	_, media, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(media) != 1 || media[0].OwnerID != p.ID {
		t.Fatalf("media not attached: %+v", media)
	}
}

func TestProductService_CreateValidation(t *testing.T) {
	svc := &ProductService{DB: newServiceDB(t)}

	cases := map[string]struct {
		mutate func(*ProductInput)
		field  string
	}{
		"missing title":      {func(in *ProductInput) { in.TitleUz = " " }, "title_uz"},
		"zero price":         {func(in *ProductInput) { in.Price = 0 }, "price"},
		"negative price":     {func(in *ProductInput) { in.Price = -5 }, "price"},
		"discount over 100":  {func(in *ProductInput) { in.Discount = 150 }, "discount"},
		"unknown category":   {func(in *ProductInput) { in.Category = "GADGET" }, "category"},
		"unknown measure":    {func(in *ProductInput) { in.MeasurementType = "BARREL" }, "measurement_type"},
		"missing desc":       {func(in *ProductInput) { in.DescriptionUz = "" }, "description_uz"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := validProductInput()
			tc.mutate(&in)

			_, err := svc.Create(context.Background(), in, nil)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := ve.Fields[tc.field]; !ok {
				t.Fatalf("expected field %q in %v", tc.field, ve.Fields)
			}
		})
	}
}

func TestProductService_UpdateReplacesMediaAndReprices(t *testing.T) {
	svc := &ProductService{DB: newServiceDB(t)}
	ctx := context.Background()

	p, err := svc.Create(ctx, validProductInput(), []domain.Media{
		{File: "product/old1.jpg"}, {File: "product/old2.jpg"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	discount := 50
	updated, err := svc.Update(ctx, p.ID, ProductUpdate{Discount: &discount}, []domain.Media{
		{File: "product/new.jpg"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.RealPrice != 22500 {
		t.Fatalf("real price after update = %v, want 22500", updated.RealPrice)
	}

	_, media, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(media) != 1 || media[0].File != "product/new.jpg" {
		t.Fatalf("media not replaced: %+v", media)
	}
}

func TestProductService_UpdateNilMediaKeepsAttachments(t *testing.T) {
	svc := &ProductService{DB: newServiceDB(t)}
	ctx := context.Background()

	p, err := svc.Create(ctx, validProductInput(), []domain.Media{{File: "product/a.jpg"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	price := 50000.0
	if _, err := svc.Update(ctx, p.ID, ProductUpdate{Price: &price}, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}

	_, media, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(media) != 1 {
		t.Fatalf("media count = %d, want 1", len(media))
	}
}

func TestProductService_DeleteHidesFromListing(t *testing.T) {
	svc := &ProductService{DB: newServiceDB(t)}
	ctx := context.Background()

	p, err := svc.Create(ctx, validProductInput(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// Direct lookup still works, listing does not include it.
	got, _, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get after delete: %v", err)
	}
	if got.IsActive {
		t.Fatal("product still active after delete")
	}

	products, _, total, err := svc.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 0 || len(products) != 0 {
		t.Fatalf("deleted product still listed: total=%d len=%d", total, len(products))
	}

	if err := svc.Delete(ctx, 9999); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("missing delete: expected ErrProductNotFound, got %v", err)
	}
}
