package repo

import (
	"context"
	"testing"

	"github.com/oshxona/go-food-backend/internal/domain"
)

func recipeTables() []any {
	return []any{&domain.Product{}, &domain.Recipe{}, &domain.RecipeProduct{}, &domain.RecipeStep{}}
}

func TestCreateRecipe_WithNestedCollections(t *testing.T) {
	db := newRepoDB(t, recipeTables()...)
	ctx := context.Background()

	prod := testProduct("Un", 5, 0)
	if err := CreateProduct(ctx, db, prod); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	r := &domain.Recipe{
		NameUz:      "Non",
		TimeMinutes: 60,
		Difficulty:  domain.DifficultyMedium,
		Servings:    4,
		IsActive:    true,
		Ingredients: []domain.RecipeProduct{
			{ProductID: prod.ID, Quantity: "500 g", Order: 1},
		},
		Steps: []domain.RecipeStep{
			{StepNumber: 1, Description: "Xamir qiling", DurationMinutes: 20},
			{StepNumber: 2, Description: "Pishiring", DurationMinutes: 40},
		},
	}
	if err := CreateRecipe(ctx, db, r); err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}
	if r.UUID == "" {
		t.Fatalf("expected UUID from BeforeCreate")
	}

	got, err := GetRecipe(ctx, db, r.ID)
	if err != nil {
		t.Fatalf("GetRecipe: %v", err)
	}
	if len(got.Ingredients) != 1 || len(got.Steps) != 2 {
		t.Fatalf("nested collections not persisted: %+v", got)
	}
	if got.Ingredients[0].Product.ID != prod.ID {
		t.Fatalf("ingredient product not preloaded")
	}
	if got.Steps[0].StepNumber != 1 || got.Steps[1].StepNumber != 2 {
		t.Fatalf("steps not ordered by step_number: %+v", got.Steps)
	}
}

func TestReplaceIngredientsAndSteps_Wholesale(t *testing.T) {
	db := newRepoDB(t, recipeTables()...)
	ctx := context.Background()

	p1 := testProduct("p1", 1, 0)
	p2 := testProduct("p2", 1, 0)
	_ = CreateProduct(ctx, db, p1)
	_ = CreateProduct(ctx, db, p2)

	r := &domain.Recipe{
		NameUz:   "Osh",
		IsActive: true,
		Ingredients: []domain.RecipeProduct{
			{ProductID: p1.ID, Quantity: "1 kg", Order: 1},
			{ProductID: p2.ID, Quantity: "2 kg", Order: 2},
		},
		Steps: []domain.RecipeStep{
			{StepNumber: 1, Description: "old step"},
			{StepNumber: 2, Description: "old step 2"},
			{StepNumber: 3, Description: "old step 3"},
		},
	}
	if err := CreateRecipe(ctx, db, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := ReplaceIngredients(ctx, db, r.ID, []domain.RecipeProduct{
		{ProductID: p2.ID, Quantity: "3 kg", Order: 1},
	}); err != nil {
		t.Fatalf("ReplaceIngredients: %v", err)
	}
	if err := ReplaceSteps(ctx, db, r.ID, []domain.RecipeStep{
		{StepNumber: 1, Description: "new step"},
	}); err != nil {
		t.Fatalf("ReplaceSteps: %v", err)
	}

	got, err := GetRecipe(ctx, db, r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// Count equals the new payload length, not old+new.
	if len(got.Ingredients) != 1 || got.Ingredients[0].Quantity != "3 kg" {
		t.Fatalf("ingredients not replaced wholesale: %+v", got.Ingredients)
	}
	if len(got.Steps) != 1 || got.Steps[0].Description != "new step" {
		t.Fatalf("steps not replaced wholesale: %+v", got.Steps)
	}
}

func TestIncrementRecipeViews(t *testing.T) {
	db := newRepoDB(t, recipeTables()...)
	ctx := context.Background()

	r := &domain.Recipe{NameUz: "Sho'rva", IsActive: true}
	if err := CreateRecipe(ctx, db, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := IncrementRecipeViews(ctx, db, r.ID); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	got, err := GetRecipe(ctx, db, r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ViewCount != 3 {
		t.Fatalf("view_count = %d; want 3", got.ViewCount)
	}
}

func TestSoftDeleteRecipe(t *testing.T) {
	db := newRepoDB(t, recipeTables()...)
	ctx := context.Background()

	r := &domain.Recipe{NameUz: "Lagmon", IsActive: true}
	if err := CreateRecipe(ctx, db, r); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := SoftDeleteRecipe(ctx, db, r.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	got, err := GetRecipe(ctx, db, r.ID)
	if err != nil || got.IsActive {
		t.Fatalf("recipe must stay retrievable with is_active=false: %+v, %v", got, err)
	}
	if err := SoftDeleteRecipe(ctx, db, 404); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
