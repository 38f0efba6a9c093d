// Package repo – recipes.
//
// Recipes aggregate ingredient references and ordered steps. Both nested
// collections follow delete-all-then-recreate semantics; ReplaceIngredients
// and ReplaceSteps must run inside the same transaction as the parent save
// so no partial state is observable.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/oshxona/go-food-backend/internal/domain"
)

// CreateRecipe inserts a recipe together with any nested ingredients and
// steps carried on the struct.
func CreateRecipe(ctx context.Context, db *gorm.DB, r *domain.Recipe) error {
	return db.WithContext(ctx).Create(r).Error
}

// GetRecipe fetches a recipe by id with ingredients (ordered, with their
// product rows) and steps (by step number) preloaded. Returns ErrNotFound
// when missing.
func GetRecipe(ctx context.Context, db *gorm.DB, id uint) (*domain.Recipe, error) {
	var r domain.Recipe
	err := db.WithContext(ctx).
		Preload("Ingredients", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order asc, id asc")
		}).
		Preload("Ingredients.Product").
		Preload("Steps", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("step_number asc")
		}).
		First(&r, id).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// SaveRecipe persists the recipe's own columns. Nested collections are
// managed separately through the Replace helpers.
func SaveRecipe(ctx context.Context, db *gorm.DB, r *domain.Recipe) error {
	return db.WithContext(ctx).Omit("Ingredients", "Steps").Save(r).Error
}

// CountActiveRecipes returns the number of active recipes.
func CountActiveRecipes(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Where("is_active = ?", true).
		Count(&total).Error
	return total, err
}

// ListActiveRecipesPage returns a page of active recipes, newest first,
// with nested collections preloaded for count/summary projections.
func ListActiveRecipesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Recipe, error) {
	var out []domain.Recipe
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Preload("Ingredients").
		Preload("Steps").
		Find(&out).Error
	return out, err
}

// ReplaceIngredients deletes every ingredient row of the recipe and inserts
// the new set. Run inside a transaction with the parent save.
func ReplaceIngredients(ctx context.Context, db *gorm.DB, recipeID uint, items []domain.RecipeProduct) error {
	if err := db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Delete(&domain.RecipeProduct{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = 0
		items[i].RecipeID = recipeID
		if err := db.WithContext(ctx).Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// ReplaceSteps deletes every step row of the recipe and inserts the new
// set. Run inside a transaction with the parent save.
func ReplaceSteps(ctx context.Context, db *gorm.DB, recipeID uint, steps []domain.RecipeStep) error {
	if err := db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Delete(&domain.RecipeStep{}).Error; err != nil {
		return err
	}
	for i := range steps {
		steps[i].ID = 0
		steps[i].RecipeID = recipeID
		if err := db.WithContext(ctx).Create(&steps[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// IncrementRecipeViews bumps view_count by one with an atomic column
// update, so concurrent detail fetches cannot under-count.
func IncrementRecipeViews(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// SoftDeleteRecipe flips is_active to false. Returns ErrNotFound when no
// row matched.
func SoftDeleteRecipe(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).
		Model(&domain.Recipe{}).
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
