// Package services – RecipeService
//
// This file implements the RecipeService, which manages recipes together
// with their nested ingredient and step collections. Creation and update
// validate the nested payload (non-empty collections, active products only,
// unique step numbers) and persist everything atomically; updates replace
// the collections wholesale rather than diffing them. Reading a recipe
// detail also bumps its view counter.
package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/oshxona/go-food-backend/internal/domain"
	"github.com/oshxona/go-food-backend/internal/repo"
)

// RecipeService implements the use-cases around recipes.
type RecipeService struct {
	// DB is the database handle used for all recipe operations.
	DB *gorm.DB
}

// IngredientInput is one nested ingredient row in a recipe payload.
type IngredientInput struct {
	ProductID  uint
	Quantity   string
	IsOptional bool
	Order      int
}

// StepInput is one nested preparation step in a recipe payload.
type StepInput struct {
	StepNumber      int
	Title           string
	Description     string
	DurationMinutes int
	Tips            string
}

// RecipeInput carries a full recipe payload for creation.
type RecipeInput struct {
	NameUz        string
	NameRu        string
	NameEn        string
	DescriptionUz string
	DescriptionRu string
	DescriptionEn string

	Rating      float64
	Calories    int
	TimeMinutes int
	Difficulty  string
	Servings    int

	Ingredients []IngredientInput
	Steps       []StepInput
}

// RecipeUpdate carries a partial recipe payload. Nil scalar fields are left
// untouched; nil collections keep the existing rows, non-nil collections
// replace them wholesale.
type RecipeUpdate struct {
	NameUz        *string
	NameRu        *string
	NameEn        *string
	DescriptionUz *string
	DescriptionRu *string
	DescriptionEn *string

	Rating      *float64
	Calories    *int
	TimeMinutes *int
	Difficulty  *string
	Servings    *int

	Ingredients []IngredientInput
	Steps       []StepInput
}

func (s *RecipeService) validateRecipe(ctx context.Context, db *gorm.DB, in RecipeInput) (map[string]string, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.NameUz) == "" {
		fields["name_uz"] = "this field is required"
	}
	if !domain.ValidDifficulty(domain.RecipeDifficulty(in.Difficulty)) {
		fields["difficulty"] = "unknown difficulty"
	}
	if in.TimeMinutes < 0 {
		fields["time_minutes"] = "must not be negative"
	}
	if in.Servings < 1 {
		fields["servings"] = "must be at least 1"
	}

	if len(in.Ingredients) == 0 {
		fields["ingredients"] = "at least one ingredient is required"
	} else {
		ids := make([]uint, 0, len(in.Ingredients))
		for _, ing := range in.Ingredients {
			if ing.ProductID == 0 {
				fields["ingredients"] = "every ingredient needs a product_id"
				break
			}
			if strings.TrimSpace(ing.Quantity) == "" {
				fields["ingredients"] = "every ingredient needs a quantity"
				break
			}
			ids = append(ids, ing.ProductID)
		}
		if _, dup := fields["ingredients"]; !dup {
			active, err := repo.CountActiveProductsByIDs(ctx, db, ids)
			if err != nil {
				return nil, err
			}
			if active != int64(len(uniqueIDs(ids))) {
				fields["ingredients"] = "all ingredient products must exist and be active"
			}
		}
	}

	if len(in.Steps) == 0 {
		fields["steps"] = "at least one step is required"
	} else {
		seen := map[int]bool{}
		for _, st := range in.Steps {
			if st.StepNumber < 1 {
				fields["steps"] = "step numbers start at 1"
				break
			}
			if seen[st.StepNumber] {
				fields["steps"] = "step numbers must be unique"
				break
			}
			seen[st.StepNumber] = true
			if strings.TrimSpace(st.Description) == "" {
				fields["steps"] = "every step needs a description"
				break
			}
		}
	}

	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func buildIngredients(in []IngredientInput) []domain.RecipeProduct {
	out := make([]domain.RecipeProduct, len(in))
	for i, ing := range in {
		out[i] = domain.RecipeProduct{
			ProductID:  ing.ProductID,
			Quantity:   ing.Quantity,
			IsOptional: ing.IsOptional,
			Order:      ing.Order,
		}
	}
	return out
}

func buildSteps(in []StepInput) []domain.RecipeStep {
	out := make([]domain.RecipeStep, len(in))
	for i, st := range in {
		out[i] = domain.RecipeStep{
			StepNumber:      st.StepNumber,
			Title:           st.Title,
			Description:     st.Description,
			DurationMinutes: st.DurationMinutes,
			Tips:            st.Tips,
		}
	}
	return out
}

// Create validates the payload (including its nested collections) and
// persists the recipe with ingredients, steps, and uploaded media in one
// transaction.
func (s *RecipeService) Create(ctx context.Context, in RecipeInput, media []domain.Media) (*domain.Recipe, error) {
	tr := otel.Tracer("services/RecipeService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.Int("recipe.ingredients", len(in.Ingredients)),
			attribute.Int("recipe.steps", len(in.Steps)),
		),
	)
	defer span.End()

	var created *domain.Recipe

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields, err := s.validateRecipe(ctx, tx, in)
		if err != nil {
			return err
		}
		if fields != nil {
			return NewValidationError(fields)
		}

		r := &domain.Recipe{
			NameUz:        in.NameUz,
			NameRu:        defaultLocale(in.NameRu, in.NameUz),
			NameEn:        defaultLocale(in.NameEn, in.NameUz),
			DescriptionUz: in.DescriptionUz,
			DescriptionRu: defaultLocale(in.DescriptionRu, in.DescriptionUz),
			DescriptionEn: defaultLocale(in.DescriptionEn, in.DescriptionUz),
			Rating:        in.Rating,
			Calories:      in.Calories,
			TimeMinutes:   in.TimeMinutes,
			Difficulty:    domain.RecipeDifficulty(in.Difficulty),
			Servings:      in.Servings,
			IsActive:      true,
			Ingredients:   buildIngredients(in.Ingredients),
			Steps:         buildSteps(in.Steps),
		}
		if err := repo.CreateRecipe(ctx, tx, r); err != nil {
			return err
		}
		for i := range media {
			media[i].OwnerType = domain.OwnerRecipe
			media[i].OwnerID = r.ID
			if err := repo.CreateMedia(ctx, tx, &media[i]); err != nil {
				return err
			}
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return repo.GetRecipe(ctx, s.DB, created.ID)
}

// Get fetches one recipe with its nested collections and media, and bumps
// the view counter. The returned ViewCount reflects the increment.
func (s *RecipeService) Get(ctx context.Context, id uint) (*domain.Recipe, []domain.Media, error) {
	r, err := repo.GetRecipe(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrRecipeNotFound
		}
		return nil, nil, err
	}
	if err := repo.IncrementRecipeViews(ctx, s.DB, id); err != nil {
		return nil, nil, err
	}
	r.ViewCount++

	media, err := repo.ListMediaForOwner(ctx, s.DB, domain.OwnerRecipe, r.ID)
	if err != nil {
		return nil, nil, err
	}
	return r, media, nil
}

// MediaFor returns the media attached to one recipe without touching the
// view counter.
func (s *RecipeService) MediaFor(ctx context.Context, id uint) ([]domain.Media, error) {
	return repo.ListMediaForOwner(ctx, s.DB, domain.OwnerRecipe, id)
}

// StepMediaFor returns the media attached to the recipe's steps, keyed by
// step id. Step media is managed out of band, so this is read-only.
func (s *RecipeService) StepMediaFor(ctx context.Context, r *domain.Recipe) (map[uint][]domain.Media, error) {
	if len(r.Steps) == 0 {
		return nil, nil
	}
	ids := make([]uint, len(r.Steps))
	for i := range r.Steps {
		ids[i] = r.Steps[i].ID
	}
	return repo.ListMediaForOwners(ctx, s.DB, domain.OwnerRecipeStep, ids)
}

// Update applies a partial payload. Non-nil ingredient or step collections
// are validated and then replace the stored rows wholesale; a non-nil media
// slice likewise replaces the attachments. Everything runs in one
// transaction so a failed replacement leaves the recipe untouched.
func (s *RecipeService) Update(ctx context.Context, id uint, in RecipeUpdate, media []domain.Media) (*domain.Recipe, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetRecipe(ctx, tx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrRecipeNotFound
			}
			return err
		}

		applyRecipeUpdate(r, in)

		// Validate the merged state so partial payloads cannot sneak an
		// invalid collection past the nested checks.
		merged := recipeAsInput(r)
		if in.Ingredients != nil {
			merged.Ingredients = in.Ingredients
		}
		if in.Steps != nil {
			merged.Steps = in.Steps
		}
		fields, err := s.validateRecipe(ctx, tx, merged)
		if err != nil {
			return err
		}
		if fields != nil {
			return NewValidationError(fields)
		}

		if err := repo.SaveRecipe(ctx, tx, r); err != nil {
			return err
		}
		if in.Ingredients != nil {
			if err := repo.ReplaceIngredients(ctx, tx, r.ID, buildIngredients(in.Ingredients)); err != nil {
				return err
			}
		}
		if in.Steps != nil {
			if err := repo.ReplaceSteps(ctx, tx, r.ID, buildSteps(in.Steps)); err != nil {
				return err
			}
		}
		if media != nil {
			if err := repo.ReplaceMediaForOwner(ctx, tx, domain.OwnerRecipe, r.ID, media); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return repo.GetRecipe(ctx, s.DB, id)
}

func applyRecipeUpdate(r *domain.Recipe, in RecipeUpdate) {
	if in.NameUz != nil {
		r.NameUz = *in.NameUz
	}
	if in.NameRu != nil {
		r.NameRu = *in.NameRu
	}
	if in.NameEn != nil {
		r.NameEn = *in.NameEn
	}
	if in.DescriptionUz != nil {
		r.DescriptionUz = *in.DescriptionUz
	}
	if in.DescriptionRu != nil {
		r.DescriptionRu = *in.DescriptionRu
	}
	if in.DescriptionEn != nil {
		r.DescriptionEn = *in.DescriptionEn
	}
	if in.Rating != nil {
		r.Rating = *in.Rating
	}
	if in.Calories != nil {
		r.Calories = *in.Calories
	}
	if in.TimeMinutes != nil {
		r.TimeMinutes = *in.TimeMinutes
	}
	if in.Difficulty != nil {
		r.Difficulty = domain.RecipeDifficulty(*in.Difficulty)
	}
	if in.Servings != nil {
		r.Servings = *in.Servings
	}
}

// recipeAsInput projects the stored recipe back into input form so the
// merged state of a partial update can reuse the create-path validation.
func recipeAsInput(r *domain.Recipe) RecipeInput {
	in := RecipeInput{
		NameUz:        r.NameUz,
		DescriptionUz: r.DescriptionUz,
		Rating:        r.Rating,
		Calories:      r.Calories,
		TimeMinutes:   r.TimeMinutes,
		Difficulty:    string(r.Difficulty),
		Servings:      r.Servings,
	}
	for _, ing := range r.Ingredients {
		in.Ingredients = append(in.Ingredients, IngredientInput{
			ProductID:  ing.ProductID,
			Quantity:   ing.Quantity,
			IsOptional: ing.IsOptional,
			Order:      ing.Order,
		})
	}
	for _, st := range r.Steps {
		in.Steps = append(in.Steps, StepInput{
			StepNumber:      st.StepNumber,
			Title:           st.Title,
			Description:     st.Description,
			DurationMinutes: st.DurationMinutes,
			Tips:            st.Tips,
		})
	}
	return in
}

// List returns one page of active recipes (newest first) with their media
// grouped by recipe id and the total active count. Ingredients and steps
// come preloaded so listings can expose their counts cheaply.
func (s *RecipeService) List(ctx context.Context, page, pageSize int) ([]domain.Recipe, map[uint][]domain.Media, int64, error) {
	total, err := repo.CountActiveRecipes(ctx, s.DB)
	if err != nil {
		return nil, nil, 0, err
	}

	offset := (page - 1) * pageSize
	recipes, err := repo.ListActiveRecipesPage(ctx, s.DB, offset, pageSize)
	if err != nil {
		return nil, nil, 0, err
	}

	ids := make([]uint, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}
	media, err := repo.ListMediaForOwners(ctx, s.DB, domain.OwnerRecipe, ids)
	if err != nil {
		return nil, nil, 0, err
	}
	return recipes, media, total, nil
}

// Delete deactivates a recipe; nested rows stay in place.
func (s *RecipeService) Delete(ctx context.Context, id uint) error {
	err := repo.SoftDeleteRecipe(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}
	return nil
}
