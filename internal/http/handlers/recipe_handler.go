// Recipe HTTP handlers.
//
// This file exposes the REST endpoints for recipes:
//   - GET    /recipes/       (active listing with ingredient/step counts)
//   - POST   /recipes/       (create with nested ingredients and steps)
//   - GET    /recipes/:id/   (detail; bumps the view counter)
//   - PUT    /recipes/:id/   (update; nested collections replaced wholesale)
//   - PATCH  /recipes/:id/   (partial update)
//   - DELETE /recipes/:id/   (soft delete)
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oshxona/go-food-backend/internal/domain"
	"github.com/oshxona/go-food-backend/internal/http/middleware"
	"github.com/oshxona/go-food-backend/internal/services"
	"github.com/oshxona/go-food-backend/internal/utils"
)

// IngredientRequest is one nested ingredient row.
type IngredientRequest struct {
	ProductID  uint   `json:"product_id"`
	Quantity   string `json:"quantity"`
	IsOptional bool   `json:"is_optional"`
	Order      int    `json:"order"`
}

// StepRequest is one nested preparation step.
type StepRequest struct {
	StepNumber      int    `json:"step_number"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	Tips            string `json:"tips"`
}

// CreateRecipeRequest is the payload for creating a recipe. It binds from
// plain JSON or from a multipart form where the nested collections travel
// as JSON-encoded fields alongside the images.
type CreateRecipeRequest struct {
	NameUz        string `form:"name_uz"        json:"name_uz"`
	NameRu        string `form:"name_ru"        json:"name_ru"`
	NameEn        string `form:"name_en"        json:"name_en"`
	DescriptionUz string `form:"description_uz" json:"description_uz"`
	DescriptionRu string `form:"description_ru" json:"description_ru"`
	DescriptionEn string `form:"description_en" json:"description_en"`

	Rating      float64 `form:"rating"       json:"rating"`
	Calories    int     `form:"calories"     json:"calories"`
	TimeMinutes int     `form:"time_minutes" json:"time_minutes"`
	Difficulty  string  `form:"difficulty"   json:"difficulty"`
	Servings    int     `form:"servings"     json:"servings"`

	Ingredients []IngredientRequest `form:"-" json:"ingredients"`
	Steps       []StepRequest       `form:"-" json:"steps"`
}

// UpdateRecipeRequest is the partial-update payload. Absent scalars stay
// untouched; absent collections keep their stored rows.
type UpdateRecipeRequest struct {
	NameUz        *string `form:"name_uz"        json:"name_uz"`
	NameRu        *string `form:"name_ru"        json:"name_ru"`
	NameEn        *string `form:"name_en"        json:"name_en"`
	DescriptionUz *string `form:"description_uz" json:"description_uz"`
	DescriptionRu *string `form:"description_ru" json:"description_ru"`
	DescriptionEn *string `form:"description_en" json:"description_en"`

	Rating      *float64 `form:"rating"       json:"rating"`
	Calories    *int     `form:"calories"     json:"calories"`
	TimeMinutes *int     `form:"time_minutes" json:"time_minutes"`
	Difficulty  *string  `form:"difficulty"   json:"difficulty"`
	Servings    *int     `form:"servings"     json:"servings"`

	Ingredients []IngredientRequest `form:"-" json:"ingredients"`
	Steps       []StepRequest       `form:"-" json:"steps"`
}

// bindRecipeRequest accepts a recipe payload either as a JSON body or as a
// multipart form. In the multipart case the ingredient and step collections
// are read from JSON-encoded form fields so they can travel next to the
// uploaded images.
func bindRecipeRequest(c *gin.Context, req any, ingredients *[]IngredientRequest, steps *[]StepRequest) error {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return c.ShouldBindJSON(req)
	}
	if err := c.ShouldBind(req); err != nil {
		return err
	}
	if raw := c.PostForm("ingredients"); raw != "" {
		if err := json.Unmarshal([]byte(raw), ingredients); err != nil {
			return fmt.Errorf("ingredients: %w", err)
		}
	}
	if raw := c.PostForm("steps"); raw != "" {
		if err := json.Unmarshal([]byte(raw), steps); err != nil {
			return fmt.Errorf("steps: %w", err)
		}
	}
	return nil
}

func toIngredientInputs(in []IngredientRequest) []services.IngredientInput {
	if in == nil {
		return nil
	}
	out := make([]services.IngredientInput, len(in))
	for i, ing := range in {
		out[i] = services.IngredientInput{
			ProductID:  ing.ProductID,
			Quantity:   ing.Quantity,
			IsOptional: ing.IsOptional,
			Order:      ing.Order,
		}
	}
	return out
}

func toStepInputs(in []StepRequest) []services.StepInput {
	if in == nil {
		return nil
	}
	out := make([]services.StepInput, len(in))
	for i, st := range in {
		out[i] = services.StepInput{
			StepNumber:      st.StepNumber,
			Title:           st.Title,
			Description:     st.Description,
			DurationMinutes: st.DurationMinutes,
			Tips:            st.Tips,
		}
	}
	return out
}

// ListRecipes godoc
// @ID          listRecipes
// @Summary     List active recipes
// @Description Returns one page of active recipes with ingredient and step counts, localized per Accept-Language.
// @Tags        Recipes
// @Produce     json
// @Param       page       query int false "Page number (1-based)"
// @Param       page_size  query int false "Items per page"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     500 {object} handlers.ErrorResponse
// @Router      /recipes/ [get]
func (h *Handlers) ListRecipes(c *gin.Context) {
	page, pageSize := pageParams(c)

	recipes, media, total, err := h.recipes.List(c.Request.Context(), page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}

	loc := middleware.LocaleFrom(c)
	results := make([]gin.H, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		results[i] = recipeListItem(h.store, loc, r, media[r.ID])
	}

	paged(c, "recipes retrieved", results,
		utils.NewPageMeta(c.Request.URL.Path, page, pageSize, total))
}

// CreateRecipe godoc
// @ID          createRecipe
// @Summary     Create a recipe
// @Description Creates a recipe with its nested ingredients and steps in one transaction, optionally with image uploads. Staff only.
// @Tags        Recipes
// @Accept      json
// @Accept      mpfd
// @Produce     json
// @Param       body body handlers.CreateRecipeRequest true "Recipe payload"
// @Success     201 {object} handlers.SuccessResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Failure     401 {object} handlers.ErrorResponse
// @Failure     403 {object} handlers.ErrorResponse
// @Router      /recipes/ [post]
func (h *Handlers) CreateRecipe(c *gin.Context) {
	var req CreateRecipeRequest
	if err := bindRecipeRequest(c, &req, &req.Ingredients, &req.Steps); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"body": err.Error()})
		return
	}

	media, okUpload := h.collectUploads(c, string(domain.OwnerRecipe))
	if !okUpload {
		return
	}

	r, err := h.recipes.Create(c.Request.Context(), services.RecipeInput{
		NameUz:        req.NameUz,
		NameRu:        req.NameRu,
		NameEn:        req.NameEn,
		DescriptionUz: req.DescriptionUz,
		DescriptionRu: req.DescriptionRu,
		DescriptionEn: req.DescriptionEn,
		Rating:        req.Rating,
		Calories:      req.Calories,
		TimeMinutes:   req.TimeMinutes,
		Difficulty:    req.Difficulty,
		Servings:      req.Servings,
		Ingredients:   toIngredientInputs(req.Ingredients),
		Steps:         toStepInputs(req.Steps),
	}, media)
	if err != nil {
		failErr(c, err)
		return
	}

	ok(c, http.StatusCreated, "recipe created",
		recipeDetail(h.store, middleware.LocaleFrom(c), r, media, nil))
}

// GetRecipe godoc
// @ID          getRecipe
// @Summary     Retrieve a recipe
// @Description Fetches one recipe with ingredients, steps, and total duration. Every fetch increments the view counter.
// @Tags        Recipes
// @Produce     json
// @Param       id path int true "Recipe ID"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Router      /recipes/{id}/ [get]
func (h *Handlers) GetRecipe(c *gin.Context) {
	id, okID := idParam(c)
	if !okID {
		return
	}

	r, media, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	stepMedia, err := h.recipes.StepMediaFor(c.Request.Context(), r)
	if err != nil {
		failErr(c, err)
		return
	}

	ok(c, http.StatusOK, "recipe retrieved",
		recipeDetail(h.store, middleware.LocaleFrom(c), r, media, stepMedia))
}

// UpdateRecipe godoc
// @ID          updateRecipe
// @Summary     Update a recipe
// @Description Applies a partial update. Supplied ingredient or step collections replace the stored rows wholesale, and uploaded images replace the attachments. Staff only.
// @Tags        Recipes
// @Accept      json
// @Accept      mpfd
// @Produce     json
// @Param       id   path int true "Recipe ID"
// @Param       body body handlers.UpdateRecipeRequest true "Partial payload"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Router      /recipes/{id}/ [put]
func (h *Handlers) UpdateRecipe(c *gin.Context) {
	id, okID := idParam(c)
	if !okID {
		return
	}

	var req UpdateRecipeRequest
	if err := bindRecipeRequest(c, &req, &req.Ingredients, &req.Steps); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"body": err.Error()})
		return
	}

	uploads, okUpload := h.collectUploads(c, string(domain.OwnerRecipe))
	if !okUpload {
		return
	}

	r, err := h.recipes.Update(c.Request.Context(), id, services.RecipeUpdate{
		NameUz:        req.NameUz,
		NameRu:        req.NameRu,
		NameEn:        req.NameEn,
		DescriptionUz: req.DescriptionUz,
		DescriptionRu: req.DescriptionRu,
		DescriptionEn: req.DescriptionEn,
		Rating:        req.Rating,
		Calories:      req.Calories,
		TimeMinutes:   req.TimeMinutes,
		Difficulty:    req.Difficulty,
		Servings:      req.Servings,
		Ingredients:   toIngredientInputs(req.Ingredients),
		Steps:         toStepInputs(req.Steps),
	}, uploads)
	if err != nil {
		failErr(c, err)
		return
	}

	media, err := h.recipes.MediaFor(c.Request.Context(), r.ID)
	if err != nil {
		failErr(c, err)
		return
	}
	stepMedia, err := h.recipes.StepMediaFor(c.Request.Context(), r)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "recipe updated",
		recipeDetail(h.store, middleware.LocaleFrom(c), r, media, stepMedia))
}

// DeleteRecipe godoc
// @ID          deleteRecipe
// @Summary     Soft-delete a recipe
// @Description Marks the recipe inactive; nested rows stay in place. Staff only.
// @Tags        Recipes
// @Produce     json
// @Param       id path int true "Recipe ID"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Router      /recipes/{id}/ [delete]
func (h *Handlers) DeleteRecipe(c *gin.Context) {
	id, okID := idParam(c)
	if !okID {
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "recipe deleted", nil)
}
