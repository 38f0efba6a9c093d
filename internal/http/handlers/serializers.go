// Package handlers – response projections.
//
// This file builds the JSON shapes each endpoint returns. Localized
// projections substitute the title/description pair for the request locale
// through i18n.Pick; the web listing projection keeps all locale variants
// raw so browser clients can switch languages without refetching. Media
// rows are rendered with their public URLs resolved by the file store.
package handlers

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oshxona/go-food-backend/internal/domain"
	"github.com/oshxona/go-food-backend/internal/i18n"
)

// FileStore abstracts uploaded-file persistence for handlers. Satisfied by
// storage.LocalStore.
type FileStore interface {
	Save(ctx context.Context, ownerKind, originalFilename string, r io.Reader) (string, error)
	URL(key string) string
}

func mediaPayload(store FileStore, media []domain.Media) []gin.H {
	out := make([]gin.H, len(media))
	for i, m := range media {
		out[i] = gin.H{
			"id":                m.ID,
			"url":               store.URL(m.File),
			"media_type":        m.MediaType,
			"original_filename": m.OriginalFilename,
			"created_at":        m.CreatedAt,
		}
	}
	return out
}

// productDetail is the localized projection used for detail responses and
// mobile listings.
func productDetail(store FileStore, loc i18n.Locale, p *domain.Product, media []domain.Media) gin.H {
	return gin.H{
		"id":               p.ID,
		"uuid":             p.UUID,
		"title":            i18n.Pick(loc, p.TitleUz, p.TitleRu, p.TitleEn),
		"description":      i18n.Pick(loc, p.DescriptionUz, p.DescriptionRu, p.DescriptionEn),
		"price":            p.Price,
		"discount":         p.Discount,
		"real_price":       p.RealPrice,
		"discount_amount":  p.DiscountAmount(),
		"category":         p.Category,
		"measurement_type": p.MeasurementType,
		"is_active":        p.IsActive,
		"images":           mediaPayload(store, media),
		"created_at":       p.CreatedAt,
		"updated_at":       p.UpdatedAt,
	}
}

// productWebItem is the reduced listing projection for browser clients:
// every locale variant stays raw and derived fields are dropped.
func productWebItem(store FileStore, p *domain.Product, media []domain.Media) gin.H {
	return gin.H{
		"id":               p.ID,
		"uuid":             p.UUID,
		"title_uz":         p.TitleUz,
		"title_ru":         p.TitleRu,
		"title_en":         p.TitleEn,
		"price":            p.Price,
		"discount":         p.Discount,
		"real_price":       p.RealPrice,
		"category":         p.Category,
		"measurement_type": p.MeasurementType,
		"images":           mediaPayload(store, media),
	}
}

func recipeListItem(store FileStore, loc i18n.Locale, r *domain.Recipe, media []domain.Media) gin.H {
	return gin.H{
		"id":                r.ID,
		"uuid":              r.UUID,
		"name":              i18n.Pick(loc, r.NameUz, r.NameRu, r.NameEn),
		"description":       i18n.Pick(loc, r.DescriptionUz, r.DescriptionRu, r.DescriptionEn),
		"rating":            r.Rating,
		"calories":          r.Calories,
		"time_minutes":      r.TimeMinutes,
		"difficulty":        r.Difficulty,
		"servings":          r.Servings,
		"view_count":        r.ViewCount,
		"ingredients_count": len(r.Ingredients),
		"steps_count":       len(r.Steps),
		"images":            mediaPayload(store, media),
	}
}

func recipeDetail(store FileStore, loc i18n.Locale, r *domain.Recipe, media []domain.Media, stepMedia map[uint][]domain.Media) gin.H {
	ingredients := make([]gin.H, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ingredients[i] = gin.H{
			"id":          ing.ID,
			"product_id":  ing.ProductID,
			"product":     i18n.Pick(loc, ing.Product.TitleUz, ing.Product.TitleRu, ing.Product.TitleEn),
			"quantity":    ing.Quantity,
			"is_optional": ing.IsOptional,
			"order":       ing.Order,
		}
	}

	steps := make([]gin.H, len(r.Steps))
	for i, st := range r.Steps {
		var mediaURL any
		if ms := stepMedia[st.ID]; len(ms) > 0 {
			mediaURL = store.URL(ms[0].File)
		}
		steps[i] = gin.H{
			"id":               st.ID,
			"step_number":      st.StepNumber,
			"title":            st.Title,
			"description":      st.Description,
			"duration_minutes": st.DurationMinutes,
			"tips":             st.Tips,
			"media_url":        mediaURL,
		}
	}

	payload := recipeListItem(store, loc, r, media)
	payload["ingredients"] = ingredients
	payload["steps"] = steps
	payload["total_duration"] = r.TotalDuration()
	payload["created_at"] = r.CreatedAt
	payload["updated_at"] = r.UpdatedAt
	return payload
}

// storyPublicItem is the reduced projection anonymous clients receive.
func storyPublicItem(store FileStore, loc i18n.Locale, s *domain.Story, media []domain.Media) gin.H {
	return gin.H{
		"id":          s.ID,
		"uuid":        s.UUID,
		"title":       i18n.Pick(loc, s.TitleUz, s.TitleRu, s.TitleEn),
		"description": i18n.Pick(loc, s.DescriptionUz, s.DescriptionRu, s.DescriptionEn),
		"story_type":  s.StoryType,
		"order":       s.Order,
		"duration":    s.Duration,
		"is_featured": s.IsFeatured,
		"action_url":  s.ActionURL,
		"images":      mediaPayload(store, media),
	}
}

// storyStaffItem carries every field plus the derived publication flags.
func storyStaffItem(store FileStore, s *domain.Story, media []domain.Media, now time.Time) gin.H {
	return gin.H{
		"id":             s.ID,
		"uuid":           s.UUID,
		"title_uz":       s.TitleUz,
		"title_ru":       s.TitleRu,
		"title_en":       s.TitleEn,
		"description_uz": s.DescriptionUz,
		"description_ru": s.DescriptionRu,
		"description_en": s.DescriptionEn,
		"story_type":     s.StoryType,
		"status":         s.Status,
		"order":          s.Order,
		"duration":       s.Duration,
		"published_at":   s.PublishedAt,
		"expires_at":     s.ExpiresAt,
		"is_active":      s.IsActive,
		"is_featured":    s.IsFeatured,
		"is_published":   s.IsPublished(now),
		"is_expired":     s.IsExpired(now),
		"action_url":     s.ActionURL,
		"view_count":     s.ViewCount,
		"click_count":    s.ClickCount,
		"images":         mediaPayload(store, media),
		"created_at":     s.CreatedAt,
		"updated_at":     s.UpdatedAt,
	}
}
