// Story HTTP handlers.
//
// This file exposes the REST endpoints for promotional stories:
//   - GET    /story/             (staff: all with filters; public: published only)
//   - POST   /story/             (create, multipart with images)
//   - GET    /story/:id/         (detail)
//   - PUT    /story/:id/         (update)
//   - PATCH  /story/:id/         (partial update)
//   - DELETE /story/:id/         (hard delete)
//   - GET    /story/featured/    (published featured stories)
//   - GET    /story/active/      (published stories plus per-type counts)
//   - GET    /story/type/:type/  (published stories of one type)
//   - POST   /story/views/       (record a view, idempotent per viewer)
//   - GET    /story/views/       (staff: views with completion statistics)
//   - POST   /story/:id/click/   (record a click, returns the action URL)
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oshxona/go-food-backend/internal/domain"
	"github.com/oshxona/go-food-backend/internal/http/middleware"
	"github.com/oshxona/go-food-backend/internal/repo"
	"github.com/oshxona/go-food-backend/internal/services"
)

// CreateStoryRequest is the payload for creating a story. It binds from
// multipart form fields (images travel alongside) or plain JSON.
type CreateStoryRequest struct {
	TitleUz       string `form:"title_uz"       json:"title_uz"`
	TitleRu       string `form:"title_ru"       json:"title_ru"`
	TitleEn       string `form:"title_en"       json:"title_en"`
	DescriptionUz string `form:"description_uz" json:"description_uz"`
	DescriptionRu string `form:"description_ru" json:"description_ru"`
	DescriptionEn string `form:"description_en" json:"description_en"`

	StoryType  string `form:"story_type"  json:"story_type"`
	Status     string `form:"status"      json:"status"`
	Order      int    `form:"order"       json:"order"`
	Duration   int    `form:"duration"    json:"duration"`
	IsFeatured bool   `form:"is_featured" json:"is_featured"`
	ActionURL  string `form:"action_url"  json:"action_url"`

	PublishedAt *time.Time `form:"published_at" json:"published_at" time_format:"2006-01-02T15:04:05Z07:00"`
	ExpiresAt   *time.Time `form:"expires_at"   json:"expires_at"   time_format:"2006-01-02T15:04:05Z07:00"`
}

// UpdateStoryRequest is the partial-update payload; absent fields stay
// untouched.
type UpdateStoryRequest struct {
	TitleUz       *string `form:"title_uz"       json:"title_uz"`
	TitleRu       *string `form:"title_ru"       json:"title_ru"`
	TitleEn       *string `form:"title_en"       json:"title_en"`
	DescriptionUz *string `form:"description_uz" json:"description_uz"`
	DescriptionRu *string `form:"description_ru" json:"description_ru"`
	DescriptionEn *string `form:"description_en" json:"description_en"`

	StoryType  *string `form:"story_type"  json:"story_type"`
	Status     *string `form:"status"      json:"status"`
	Order      *int    `form:"order"       json:"order"`
	Duration   *int    `form:"duration"    json:"duration"`
	IsActive   *bool   `form:"is_active"   json:"is_active"`
	IsFeatured *bool   `form:"is_featured" json:"is_featured"`
	ActionURL  *string `form:"action_url"  json:"action_url"`

	PublishedAt *time.Time `form:"published_at" json:"published_at" time_format:"2006-01-02T15:04:05Z07:00"`
	ExpiresAt   *time.Time `form:"expires_at"   json:"expires_at"   time_format:"2006-01-02T15:04:05Z07:00"`
}

// StoryViewRequest reports that a viewer watched a story.
type StoryViewRequest struct {
	StoryID         uint  `json:"story_id"`
	DeviceID        *uint `json:"device_id"`
	DurationWatched int   `json:"duration_watched"`
	Completed       bool  `json:"completed"`
}

func (h *Handlers) storyNow() time.Time {
	if h.stories.Now != nil {
		return h.stories.Now()
	}
	return time.Now().UTC()
}

func (h *Handlers) storyItems(c *gin.Context, stories []domain.Story, media map[uint][]domain.Media, staff bool) []gin.H {
	loc := middleware.LocaleFrom(c)
	now := h.storyNow()
	out := make([]gin.H, len(stories))
	for i := range stories {
		s := &stories[i]
		if staff {
			out[i] = storyStaffItem(h.store, s, media[s.ID], now)
		} else {
			out[i] = storyPublicItem(h.store, loc, s, media[s.ID])
		}
	}
	return out
}

// queryUint parses an optional unsigned query parameter; a blank value
// yields nil, a malformed one an error.
func queryUint(c *gin.Context, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, err
	}
	v := uint(n)
	return &v, nil
}

func queryBool(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListStories godoc
// @ID          listStories
// @Summary     List stories
// @Description Staff callers see every story, filterable by story_type, status, is_featured, and is_active. Anonymous callers see only published, active, non-expired stories in a reduced projection.
// @Tags        Stories
// @Produce     json
// @Param       story_type  query string false "Filter by type (staff only)"
// @Param       status      query string false "Filter by status (staff only)"
// @Param       is_featured query bool   false "Filter by featured flag (staff only)"
// @Param       is_active   query bool   false "Filter by active flag (staff only)"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Router      /story/ [get]
func (h *Handlers) ListStories(c *gin.Context) {
	ctx := c.Request.Context()

	if middleware.IsStaff(c) {
		var f repo.StoryFilter
		if raw := strings.TrimSpace(c.Query("story_type")); raw != "" {
			t := domain.StoryType(strings.ToUpper(raw))
			if !domain.ValidStoryType(t) {
				fail(c, http.StatusBadRequest, "invalid filters", map[string]string{"story_type": "unknown story type"})
				return
			}
			f.StoryType = &t
		}
		if raw := strings.TrimSpace(c.Query("status")); raw != "" {
			s := domain.StoryStatus(strings.ToUpper(raw))
			if !domain.ValidStoryStatus(s) {
				fail(c, http.StatusBadRequest, "invalid filters", map[string]string{"status": "unknown status"})
				return
			}
			f.Status = &s
		}
		var err error
		if f.IsFeatured, err = queryBool(c, "is_featured"); err != nil {
			fail(c, http.StatusBadRequest, "invalid filters", map[string]string{"is_featured": "must be a boolean"})
			return
		}
		if f.IsActive, err = queryBool(c, "is_active"); err != nil {
			fail(c, http.StatusBadRequest, "invalid filters", map[string]string{"is_active": "must be a boolean"})
			return
		}

		stories, media, err := h.stories.ListForStaff(ctx, f)
		if err != nil {
			failErr(c, err)
			return
		}
		ok(c, http.StatusOK, "stories retrieved", h.storyItems(c, stories, media, true))
		return
	}

	stories, media, err := h.stories.ListPublic(ctx, false, nil)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "stories retrieved", h.storyItems(c, stories, media, false))
}

// CreateStory godoc
// @ID          createStory
// @Summary     Create a story
// @Description Creates a story with optional image uploads. Creating directly in the PUBLISHED state stamps published_at. Staff only.
// @Tags        Stories
// @Accept      mpfd
// @Produce     json
// @Param       body body handlers.CreateStoryRequest true "Story payload"
// @Success     201 {object} handlers.SuccessResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Failure     401 {object} handlers.ErrorResponse
// @Failure     403 {object} handlers.ErrorResponse
// @Router      /story/ [post]
func (h *Handlers) CreateStory(c *gin.Context) {
	var req CreateStoryRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"body": err.Error()})
		return
	}

	media, okUpload := h.collectUploads(c, string(domain.OwnerStory))
	if !okUpload {
		return
	}

	st, err := h.stories.Create(c.Request.Context(), services.StoryInput{
		TitleUz:       req.TitleUz,
		TitleRu:       req.TitleRu,
		TitleEn:       req.TitleEn,
		DescriptionUz: req.DescriptionUz,
		DescriptionRu: req.DescriptionRu,
		DescriptionEn: req.DescriptionEn,
		StoryType:     strings.ToUpper(req.StoryType),
		Status:        strings.ToUpper(req.Status),
		Order:         req.Order,
		Duration:      req.Duration,
		IsFeatured:    req.IsFeatured,
		ActionURL:     req.ActionURL,
		PublishedAt:   req.PublishedAt,
		ExpiresAt:     req.ExpiresAt,
	}, media)
	if err != nil {
		failErr(c, err)
		return
	}

	ok(c, http.StatusCreated, "story created",
		storyStaffItem(h.store, st, media, h.storyNow()))
}

// GetStory godoc
// @ID          getStory
// @Summary     Retrieve a story
// @Description Fetches one story by id. Staff see the full projection for any story; everyone else gets the public projection, and only for published, active, non-expired stories.
// @Tags        Stories
// @Produce     json
// @Param       id path int true "Story ID"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Router      /story/{id}/ [get]
func (h *Handlers) GetStory(c *gin.Context) {
	id, okID := idParam(c)
	if !okID {
		return
	}

	st, media, err := h.stories.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}

	now := h.storyNow()
	if !middleware.IsStaff(c) {
		// Drafts, archived, inactive and expired stories do not exist
		// for the public.
		if !st.IsPublished(now) {
			failErr(c, services.ErrStoryNotFound)
			return
		}
		ok(c, http.StatusOK, "story retrieved",
			storyPublicItem(h.store, middleware.LocaleFrom(c), st, media))
		return
	}
	ok(c, http.StatusOK, "story retrieved",
		storyStaffItem(h.store, st, media, now))
}

// UpdateStory godoc
// @ID          updateStory
// @Summary     Update a story
// @Description Applies a partial update. A transition into PUBLISHED stamps published_at when unset. Uploaded images replace the current attachments. Staff only.
// @Tags        Stories
// @Accept      mpfd
// @Produce     json
// @Param       id   path int true "Story ID"
// @Param       body body handlers.UpdateStoryRequest true "Partial payload"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Router      /story/{id}/ [put]
func (h *Handlers) UpdateStory(c *gin.Context) {
	id, okID := idParam(c)
	if !okID {
		return
	}

	var req UpdateStoryRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"body": err.Error()})
		return
	}

	media, okUpload := h.collectUploads(c, string(domain.OwnerStory))
	if !okUpload {
		return
	}

	upper := func(v *string) *string {
		if v == nil {
			return nil
		}
		u := strings.ToUpper(*v)
		return &u
	}

	st, err := h.stories.Update(c.Request.Context(), id, services.StoryUpdate{
		TitleUz:       req.TitleUz,
		TitleRu:       req.TitleRu,
		TitleEn:       req.TitleEn,
		DescriptionUz: req.DescriptionUz,
		DescriptionRu: req.DescriptionRu,
		DescriptionEn: req.DescriptionEn,
		StoryType:     upper(req.StoryType),
		Status:        upper(req.Status),
		Order:         req.Order,
		Duration:      req.Duration,
		IsActive:      req.IsActive,
		IsFeatured:    req.IsFeatured,
		ActionURL:     req.ActionURL,
		PublishedAt:   req.PublishedAt,
		ExpiresAt:     req.ExpiresAt,
	}, media)
	if err != nil {
		failErr(c, err)
		return
	}

	_, current, err := h.stories.Get(c.Request.Context(), st.ID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "story updated",
		storyStaffItem(h.store, st, current, h.storyNow()))
}

// DeleteStory godoc
// @ID          deleteStory
// @Summary     Delete a story
// @Description Removes a story permanently; its view records cascade. Staff only.
// @Tags        Stories
// @Produce     json
// @Param       id path int true "Story ID"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Router      /story/{id}/ [delete]
func (h *Handlers) DeleteStory(c *gin.Context) {
	id, okID := idParam(c)
	if !okID {
		return
	}
	if err := h.stories.Delete(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "story deleted", nil)
}

// FeaturedStories godoc
// @ID          featuredStories
// @Summary     List featured stories
// @Description Returns the published, active, non-expired stories flagged as featured.
// @Tags        Stories
// @Produce     json
// @Success     200 {object} handlers.SuccessResponse
// @Router      /story/featured/ [get]
func (h *Handlers) FeaturedStories(c *gin.Context) {
	stories, media, err := h.stories.ListPublic(c.Request.Context(), true, nil)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "featured stories retrieved", h.storyItems(c, stories, media, false))
}

// ActiveStories godoc
// @ID          activeStories
// @Summary     List active stories with type counts
// @Description Returns the publicly visible stories together with a per-type breakdown of how many are live.
// @Tags        Stories
// @Produce     json
// @Success     200 {object} handlers.SuccessResponse
// @Router      /story/active/ [get]
func (h *Handlers) ActiveStories(c *gin.Context) {
	ctx := c.Request.Context()

	stories, media, err := h.stories.ListPublic(ctx, false, nil)
	if err != nil {
		failErr(c, err)
		return
	}
	counts, err := h.stories.CountPublicByType(ctx)
	if err != nil {
		failErr(c, err)
		return
	}

	ok(c, http.StatusOK, "active stories retrieved", gin.H{
		"stories":        h.storyItems(c, stories, media, false),
		"counts_by_type": counts,
	})
}

// StoriesByType godoc
// @ID          storiesByType
// @Summary     List stories of one type
// @Description Returns the publicly visible stories of the given type. The ALL type returns every visible story.
// @Tags        Stories
// @Produce     json
// @Param       type path string true "Story type" Enums(PROMOTION, NEWS, ANNOUNCEMENT, FEATURED, ALL)
// @Success     200 {object} handlers.SuccessResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Router      /story/type/{type}/ [get]
func (h *Handlers) StoriesByType(c *gin.Context) {
	t := domain.StoryType(strings.ToUpper(strings.TrimSpace(c.Param("type"))))
	if !domain.ValidStoryType(t) {
		fail(c, http.StatusBadRequest, "invalid story type", map[string]string{"type": "unknown story type"})
		return
	}

	stories, media, err := h.stories.ListPublic(c.Request.Context(), false, &t)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "stories retrieved", h.storyItems(c, stories, media, false))
}

// RecordStoryView godoc
// @ID          recordStoryView
// @Summary     Record a story view
// @Description Stores one view per (story, device, user) and bumps the story's view counter. Repeat views from the same viewer return success without counting again.
// @Tags        Stories
// @Accept      json
// @Produce     json
// @Param       body body handlers.StoryViewRequest true "View payload"
// @Success     201 {object} handlers.SuccessResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Router      /story/views/ [post]
func (h *Handlers) RecordStoryView(c *gin.Context) {
	var req StoryViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"body": err.Error()})
		return
	}

	v, err := h.stories.RecordView(c.Request.Context(), services.ViewInput{
		StoryID:         req.StoryID,
		DeviceID:        req.DeviceID,
		UserID:          middleware.UserIDFrom(c),
		DurationWatched: req.DurationWatched,
		Completed:       req.Completed,
	})
	if err != nil {
		if errors.Is(err, services.ErrViewAlreadyRecorded) {
			ok(c, http.StatusOK, "view already recorded", v)
			return
		}
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, "view recorded", v)
}

// ListStoryViews godoc
// @ID          listStoryViews
// @Summary     List story views
// @Description Returns view records with completion statistics, optionally filtered by story or completion state. Staff only.
// @Tags        Stories
// @Produce     json
// @Param       story_id  query int  false "Filter by story"
// @Param       completed query bool false "Filter by completion"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Failure     401 {object} handlers.ErrorResponse
// @Failure     403 {object} handlers.ErrorResponse
// @Router      /story/views/ [get]
func (h *Handlers) ListStoryViews(c *gin.Context) {
	storyID, err := queryUint(c, "story_id")
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid filters", map[string]string{"story_id": "must be a positive integer"})
		return
	}
	completed, err := queryBool(c, "completed")
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid filters", map[string]string{"completed": "must be a boolean"})
		return
	}

	views, stats, err := h.stories.ListViews(c.Request.Context(), storyID, completed)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "story views retrieved", gin.H{
		"views": views,
		"stats": stats,
	})
}

// ClickStory godoc
// @ID          clickStory
// @Summary     Record a story click
// @Description Bumps the click counter of a currently published story and returns its action URL. Unpublished stories are rejected.
// @Tags        Stories
// @Produce     json
// @Param       id path int true "Story ID"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Router      /story/{id}/click/ [post]
func (h *Handlers) ClickStory(c *gin.Context) {
	id, okID := idParam(c)
	if !okID {
		return
	}

	actionURL, err := h.stories.Click(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "click recorded", gin.H{"action_url": actionURL})
}
