// Package services – StoryService
//
// This file implements the StoryService, which manages promotional stories
// and their engagement tracking. Publication is derived lazily from status,
// active flag, and expiry timestamp at read time; transitioning a story into
// the published state stamps published_at when it is unset. View recording
// is deduplicated per viewer through a unique constraint, and clicks are
// rejected for stories that are not currently published.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oshxona/go-food-backend/internal/domain"
	"github.com/oshxona/go-food-backend/internal/repo"
)

// StoryService implements the use-cases around stories.
type StoryService struct {
	// DB is the database handle used for all story operations.
	DB *gorm.DB

	// Now supplies the clock for publication and expiry checks. Tests
	// override it; a nil value means time.Now.
	Now func() time.Time
}

func (s *StoryService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// StoryInput carries a full story payload for creation.
type StoryInput struct {
	TitleUz       string
	TitleRu       string
	TitleEn       string
	DescriptionUz string
	DescriptionRu string
	DescriptionEn string

	StoryType  string
	Status     string
	Order      int
	Duration   int
	IsFeatured bool
	ActionURL  string

	PublishedAt *time.Time
	ExpiresAt   *time.Time
}

// StoryUpdate carries a partial story payload. Nil fields are left
// untouched.
type StoryUpdate struct {
	TitleUz       *string
	TitleRu       *string
	TitleEn       *string
	DescriptionUz *string
	DescriptionRu *string
	DescriptionEn *string

	StoryType  *string
	Status     *string
	Order      *int
	Duration   *int
	IsActive   *bool
	IsFeatured *bool
	ActionURL  *string

	PublishedAt *time.Time
	ExpiresAt   *time.Time
}

func validateStoryInput(in StoryInput) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(in.TitleUz) == "" {
		fields["title_uz"] = "this field is required"
	}
	if !domain.ValidStoryType(domain.StoryType(in.StoryType)) {
		fields["story_type"] = "unknown story type"
	}
	if !domain.ValidStoryStatus(domain.StoryStatus(in.Status)) {
		fields["status"] = "unknown status"
	}
	if in.Duration < 1 || in.Duration > 30 {
		fields["duration"] = "duration must be between 1 and 30 seconds"
	}
	if in.PublishedAt != nil && in.ExpiresAt != nil && !in.ExpiresAt.After(*in.PublishedAt) {
		fields["expires_at"] = "expiry must come after publication"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Create validates and persists a new story together with its uploaded
// media. A story created directly in the published state gets published_at
// stamped when the payload left it empty.
func (s *StoryService) Create(ctx context.Context, in StoryInput, media []domain.Media) (*domain.Story, error) {
	if fields := validateStoryInput(in); fields != nil {
		return nil, NewValidationError(fields)
	}

	st := &domain.Story{
		TitleUz:       in.TitleUz,
		TitleRu:       defaultLocale(in.TitleRu, in.TitleUz),
		TitleEn:       defaultLocale(in.TitleEn, in.TitleUz),
		DescriptionUz: in.DescriptionUz,
		DescriptionRu: defaultLocale(in.DescriptionRu, in.DescriptionUz),
		DescriptionEn: defaultLocale(in.DescriptionEn, in.DescriptionUz),
		StoryType:     domain.StoryType(in.StoryType),
		Status:        domain.StoryStatus(in.Status),
		Order:         in.Order,
		Duration:      in.Duration,
		IsActive:      true,
		IsFeatured:    in.IsFeatured,
		ActionURL:     in.ActionURL,
		PublishedAt:   in.PublishedAt,
		ExpiresAt:     in.ExpiresAt,
	}
	if st.Status == domain.StatusPublished && st.PublishedAt == nil {
		now := s.now()
		st.PublishedAt = &now
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateStory(ctx, tx, st); err != nil {
			return err
		}
		for i := range media {
			media[i].OwnerType = domain.OwnerStory
			media[i].OwnerID = st.ID
			if err := repo.CreateMedia(ctx, tx, &media[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Get fetches one story by id regardless of publication state.
func (s *StoryService) Get(ctx context.Context, id uint) (*domain.Story, []domain.Media, error) {
	st, err := repo.GetStory(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrStoryNotFound
		}
		return nil, nil, err
	}
	media, err := repo.ListMediaForOwner(ctx, s.DB, domain.OwnerStory, st.ID)
	if err != nil {
		return nil, nil, err
	}
	return st, media, nil
}

// Update applies a partial payload. Any transition into the published
// state stamps published_at when the story has none yet. A nil media slice
// keeps the current attachments; a non-nil slice replaces them wholesale.
func (s *StoryService) Update(ctx context.Context, id uint, in StoryUpdate, media []domain.Media) (*domain.Story, error) {
	var updated *domain.Story

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := repo.GetStory(ctx, tx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrStoryNotFound
			}
			return err
		}

		wasPublished := st.Status == domain.StatusPublished
		applyStoryUpdate(st, in)

		if fields := validateStoryInput(storyAsInput(st)); fields != nil {
			return NewValidationError(fields)
		}
		if !wasPublished && st.Status == domain.StatusPublished && st.PublishedAt == nil {
			now := s.now()
			st.PublishedAt = &now
		}

		if err := repo.SaveStory(ctx, tx, st); err != nil {
			return err
		}
		if media != nil {
			if err := repo.ReplaceMediaForOwner(ctx, tx, domain.OwnerStory, st.ID, media); err != nil {
				return err
			}
		}
		updated = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyStoryUpdate(st *domain.Story, in StoryUpdate) {
	if in.TitleUz != nil {
		st.TitleUz = *in.TitleUz
	}
	if in.TitleRu != nil {
		st.TitleRu = *in.TitleRu
	}
	if in.TitleEn != nil {
		st.TitleEn = *in.TitleEn
	}
	if in.DescriptionUz != nil {
		st.DescriptionUz = *in.DescriptionUz
	}
	if in.DescriptionRu != nil {
		st.DescriptionRu = *in.DescriptionRu
	}
	if in.DescriptionEn != nil {
		st.DescriptionEn = *in.DescriptionEn
	}
	if in.StoryType != nil {
		st.StoryType = domain.StoryType(*in.StoryType)
	}
	if in.Status != nil {
		st.Status = domain.StoryStatus(*in.Status)
	}
	if in.Order != nil {
		st.Order = *in.Order
	}
	if in.Duration != nil {
		st.Duration = *in.Duration
	}
	if in.IsActive != nil {
		st.IsActive = *in.IsActive
	}
	if in.IsFeatured != nil {
		st.IsFeatured = *in.IsFeatured
	}
	if in.ActionURL != nil {
		st.ActionURL = *in.ActionURL
	}
	if in.PublishedAt != nil {
		st.PublishedAt = in.PublishedAt
	}
	if in.ExpiresAt != nil {
		st.ExpiresAt = in.ExpiresAt
	}
}

func storyAsInput(st *domain.Story) StoryInput {
	return StoryInput{
		TitleUz:     st.TitleUz,
		StoryType:   string(st.StoryType),
		Status:      string(st.Status),
		Duration:    st.Duration,
		PublishedAt: st.PublishedAt,
		ExpiresAt:   st.ExpiresAt,
	}
}

// ListPublic returns the stories visible to anonymous clients: published,
// active, and not expired, ordered by sort order then recency. A nil
// storyType (or the catch-all type) skips the type filter; featuredOnly
// additionally narrows to featured rows.
func (s *StoryService) ListPublic(ctx context.Context, featuredOnly bool, storyType *domain.StoryType) ([]domain.Story, map[uint][]domain.Media, error) {
	stories, err := repo.ListPublicStories(ctx, s.DB, s.now(), featuredOnly, storyType)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uint, len(stories))
	for i, st := range stories {
		ids[i] = st.ID
	}
	media, err := repo.ListMediaForOwners(ctx, s.DB, domain.OwnerStory, ids)
	if err != nil {
		return nil, nil, err
	}
	return stories, media, nil
}

// ListForStaff returns every story matching the optional filters, with no
// publication gating.
func (s *StoryService) ListForStaff(ctx context.Context, f repo.StoryFilter) ([]domain.Story, map[uint][]domain.Media, error) {
	stories, err := repo.ListStoriesForStaff(ctx, s.DB, f)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uint, len(stories))
	for i, st := range stories {
		ids[i] = st.ID
	}
	media, err := repo.ListMediaForOwners(ctx, s.DB, domain.OwnerStory, ids)
	if err != nil {
		return nil, nil, err
	}
	return stories, media, nil
}

// CountPublicByType returns how many publicly visible stories exist per
// story type.
func (s *StoryService) CountPublicByType(ctx context.Context) (map[domain.StoryType]int64, error) {
	stories, err := repo.ListPublicStories(ctx, s.DB, s.now(), false, nil)
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.StoryType]int64)
	for _, st := range stories {
		counts[st.StoryType]++
	}
	return counts, nil
}

// ViewInput reports one story viewing from a device or user.
type ViewInput struct {
	StoryID         uint
	DeviceID        *uint
	UserID          *uint
	DurationWatched int
	Completed       bool
}

// RecordView stores a story view and bumps the story's view counter. A
// repeat view by the same viewer returns the already stored row together
// with ErrViewAlreadyRecorded, without touching the counter; handlers
// surface that as a success.
func (s *StoryService) RecordView(ctx context.Context, in ViewInput) (*domain.StoryView, error) {
	if _, err := repo.GetStory(ctx, s.DB, in.StoryID); err != nil {
		if isNotFound(err) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}

	v := &domain.StoryView{
		StoryID:         in.StoryID,
		DeviceID:        in.DeviceID,
		UserID:          in.UserID,
		ViewedAt:        s.now(),
		DurationWatched: in.DurationWatched,
		Completed:       in.Completed,
	}

	var existing *domain.StoryView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prior, err := repo.FindStoryView(ctx, tx, in.StoryID, in.DeviceID, in.UserID)
		if err == nil {
			existing = prior
			return ErrViewAlreadyRecorded
		}
		if !isNotFound(err) {
			return err
		}
		if err := repo.CreateStoryView(ctx, tx, v); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
				return ErrViewAlreadyRecorded
			}
			return err
		}
		return repo.IncrementStoryViews(ctx, tx, in.StoryID)
	})
	if errors.Is(err, ErrViewAlreadyRecorded) {
		return existing, err
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ListViews returns story views with aggregate completion statistics,
// optionally narrowed by story or completion state. Staff-only.
func (s *StoryService) ListViews(ctx context.Context, storyID *uint, completed *bool) ([]domain.StoryView, repo.StoryViewStats, error) {
	return repo.ListStoryViews(ctx, s.DB, storyID, completed)
}

// Click records a tap on a published story and returns its action URL.
// Unpublished, inactive, or expired stories yield ErrStoryNotAvailable.
func (s *StoryService) Click(ctx context.Context, id uint) (string, error) {
	st, err := repo.GetStory(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return "", ErrStoryNotFound
		}
		return "", err
	}
	if !st.IsPublished(s.now()) {
		return "", ErrStoryNotAvailable
	}
	if err := repo.IncrementStoryClicks(ctx, s.DB, id); err != nil {
		return "", err
	}
	return st.ActionURL, nil
}

// Delete removes a story outright. Views cascade with it.
func (s *StoryService) Delete(ctx context.Context, id uint) error {
	err := repo.DeleteStory(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrStoryNotFound
		}
		return err
	}
	return nil
}
