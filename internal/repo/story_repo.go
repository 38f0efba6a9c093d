// Package repo – stories and story views.
//
// Visibility is computed lazily: the public predicate re-evaluates
// status/active/expiry on every query, nothing ever transitions stories in
// the background. Counters are bumped with atomic column updates.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oshxona/go-food-backend/internal/domain"
)

// StoryFilter narrows staff story listings. Nil pointer fields are ignored.
type StoryFilter struct {
	StoryType  *domain.StoryType
	Status     *domain.StoryStatus
	IsFeatured *bool
	IsActive   *bool
}

// CreateStory inserts a story row.
func CreateStory(ctx context.Context, db *gorm.DB, s *domain.Story) error {
	return db.WithContext(ctx).Create(s).Error
}

// GetStory fetches a story by id. Returns ErrNotFound when missing.
func GetStory(ctx context.Context, db *gorm.DB, id uint) (*domain.Story, error) {
	var s domain.Story
	if err := db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveStory persists all story columns.
func SaveStory(ctx context.Context, db *gorm.DB, s *domain.Story) error {
	return db.WithContext(ctx).Save(s).Error
}

// DeleteStory hard-deletes a story; views cascade. Returns ErrNotFound when
// no row matched.
func DeleteStory(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.Story{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// publicScope is the active+published+non-expired predicate every
// anonymous read goes through.
func publicScope(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.
			Where("status = ?", domain.StatusPublished).
			Where("is_active = ?", true).
			Where("expires_at IS NULL OR expires_at > ?", now)
	}
}

// storyOrder sorts stories for display: lower order first, then most
// recently published.
func storyOrder(tx *gorm.DB) *gorm.DB {
	return tx.Order("sort_order asc").Order("published_at desc")
}

// ListPublicStories returns the publicly visible stories, optionally
// narrowed to featured entries or one story type.
func ListPublicStories(ctx context.Context, db *gorm.DB, now time.Time, featuredOnly bool, storyType *domain.StoryType) ([]domain.Story, error) {
	tx := db.WithContext(ctx).Scopes(publicScope(now))
	if featuredOnly {
		tx = tx.Where("is_featured = ?", true)
	}
	if storyType != nil && *storyType != domain.StoryAll {
		tx = tx.Where("story_type = ?", *storyType)
	}
	var out []domain.Story
	err := storyOrder(tx).Find(&out).Error
	return out, err
}

// ListStoriesForStaff returns all stories matching the filter, unrestricted
// by the public predicate.
func ListStoriesForStaff(ctx context.Context, db *gorm.DB, f StoryFilter) ([]domain.Story, error) {
	tx := db.WithContext(ctx).Model(&domain.Story{})
	if f.StoryType != nil {
		tx = tx.Where("story_type = ?", *f.StoryType)
	}
	if f.Status != nil {
		tx = tx.Where("status = ?", *f.Status)
	}
	if f.IsFeatured != nil {
		tx = tx.Where("is_featured = ?", *f.IsFeatured)
	}
	if f.IsActive != nil {
		tx = tx.Where("is_active = ?", *f.IsActive)
	}
	var out []domain.Story
	err := storyOrder(tx).Find(&out).Error
	return out, err
}

// IncrementStoryViews bumps view_count atomically.
func IncrementStoryViews(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).
		Model(&domain.Story{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// IncrementStoryClicks bumps click_count atomically.
func IncrementStoryClicks(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).
		Model(&domain.Story{}).
		Where("id = ?", id).
		UpdateColumn("click_count", gorm.Expr("click_count + ?", 1)).Error
}

// storyViewScope narrows a query to one (story, device, user) triple.
// NULL device or user columns defeat the unique index, so they are
// matched explicitly.
func storyViewScope(tx *gorm.DB, storyID uint, deviceID, userID *uint) *gorm.DB {
	tx = tx.Where("story_id = ?", storyID)
	if deviceID != nil {
		tx = tx.Where("device_id = ?", *deviceID)
	} else {
		tx = tx.Where("device_id IS NULL")
	}
	if userID != nil {
		tx = tx.Where("user_id = ?", *userID)
	} else {
		tx = tx.Where("user_id IS NULL")
	}
	return tx
}

// FindStoryView fetches the view row for one viewer triple, if any.
func FindStoryView(ctx context.Context, db *gorm.DB, storyID uint, deviceID, userID *uint) (*domain.StoryView, error) {
	var v domain.StoryView
	err := storyViewScope(db.WithContext(ctx), storyID, deviceID, userID).First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateStoryView inserts one view row, enforcing at most one per
// (story, device, user) triple. An explicit lookup catches repeats
// first; the unique index still backstops concurrent submissions.
// Duplicates surface as gorm.ErrDuplicatedKey and the service layer
// translates that into the already-recorded success path.
func CreateStoryView(ctx context.Context, db *gorm.DB, v *domain.StoryView) error {
	var n int64
	err := storyViewScope(db.WithContext(ctx).Model(&domain.StoryView{}), v.StoryID, v.DeviceID, v.UserID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return gorm.ErrDuplicatedKey
	}
	return db.WithContext(ctx).Create(v).Error
}

// StoryViewStats summarizes view rows for the admin listing.
type StoryViewStats struct {
	TotalViews     int64   `json:"total_views"`
	CompletedViews int64   `json:"completed_views"`
	CompletionRate float64 `json:"completion_rate"`
}

// ListStoryViews returns view rows, newest first, optionally narrowed to
// one story and/or a completion state, together with summary statistics.
func ListStoryViews(ctx context.Context, db *gorm.DB, storyID *uint, completed *bool) ([]domain.StoryView, StoryViewStats, error) {
	tx := db.WithContext(ctx).Model(&domain.StoryView{})
	if storyID != nil {
		tx = tx.Where("story_id = ?", *storyID)
	}
	if completed != nil {
		tx = tx.Where("completed = ?", *completed)
	}

	var rows []domain.StoryView
	if err := tx.Order("viewed_at desc").Find(&rows).Error; err != nil {
		return nil, StoryViewStats{}, err
	}

	stats := StoryViewStats{TotalViews: int64(len(rows))}
	for _, v := range rows {
		if v.Completed {
			stats.CompletedViews++
		}
	}
	if stats.TotalViews > 0 {
		rate := float64(stats.CompletedViews) / float64(stats.TotalViews) * 100
		stats.CompletionRate = float64(int(rate*100+0.5)) / 100
	}
	return rows, stats, nil
}
