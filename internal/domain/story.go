package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoryType classifies promotional stories, mirroring product categories.
type StoryType string

// Supported story types.
const (
	StoryPromotion    StoryType = "PROMOTION"
	StoryNews         StoryType = "NEWS"
	StoryAnnouncement StoryType = "ANNOUNCEMENT"
	StoryFeatured     StoryType = "FEATURED"
	StoryAll          StoryType = "ALL"
)

// ValidStoryType reports whether t is a known story type.
func ValidStoryType(t StoryType) bool {
	switch t {
	case StoryPromotion, StoryNews, StoryAnnouncement, StoryFeatured, StoryAll:
		return true
	}
	return false
}

// StoryStatus is the editorial state of a story.
type StoryStatus string

// Story statuses. Updates permit arbitrary status assignment; the natural
// flow is DRAFT → PUBLISHED → ARCHIVED.
const (
	StatusDraft     StoryStatus = "DRAFT"
	StatusPublished StoryStatus = "PUBLISHED"
	StatusArchived  StoryStatus = "ARCHIVED"
)

// ValidStoryStatus reports whether s is a known story status.
func ValidStoryStatus(s StoryStatus) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Story is a time-boxed promotional banner entry.
//
// Expiration is lazy: no background job transitions stories, every read
// recomputes IsExpired/IsPublished from the current time. PublishedAt is
// auto-stamped on the transition to PUBLISHED when not already set, and
// ExpiresAt must be strictly after PublishedAt when both are present.
type Story struct {
	ID   uint   `json:"id"   gorm:"primaryKey"`
	UUID string `json:"uuid" gorm:"type:char(36);uniqueIndex"`

	TitleUz string `json:"title_uz" gorm:"type:varchar(255);not null;index"`
	TitleRu string `json:"title_ru" gorm:"type:varchar(255)"`
	TitleEn string `json:"title_en" gorm:"type:varchar(255)"`

	DescriptionUz string `json:"description_uz" gorm:"type:text"`
	DescriptionRu string `json:"description_ru" gorm:"type:text"`
	DescriptionEn string `json:"description_en" gorm:"type:text"`

	StoryType StoryType   `json:"story_type" gorm:"type:varchar(20);not null;default:'ALL';index:idx_story_type_active,priority:1"`
	Status    StoryStatus `json:"status"     gorm:"type:varchar(10);not null;default:'DRAFT';index:idx_story_status_active,priority:1"`

	// Order controls display position; lower numbers appear first.
	Order    int `json:"order"    gorm:"column:sort_order;not null;default:0"`
	Duration int `json:"duration" gorm:"not null;default:5"` // seconds, 1..30

	PublishedAt *time.Time `json:"published_at" gorm:"index"`
	ExpiresAt   *time.Time `json:"expires_at"   gorm:"index"`

	IsActive   bool `json:"is_active"   gorm:"not null;default:true;index:idx_story_status_active,priority:2;index:idx_story_type_active,priority:2"`
	IsFeatured bool `json:"is_featured" gorm:"not null;default:false"`

	ActionURL string `json:"action_url" gorm:"type:varchar(500)"`

	ViewCount  int `json:"view_count"  gorm:"not null;default:0"`
	ClickCount int `json:"click_count" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Story.
func (Story) TableName() string { return "stories" }

// BeforeCreate assigns a public UUID when none was provided.
func (s *Story) BeforeCreate(*gorm.DB) error {
	if s.UUID == "" {
		s.UUID = uuid.NewString()
	}
	return nil
}

// IsExpired reports whether the story's expiry time has passed. A story with
// no expiry never expires.
func (s *Story) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// IsPublished reports whether the story is publicly visible: status
// PUBLISHED, active, and not expired at the given instant.
func (s *Story) IsPublished(now time.Time) bool {
	return s.Status == StatusPublished && s.IsActive && !s.IsExpired(now)
}

// StoryView records that a viewer (device and/or user) saw a story. At most
// one row exists per (story, device, user) triple; the database constraint
// resolves concurrent duplicate submissions. Rows are never updated.
type StoryView struct {
	ID       uint  `json:"id"       gorm:"primaryKey"`
	StoryID  uint  `json:"story_id" gorm:"not null;uniqueIndex:ux_story_view,priority:1;index"`
	DeviceID *uint `json:"device_id,omitempty" gorm:"uniqueIndex:ux_story_view,priority:2"`
	UserID   *uint `json:"user_id,omitempty"   gorm:"uniqueIndex:ux_story_view,priority:3"`

	ViewedAt        time.Time `json:"viewed_at" gorm:"index"`
	DurationWatched int       `json:"duration_watched" gorm:"not null;default:0"` // seconds
	Completed       bool      `json:"completed" gorm:"not null;default:false"`

	Story Story `json:"-" gorm:"foreignKey:StoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for StoryView.
func (StoryView) TableName() string { return "story_views" }
