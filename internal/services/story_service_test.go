package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oshxona/go-food-backend/internal/domain"
	"github.com/oshxona/go-food-backend/internal/repo"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func validStoryInput() StoryInput {
	return StoryInput{
		TitleUz:       "Aksiya",
		DescriptionUz: "Katta chegirma",
		StoryType:     "PROMOTION",
		Status:        "DRAFT",
		Duration:      5,
		ActionURL:     "https://example.com/promo",
	}
}

func TestStoryService_CreatePublishedStampsPublishedAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &StoryService{DB: newServiceDB(t), Now: fixedClock(now)}

	in := validStoryInput()
	in.Status = "PUBLISHED"
	st, err := svc.Create(context.Background(), in, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if st.PublishedAt == nil || !st.PublishedAt.Equal(now) {
		t.Fatalf("published_at = %v, want %v", st.PublishedAt, now)
	}
	if !st.IsPublished(now) {
		t.Fatal("story should be published")
	}
}

func TestStoryService_CreateValidation(t *testing.T) {
	svc := &StoryService{DB: newServiceDB(t)}

	pub := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	expEarly := pub.Add(-time.Hour)

	cases := map[string]struct {
		mutate func(*StoryInput)
		field  string
	}{
		"missing title":       {func(in *StoryInput) { in.TitleUz = "" }, "title_uz"},
		"bad type":            {func(in *StoryInput) { in.StoryType = "RUMOR" }, "story_type"},
		"bad status":          {func(in *StoryInput) { in.Status = "PENDING" }, "status"},
		"duration too short":  {func(in *StoryInput) { in.Duration = 0 }, "duration"},
		"duration too long":   {func(in *StoryInput) { in.Duration = 31 }, "duration"},
		"expiry before start": {func(in *StoryInput) { in.PublishedAt = &pub; in.ExpiresAt = &expEarly }, "expires_at"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := validStoryInput()
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

func TestStoryService_UpdateTransitionToPublished(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &StoryService{DB: newServiceDB(t), Now: fixedClock(now)}
	ctx := context.Background()

	st, err := svc.Create(ctx, validStoryInput(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if st.PublishedAt != nil {
		t.Fatal("draft must not carry published_at")
	}

	status := "PUBLISHED"
	updated, err := svc.Update(ctx, st.ID, StoryUpdate{Status: &status}, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.PublishedAt == nil || !updated.PublishedAt.Equal(now) {
		t.Fatalf("published_at not stamped on transition: %v", updated.PublishedAt)
	}

	// A second publish must not move the original timestamp.
	later := now.Add(24 * time.Hour)
	svc.Now = fixedClock(later)
	draft := "DRAFT"
	if _, err := svc.Update(ctx, st.ID, StoryUpdate{Status: &draft}, nil); err != nil {
		t.Fatalf("back to draft: %v", err)
	}
	republished, err := svc.Update(ctx, st.ID, StoryUpdate{Status: &status}, nil)
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	if !republished.PublishedAt.Equal(now) {
		t.Fatalf("existing published_at overwritten: %v", republished.PublishedAt)
	}
}

func TestStoryService_PublicListingExcludesHidden(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &StoryService{DB: newServiceDB(t), Now: fixedClock(now)}
	ctx := context.Background()

	published := validStoryInput()
	published.Status = "PUBLISHED"
	if _, err := svc.Create(ctx, published, nil); err != nil {
		t.Fatalf("create published: %v", err)
	}

	draft := validStoryInput()
	draft.TitleUz = "Qoralama"
	if _, err := svc.Create(ctx, draft, nil); err != nil {
		t.Fatalf("create draft: %v", err)
	}

	expired := validStoryInput()
	expired.TitleUz = "Eski"
	expired.Status = "PUBLISHED"
	pub := now.Add(-48 * time.Hour)
	exp := now.Add(-time.Hour)
	expired.PublishedAt = &pub
	expired.ExpiresAt = &exp
	if _, err := svc.Create(ctx, expired, nil); err != nil {
		t.Fatalf("create expired: %v", err)
	}

	stories, _, err := svc.ListPublic(ctx, false, nil)
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	if len(stories) != 1 || stories[0].TitleUz != "Aksiya" {
		t.Fatalf("public listing = %+v", stories)
	}

	all, _, err := svc.ListForStaff(ctx, repo.StoryFilter{})
	if err != nil {
		t.Fatalf("ListForStaff: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("staff listing = %d stories, want 3", len(all))
	}

	counts, err := svc.CountPublicByType(ctx)
	if err != nil {
		t.Fatalf("CountPublicByType: %v", err)
	}
	if counts[domain.StoryPromotion] != 1 {
		t.Fatalf("per-type counts = %v", counts)
	}
}

func TestStoryService_RecordViewDeduplicates(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	db := newServiceDB(t)
	svc := &StoryService{DB: db, Now: fixedClock(now)}
	ctx := context.Background()

	in := validStoryInput()
	in.Status = "PUBLISHED"
	st, err := svc.Create(ctx, in, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	device := domain.Device{DeviceType: domain.DeviceAndroid, DeviceID: "dev-1"}
	if err := db.Create(&device).Error; err != nil {
		t.Fatalf("seed device: %v", err)
	}

	view := ViewInput{StoryID: st.ID, DeviceID: &device.ID, DurationWatched: 4, Completed: true}
	first, err := svc.RecordView(ctx, view)
	if err != nil {
		t.Fatalf("first view: %v", err)
	}
	repeat, err := svc.RecordView(ctx, view)
	if !errors.Is(err, ErrViewAlreadyRecorded) {
		t.Fatalf("second view: expected ErrViewAlreadyRecorded, got %v", err)
	}
	if repeat == nil || repeat.ID != first.ID {
		t.Fatalf("second view: expected the stored row %d back, got %+v", first.ID, repeat)
	}

	got, _, err := svc.Get(ctx, st.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ViewCount != 1 {
		t.Fatalf("view count = %d, want exactly 1", got.ViewCount)
	}

	views, stats, err := svc.ListViews(ctx, &st.ID, nil)
	if err != nil {
		t.Fatalf("ListViews: %v", err)
	}
	if len(views) != 1 || stats.TotalViews != 1 || stats.CompletedViews != 1 {
		t.Fatalf("views=%d stats=%+v", len(views), stats)
	}

	if _, err := svc.RecordView(ctx, ViewInput{StoryID: 9999}); !errors.Is(err, ErrStoryNotFound) {
		t.Fatalf("unknown story: expected ErrStoryNotFound, got %v", err)
	}
}

func TestStoryService_Click(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &StoryService{DB: newServiceDB(t), Now: fixedClock(now)}
	ctx := context.Background()

	draft, err := svc.Create(ctx, validStoryInput(), nil)
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if _, err := svc.Click(ctx, draft.ID); !errors.Is(err, ErrStoryNotAvailable) {
		t.Fatalf("draft click: expected ErrStoryNotAvailable, got %v", err)
	}

	in := validStoryInput()
	in.Status = "PUBLISHED"
	st, err := svc.Create(ctx, in, nil)
	if err != nil {
		t.Fatalf("create published: %v", err)
	}

	url, err := svc.Click(ctx, st.ID)
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	if url != "https://example.com/promo" {
		t.Fatalf("action url = %q", url)
	}

	got, _, err := svc.Get(ctx, st.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ClickCount != 1 {
		t.Fatalf("click count = %d, want 1", got.ClickCount)
	}

	if _, err := svc.Click(ctx, 9999); !errors.Is(err, ErrStoryNotFound) {
		t.Fatalf("unknown story click: expected ErrStoryNotFound, got %v", err)
	}
}

func TestStoryService_Delete(t *testing.T) {
	svc := &StoryService{DB: newServiceDB(t)}
	ctx := context.Background()

	st, err := svc.Create(ctx, validStoryInput(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, st.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := svc.Get(ctx, st.ID); !errors.Is(err, ErrStoryNotFound) {
		t.Fatalf("expected ErrStoryNotFound after delete, got %v", err)
	}
}
