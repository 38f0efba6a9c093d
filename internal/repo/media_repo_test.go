package repo

import (
	"context"
	"testing"

	"github.com/oshxona/go-food-backend/internal/domain"
)

func TestReplaceMediaForOwner_DeleteThenRecreate(t *testing.T) {
	db := newRepoDB(t, &domain.Media{})
	ctx := context.Background()

	old := []domain.Media{
		{OwnerType: domain.OwnerProduct, OwnerID: 1, File: "a.jpg", MediaType: "image"},
		{OwnerType: domain.OwnerProduct, OwnerID: 1, File: "b.jpg", MediaType: "image"},
	}
	for i := range old {
		if err := CreateMedia(ctx, db, &old[i]); err != nil {
			t.Fatalf("seed media: %v", err)
		}
	}
	// Another owner's media must survive replacement.
	other := domain.Media{OwnerType: domain.OwnerStory, OwnerID: 1, File: "s.jpg", MediaType: "image"}
	if err := CreateMedia(ctx, db, &other); err != nil {
		t.Fatalf("seed other: %v", err)
	}

	err := ReplaceMediaForOwner(ctx, db, domain.OwnerProduct, 1, []domain.Media{
		{File: "c.jpg", MediaType: "image", OriginalFilename: "c.jpg"},
	})
	if err != nil {
		t.Fatalf("ReplaceMediaForOwner: %v", err)
	}

	got, err := ListMediaForOwner(ctx, db, domain.OwnerProduct, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].File != "c.jpg" {
		t.Fatalf("replacement is not wholesale: %+v", got)
	}

	stories, err := ListMediaForOwner(ctx, db, domain.OwnerStory, 1)
	if err != nil || len(stories) != 1 {
		t.Fatalf("other owner's media affected: %+v, %v", stories, err)
	}
}

func TestListMediaForOwners_GroupsByOwner(t *testing.T) {
	db := newRepoDB(t, &domain.Media{})
	ctx := context.Background()

	for _, m := range []domain.Media{
		{OwnerType: domain.OwnerProduct, OwnerID: 1, File: "1a.jpg"},
		{OwnerType: domain.OwnerProduct, OwnerID: 2, File: "2a.jpg"},
		{OwnerType: domain.OwnerProduct, OwnerID: 2, File: "2b.jpg"},
	} {
		mm := m
		if err := CreateMedia(ctx, db, &mm); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	grouped, err := ListMediaForOwners(ctx, db, domain.OwnerProduct, []uint{1, 2, 3})
	if err != nil {
		t.Fatalf("ListMediaForOwners: %v", err)
	}
	if len(grouped[1]) != 1 || len(grouped[2]) != 2 {
		t.Fatalf("unexpected grouping: %+v", grouped)
	}
	if _, ok := grouped[3]; ok {
		t.Fatalf("owner without media must be absent from the map")
	}

	empty, err := ListMediaForOwners(ctx, db, domain.OwnerProduct, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty owners: %+v, %v", empty, err)
	}
}
