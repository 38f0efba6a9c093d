package services

import (
	"context"
	"errors"
	"testing"
)

func TestContactService_CRUD(t *testing.T) {
	svc := &ContactService{DB: newServiceDB(t)}
	ctx := context.Background()

	c, err := svc.Create(ctx, ContactInput{Type: "telegram", Title: "Kanal", Value: "@oshxona"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Get(ctx, c.ID)
	if err != nil || got.Value != "@oshxona" {
		t.Fatalf("Get: %+v, %v", got, err)
	}

	value := "@oshxona_new"
	updated, err := svc.Update(ctx, c.ID, ContactUpdate{Value: &value})
	if err != nil || updated.Value != value {
		t.Fatalf("Update: %+v, %v", updated, err)
	}

	contacts, total, err := svc.List(ctx, 1, 10)
	if err != nil || total != 1 || len(contacts) != 1 {
		t.Fatalf("List: %d/%d, %v", len(contacts), total, err)
	}

	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, c.ID); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
}

func TestContactService_Validation(t *testing.T) {
	svc := &ContactService{DB: newServiceDB(t)}
	ctx := context.Background()

	_, err := svc.Create(ctx, ContactInput{Type: "fax", Title: "Fax", Value: "123"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := ve.Fields["type"]; !ok {
		t.Fatalf("expected type error, got %v", ve.Fields)
	}

	c, err := svc.Create(ctx, ContactInput{Type: "phone", Title: "Call center", Value: "+998712001122"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	bad := "whatsapp"
	if _, err := svc.Update(ctx, c.ID, ContactUpdate{Type: &bad}); !errors.As(err, &ve) {
		t.Fatalf("update with bad type: expected ValidationError, got %v", err)
	}
}
