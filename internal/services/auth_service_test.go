package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oshxona/go-food-backend/internal/config"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return &AuthService{
		DB: newServiceDB(t),
		JWT: config.JWTConfig{
			Secret:     "test-secret",
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
		},
	}
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username:        "aziza",
		Email:           "aziza@example.com",
		PhoneNumber:     "+998901234567",
		FirstName:       "Aziza",
		LastName:        "Tosheva",
		Password:        "korrekt-horse",
		PasswordConfirm: "korrekt-horse",
	}
}

func TestClassifyIdentifier(t *testing.T) {
	cases := map[string]IdentifierKind{
		"user@example.com": IdentEmail,
		"+998 90 123-45-67": IdentPhone,
		"998901234567":     IdentPhone,
		"aziza":            IdentUsername,
		"aziza90":          IdentUsername,
		"":                 IdentUsername,
	}
	for in, want := range cases {
		if got := ClassifyIdentifier(in); got != want {
			t.Errorf("ClassifyIdentifier(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestAuthService_RegisterAndLoginByEachIdentifier(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.PasswordHash == "korrekt-horse" {
		t.Fatal("password stored in plain text")
	}

	for _, identifier := range []string{"aziza@example.com", "+998901234567", "aziza"} {
		got, pair, err := svc.Login(ctx, identifier, "korrekt-horse")
		if err != nil {
			t.Fatalf("Login(%q): %v", identifier, err)
		}
		if got.ID != u.ID {
			t.Fatalf("Login(%q) returned user %d, want %d", identifier, got.ID, u.ID)
		}
		if pair.Access == "" || pair.Refresh == "" || pair.Access == pair.Refresh {
			t.Fatalf("bad token pair: %+v", pair)
		}
	}
}

func TestAuthService_LoginFailuresAreGeneric(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterInput()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "aziza", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "ghost", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_DisabledAccount(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.DB.Model(u).Update("is_active", false).Error; err != nil {
		t.Fatalf("disable: %v", err)
	}

	if _, _, err := svc.Login(ctx, "aziza", "korrekt-horse"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	cases := map[string]struct {
		mutate func(*RegisterInput)
		field  string
	}{
		"password mismatch": {func(in *RegisterInput) { in.PasswordConfirm = "other" }, "password_confirm"},
		"short password":    {func(in *RegisterInput) { in.Password = "abc"; in.PasswordConfirm = "abc" }, "password"},
		"bad email":         {func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		"missing username":  {func(in *RegisterInput) { in.Username = "" }, "username"},
		"missing last name": {func(in *RegisterInput) { in.LastName = " " }, "last_name"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := validRegisterInput()
			tc.mutate(&in)

			_, err := svc.Register(ctx, in)
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

func TestAuthService_RegisterDuplicateFields(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	in := validRegisterInput()
	in.PhoneNumber = "+998909999999"
	_, err := svc.Register(ctx, in)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := ve.Fields["username"]; !ok {
		t.Fatalf("expected username conflict, got %v", ve.Fields)
	}
	if _, ok := ve.Fields["email"]; !ok {
		t.Fatalf("expected email conflict, got %v", ve.Fields)
	}
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	in := validRegisterInput()
	u, err := svc.Register(ctx, in)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.DB.Model(u).Update("is_staff", true).Error; err != nil {
		t.Fatalf("promote: %v", err)
	}

	_, pair, err := svc.Login(ctx, "aziza", "korrekt-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := svc.ParseToken(pair.Access)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != u.ID || !claims.IsStaff || claims.Kind != "access" {
		t.Fatalf("claims = %+v", claims)
	}

	refresh, err := svc.ParseToken(pair.Refresh)
	if err != nil || refresh.Kind != "refresh" {
		t.Fatalf("refresh claims = %+v, %v", refresh, err)
	}

	other := &AuthService{DB: svc.DB, JWT: config.JWTConfig{Secret: "different", AccessTTL: time.Hour, RefreshTTL: time.Hour}}
	if _, err := other.ParseToken(pair.Access); err == nil {
		t.Fatal("token verified with wrong secret")
	}
}

func TestAuthService_RegisterDevice(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	d, err := svc.RegisterDevice(ctx, DeviceInput{
		DeviceModel: "iPhone 15",
		OSVersion:   "17.5",
		DeviceType:  "IOS",
		DeviceID:    "ios-abc",
		AppVersion:  "2.4.0",
		IPAddress:   "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}
	if d.AppVersionID == nil {
		t.Fatal("app version not resolved")
	}

	// Re-registration keeps the row and refreshes it.
	again, err := svc.RegisterDevice(ctx, DeviceInput{
		DeviceType: "IOS",
		DeviceID:   "ios-abc",
		OSVersion:  "18.0",
		AppVersion: "2.5.0",
	})
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if again.ID != d.ID {
		t.Fatalf("device duplicated: %d vs %d", again.ID, d.ID)
	}

	_, err = svc.RegisterDevice(ctx, DeviceInput{DeviceType: "TOASTER", DeviceID: "x"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
