// Package services – AuthService
//
// This file implements the AuthService, which handles registration, login,
// and device registration. Login accepts a single identifier field whose
// shape selects the lookup path: an email when it contains "@", a phone
// number when it is all digits after stripping separators, and a username
// otherwise. All credential failures collapse into ErrInvalidCredentials so
// responses never reveal which part was wrong. Successful logins are issued
// an HS256 access/refresh token pair.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oshxona/go-food-backend/internal/config"
	"github.com/oshxona/go-food-backend/internal/domain"
	"github.com/oshxona/go-food-backend/internal/repo"
)

// AuthService implements the use-cases around accounts and devices.
type AuthService struct {
	// DB is the database handle used for all account operations.
	DB *gorm.DB

	// JWT carries the signing secret and token lifetimes.
	JWT config.JWTConfig

	// Now supplies the clock for token timestamps. Tests override it; a
	// nil value means time.Now.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Claims is the JWT payload carried by both token kinds.
type Claims struct {
	UserID  uint   `json:"uid"`
	IsStaff bool   `json:"staff"`
	Kind    string `json:"kind"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// IdentifierKind classifies a login identifier by shape.
type IdentifierKind int

// Identifier shapes, checked in order.
const (
	IdentEmail IdentifierKind = iota
	IdentPhone
	IdentUsername
)

// ClassifyIdentifier decides how a login identifier should be looked up.
// Anything containing "@" is an email; anything that is all digits once
// plus signs, hyphens, and spaces are stripped is a phone number; the rest
// are usernames.
func ClassifyIdentifier(identifier string) IdentifierKind {
	if strings.Contains(identifier, "@") {
		return IdentEmail
	}
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case '+', '-', ' ':
			return -1
		}
		return r
	}, identifier)
	if stripped != "" && strings.Trim(stripped, "0123456789") == "" {
		return IdentPhone
	}
	return IdentUsername
}

// Login verifies the identifier/password pair and returns a token pair.
// Unknown accounts and bad passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*domain.User, *TokenPair, error) {
	var (
		u   *domain.User
		err error
	)
	switch ClassifyIdentifier(identifier) {
	case IdentEmail:
		u, err = repo.GetUserByEmail(ctx, s.DB, identifier)
	case IdentPhone:
		u, err = repo.GetUserByPhone(ctx, s.DB, identifier)
	default:
		u, err = repo.GetUserByUsername(ctx, s.DB, identifier)
	}
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (s *AuthService) issueTokens(u *domain.User) (*TokenPair, error) {
	now := s.now()

	access, err := s.signToken(u, "access", now, s.JWT.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signToken(u, "refresh", now, s.JWT.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *AuthService) signToken(u *domain.User, kind string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:  u.ID,
		IsStaff: u.IsStaff,
		Kind:    kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.JWT.Secret))
}

// ParseToken validates a signed token and returns its claims. Expired or
// tampered tokens fail with the library's error.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RegisterInput carries a registration payload.
type RegisterInput struct {
	Username        string
	Email           string
	PhoneNumber     string
	FirstName       string
	LastName        string
	MiddleName      string
	Password        string
	PasswordConfirm string
}

// Register validates the payload, checks username/email/phone availability
// up front, and stores the user with a bcrypt password hash. Availability
// conflicts come back as field-keyed validation errors rather than raw
// constraint violations.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Username) == "" {
		fields["username"] = "this field is required"
	}
	if !strings.Contains(in.Email, "@") {
		fields["email"] = "a valid email is required"
	}
	if strings.TrimSpace(in.FirstName) == "" {
		fields["first_name"] = "this field is required"
	}
	if strings.TrimSpace(in.LastName) == "" {
		fields["last_name"] = "this field is required"
	}
	if len(in.Password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}
	if in.Password != in.PasswordConfirm {
		fields["password_confirm"] = "passwords do not match"
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	checks := []struct {
		query string
		arg   string
		field string
	}{
		{"username = ?", in.Username, "username"},
		{"email = ?", in.Email, "email"},
	}
	if in.PhoneNumber != "" {
		checks = append(checks, struct {
			query string
			arg   string
			field string
		}{"phone_number = ?", in.PhoneNumber, "phone_number"})
	}
	for _, c := range checks {
		taken, err := repo.UserExists(ctx, s.DB, c.query, c.arg)
		if err != nil {
			return nil, err
		}
		if taken {
			fields[c.field] = "already taken"
		}
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		MiddleName:   in.MiddleName,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		// The pre-emptive checks race with concurrent registrations;
		// the constraint is the final arbiter.
		if isDuplicate(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return u, nil
}

// DeviceInput carries a device registration payload. IPAddress is captured
// from the request by the handler.
type DeviceInput struct {
	DeviceModel string
	OSVersion   string
	DeviceType  string
	DeviceID    string
	AppVersion  string
	IPAddress   string
	UserID      *uint
}

// RegisterDevice upserts a device fingerprint, resolving the app version
// string to its row on the way. Re-registration refreshes the mutable
// fields of the existing row.
func (s *AuthService) RegisterDevice(ctx context.Context, in DeviceInput) (*domain.Device, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.DeviceID) == "" {
		fields["device_id"] = "this field is required"
	}
	if !domain.ValidDeviceType(domain.DeviceType(in.DeviceType)) {
		fields["device_type"] = "unknown device type"
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	d := &domain.Device{
		DeviceModel: in.DeviceModel,
		OSVersion:   in.OSVersion,
		DeviceType:  domain.DeviceType(in.DeviceType),
		DeviceID:    in.DeviceID,
		IPAddress:   in.IPAddress,
		UserID:      in.UserID,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.AppVersion != "" {
			v, err := repo.FindOrCreateAppVersion(ctx, tx, in.AppVersion)
			if err != nil {
				return err
			}
			d.AppVersionID = &v.ID
		}
		return repo.UpsertDevice(ctx, tx, d)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}
