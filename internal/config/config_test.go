package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q; want 8080", cfg.Port)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q; want /api/v1", cfg.APIBasePath)
	}
	if cfg.DatabaseDSN != "app.db" {
		t.Errorf("DatabaseDSN = %q; want app.db", cfg.DatabaseDSN)
	}
	if cfg.JWT.AccessTTL != time.Hour {
		t.Errorf("JWT.AccessTTL = %v; want 1h", cfg.JWT.AccessTTL)
	}
	if cfg.Media.StoragePath != "media" || cfg.Media.BaseURL != "/media" {
		t.Errorf("media defaults: %+v", cfg.Media)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q; want release", cfg.GinMode)
	}
}

func TestLoad_OverridesAndNormalization(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("GIN_MODE", "bogus")
	t.Setenv("API_BASE_PATH", "api/v2/")
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/food")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("JWT_ACCESS_TTL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want warn", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q; want release fallback", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Errorf("APIBasePath = %q; want /api/v2", cfg.APIBasePath)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.JWT.AccessTTL != 30*time.Minute {
		t.Errorf("JWT.AccessTTL = %v", cfg.JWT.AccessTTL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"LOG_LEVEL":           "verbose",
		"MAX_HEADER_BYTES":    "-1",
		"RATE_BURST":          "0",
		"MEDIA_MAX_UPLOAD_MB": "0",
		"JWT_ACCESS_TTL":      "-1s",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error for %s=%s", k, v)
			}
		})
	}
}

func TestIsPostgresDSN(t *testing.T) {
	if !IsPostgresDSN("postgres://u:p@h/db") || !IsPostgresDSN("host=localhost user=x") {
		t.Fatalf("postgres DSNs not recognized")
	}
	if IsPostgresDSN("app.db") || IsPostgresDSN("file::memory:") {
		t.Fatalf("sqlite paths misclassified as postgres")
	}
}
