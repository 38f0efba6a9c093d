package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oshxona/go-food-backend/internal/config"
	"github.com/oshxona/go-food-backend/internal/repo"
	"github.com/oshxona/go-food-backend/internal/services"
	"github.com/oshxona/go-food-backend/internal/storage"
)

func newRouterDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "router.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestRouter(t *testing.T) (*gin.Engine, config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     1000,
		RateBurst:   1000,
		JWT: config.JWTConfig{
			Secret:     "router-test-secret",
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
		},
		Media: config.MediaConfig{
			StoragePath: t.TempDir(),
			BaseURL:     "/media",
			MaxUploadMB: 5,
		},
		OTEL: config.OTELConfig{ServiceName: "router-test"},
	}

	store, err := storage.NewLocalStore(cfg.Media, zerolog.Nop())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	r := gin.New()
	RegisterRoutes(r, newRouterDB(t), store, cfg)
	return r, cfg
}

// bearerToken signs an access token accepted by the router's auth
// middleware.
func bearerToken(t *testing.T, secret string, userID uint, staff bool) string {
	t.Helper()
	claims := services.Claims{
		UserID:  userID,
		IsStaff: staff,
		Kind:    "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + token
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, w.Body.String())
	}
	return out
}

func TestHealthMetricsAndFallbacks(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("CORS header = %q, want *", got)
	}

	w = doJSON(t, r, http.MethodGet, "/metrics", nil, nil)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics: code=%d len=%d", w.Code, w.Body.Len())
	}

	w = doJSON(t, r, http.MethodGet, "/nope", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d, want 404", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env["success"] != false {
		t.Fatalf("fallback envelope: %v", env)
	}

	w = doJSON(t, r, http.MethodPost, "/health", nil, nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health = %d, want 405", w.Code)
	}
}

func TestProductLifecycleOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/products/", map[string]any{
		"title_uz":         "Olma",
		"title_ru":         "Яблоко",
		"description_uz":   "Yangi olma",
		"price":            12000,
		"discount":         10,
		"category":         "FOOD",
		"measurement_type": "KG",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create product = %d, body %s", w.Code, w.Body.String())
	}
	created := decodeEnvelope(t, w)
	data := created["data"].(map[string]any)
	if data["real_price"].(float64) != 10800 {
		t.Fatalf("real_price = %v, want 10800", data["real_price"])
	}

	// Russian localization applies on read.
	w = doJSON(t, r, http.MethodGet, "/api/v1/products/1/", nil, map[string]string{
		"Accept-Language": "ru",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("get product = %d", w.Code)
	}
	data = decodeEnvelope(t, w)["data"].(map[string]any)
	if data["title"] != "Яблоко" {
		t.Fatalf("localized title = %v", data["title"])
	}

	// Listing carries the pagination envelope.
	w = doJSON(t, r, http.MethodGet, "/api/v1/products/?page=1&page_size=5", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list products = %d", w.Code)
	}
	listData := decodeEnvelope(t, w)["data"].(map[string]any)
	pg := listData["pagination"].(map[string]any)
	if pg["count"].(float64) != 1 {
		t.Fatalf("pagination count = %v", pg["count"])
	}

	// Soft delete hides it from the listing.
	w = doJSON(t, r, http.MethodDelete, "/api/v1/products/1/", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete product = %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/v1/products/", nil, nil)
	listData = decodeEnvelope(t, w)["data"].(map[string]any)
	if n := listData["pagination"].(map[string]any)["count"].(float64); n != 0 {
		t.Fatalf("count after delete = %v", n)
	}
}

func TestStaffGateOnRecipeWrites(t *testing.T) {
	r, cfg := newTestRouter(t)

	payload := map[string]any{"name_uz": "Palov"}

	w := doJSON(t, r, http.MethodPost, "/api/v1/recipes/", payload, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous recipe create = %d, want 401", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/recipes/", payload, map[string]string{
		"Authorization": bearerToken(t, cfg.JWT.Secret, 1, false),
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-staff recipe create = %d, want 403", w.Code)
	}

	// Staff passes the gate; the empty payload then fails validation.
	w = doJSON(t, r, http.MethodPost, "/api/v1/recipes/", payload, map[string]string{
		"Authorization": bearerToken(t, cfg.JWT.Secret, 1, true),
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("staff recipe create = %d, want 400", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env["errors"] == nil {
		t.Fatalf("validation errors missing: %v", env)
	}
}

func TestRegisterLoginAndDeviceFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/users/register/", map[string]any{
		"username":         "aziza",
		"email":            "aziza@example.com",
		"phone_number":     "+998901234567",
		"first_name":       "Aziza",
		"last_name":        "Karimova",
		"password":         "correct horse",
		"password_confirm": "correct horse",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/users/login/", map[string]any{
		"identifier": "aziza@example.com",
		"password":   "correct horse",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d, body %s", w.Code, w.Body.String())
	}
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	access, _ := data["access"].(string)
	if access == "" || data["refresh"] == "" {
		t.Fatalf("token pair missing: %v", data)
	}

	// Device registration links the device to the authenticated account.
	w = doJSON(t, r, http.MethodPost, "/api/v1/users/devices/", map[string]any{
		"device_model": "Pixel 8",
		"os_version":   "14",
		"device_type":  "ANDROID",
		"device_id":    "abc-123",
		"app_version":  "1.4.0",
	}, map[string]string{"Authorization": "Bearer " + access})
	if w.Code != http.StatusCreated {
		t.Fatalf("device register = %d, body %s", w.Code, w.Body.String())
	}
	device := decodeEnvelope(t, w)["data"].(map[string]any)
	if device["user_id"] == nil {
		t.Fatalf("device not linked to user: %v", device)
	}

	// Wrong password stays generic.
	w = doJSON(t, r, http.MethodPost, "/api/v1/users/login/", map[string]any{
		"identifier": "aziza",
		"password":   "wrong",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad login = %d, want 400", w.Code)
	}
}

func TestStoryPublicEndpoints(t *testing.T) {
	r, cfg := newTestRouter(t)
	staffAuth := map[string]string{"Authorization": bearerToken(t, cfg.JWT.Secret, 1, true)}

	w := doJSON(t, r, http.MethodPost, "/api/v1/story/", map[string]any{
		"title_uz":   "Aksiya",
		"story_type": "PROMOTION",
		"status":     "PUBLISHED",
		"duration":   10,
		"action_url": "https://example.com/promo",
	}, staffAuth)
	if w.Code != http.StatusCreated {
		t.Fatalf("create story = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/story/active/", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("active stories = %d", w.Code)
	}
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	if len(data["stories"].([]any)) != 1 {
		t.Fatalf("active stories data: %v", data)
	}
	counts := data["counts_by_type"].(map[string]any)
	if counts["PROMOTION"].(float64) != 1 {
		t.Fatalf("counts_by_type = %v", counts)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/story/type/promotion/", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stories by type = %d", w.Code)
	}

	// Click on a published story returns the action URL.
	w = doJSON(t, r, http.MethodPost, "/api/v1/story/1/click/", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("click = %d, body %s", w.Code, w.Body.String())
	}
	click := decodeEnvelope(t, w)["data"].(map[string]any)
	if click["action_url"] != "https://example.com/promo" {
		t.Fatalf("action_url = %v", click["action_url"])
	}

	// Views listing is staff only.
	w = doJSON(t, r, http.MethodGet, "/api/v1/story/views/", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous views listing = %d, want 401", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/v1/story/views/", nil, staffAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("staff views listing = %d", w.Code)
	}
}

func TestStoryDetailVisibilitySplit(t *testing.T) {
	r, cfg := newTestRouter(t)
	staffAuth := map[string]string{"Authorization": bearerToken(t, cfg.JWT.Secret, 1, true)}

	w := doJSON(t, r, http.MethodPost, "/api/v1/story/", map[string]any{
		"title_uz":   "Qoralama",
		"story_type": "NEWS",
		"status":     "DRAFT",
		"duration":   5,
	}, staffAuth)
	if w.Code != http.StatusCreated {
		t.Fatalf("create draft story = %d, body %s", w.Code, w.Body.String())
	}

	// Drafts do not exist for anonymous callers.
	w = doJSON(t, r, http.MethodGet, "/api/v1/story/1/", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("anonymous draft detail = %d, want 404", w.Code)
	}

	// Staff still see the full projection.
	w = doJSON(t, r, http.MethodGet, "/api/v1/story/1/", nil, staffAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("staff draft detail = %d", w.Code)
	}
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	if data["status"] != "DRAFT" {
		t.Fatalf("staff projection status = %v", data["status"])
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/story/", map[string]any{
		"title_uz":   "Yangilik",
		"story_type": "NEWS",
		"status":     "PUBLISHED",
		"duration":   5,
	}, staffAuth)
	if w.Code != http.StatusCreated {
		t.Fatalf("create published story = %d", w.Code)
	}

	// A published story is visible, but only through the public shape.
	w = doJSON(t, r, http.MethodGet, "/api/v1/story/2/", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous published detail = %d", w.Code)
	}
	data = decodeEnvelope(t, w)["data"].(map[string]any)
	if data["title"] != "Yangilik" {
		t.Fatalf("public projection title = %v", data["title"])
	}
	for _, hidden := range []string{"status", "view_count", "click_count", "title_uz"} {
		if _, leaked := data[hidden]; leaked {
			t.Fatalf("public projection leaks %q: %v", hidden, data)
		}
	}
}

func TestStoryViewDeduplicatedOverHTTP(t *testing.T) {
	r, cfg := newTestRouter(t)
	staffAuth := map[string]string{"Authorization": bearerToken(t, cfg.JWT.Secret, 9, true)}

	w := doJSON(t, r, http.MethodPost, "/api/v1/story/", map[string]any{
		"title_uz":   "Yangilik",
		"story_type": "NEWS",
		"status":     "PUBLISHED",
		"duration":   5,
	}, staffAuth)
	if w.Code != http.StatusCreated {
		t.Fatalf("create story = %d", w.Code)
	}

	view := map[string]any{"story_id": 1, "duration_watched": 5, "completed": true}
	w = doJSON(t, r, http.MethodPost, "/api/v1/story/views/", view, staffAuth)
	if w.Code != http.StatusCreated {
		t.Fatalf("first view = %d, body %s", w.Code, w.Body.String())
	}
	firstID := decodeEnvelope(t, w)["data"].(map[string]any)["id"].(float64)

	// The repeat hands back the stored row instead of a fresh one.
	w = doJSON(t, r, http.MethodPost, "/api/v1/story/views/", view, staffAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("repeat view = %d, want 200", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env["success"] != true {
		t.Fatalf("repeat view envelope: %v", env)
	}
	repeat, okData := env["data"].(map[string]any)
	if !okData {
		t.Fatalf("repeat view data missing: %v", env)
	}
	if repeat["id"].(float64) != firstID {
		t.Fatalf("repeat view id = %v, want %v", repeat["id"], firstID)
	}

	// The counter reflects exactly one view.
	w = doJSON(t, r, http.MethodGet, "/api/v1/story/1/", nil, staffAuth)
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	if got := data["view_count"].(float64); got != 1 {
		t.Fatalf("view_count = %v, want 1", got)
	}
}

func TestRateLimiterKicksIn(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     1,
		RateBurst:   2,
		JWT:         config.JWTConfig{Secret: "s", AccessTTL: time.Hour, RefreshTTL: time.Hour},
		Media:       config.MediaConfig{StoragePath: t.TempDir(), BaseURL: "/media", MaxUploadMB: 5},
		OTEL:        config.OTELConfig{ServiceName: "rl-test"},
	}
	store, err := storage.NewLocalStore(cfg.Media, zerolog.Nop())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	r := gin.New()
	RegisterRoutes(r, newRouterDB(t), store, cfg)

	var last int
	for i := 0; i < 5; i++ {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/contact/?n=%d", i), nil, nil)
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("final status = %d, want 429", last)
	}
}
