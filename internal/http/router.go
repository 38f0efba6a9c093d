// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, rate limiting, and client metadata (locale and
// device type).
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/oshxona/go-food-backend/internal/config"
	"github.com/oshxona/go-food-backend/internal/http/handlers"
	"github.com/oshxona/go-food-backend/internal/http/middleware"
	"github.com/oshxona/go-food-backend/internal/services"
	"github.com/oshxona/go-food-backend/internal/storage"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting,
// CORS and security headers, response compression, client metadata and
// bearer-token authentication, health/metrics/docs endpoints, static media
// serving, and then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS and security headers
//  9. Response compression
//  10. Client metadata (locale, device type) and JWT authentication
func RegisterRoutes(r *gin.Engine, db *gorm.DB, store *storage.LocalStore, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit; uploads dominate, so scale with the
	// configured media cap plus headroom for the form fields.
	r.Use(limitBody(int64(cfg.Media.MaxUploadMB)<<20 + 1<<20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Accept-Language", "X-Device-Type"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Accept-Language", "X-Device-Type"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// 9) Compress responses for clients that accept it
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Uploaded media
	r.Static(cfg.Media.BaseURL, store.BasePath())

	// Dependency injection: services ← db/config/storage
	authSvc := &services.AuthService{DB: db, JWT: cfg.JWT}
	h := handlers.New(
		&services.ProductService{DB: db},
		&services.RecipeService{DB: db},
		&services.StoryService{DB: db},
		&services.ContactService{DB: db},
		authSvc,
		store,
	)

	// 10) Client metadata and authentication apply to the API surface
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.ClientMeta())
	api.Use(middleware.Auth(authSvc))
	staff := middleware.RequireStaff()
	{
		// Products
		api.GET("/products/", h.ListProducts)
		api.POST("/products/", h.CreateProduct)
		api.GET("/products/:id/", h.GetProduct)
		api.PUT("/products/:id/", h.UpdateProduct)
		api.PATCH("/products/:id/", h.UpdateProduct)
		api.DELETE("/products/:id/", h.DeleteProduct)

		// Recipes
		api.GET("/recipes/", h.ListRecipes)
		api.POST("/recipes/", staff, h.CreateRecipe)
		api.GET("/recipes/:id/", h.GetRecipe)
		api.PUT("/recipes/:id/", staff, h.UpdateRecipe)
		api.PATCH("/recipes/:id/", staff, h.UpdateRecipe)
		api.DELETE("/recipes/:id/", staff, h.DeleteRecipe)

		// Stories. Fixed segments must be registered against the same
		// wildcard Gin already knows, so named collections live under
		// their own paths.
		api.GET("/story/", h.ListStories)
		api.POST("/story/", staff, h.CreateStory)
		api.GET("/story/featured/", h.FeaturedStories)
		api.GET("/story/active/", h.ActiveStories)
		api.GET("/story/type/:type/", h.StoriesByType)
		api.POST("/story/views/", h.RecordStoryView)
		api.GET("/story/views/", staff, h.ListStoryViews)
		api.GET("/story/:id/", h.GetStory)
		api.PUT("/story/:id/", staff, h.UpdateStory)
		api.PATCH("/story/:id/", staff, h.UpdateStory)
		api.DELETE("/story/:id/", staff, h.DeleteStory)
		api.POST("/story/:id/click/", h.ClickStory)

		// Contacts
		api.GET("/contact/", h.ListContacts)
		api.POST("/contact/", h.CreateContact)
		api.GET("/contact/:id/", h.GetContact)
		api.PUT("/contact/:id/", h.UpdateContact)
		api.PATCH("/contact/:id/", h.UpdateContact)
		api.DELETE("/contact/:id/", h.DeleteContact)

		// Users
		api.POST("/users/login/", h.Login)
		api.POST("/users/register/", h.Register)
		api.POST("/users/devices/", h.RegisterDevice)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
