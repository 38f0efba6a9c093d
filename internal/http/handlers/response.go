// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response envelopes used across all
// endpoints. Every response carries a "success" flag and a human-readable
// message; successful responses add "data" and failures add a field-keyed
// "errors" object. List endpoints wrap their rows in a results/pagination
// block built by utils.NewPageMeta.
//
// Example success response:
//
//	HTTP/1.1 200 OK
//	{ "success": true, "message": "ok", "data": { "id": 3, ... } }
//
// Example error response:
//
//	HTTP/1.1 400 Bad Request
//	{ "success": false, "message": "validation failed",
//	  "errors": { "price": "price must be greater than zero" } }
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oshxona/go-food-backend/internal/http/middleware"
	"github.com/oshxona/go-food-backend/internal/services"
	"github.com/oshxona/go-food-backend/internal/utils"
)

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"ok"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the standard error envelope. Errors maps field names to
// messages for validation failures and is empty otherwise.
type ErrorResponse struct {
	Success bool              `json:"success" example:"false"`
	Message string            `json:"message" example:"resource not found"`
	Errors  map[string]string `json:"errors"`
}

// PagedData wraps one listing page together with its pagination block.
type PagedData struct {
	Results    any            `json:"results"`
	Pagination utils.PageMeta `json:"pagination"`
}

// ok writes a success envelope with the given status, message, and payload.
func ok(c *gin.Context, status int, message string, data any) {
	c.JSON(status, SuccessResponse{Success: true, Message: message, Data: data})
}

// paged writes a success envelope whose data carries a results page and its
// pagination metadata.
func paged(c *gin.Context, message string, results any, meta utils.PageMeta) {
	ok(c, http.StatusOK, message, PagedData{Results: results, Pagination: meta})
}

// fail aborts the request with an error envelope. Server errors (>=500)
// are logged with the request-scoped logger; their client-facing message is
// kept generic so internals never leak.
func fail(c *gin.Context, status int, message string, fields map[string]string) {
	if fields == nil {
		fields = map[string]string{}
	}
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("message", message).
			Msg("api error")
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Success: false, Message: message, Errors: fields})
}

// Fail is the exported variant of fail() for router-level handlers
// (NoRoute, NoMethod) that live outside this package.
func Fail(c *gin.Context, status int, message string) {
	fail(c, status, message, nil)
}

// failErr translates a service error into the matching HTTP failure.
// Validation errors become 400s with their field map; not-found sentinels
// become 404s; anything unrecognized is a 500.
func failErr(c *gin.Context, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		fail(c, http.StatusBadRequest, "validation failed", ve.Fields)
		return
	}

	switch {
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrRecipeNotFound),
		errors.Is(err, services.ErrStoryNotFound),
		errors.Is(err, services.ErrContactNotFound):
		fail(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrStoryNotAvailable):
		fail(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrAccountDisabled):
		fail(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, services.ErrUserExists):
		fail(c, http.StatusBadRequest, err.Error(), nil)
	default:
		fail(c, http.StatusInternalServerError, err.Error(), nil)
	}
}
