// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides bearer-token authentication. Auth() parses and
// validates the Authorization header when present, storing the user ID and
// staff flag in the Gin context; RequireAuth() and RequireStaff() gate
// routes that demand an identity or the staff role. Auth() alone never
// rejects a request, so public endpoints can still personalize behavior
// for logged-in callers.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oshxona/go-food-backend/internal/services"
)

// TokenParser validates a signed token string into claims. Satisfied by
// services.AuthService.
type TokenParser interface {
	ParseToken(token string) (*services.Claims, error)
}

// Auth extracts and validates a Bearer token when one is supplied. Valid
// access tokens populate "userID" (uint) and "isStaff" (bool) in the Gin
// context. Malformed or expired tokens abort with 401; a missing header
// passes through anonymously.
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortUnauthorized(c, "invalid authorization header")
			return
		}

		claims, err := parser.ParseToken(strings.TrimSpace(token))
		if err != nil || claims.Kind != "access" {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("isStaff", claims.IsStaff)
		c.Next()
	}
}

// RequireAuth rejects requests that did not authenticate. Place it after
// Auth() on routes that demand an identity.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetUint("userID") == 0 {
			abortUnauthorized(c, "authentication required")
			return
		}
		c.Next()
	}
}

// RequireStaff rejects requests whose token lacks the staff flag. An
// anonymous request gets 401, an authenticated non-staff request 403.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetUint("userID") == 0 {
			abortUnauthorized(c, "authentication required")
			return
		}
		if !c.GetBool("isStaff") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "staff access required",
				"errors":  gin.H{},
			})
			return
		}
		c.Next()
	}
}

// UserIDFrom returns the authenticated user's ID, or nil for anonymous
// requests. The pointer form suits optional foreign keys.
func UserIDFrom(c *gin.Context) *uint {
	if uid := c.GetUint("userID"); uid != 0 {
		return &uid
	}
	return nil
}

// IsStaff reports whether the current request carries the staff flag.
func IsStaff(c *gin.Context) bool {
	return c.GetBool("isStaff")
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": msg,
		"errors":  gin.H{},
	})
}
