// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves per-request client metadata: the response language
// from Accept-Language and the calling platform from X-Device-Type. Both
// are stored in the Gin context so handlers can localize payloads and pick
// projections without re-parsing headers.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oshxona/go-food-backend/internal/domain"
	"github.com/oshxona/go-food-backend/internal/i18n"
)

const (
	localeKey     = "locale"
	deviceTypeKey = "deviceType"
)

// ClientMeta parses Accept-Language and X-Device-Type into context values.
// Unknown or missing languages fall back to Uzbek; an unrecognized device
// type is treated as a mobile client.
func ClientMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(localeKey, i18n.Resolve(c.GetHeader("Accept-Language")))

		dt := domain.DeviceType(strings.ToUpper(strings.TrimSpace(c.GetHeader("X-Device-Type"))))
		if !domain.ValidDeviceType(dt) {
			dt = domain.DeviceAndroid
		}
		c.Set(deviceTypeKey, dt)

		c.Next()
	}
}

// LocaleFrom returns the resolved response locale for this request.
func LocaleFrom(c *gin.Context) i18n.Locale {
	if v, ok := c.Get(localeKey); ok {
		if loc, ok := v.(i18n.Locale); ok {
			return loc
		}
	}
	return i18n.Uz
}

// DeviceTypeFrom returns the calling platform for this request.
func DeviceTypeFrom(c *gin.Context) domain.DeviceType {
	if v, ok := c.Get(deviceTypeKey); ok {
		if dt, ok := v.(domain.DeviceType); ok {
			return dt
		}
	}
	return domain.DeviceAndroid
}
