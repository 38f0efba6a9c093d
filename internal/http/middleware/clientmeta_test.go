package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/oshxona/go-food-backend/internal/domain"
	"github.com/oshxona/go-food-backend/internal/i18n"
)

func TestClientMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := map[string]struct {
		acceptLanguage string
		deviceType     string
		wantLocale     i18n.Locale
		wantDevice     domain.DeviceType
	}{
		"russian web client": {
			acceptLanguage: "ru-RU,ru;q=0.9",
			deviceType:     "WEB",
			wantLocale:     i18n.Ru,
			wantDevice:     domain.DeviceWeb,
		},
		"english ios client": {
			acceptLanguage: "en-US",
			deviceType:     "ios",
			wantLocale:     i18n.En,
			wantDevice:     domain.DeviceIOS,
		},
		"no headers": {
			wantLocale: i18n.Uz,
			wantDevice: domain.DeviceAndroid,
		},
		"unknown values": {
			acceptLanguage: "de-DE",
			deviceType:     "SMART_FRIDGE",
			wantLocale:     i18n.Uz,
			wantDevice:     domain.DeviceAndroid,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.Use(ClientMeta())
			r.GET("/", func(c *gin.Context) {
				if got := LocaleFrom(c); got != tc.wantLocale {
					t.Errorf("locale = %v, want %v", got, tc.wantLocale)
				}
				if got := DeviceTypeFrom(c); got != tc.wantDevice {
					t.Errorf("device = %v, want %v", got, tc.wantDevice)
				}
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tc.acceptLanguage)
			}
			if tc.deviceType != "" {
				req.Header.Set("X-Device-Type", tc.deviceType)
			}
			r.ServeHTTP(httptest.NewRecorder(), req)
		})
	}
}

func TestClientMetaDefaultsWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if LocaleFrom(c) != i18n.Uz {
		t.Fatal("locale fallback must be uz")
	}
	if DeviceTypeFrom(c) != domain.DeviceAndroid {
		t.Fatal("device fallback must be android")
	}
}
