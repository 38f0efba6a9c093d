// Package i18n resolves the request language and applies the locale
// fallback chain used by all localized response fields.
//
// Fields are stored as explicit per-locale columns (uz/ru/en). Output
// substitution follows the chain: requested locale → "uz" → empty string.
// The Uzbek variant is canonical; blank localized variants always fall back
// to it.
package i18n

import "golang.org/x/text/language"

// Locale is a supported response language.
type Locale string

// Supported locales; Uz is the default and the fallback.
const (
	Uz Locale = "uz"
	Ru Locale = "ru"
	En Locale = "en"
)

// supported mirrors the Locale constants, in matcher priority order.
var supported = []language.Tag{
	language.MustParse("uz"),
	language.Russian,
	language.English,
}

var matcher = language.NewMatcher(supported)

// Resolve maps an Accept-Language header value to a supported Locale.
// Absent, malformed, or unrecognized values resolve to Uz.
func Resolve(acceptLanguage string) Locale {
	if acceptLanguage == "" {
		return Uz
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Uz
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Uz
	}
	switch idx {
	case 1:
		return Ru
	case 2:
		return En
	default:
		return Uz
	}
}

// Pick returns the variant for the requested locale, falling back to the
// Uzbek value when the localized variant is blank.
func Pick(loc Locale, uz, ru, en string) string {
	var v string
	switch loc {
	case Ru:
		v = ru
	case En:
		v = en
	default:
		v = uz
	}
	if v == "" {
		return uz
	}
	return v
}
