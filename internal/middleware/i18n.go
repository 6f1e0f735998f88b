package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}
type countryContextKey struct{}

var (
	LocaleKey  = localeContextKey{}
	CountryKey = countryContextKey{}
)

// supportedLocales drives the language matcher; English is the default.
var supportedLocales = language.NewMatcher([]language.Tag{
	language.English,
	language.Indonesian,
})

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// I18N stores the negotiated locale and best-effort country code in the
// request context.
func I18N(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := ResolveCountry(r, lookup)
			locale := detectLocale(r, defaultLocale, country)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			if country != "" {
				ctx = context.WithValue(ctx, CountryKey, strings.ToUpper(country))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string, country string) string {
	if v := r.Header.Get("X-Locale"); v != "" {
		return matchLocale(v)
	}
	if v := negotiateAcceptLanguage(r.Header.Get("Accept-Language")); v != "" {
		return v
	}
	if strings.EqualFold(country, "ID") {
		return "id"
	}
	if country != "" {
		return "en"
	}
	if fallback != "" {
		return fallback
	}
	return "en"
}

// matchLocale maps an arbitrary language tag onto a supported locale.
func matchLocale(raw string) string {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "en"
	}
	return localeForTags(tag)
}

func negotiateAcceptLanguage(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	return localeForTags(tags...)
}

func localeForTags(tags ...language.Tag) string {
	tag, _, _ := supportedLocales.Match(tags...)
	if base, conf := tag.Base(); conf > language.No && base.String() == "id" {
		return "id"
	}
	return "en"
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return "en"
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}

// ResolveCountry resolves a best-effort ISO country code for the given
// request: proxy headers first, then language tag regions, then the GeoIP
// lookup.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	headerHints := []string{"X-Country-Code", "X-IP-Country", "CF-IPCountry", "X-Appengine-Country"}
	for _, key := range headerHints {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	if region := tagRegion(r.Header.Get("X-Locale")); region != "" {
		return region
	}
	if region := tagRegion(r.Header.Get("Accept-Language")); region != "" {
		return region
	}
	if r.Header.Get("X-Locale") != "" && matchLocale(r.Header.Get("X-Locale")) == "id" {
		return "ID"
	}
	if negotiateAcceptLanguage(r.Header.Get("Accept-Language")) == "id" {
		return "ID"
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

// tagRegion extracts an explicit region subtag from a language header, if
// one was sent.
func tagRegion(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return ""
	}
	for _, tag := range tags {
		if region, conf := tag.Region(); conf >= language.Exact && region.IsCountry() {
			return region.String()
		}
	}
	return ""
}
