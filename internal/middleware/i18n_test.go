package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		header   map[string]string
		fallback string
		country  string
		want     string
	}{
		{
			name:    "x-locale overrides country",
			header:  map[string]string{"X-Locale": "ID"},
			country: "US",
			want:    "id",
		},
		{
			name:   "accept-language english",
			header: map[string]string{"Accept-Language": "en-US,en;q=0.9"},
			want:   "en",
		},
		{
			name:   "accept-language indonesian",
			header: map[string]string{"Accept-Language": "id-ID,en;q=0.8"},
			want:   "id",
		},
		{
			name:   "unsupported language maps to en",
			header: map[string]string{"Accept-Language": "fr-FR,fr;q=0.9"},
			want:   "en",
		},
		{
			name:   "unparseable x-locale maps to en",
			header: map[string]string{"X-Locale": "!!"},
			want:   "en",
		},
		{
			name:    "country ID implies id",
			country: "ID",
			want:    "id",
		},
		{
			name:    "other country implies en",
			country: "US",
			want:    "en",
		},
		{
			name:     "configured fallback",
			fallback: "id",
			want:     "id",
		},
		{
			name: "bare default",
			want: "en",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			if got := detectLocale(req, tc.fallback, tc.country); got != tc.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveCountry(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		lookup CountryLookup
		want   string
	}{
		{
			name:   "proxy header wins",
			header: map[string]string{"X-Country-Code": "us", "CF-IPCountry": "id"},
			want:   "US",
		},
		{
			name:   "x-locale region",
			header: map[string]string{"X-Locale": "en-AU"},
			want:   "AU",
		},
		{
			name:   "accept-language region",
			header: map[string]string{"Accept-Language": "en-GB,en;q=0.9"},
			want:   "GB",
		},
		{
			name:   "bare indonesian implies ID",
			header: map[string]string{"Accept-Language": "id;q=0.8"},
			want:   "ID",
		},
		{
			name: "geoip lookup",
			lookup: func(ip string) (string, error) {
				if ip != "203.0.113.4" {
					t.Fatalf("unexpected ip: %s", ip)
				}
				return "my", nil
			},
			want: "MY",
		},
		{
			name: "lookup error yields empty",
			lookup: func(ip string) (string, error) {
				return "", errors.New("db unavailable")
			},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.4:80"
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			if got := ResolveCountry(req, tc.lookup); got != tc.want {
				t.Fatalf("ResolveCountry() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLocaleFromContext(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFromContext(ctx); got != "en" {
		t.Fatalf("LocaleFromContext() default = %q, want en", got)
	}
	ctx = context.WithValue(ctx, LocaleKey, "id")
	if got := LocaleFromContext(ctx); got != "id" {
		t.Fatalf("LocaleFromContext() = %q, want id", got)
	}
}
