package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"dcgen/internal/domain"
	"dcgen/internal/infra"
	"dcgen/internal/middleware"
)

type stubUsers struct {
	profiles map[string]*domain.UserProfile
	tiers    map[string]domain.Tier
	deleted  []string
}

func (s *stubUsers) UpsertByGoogleSub(ctx context.Context, u *domain.UserProfile) (*domain.UserProfile, error) {
	return u, nil
}

func (s *stubUsers) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	if p, ok := s.profiles[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubUsers) List(ctx context.Context) ([]domain.UserProfile, error) {
	out := make([]domain.UserProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubUsers) UpdateTier(ctx context.Context, id string, tier domain.Tier) error {
	if _, ok := s.profiles[id]; !ok {
		return domain.ErrNotFound
	}
	if s.tiers == nil {
		s.tiers = map[string]domain.Tier{}
	}
	s.tiers[id] = tier
	return nil
}

func (s *stubUsers) Delete(ctx context.Context, id string) error {
	if _, ok := s.profiles[id]; !ok {
		return domain.ErrNotFound
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type stubUsageRepo struct {
	counters map[domain.Feature]int
}

func (s *stubUsageRepo) UsageToday(ctx context.Context, userID string, feature domain.Feature) (int, error) {
	return s.counters[feature], nil
}

func (s *stubUsageRepo) UsageMapToday(ctx context.Context, userID string) (map[domain.Feature]int, error) {
	return s.counters, nil
}

func (s *stubUsageRepo) Increment(ctx context.Context, userID string, feature domain.Feature) error {
	s.counters[feature]++
	return nil
}

type stubSettingsRepo struct {
	limits domain.GlobalLimits
	putErr error
}

func (s *stubSettingsRepo) GetLimits(ctx context.Context) (*domain.GlobalLimits, error) {
	limits := s.limits
	return &limits, nil
}

func (s *stubSettingsRepo) PutLimits(ctx context.Context, limits domain.GlobalLimits) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.limits = limits
	return nil
}

func adminApp(users *stubUsers, settings *stubSettingsRepo) *App {
	return &App{
		Cfg:      &infra.Config{JWTSecret: "test-secret"},
		Logger:   zerolog.Nop(),
		Users:    users,
		Usage:    &stubUsageRepo{counters: map[domain.Feature]int{}},
		Settings: settings,
	}
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestAdminUserTierUpdate(t *testing.T) {
	users := &stubUsers{profiles: map[string]*domain.UserProfile{
		"u1": {ID: "u1", Tier: domain.TierFree},
	}}
	app := adminApp(users, &stubSettingsRepo{limits: domain.DefaultGlobalLimits()})

	req := httptest.NewRequest(http.MethodPut, "/api/admin/users/u1/tier", strings.NewReader(`{"tier":"PREMIUM"}`))
	req = withURLParam(req, "id", "u1")
	rec := httptest.NewRecorder()
	app.AdminUserTier(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if users.tiers["u1"] != domain.TierPremium {
		t.Fatalf("tier = %q, want PREMIUM", users.tiers["u1"])
	}
}

func TestAdminUserTierRejectsUnknownTier(t *testing.T) {
	users := &stubUsers{profiles: map[string]*domain.UserProfile{"u1": {ID: "u1"}}}
	app := adminApp(users, &stubSettingsRepo{})

	req := httptest.NewRequest(http.MethodPut, "/api/admin/users/u1/tier", strings.NewReader(`{"tier":"GOLD"}`))
	req = withURLParam(req, "id", "u1")
	rec := httptest.NewRecorder()
	app.AdminUserTier(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAdminUserTierNotFound(t *testing.T) {
	app := adminApp(&stubUsers{profiles: map[string]*domain.UserProfile{}}, &stubSettingsRepo{})

	req := httptest.NewRequest(http.MethodPut, "/api/admin/users/ghost/tier", strings.NewReader(`{"tier":"FREE"}`))
	req = withURLParam(req, "id", "ghost")
	rec := httptest.NewRecorder()
	app.AdminUserTier(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAdminSettingsRoundTrip(t *testing.T) {
	settings := &stubSettingsRepo{limits: domain.DefaultGlobalLimits()}
	app := adminApp(&stubUsers{}, settings)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/settings",
		strings.NewReader(`{"freeLimit":3,"premiumLimit":200,"packagePrice":150000,"promoPrice":40000}`))
	rec := httptest.NewRecorder()
	app.AdminSettingsPut(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body = %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil)
	rec = httptest.NewRecorder()
	app.AdminSettingsGet(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got settingsDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.FreeLimit != 3 || got.PremiumLimit != 200 || got.PackagePrice != 150000 {
		t.Fatalf("settings = %+v", got)
	}
}

func TestAdminSettingsValidation(t *testing.T) {
	app := adminApp(&stubUsers{}, &stubSettingsRepo{})

	req := httptest.NewRequest(http.MethodPut, "/api/admin/settings",
		strings.NewReader(`{"freeLimit":10,"premiumLimit":5}`))
	rec := httptest.NewRecorder()
	app.AdminSettingsPut(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 when premium < free", rec.Code)
	}
}

func TestMeReturnsProfileWithUsage(t *testing.T) {
	users := &stubUsers{profiles: map[string]*domain.UserProfile{
		"u1": {
			ID:          "u1",
			Email:       "user@example.com",
			DisplayName: "User One",
			Tier:        domain.TierPremium,
			Role:        domain.UserRoleUser,
			CreatedAt:   time.Now().Add(-24 * time.Hour),
		},
	}}
	app := adminApp(users, &stubSettingsRepo{limits: domain.GlobalLimits{FreeLimit: 1, PremiumLimit: 100}})
	app.Usage = &stubUsageRepo{counters: map[domain.Feature]int{domain.FeatureVideo: 7}}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	app.Me(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got userProfileDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.DailyLimit != 100 {
		t.Fatalf("daily limit = %d, want premium cap", got.DailyLimit)
	}
	if got.Usage["video"] != 7 {
		t.Fatalf("usage = %v", got.Usage)
	}
}
