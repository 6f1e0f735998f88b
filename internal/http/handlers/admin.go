package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dcgen/internal/domain"
)

type adminUserDTO struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Tier        string    `json:"tier"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// AdminUsersList returns every registered user.
func (a *App) AdminUsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.Users.List(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("admin list users failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load users")
		return
	}
	out := make([]adminUserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserDTO{
			ID:          u.ID,
			Email:       u.Email,
			DisplayName: u.DisplayName,
			Tier:        string(u.Tier),
			Role:        string(u.Role),
			CreatedAt:   u.CreatedAt,
			LastLoginAt: u.LastLoginAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"users": out})
}

type tierUpdateRequest struct {
	Tier string `json:"tier"`
}

// AdminUserTier switches a user between the free and premium tiers.
func (a *App) AdminUserTier(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	var req tierUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	tier := domain.Tier(req.Tier)
	if tier != domain.TierFree && tier != domain.TierPremium {
		a.error(w, http.StatusBadRequest, "bad_request", "tier must be FREE or PREMIUM")
		return
	}
	if err := a.Users.UpdateTier(r.Context(), userID, tier); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		a.Logger.Error().Err(err).Msg("admin tier update failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update tier")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"id": userID, "tier": string(tier)})
}

// AdminUserDelete removes a user account.
func (a *App) AdminUserDelete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if err := a.Users.Delete(r.Context(), userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		a.Logger.Error().Err(err).Msg("admin delete user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete user")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"deleted": userID})
}

type settingsDTO struct {
	FreeLimit    int `json:"freeLimit"`
	PremiumLimit int `json:"premiumLimit"`
	PackagePrice int `json:"packagePrice"`
	PromoPrice   int `json:"promoPrice"`
}

// AdminSettingsGet returns the global tier limits and pricing.
func (a *App) AdminSettingsGet(w http.ResponseWriter, r *http.Request) {
	limits, err := a.Settings.GetLimits(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("admin settings load failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load settings")
		return
	}
	a.json(w, http.StatusOK, settingsDTO{
		FreeLimit:    limits.FreeLimit,
		PremiumLimit: limits.PremiumLimit,
		PackagePrice: limits.PackagePrice,
		PromoPrice:   limits.PromoPrice,
	})
}

// AdminSettingsPut replaces the global tier limits and pricing.
func (a *App) AdminSettingsPut(w http.ResponseWriter, r *http.Request) {
	var req settingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.FreeLimit < 0 || req.PremiumLimit < 0 || req.PremiumLimit < req.FreeLimit {
		a.error(w, http.StatusBadRequest, "bad_request", "limits must be non-negative and premium >= free")
		return
	}
	limits := domain.GlobalLimits{
		FreeLimit:    req.FreeLimit,
		PremiumLimit: req.PremiumLimit,
		PackagePrice: req.PackagePrice,
		PromoPrice:   req.PromoPrice,
	}
	if err := a.Settings.PutLimits(r.Context(), limits); err != nil {
		a.Logger.Error().Err(err).Msg("admin settings save failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save settings")
		return
	}
	a.json(w, http.StatusOK, req)
}
