package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"dcgen/internal/domain"
	"dcgen/internal/middleware"
)

type googleVerifyRequest struct {
	IDToken string `json:"id_token"`
}

type sessionResponse struct {
	Token string         `json:"token"`
	User  userProfileDTO `json:"user"`
}

type userProfileDTO struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	DisplayName string         `json:"display_name"`
	PhotoURL    string         `json:"photo_url,omitempty"`
	Tier        string         `json:"tier"`
	Role        string         `json:"role"`
	DailyLimit  int            `json:"daily_limit"`
	Usage       map[string]int `json:"usage_today"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AuthGoogleVerify exchanges a Google id token for a session token, creating
// or refreshing the user profile along the way.
func (a *App) AuthGoogleVerify(w http.ResponseWriter, r *http.Request) {
	var req googleVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.IDToken == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id_token required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	claims, err := a.GoogleVerifier.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		a.Logger.Error().Err(err).Msg("google verify failed")
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid google token")
		return
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	locale, _ := claims["locale"].(string)
	if sub == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "token missing subject")
		return
	}

	profile, err := a.Users.UpsertByGoogleSub(r.Context(), &domain.UserProfile{
		GoogleSub:   sub,
		Email:       email,
		DisplayName: name,
		PhotoURL:    picture,
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("upsert user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to persist user")
		return
	}

	token, err := middleware.SignSession(a.Cfg.JWTSecret, middleware.SessionClaims{
		Sub:      profile.ID,
		Email:    profile.Email,
		Tier:     string(profile.Tier),
		Role:     string(profile.Role),
		Locale:   locale,
		Exp:      time.Now().Add(24 * time.Hour).Unix(),
		Issuer:   "dcgen",
		Audience: "dcgen-clients",
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign session failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}

	a.json(w, http.StatusOK, sessionResponse{
		Token: token,
		User:  a.profileDTO(r.Context(), profile),
	})
}

// Me returns the signed-in user's profile with today's usage counters.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	profile, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	a.json(w, http.StatusOK, a.profileDTO(r.Context(), profile))
}

func (a *App) profileDTO(ctx context.Context, profile *domain.UserProfile) userProfileDTO {
	usage := map[string]int{}
	if counters, err := a.Usage.UsageMapToday(ctx, profile.ID); err == nil {
		for feature, used := range counters {
			usage[string(feature)] = used
		}
	}
	limits := domain.DefaultGlobalLimits()
	if loaded, err := a.Settings.GetLimits(ctx); err == nil && loaded != nil {
		limits = *loaded
	}
	return userProfileDTO{
		ID:          profile.ID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		PhotoURL:    profile.PhotoURL,
		Tier:        string(profile.Tier),
		Role:        string(profile.Role),
		DailyLimit:  limits.LimitFor(profile.Tier),
		Usage:       usage,
		CreatedAt:   profile.CreatedAt,
	}
}
