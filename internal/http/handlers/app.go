package handlers

import (
	"encoding/json"
	"net/http"

	"dcgen/internal/domain"
	"dcgen/internal/generate"
	"dcgen/internal/genjob"
	"dcgen/internal/infra"
	"dcgen/internal/infra/google"
	"dcgen/internal/media"
	"dcgen/internal/middleware"
	"dcgen/internal/storage"
)

// App carries the wired dependencies for every HTTP handler.
type App struct {
	Cfg    *infra.Config
	Logger infra.Logger

	Users    domain.UserRepository
	Usage    domain.UsageRepository
	Settings domain.SettingsRepository

	Gate     generate.LimitGate
	Generate *generate.Service
	Media    *media.Service
	Jobs     *genjob.Client
	Store    storage.Store

	GoogleVerifier *google.Verifier
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error":   code,
		"message": message,
	})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// endpointFor maps a generation feature onto its configured provider URL.
func (a *App) endpointFor(feature domain.Feature) string {
	switch feature {
	case domain.FeatureVideo:
		return a.Cfg.VideoAPIURL
	case domain.FeatureMusic:
		return a.Cfg.MusicAPIURL
	case domain.FeatureImage:
		return a.Cfg.ImageAPIURL
	case domain.FeatureImagen:
		return a.Cfg.ImagenAPIURL
	case domain.FeatureTTS:
		return a.Cfg.TTSAPIURL
	default:
		return ""
	}
}
