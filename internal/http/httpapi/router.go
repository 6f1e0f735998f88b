package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"dcgen/internal/http/handlers"
	"dcgen/internal/middleware"
)

// NewRouter wires every route behind the shared middleware chain.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS([]string{"*"}),
		middleware.I18N("en", lookup),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute)).
			Post("/auth/google", app.AuthGoogleVerify)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(app.Cfg.JWTSecret))

			r.Get("/me", app.Me)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute))
				r.Post("/video", app.VideoGenerate)
				r.Post("/music", app.MusicGenerate)
				r.Post("/image", app.ImageGenerate)
				r.Post("/imagen", app.ImagenGenerate)
				r.Get("/tts", app.TTSGenerate)
			})

			r.Get("/status/{feature}", app.PollStatus)

			r.Route("/media", func(r chi.Router) {
				r.Get("/", app.MediaList)
				r.Get("/export.zip", app.MediaExport)
				r.Delete("/{id}", app.MediaDelete)
			})

			r.Get("/proxy", app.Proxy)
			r.Post("/upload", app.Upload)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/users", app.AdminUsersList)
				r.Put("/users/{id}/tier", app.AdminUserTier)
				r.Delete("/users/{id}", app.AdminUserDelete)
				r.Get("/settings", app.AdminSettingsGet)
				r.Put("/settings", app.AdminSettingsPut)
			})
		})
	})

	// locally stored media when no bucket is configured
	if app.Cfg.StoragePath != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(app.Cfg.StoragePath)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
