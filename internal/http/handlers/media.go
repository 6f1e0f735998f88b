package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"dcgen/internal/domain"
)

// MediaList returns the user's saved artifacts, newest first. An optional
// ?type= filter narrows to one media type.
func (a *App) MediaList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	mediaType := domain.MediaType(strings.ToUpper(r.URL.Query().Get("type")))
	items, err := a.Media.List(r.Context(), userID, mediaType)
	if err != nil {
		a.Logger.Error().Err(err).Msg("media list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load media")
		return
	}
	out := make([]mediaDTO, 0, len(items))
	for _, item := range items {
		out = append(out, mediaDTO{
			ID:        item.ID,
			Type:      string(item.Type),
			URL:       item.URL,
			Prompt:    item.Prompt,
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
			ExpiresAt: item.ExpiresAt.Format(time.RFC3339),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": out})
}

// MediaDelete removes one artifact owned by the user.
func (a *App) MediaDelete(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	mediaID := chi.URLParam(r, "id")
	if mediaID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id required")
		return
	}
	if err := a.Media.Delete(r.Context(), mediaID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "media not found")
			return
		}
		a.Logger.Error().Err(err).Msg("media delete failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete media")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"deleted": mediaID})
}

// MediaExport bundles the user's artifacts into a downloadable zip.
func (a *App) MediaExport(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	mediaType := domain.MediaType(strings.ToUpper(r.URL.Query().Get("type")))
	data, err := a.Media.ExportZip(r.Context(), userID, mediaType)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "no media to export")
			return
		}
		a.Logger.Error().Err(err).Msg("media export failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build export")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="export.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Proxy streams a remote artifact through this API. Browser clients use it
// to download provider URLs that lack CORS headers.
func (a *App) Proxy(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	rawURL := r.URL.Query().Get("url")
	target, err := url.Parse(rawURL)
	if err != nil || (target.Scheme != "https" && target.Scheme != "http") || target.Host == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "url must be absolute http(s)")
		return
	}

	data, contentType, err := a.Media.Fetch(r.Context(), target.String())
	if err != nil {
		a.Logger.Warn().Err(err).Str("url", target.Redacted()).Msg("proxy fetch failed")
		a.error(w, http.StatusBadGateway, "upstream", "failed to fetch url")
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	filename := path.Base(target.Path)
	if filename == "." || filename == "/" || filename == "" {
		filename = "download"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
