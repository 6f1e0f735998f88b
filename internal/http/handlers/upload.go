package handlers

import (
	"io"
	"net/http"

	"dcgen/internal/storage"
)

// maxUploadBytes caps reference image uploads.
const maxUploadBytes = 25 << 20

// Upload accepts a multipart file and stores it, returning a public URL.
// Clients use this for image-to-video reference frames.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "file field required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read file")
		return
	}
	if len(data) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "empty file")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key := storage.MediaKey("uploads", userID, contentType)
	publicURL, err := a.Store.Put(r.Context(), key, contentType, data)
	if err != nil {
		a.Logger.Error().Err(err).Msg("upload store failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store file")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"url": publicURL})
}
