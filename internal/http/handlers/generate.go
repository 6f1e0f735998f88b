package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"dcgen/internal/domain"
	"dcgen/internal/generate"
	"dcgen/internal/genjob"
)

type videoGenerateRequest struct {
	Prompt         string   `json:"prompt"`
	NegativePrompt string   `json:"negative_prompt"`
	Model          string   `json:"model"`
	Ratio          string   `json:"ratio"`
	Type           string   `json:"type"`
	ImageURLs      []string `json:"imageUrls"`
}

type musicGenerateRequest struct {
	Prompt       string `json:"prompt"`
	Style        string `json:"style"`
	Title        string `json:"title"`
	Instrumental bool   `json:"instrumental"`
	Model        string `json:"model"`
}

type imageGenerateRequest struct {
	Prompt string `json:"prompt"`
	Ratio  string `json:"ratio"`
	Count  int    `json:"count"`
}

type imagenGenerateRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
	Ratio  string `json:"ratio"`
}

type trackDTO struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	AudioURL string  `json:"audio_url"`
	ImageURL string  `json:"image_url,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

type mediaDTO struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	URL       string `json:"url"`
	Prompt    string `json:"prompt,omitempty"`
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at"`
}

type generateResponse struct {
	Success bool       `json:"success"`
	Feature string     `json:"feature"`
	URLs    []string   `json:"urls,omitempty"`
	Tracks  []trackDTO `json:"tracks,omitempty"`
	Media   []mediaDTO `json:"media,omitempty"`
}

// VideoGenerate submits a video job and blocks until it finishes.
func (a *App) VideoGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req videoGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}

	prompt := req.Prompt
	if neg := strings.TrimSpace(req.NegativePrompt); neg != "" {
		prompt += " --no " + neg
	}
	payload := map[string]any{
		"prompt": prompt,
	}
	if req.Model != "" {
		payload["model"] = req.Model
	}
	if req.Ratio != "" {
		payload["ratio"] = req.Ratio
	}
	if req.Type != "" {
		payload["type"] = req.Type
	}
	if len(req.ImageURLs) > 0 {
		payload["imageUrls"] = req.ImageURLs
	}

	batch, err := a.Generate.Run(r.Context(), generate.Request{
		UserID:  userID,
		Feature: domain.FeatureVideo,
		Prompt:  req.Prompt,
		Jobs: []genjob.Job{{
			Endpoint: a.Cfg.VideoAPIURL,
			Payload:  payload,
		}},
		Normalize: genjob.NormalizeVideo,
		Metadata:  map[string]any{"model": req.Model, "ratio": req.Ratio},
	})
	if err != nil {
		a.generateError(w, err)
		return
	}
	a.json(w, http.StatusOK, a.batchResponse(batch))
}

// MusicGenerate submits a music job; the provider returns a list of tracks.
func (a *App) MusicGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req musicGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}

	payload := map[string]any{
		"prompt":       req.Prompt,
		"instrumental": req.Instrumental,
	}
	if req.Style != "" {
		payload["style"] = req.Style
	}
	if req.Title != "" {
		payload["title"] = req.Title
	}
	if req.Model != "" {
		payload["model"] = req.Model
	}

	batch, err := a.Generate.Run(r.Context(), generate.Request{
		UserID:  userID,
		Feature: domain.FeatureMusic,
		Prompt:  req.Prompt,
		Jobs: []genjob.Job{{
			Endpoint: a.Cfg.MusicAPIURL,
			Payload:  payload,
		}},
		Normalize: genjob.NormalizeTracks,
		Metadata:  map[string]any{"style": req.Style},
	})
	if err != nil {
		a.generateError(w, err)
		return
	}
	a.json(w, http.StatusOK, a.batchResponse(batch))
}

// ImageGenerate fans one prompt out into several parallel jobs so the user
// gets variants; a single variant failing does not fail the request.
func (a *App) ImageGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req imageGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}

	count := req.Count
	if count <= 0 || count > 4 {
		count = a.Cfg.ImageVariants
	}
	payload := map[string]any{"prompt": req.Prompt}
	if req.Ratio != "" {
		payload["ratio"] = req.Ratio
	}
	jobs := make([]genjob.Job, count)
	for i := range jobs {
		jobs[i] = genjob.Job{Endpoint: a.Cfg.ImageAPIURL, Payload: payload}
	}

	batch, err := a.Generate.Run(r.Context(), generate.Request{
		UserID:    userID,
		Feature:   domain.FeatureImage,
		Prompt:    req.Prompt,
		Jobs:      jobs,
		Normalize: genjob.NormalizeImage,
		Metadata:  map[string]any{"ratio": req.Ratio},
	})
	if err != nil {
		a.generateError(w, err)
		return
	}
	a.json(w, http.StatusOK, a.batchResponse(batch))
}

// ImagenGenerate is the styled image tool backed by its own provider.
func (a *App) ImagenGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req imagenGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}

	payload := map[string]any{"prompt": req.Prompt}
	if req.Style != "" {
		payload["style"] = req.Style
	}
	if req.Ratio != "" {
		payload["aspect_ratio"] = req.Ratio
	}

	batch, err := a.Generate.Run(r.Context(), generate.Request{
		UserID:  userID,
		Feature: domain.FeatureImagen,
		Prompt:  req.Prompt,
		Jobs: []genjob.Job{{
			Endpoint: a.Cfg.ImagenAPIURL,
			Payload:  payload,
		}},
		Normalize: genjob.NormalizeImage,
		Metadata:  map[string]any{"style": req.Style},
	})
	if err != nil {
		a.generateError(w, err)
		return
	}
	a.json(w, http.StatusOK, a.batchResponse(batch))
}

// TTSGenerate speaks a text. The provider takes its inputs as query
// parameters and answers synchronously.
func (a *App) TTSGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	text := strings.TrimSpace(r.URL.Query().Get("text"))
	if text == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "text required")
		return
	}
	params := url.Values{}
	params.Set("text", text)
	if voice := r.URL.Query().Get("voice"); voice != "" {
		params.Set("voice", voice)
	}
	if speed := r.URL.Query().Get("speed"); speed != "" {
		params.Set("speed", speed)
	}

	batch, err := a.Generate.Run(r.Context(), generate.Request{
		UserID:  userID,
		Feature: domain.FeatureTTS,
		Prompt:  text,
		Jobs: []genjob.Job{{
			Endpoint: a.Cfg.TTSAPIURL,
			Query:    params,
		}},
		Normalize: genjob.NormalizeAudio,
		Metadata:  map[string]any{"voice": params.Get("voice")},
	})
	if err != nil {
		a.generateError(w, err)
		return
	}
	a.json(w, http.StatusOK, a.batchResponse(batch))
}

// PollStatus proxies a status probe for a queued job so browser clients can
// poll through this API instead of the provider directly.
func (a *App) PollStatus(w http.ResponseWriter, r *http.Request) {
	feature := domain.Feature(chi.URLParam(r, "feature"))
	if !domain.ValidFeature(feature) {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown feature")
		return
	}
	requestID := strings.TrimSpace(r.URL.Query().Get("requestId"))
	if requestID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "requestId required")
		return
	}
	endpoint := a.endpointFor(feature)
	if endpoint == "" {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "feature not configured")
		return
	}
	env, err := a.Jobs.Status(r.Context(), endpoint, requestID)
	if err != nil {
		a.Logger.Warn().Err(err).Str("feature", string(feature)).Msg("status probe failed")
		a.error(w, http.StatusBadGateway, "upstream", "provider unavailable")
		return
	}
	a.json(w, http.StatusOK, env)
}

func (a *App) generateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		a.error(w, http.StatusTooManyRequests, "quota_exceeded", "daily generation limit reached")
	case errors.Is(err, domain.ErrUnsupportedFeature):
		a.error(w, http.StatusBadRequest, "bad_request", "unsupported feature")
	case errors.Is(err, genjob.ErrSubmissionRejected):
		a.error(w, http.StatusUnprocessableEntity, "rejected", err.Error())
	case genjob.IsTransport(err):
		a.error(w, http.StatusBadGateway, "upstream", "provider unavailable")
	default:
		a.error(w, http.StatusBadGateway, "generation_failed", err.Error())
	}
}

func (a *App) batchResponse(batch *generate.Batch) generateResponse {
	resp := generateResponse{Success: true, Feature: string(batch.Feature)}
	for _, res := range batch.Results {
		if res.Kind == genjob.KindTracks {
			for _, track := range res.Tracks {
				resp.Tracks = append(resp.Tracks, trackDTO{
					ID:       track.ID,
					Title:    track.Title,
					AudioURL: track.AudioURL,
					ImageURL: track.ImageURL,
					Duration: track.Duration,
				})
			}
			continue
		}
		resp.URLs = append(resp.URLs, res.URL)
	}
	for _, saved := range batch.Saved {
		resp.Media = append(resp.Media, mediaDTO{
			ID:        saved.ID,
			Type:      string(saved.Type),
			URL:       saved.URL,
			Prompt:    saved.Prompt,
			CreatedAt: saved.CreatedAt.Format(time.RFC3339),
			ExpiresAt: saved.ExpiresAt.Format(time.RFC3339),
		})
	}
	return resp
}
