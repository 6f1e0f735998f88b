package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"dcgen/internal/domain"
	"dcgen/internal/generate"
	"dcgen/internal/genjob"
	"dcgen/internal/infra"
	"dcgen/internal/middleware"
)

type fixedGate struct {
	allow      bool
	increments int
}

func (g *fixedGate) CheckLimit(ctx context.Context, userID string, feature domain.Feature) bool {
	return g.allow
}

func (g *fixedGate) IncrementUsage(ctx context.Context, userID string, feature domain.Feature) error {
	g.increments++
	return nil
}

type fixedRunner struct {
	res *genjob.Result
	err error
}

func (f *fixedRunner) Run(ctx context.Context, job genjob.Job, normalize genjob.Normalizer) (*genjob.Result, error) {
	return f.res, f.err
}

func testApp(gate generate.LimitGate, runner generate.JobRunner) *App {
	cfg := &infra.Config{
		VideoAPIURL:   "https://api.example.com/api/video",
		MusicAPIURL:   "https://api.example.com/api/music",
		ImageAPIURL:   "https://api.example.com/api/image",
		ImagenAPIURL:  "https://api.example.com/api/imagen",
		TTSAPIURL:     "https://api.example.com/api/tts",
		ImageVariants: 2,
		JWTSecret:     "test-secret",
	}
	return &App{
		Cfg:      cfg,
		Logger:   zerolog.Nop(),
		Gate:     gate,
		Generate: generate.NewService(gate, runner, nil, nil),
	}
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.ContextWithUserID(req.Context(), "user-1"))
}

func TestVideoGenerateSuccess(t *testing.T) {
	gate := &fixedGate{allow: true}
	runner := &fixedRunner{res: &genjob.Result{Kind: genjob.KindVideo, URL: "https://cdn.example.com/out.mp4"}}
	app := testApp(gate, runner)

	req := authedRequest(http.MethodPost, "/api/video", `{"prompt":"a cat","negative_prompt":"blurry"}`)
	rec := httptest.NewRecorder()
	app.VideoGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || len(resp.URLs) != 1 || resp.URLs[0] != "https://cdn.example.com/out.mp4" {
		t.Fatalf("response = %+v", resp)
	}
	if gate.increments != 1 {
		t.Fatalf("usage charged %d times, want 1", gate.increments)
	}
}

func TestVideoGenerateQuotaDenied(t *testing.T) {
	app := testApp(&fixedGate{allow: false}, &fixedRunner{})

	req := authedRequest(http.MethodPost, "/api/video", `{"prompt":"a cat"}`)
	rec := httptest.NewRecorder()
	app.VideoGenerate(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
}

func TestVideoGenerateRequiresPrompt(t *testing.T) {
	app := testApp(&fixedGate{allow: true}, &fixedRunner{})

	req := authedRequest(http.MethodPost, "/api/video", `{"prompt":"  "}`)
	rec := httptest.NewRecorder()
	app.VideoGenerate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestVideoGenerateUnauthenticated(t *testing.T) {
	app := testApp(&fixedGate{allow: true}, &fixedRunner{})

	req := httptest.NewRequest(http.MethodPost, "/api/video", strings.NewReader(`{"prompt":"a cat"}`))
	rec := httptest.NewRecorder()
	app.VideoGenerate(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestVideoGenerateRejectedSubmission(t *testing.T) {
	gate := &fixedGate{allow: true}
	app := testApp(gate, &fixedRunner{err: genjob.ErrSubmissionRejected})

	req := authedRequest(http.MethodPost, "/api/video", `{"prompt":"a cat"}`)
	rec := httptest.NewRecorder()
	app.VideoGenerate(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if gate.increments != 0 {
		t.Fatalf("usage charged on rejected submission")
	}
}

func TestMusicGenerateReturnsTracks(t *testing.T) {
	runner := &fixedRunner{res: &genjob.Result{Kind: genjob.KindTracks, Tracks: []genjob.Track{
		{ID: "t1", Title: "first", AudioURL: "https://cdn.example.com/t1.mp3"},
	}}}
	app := testApp(&fixedGate{allow: true}, runner)

	req := authedRequest(http.MethodPost, "/api/music", `{"prompt":"lofi"}`)
	rec := httptest.NewRecorder()
	app.MusicGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Tracks) != 1 || resp.Tracks[0].AudioURL != "https://cdn.example.com/t1.mp3" {
		t.Fatalf("tracks = %+v", resp.Tracks)
	}
}

func TestTTSGenerateRequiresText(t *testing.T) {
	app := testApp(&fixedGate{allow: true}, &fixedRunner{})

	req := authedRequest(http.MethodGet, "/api/tts", "")
	rec := httptest.NewRecorder()
	app.TTSGenerate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTTSGenerateSuccess(t *testing.T) {
	runner := &fixedRunner{res: &genjob.Result{Kind: genjob.KindAudio, URL: "https://cdn.example.com/voice.mp3"}}
	app := testApp(&fixedGate{allow: true}, runner)

	req := authedRequest(http.MethodGet, "/api/tts?text=hello&voice=alloy", "")
	rec := httptest.NewRecorder()
	app.TTSGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.URLs) != 1 || resp.URLs[0] != "https://cdn.example.com/voice.mp3" {
		t.Fatalf("urls = %v", resp.URLs)
	}
}
