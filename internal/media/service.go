package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dcgen/internal/domain"
	"dcgen/internal/infra"
	"dcgen/internal/storage"
	"dcgen/pkg/zip"
)

// DefaultTTL is how long saved artifacts stay visible in the history view.
const DefaultTTL = 72 * time.Hour

// maxArtifactBytes caps a single artifact download when re-hosting.
const maxArtifactBytes = 200 << 20

// Options configures a Service. Store may be nil, in which case artifacts
// keep their provider URLs instead of being re-hosted.
type Options struct {
	Repo       domain.MediaRepository
	Store      storage.Store
	HTTPClient *http.Client
	TTL        time.Duration
	Logger     *infra.Logger
}

// Service persists generation artifacts and serves the history view.
type Service struct {
	repo       domain.MediaRepository
	store      storage.Store
	httpClient *http.Client
	ttl        time.Duration
	logger     infra.Logger
	now        func() time.Time
}

func NewService(opts Options) *Service {
	s := &Service{
		repo:       opts.Repo,
		store:      opts.Store,
		httpClient: opts.HTTPClient,
		ttl:        opts.TTL,
		now:        time.Now,
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	} else {
		s.logger = zerolog.Nop()
	}
	return s
}

// Save records one generation artifact for a user. When a store is
// configured the artifact is downloaded and re-hosted; any failure along
// that path falls back to persisting the original provider URL so a
// generation is never lost over a hosting hiccup.
func (s *Service) Save(ctx context.Context, userID string, mediaType domain.MediaType, sourceURL, prompt string, metadata map[string]any) (*domain.SavedMedia, error) {
	if sourceURL == "" {
		return nil, fmt.Errorf("media: empty artifact url")
	}

	now := s.now().UTC()
	saved := &domain.SavedMedia{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      mediaType,
		URL:       sourceURL,
		SourceURL: sourceURL,
		Prompt:    prompt,
		Metadata:  metadata,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if s.store != nil {
		hosted, err := s.rehost(ctx, mediaType, sourceURL)
		if err != nil {
			s.logger.Warn().Err(err).Str("source_url", sourceURL).Msg("re-host failed, keeping provider url")
		} else {
			saved.URL = hosted
		}
	}

	if err := s.repo.Insert(ctx, saved); err != nil {
		return nil, fmt.Errorf("media: insert: %w", err)
	}
	return saved, nil
}

func (s *Service) rehost(ctx context.Context, mediaType domain.MediaType, sourceURL string) (string, error) {
	data, contentType, err := s.Fetch(ctx, sourceURL)
	if err != nil {
		return "", err
	}
	key := storage.MediaKey("media", string(mediaType), contentType)
	return s.store.Put(ctx, key, contentType, data)
}

// Fetch downloads an artifact and returns its bytes and content type.
func (s *Service) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("media: build request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("media: download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("media: download: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactBytes))
	if err != nil {
		return nil, "", fmt.Errorf("media: read body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// List returns the user's unexpired artifacts, newest first. Expired rows
// are pruned lazily inside the repository.
func (s *Service) List(ctx context.Context, userID string, mediaType domain.MediaType) ([]domain.SavedMedia, error) {
	return s.repo.ListByUser(ctx, userID, mediaType, s.now().UTC())
}

// Delete removes a single artifact if it belongs to the user.
func (s *Service) Delete(ctx context.Context, mediaID, userID string) error {
	return s.repo.Delete(ctx, mediaID, userID)
}

// ExportZip bundles the user's current artifacts into a zip archive.
// Artifacts that cannot be downloaded are skipped rather than failing the
// whole export.
func (s *Service) ExportZip(ctx context.Context, userID string, mediaType domain.MediaType) ([]byte, error) {
	items, err := s.List(ctx, userID, mediaType)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrNotFound
	}

	entries := make([]zip.Entry, 0, len(items))
	for i, item := range items {
		data, contentType, err := s.Fetch(ctx, item.URL)
		if err != nil {
			s.logger.Warn().Err(err).Str("media_id", item.ID).Msg("skipping artifact in export")
			continue
		}
		name := fmt.Sprintf("%03d-%s%s", i+1, item.ID, storage.ExtensionForContentType(contentType))
		entries = append(entries, zip.Entry{Name: name, Data: data})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("media: no artifacts could be exported")
	}
	return zip.Archive(entries)
}
