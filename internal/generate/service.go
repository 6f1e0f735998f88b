package generate

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"dcgen/internal/domain"
	"dcgen/internal/genjob"
	"dcgen/internal/infra"
)

// LimitGate guards batch submissions with the daily per-feature cap.
type LimitGate interface {
	CheckLimit(ctx context.Context, userID string, feature domain.Feature) bool
	IncrementUsage(ctx context.Context, userID string, feature domain.Feature) error
}

// JobRunner executes one submit-then-poll job to a normalized result.
type JobRunner interface {
	Run(ctx context.Context, job genjob.Job, normalize genjob.Normalizer) (*genjob.Result, error)
}

// MediaSaver persists one generation artifact to the history view.
type MediaSaver interface {
	Save(ctx context.Context, userID string, mediaType domain.MediaType, sourceURL, prompt string, metadata map[string]any) (*domain.SavedMedia, error)
}

// Request is one batch submission on behalf of a user. Jobs usually holds a
// single entry; image generation fans out into several identical jobs to
// produce variants.
type Request struct {
	UserID    string
	Feature   domain.Feature
	Prompt    string
	Jobs      []genjob.Job
	Normalize genjob.Normalizer
	Metadata  map[string]any
}

// Batch is the outcome of a partially tolerant batch run. Results holds the
// sub-jobs that succeeded, in completion order.
type Batch struct {
	Feature domain.Feature
	Results []genjob.Result
	Saved   []domain.SavedMedia
}

// Service orchestrates quota-gated batch generation: check the cap, run the
// sub-jobs in parallel, persist whatever succeeded, and charge usage once.
type Service struct {
	gate   LimitGate
	runner JobRunner
	saver  MediaSaver
	logger infra.Logger
}

func NewService(gate LimitGate, runner JobRunner, saver MediaSaver, logger *infra.Logger) *Service {
	s := &Service{gate: gate, runner: runner, saver: saver}
	if logger != nil {
		s.logger = *logger
	} else {
		s.logger = zerolog.Nop()
	}
	return s
}

// Run executes a batch. A sub-job failure never aborts its siblings: as long
// as at least one sub-job produced an artifact the batch succeeds, the
// artifacts are persisted, and usage is charged exactly once. When every
// sub-job fails the batch fails, usage is not charged, and the last sub-job
// error is returned.
func (s *Service) Run(ctx context.Context, req Request) (*Batch, error) {
	if !domain.ValidFeature(req.Feature) {
		return nil, domain.ErrUnsupportedFeature
	}
	if len(req.Jobs) == 0 {
		return nil, fmt.Errorf("generate: no jobs in batch")
	}
	if !s.gate.CheckLimit(ctx, req.UserID, req.Feature) {
		return nil, domain.ErrQuotaExceeded
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []genjob.Result
		lastErr error
	)
	for _, job := range req.Jobs {
		wg.Add(1)
		go func(job genjob.Job) {
			defer wg.Done()
			res, err := s.runner.Run(ctx, job, req.Normalize)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lastErr = err
				s.logger.Warn().Err(err).
					Str("user_id", req.UserID).
					Str("feature", string(req.Feature)).
					Str("endpoint", job.Endpoint).
					Msg("generate: sub-job failed")
				return
			}
			results = append(results, *res)
		}(job)
	}
	wg.Wait()

	if len(results) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, genjob.ErrGenerationFailed
	}

	batch := &Batch{Feature: req.Feature, Results: results}
	s.persist(ctx, req, batch)

	if err := s.gate.IncrementUsage(ctx, req.UserID, req.Feature); err != nil {
		s.logger.Error().Err(err).
			Str("user_id", req.UserID).
			Str("feature", string(req.Feature)).
			Msg("generate: usage charge failed")
	}
	return batch, nil
}

// persist records every artifact of the batch. Persistence errors are logged
// and swallowed; the user already has working URLs in the response.
func (s *Service) persist(ctx context.Context, req Request, batch *Batch) {
	if s.saver == nil {
		return
	}
	mediaType := domain.MediaTypeForFeature(req.Feature)
	for _, res := range batch.Results {
		if res.Kind == genjob.KindTracks {
			for _, track := range res.Tracks {
				if track.AudioURL == "" {
					continue
				}
				meta := trackMetadata(track, req.Metadata)
				s.save(ctx, batch, req.UserID, mediaType, track.AudioURL, req.Prompt, meta)
			}
			continue
		}
		s.save(ctx, batch, req.UserID, mediaType, res.URL, req.Prompt, req.Metadata)
	}
}

func (s *Service) save(ctx context.Context, batch *Batch, userID string, mediaType domain.MediaType, url, prompt string, metadata map[string]any) {
	saved, err := s.saver.Save(ctx, userID, mediaType, url, prompt, metadata)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Str("url", url).Msg("generate: persist failed")
		return
	}
	batch.Saved = append(batch.Saved, *saved)
}

func trackMetadata(track genjob.Track, base map[string]any) map[string]any {
	meta := make(map[string]any, len(base)+4)
	for k, v := range base {
		meta[k] = v
	}
	if track.Title != "" {
		meta["title"] = track.Title
	}
	if track.ImageURL != "" {
		meta["image_url"] = track.ImageURL
	}
	if track.Duration > 0 {
		meta["duration"] = track.Duration
	}
	if track.Model != "" {
		meta["model"] = track.Model
	}
	return meta
}
