package quota

import (
	"context"

	"dcgen/internal/domain"
	"dcgen/internal/infra"
)

// ProfileSource loads the subscription tier for a user.
type ProfileSource interface {
	GetByID(ctx context.Context, id string) (*domain.UserProfile, error)
}

// LimitsSource loads the tier-based daily caps.
type LimitsSource interface {
	GetLimits(ctx context.Context) (*domain.GlobalLimits, error)
}

// UsageStore reads and increments day-keyed usage counters. Increment must
// be atomic; the gate adds no locking of its own.
type UsageStore interface {
	UsageToday(ctx context.Context, userID string, feature domain.Feature) (int, error)
	Increment(ctx context.Context, userID string, feature domain.Feature) error
}

// Gate enforces the per-user, per-feature daily generation cap. CheckLimit
// and IncrementUsage are deliberately separate calls divided by the whole
// submit+poll lifecycle, so two concurrent submissions by the same user can
// both pass the check before either increments. That window is accepted; a
// reserve/confirm transaction would be needed to close it.
type Gate struct {
	profiles ProfileSource
	limits   LimitsSource
	usage    UsageStore
	logger   infra.Logger
}

// NewGate wires a gate over the given sources.
func NewGate(profiles ProfileSource, limits LimitsSource, usage UsageStore, logger infra.Logger) *Gate {
	return &Gate{profiles: profiles, limits: limits, usage: usage, logger: logger}
}

// CheckLimit reports whether the user may start another generation of the
// given feature today. It fails closed: any error loading the profile or
// today's usage denies the request. Missing global settings fall back to the
// hardcoded defaults.
func (g *Gate) CheckLimit(ctx context.Context, userID string, feature domain.Feature) bool {
	profile, err := g.profiles.GetByID(ctx, userID)
	if err != nil || profile == nil {
		g.logger.Warn().Err(err).Str("user_id", userID).Msg("quota: profile load failed, denying")
		return false
	}

	limits := domain.DefaultGlobalLimits()
	if loaded, err := g.limits.GetLimits(ctx); err == nil && loaded != nil {
		limits = *loaded
	} else if err != nil {
		g.logger.Warn().Err(err).Msg("quota: settings load failed, using defaults")
	}

	used, err := g.usage.UsageToday(ctx, userID, feature)
	if err != nil {
		g.logger.Warn().Err(err).Str("user_id", userID).Str("feature", string(feature)).Msg("quota: usage load failed, denying")
		return false
	}

	limit := limits.LimitFor(profile.Tier)
	allowed := used < limit
	g.logger.Debug().
		Str("user_id", userID).
		Str("feature", string(feature)).
		Str("tier", string(profile.Tier)).
		Int("used", used).
		Int("limit", limit).
		Bool("allowed", allowed).
		Msg("quota: limit check")
	return allowed
}

// IncrementUsage charges one generation against today's counter. Callers
// must invoke it only after a submission produced at least one artifact, and
// at most once per batch.
func (g *Gate) IncrementUsage(ctx context.Context, userID string, feature domain.Feature) error {
	if err := g.usage.Increment(ctx, userID, feature); err != nil {
		g.logger.Error().Err(err).Str("user_id", userID).Str("feature", string(feature)).Msg("quota: increment failed")
		return err
	}
	return nil
}
