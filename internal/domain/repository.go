package domain

import (
	"context"
	"time"
)

// UserRepository defines access methods for user profiles.
type UserRepository interface {
	UpsertByGoogleSub(ctx context.Context, user *UserProfile) (*UserProfile, error)
	GetByID(ctx context.Context, id string) (*UserProfile, error)
	List(ctx context.Context) ([]UserProfile, error)
	UpdateTier(ctx context.Context, id string, tier Tier) error
	Delete(ctx context.Context, id string) error
}

// UsageRepository tracks day-keyed generation counters.
type UsageRepository interface {
	UsageToday(ctx context.Context, userID string, feature Feature) (int, error)
	UsageMapToday(ctx context.Context, userID string) (map[Feature]int, error)
	Increment(ctx context.Context, userID string, feature Feature) error
}

// SettingsRepository stores the global tier limits.
type SettingsRepository interface {
	GetLimits(ctx context.Context) (*GlobalLimits, error)
	PutLimits(ctx context.Context, limits GlobalLimits) error
}

// MediaRepository persists generation artifact metadata for the history view.
type MediaRepository interface {
	Insert(ctx context.Context, media *SavedMedia) error
	ListByUser(ctx context.Context, userID string, mediaType MediaType, now time.Time) ([]SavedMedia, error)
	Delete(ctx context.Context, mediaID, userID string) error
	DeleteExpired(ctx context.Context, ids []string) error
}
