package domain

import "time"

// MediaType categorizes persisted generation artifacts for the history view.
type MediaType string

const (
	MediaTypeVideo MediaType = "VIDEO"
	MediaTypeMusic MediaType = "MUSIC"
	MediaTypeImage MediaType = "IMAGE"
	MediaTypeTTS   MediaType = "TTS"
)

// MediaTypeForFeature maps a generation feature to its history media type.
func MediaTypeForFeature(f Feature) MediaType {
	switch f {
	case FeatureVideo:
		return MediaTypeVideo
	case FeatureMusic:
		return MediaTypeMusic
	case FeatureTTS:
		return MediaTypeTTS
	default:
		return MediaTypeImage
	}
}

// SavedMedia is one persisted generation artifact. URL is the durable
// reference handed back to callers; SourceURL keeps the original provider
// URL when the artifact was re-hosted.
type SavedMedia struct {
	ID        string
	UserID    string
	Type      MediaType
	URL       string
	SourceURL string
	Prompt    string
	Metadata  map[string]any
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the artifact's retention window has passed.
func (m SavedMedia) Expired(now time.Time) bool {
	return !m.ExpiresAt.IsZero() && m.ExpiresAt.Before(now)
}
