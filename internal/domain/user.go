package domain

import "time"

// Tier enumerates subscription levels controlling daily quota limits.
type Tier string

const (
	TierFree    Tier = "FREE"
	TierPremium Tier = "PREMIUM"
)

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// Feature enumerates the generation tools gated by the quota system.
type Feature string

const (
	FeatureVideo  Feature = "video"
	FeatureMusic  Feature = "music"
	FeatureImage  Feature = "image"
	FeatureTTS    Feature = "tts"
	FeatureImagen Feature = "imagen"
)

// Features lists every known feature in a stable order.
var Features = []Feature{FeatureVideo, FeatureMusic, FeatureImage, FeatureTTS, FeatureImagen}

// ValidFeature reports whether f names a known generation feature.
func ValidFeature(f Feature) bool {
	switch f {
	case FeatureVideo, FeatureMusic, FeatureImage, FeatureTTS, FeatureImagen:
		return true
	}
	return false
}

// UserProfile represents an authenticated account. Usage holds today's
// generation counts per feature, derived from day-keyed counters.
type UserProfile struct {
	ID          string
	GoogleSub   string
	Email       string
	DisplayName string
	PhotoURL    string
	Tier        Tier
	Role        UserRole
	Usage       map[Feature]int
	CreatedAt   time.Time
	LastLoginAt time.Time
}

// IsPremium reports whether the profile is on the premium tier.
func (u UserProfile) IsPremium() bool {
	return u.Tier == TierPremium
}
