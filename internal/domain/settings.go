package domain

// Default daily caps applied when no global settings row exists.
const (
	DefaultFreeLimit    = 1
	DefaultPremiumLimit = 100
)

// GlobalLimits holds the tier-based daily generation caps plus the pricing
// shown by the upgrade view. Mutated only through the admin surface; the
// quota gate reads it.
type GlobalLimits struct {
	FreeLimit    int
	PremiumLimit int
	PackagePrice int
	PromoPrice   int
}

// DefaultGlobalLimits returns the hardcoded fallback settings.
func DefaultGlobalLimits() GlobalLimits {
	return GlobalLimits{
		FreeLimit:    DefaultFreeLimit,
		PremiumLimit: DefaultPremiumLimit,
		PackagePrice: 200000,
		PromoPrice:   50000,
	}
}

// LimitFor returns the daily cap for the given tier.
func (g GlobalLimits) LimitFor(tier Tier) int {
	if tier == TierPremium {
		return g.PremiumLimit
	}
	return g.FreeLimit
}
