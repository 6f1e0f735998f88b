package repo

import (
	"context"

	"dcgen/internal/domain"
	"dcgen/internal/infra"
	"dcgen/internal/sqlinline"
)

// SettingsRepositoryPG implements domain.SettingsRepository backed by a
// single-row settings table.
type SettingsRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewSettingsRepository creates a new SettingsRepositoryPG.
func NewSettingsRepository(sql infra.SQLExecutor) *SettingsRepositoryPG {
	return &SettingsRepositoryPG{sql: sql}
}

// GetLimits loads the global limits, falling back to the hardcoded defaults
// when no settings row exists yet.
func (r *SettingsRepositoryPG) GetLimits(ctx context.Context) (*domain.GlobalLimits, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectGlobalLimits)
	var limits domain.GlobalLimits
	if err := row.Scan(&limits.FreeLimit, &limits.PremiumLimit, &limits.PackagePrice, &limits.PromoPrice); err != nil {
		if infra.IsNoRows(err) {
			defaults := domain.DefaultGlobalLimits()
			return &defaults, nil
		}
		return nil, err
	}
	return &limits, nil
}

// PutLimits upserts the global limits row.
func (r *SettingsRepositoryPG) PutLimits(ctx context.Context, limits domain.GlobalLimits) error {
	_, err := r.sql.Exec(ctx, sqlinline.QUpsertGlobalLimits,
		limits.FreeLimit,
		limits.PremiumLimit,
		limits.PackagePrice,
		limits.PromoPrice,
	)
	return err
}
