package repo

import (
	"context"

	"dcgen/internal/domain"
	"dcgen/internal/infra"
	"dcgen/internal/sqlinline"
)

// UsageRepositoryPG implements domain.UsageRepository over day-keyed
// counters. The increment is a single upsert, so it is atomic without any
// application-level locking.
type UsageRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUsageRepository creates a new UsageRepositoryPG.
func NewUsageRepository(sql infra.SQLExecutor) *UsageRepositoryPG {
	return &UsageRepositoryPG{sql: sql}
}

// UsageToday returns how many generations the user charged against the
// feature today.
func (r *UsageRepositoryPG) UsageToday(ctx context.Context, userID string, feature domain.Feature) (int, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectUsageToday, userID, string(feature))
	var used int
	if err := row.Scan(&used); err != nil {
		return 0, err
	}
	return used, nil
}

// UsageMapToday returns today's counters for every feature, with zeroes for
// features not yet used.
func (r *UsageRepositoryPG) UsageMapToday(ctx context.Context, userID string) (map[domain.Feature]int, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectUsageMapToday, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usage := make(map[domain.Feature]int, len(domain.Features))
	for _, f := range domain.Features {
		usage[f] = 0
	}
	for rows.Next() {
		var feature string
		var used int
		if err := rows.Scan(&feature, &used); err != nil {
			return nil, err
		}
		usage[domain.Feature(feature)] = used
	}
	return usage, rows.Err()
}

// Increment charges one generation against today's counter.
func (r *UsageRepositoryPG) Increment(ctx context.Context, userID string, feature domain.Feature) error {
	_, err := r.sql.Exec(ctx, sqlinline.QIncrementUsage, userID, string(feature))
	return err
}
