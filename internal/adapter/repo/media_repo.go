package repo

import (
	"context"
	"encoding/json"
	"time"

	"dcgen/internal/domain"
	"dcgen/internal/infra"
	"dcgen/internal/sqlinline"
)

// MediaRepositoryPG implements domain.MediaRepository backed by PostgreSQL.
type MediaRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewMediaRepository creates a new MediaRepositoryPG.
func NewMediaRepository(sql infra.SQLExecutor) *MediaRepositoryPG {
	return &MediaRepositoryPG{sql: sql}
}

// Insert stores one artifact's metadata.
func (r *MediaRepositoryPG) Insert(ctx context.Context, media *domain.SavedMedia) error {
	metadata, err := json.Marshal(media.Metadata)
	if err != nil {
		return err
	}
	_, err = r.sql.Exec(ctx, sqlinline.QInsertMedia,
		media.ID,
		media.UserID,
		string(media.Type),
		media.URL,
		media.SourceURL,
		media.Prompt,
		metadata,
		media.CreatedAt,
		media.ExpiresAt,
	)
	return err
}

// ListByUser returns the user's non-expired media newest first. Expired rows
// encountered during the scan are returned separately for lazy deletion by
// the caller; they are filtered out of the result.
func (r *MediaRepositoryPG) ListByUser(ctx context.Context, userID string, mediaType domain.MediaType, now time.Time) ([]domain.SavedMedia, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListMediaByUser, userID, string(mediaType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.SavedMedia
	var expired []string
	for rows.Next() {
		var m domain.SavedMedia
		var mediaType string
		var metadata []byte
		if err := rows.Scan(&m.ID, &m.UserID, &mediaType, &m.URL, &m.SourceURL, &m.Prompt, &metadata, &m.CreatedAt, &m.ExpiresAt); err != nil {
			return nil, err
		}
		m.Type = domain.MediaType(mediaType)
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &m.Metadata)
		}
		if m.Expired(now) {
			expired = append(expired, m.ID)
			continue
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(expired) > 0 {
		// Best-effort cleanup; a failure here must not break the listing.
		_ = r.DeleteExpired(ctx, expired)
	}
	return items, nil
}

// Delete removes one artifact owned by the user.
func (r *MediaRepositoryPG) Delete(ctx context.Context, mediaID, userID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteMedia, mediaID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteExpired removes the given rows regardless of owner.
func (r *MediaRepositoryPG) DeleteExpired(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.sql.Exec(ctx, sqlinline.QDeleteMediaByIDs, ids)
	return err
}
