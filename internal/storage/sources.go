package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/htc-global/pu-observatory/internal/core/domain"
)

const logKeySourceID = "source_id"

// ListEnabledSources returns the enabled source catalog in registration
// order. Curated-list selector rules live in a jsonb column; a row
// with broken selector JSON still loads, falling back to connector
// defaults.
func (db *DB) ListEnabledSources(ctx context.Context) ([]domain.SourceConfig, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, type, enabled,
		       COALESCE(feed_url, ''), COALESCE(sitemap_url, ''),
		       COALESCE(list_url, ''), COALESCE(base_url, ''),
		       selectors
		FROM sources
		WHERE enabled
		ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list enabled sources: %w", err)
	}
	defer rows.Close()

	var out []domain.SourceConfig

	for rows.Next() {
		var (
			src       domain.SourceConfig
			selectors []byte
		)

		err := rows.Scan(
			&src.ID,
			&src.Name,
			&src.Type,
			&src.Enabled,
			&src.FeedURL,
			&src.SitemapURL,
			&src.ListURL,
			&src.BaseURL,
			&selectors,
		)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}

		if len(selectors) > 0 {
			var sel domain.ListSelectors
			if err := json.Unmarshal(selectors, &sel); err != nil {
				db.Logger.Warn().Err(err).Str(logKeySourceID, src.ID).Msg("broken selector json, using connector defaults")
			} else {
				src.Selectors = &sel
			}
		}

		out = append(out, src)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list enabled sources: %w", err)
	}

	return out, nil
}

// UpsertSource registers or updates one source. Used by seed mode; the
// run path only reads.
func (db *DB) UpsertSource(ctx context.Context, src domain.SourceConfig) error {
	var selectors []byte

	if src.Selectors != nil {
		b, err := json.Marshal(src.Selectors)
		if err != nil {
			return fmt.Errorf("marshal selectors: %w", err)
		}

		selectors = b
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO sources (id, name, type, enabled, feed_url, sitemap_url, list_url, base_url, selectors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			enabled = EXCLUDED.enabled,
			feed_url = EXCLUDED.feed_url,
			sitemap_url = EXCLUDED.sitemap_url,
			list_url = EXCLUDED.list_url,
			base_url = EXCLUDED.base_url,
			selectors = EXCLUDED.selectors`,
		src.ID,
		src.Name,
		src.Type,
		src.Enabled,
		toText(src.FeedURL),
		toText(src.SitemapURL),
		toText(src.ListURL),
		toText(src.BaseURL),
		selectors,
	)
	if err != nil {
		return fmt.Errorf("upsert source: %w", err)
	}

	return nil
}
