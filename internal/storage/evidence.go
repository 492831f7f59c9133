package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/htc-global/pu-observatory/internal/core/domain"
)

const logKeyEvidenceID = "evidence_id"

// InsertEvidenceRecords persists records append-only, best-effort per
// record: one malformed row is logged and skipped, the rest still
// land. Returns the number actually inserted.
func (db *DB) InsertEvidenceRecords(ctx context.Context, records []domain.EvidenceRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	inserted := 0

	for _, rec := range records {
		_, err := db.Pool.Exec(ctx, `
			INSERT INTO evidence_records (
				id, run_id, workspace_id, specification_id,
				url, canonical_url, title, snippet, published_at,
				source_id, source_name, query_id, query_text,
				validation_status, http_status, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			rec.ID,
			rec.RunID,
			rec.WorkspaceID,
			rec.SpecificationID,
			SanitizeUTF8(rec.URL),
			SanitizeUTF8(rec.CanonicalURL),
			SanitizeUTF8(rec.Title),
			SanitizeUTF8(rec.Snippet),
			SanitizeUTF8(rec.PublishedAt),
			toText(rec.SourceID),
			SanitizeUTF8(rec.SourceName),
			toText(rec.QueryID),
			toText(SanitizeUTF8(rec.QueryText)),
			rec.ValidationStatus,
			rec.HTTPStatus,
			toTimestamptz(rec.CreatedAt),
		)
		if err != nil {
			db.Logger.Warn().Err(err).Str(logKeyEvidenceID, rec.ID).Msg("evidence insert failed, skipping record")
			continue
		}

		inserted++
	}

	return inserted, nil
}

// ListEvidenceByRun returns all evidence records persisted for a run,
// in insertion order.
func (db *DB) ListEvidenceByRun(ctx context.Context, runID string) ([]domain.EvidenceRecord, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, run_id, workspace_id, specification_id,
		       url, canonical_url, title, snippet, published_at,
		       source_id, source_name, query_id, query_text,
		       validation_status, http_status, created_at
		FROM evidence_records
		WHERE run_id = $1
		ORDER BY created_at, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list evidence by run: %w", err)
	}
	defer rows.Close()

	var out []domain.EvidenceRecord

	for rows.Next() {
		var (
			rec       domain.EvidenceRecord
			sourceID  pgtype.Text
			queryID   pgtype.Text
			queryText pgtype.Text
			createdAt pgtype.Timestamptz
		)

		err := rows.Scan(
			&rec.ID,
			&rec.RunID,
			&rec.WorkspaceID,
			&rec.SpecificationID,
			&rec.URL,
			&rec.CanonicalURL,
			&rec.Title,
			&rec.Snippet,
			&rec.PublishedAt,
			&sourceID,
			&rec.SourceName,
			&queryID,
			&queryText,
			&rec.ValidationStatus,
			&rec.HTTPStatus,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan evidence record: %w", err)
		}

		rec.SourceID = fromText(sourceID)
		rec.QueryID = fromText(queryID)
		rec.QueryText = fromText(queryText)
		rec.CreatedAt = fromTimestamptz(createdAt)

		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list evidence by run: %w", err)
	}

	return out, nil
}
