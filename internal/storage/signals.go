package db

import (
	"context"
	"fmt"

	"github.com/htc-global/pu-observatory/internal/core/domain"
)

// InsertSignalWithOccurrence persists a signal and its occurrence row
// in one transaction; the pair lands atomically or not at all.
func (db *DB) InsertSignalWithOccurrence(ctx context.Context, s domain.Signal, o domain.SignalOccurrence) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin signal tx: %w", err)
	}

	defer func() {
		//nolint:errcheck // rollback after commit is a no-op
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO signals (
			id, canonical_url, title, summary, signal_type,
			companies, regions, value_chain_links, confidence,
			first_seen_at, last_seen_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID,
		SanitizeUTF8(s.CanonicalURL),
		SanitizeUTF8(s.Title),
		SanitizeUTF8(s.Summary),
		s.SignalType,
		s.Companies,
		s.Regions,
		s.ValueChainLinks,
		s.Confidence,
		toTimestamptz(s.FirstSeenAt),
		toTimestamptz(s.LastSeenAt),
	)
	if err != nil {
		return fmt.Errorf("insert signal: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO signal_occurrences (
			id, signal_id, run_id, workspace_id, specification_id, evidence_record_id
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID,
		o.SignalID,
		o.RunID,
		o.WorkspaceID,
		o.SpecificationID,
		o.EvidenceRecordID,
	)
	if err != nil {
		return fmt.Errorf("insert signal occurrence: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit signal tx: %w", err)
	}

	return nil
}

// ListSignalsByRun returns the signals created for a run through their
// occurrence rows, in creation order.
func (db *DB) ListSignalsByRun(ctx context.Context, runID string) ([]domain.Signal, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT s.id, s.canonical_url, s.title, s.summary, s.signal_type,
		       s.companies, s.regions, s.value_chain_links, s.confidence,
		       s.first_seen_at, s.last_seen_at
		FROM signals s
		JOIN signal_occurrences o ON o.signal_id = s.id
		WHERE o.run_id = $1
		ORDER BY s.first_seen_at, s.id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list signals by run: %w", err)
	}
	defer rows.Close()

	var out []domain.Signal

	for rows.Next() {
		var s domain.Signal

		err := rows.Scan(
			&s.ID,
			&s.CanonicalURL,
			&s.Title,
			&s.Summary,
			&s.SignalType,
			&s.Companies,
			&s.Regions,
			&s.ValueChainLinks,
			&s.Confidence,
			&s.FirstSeenAt,
			&s.LastSeenAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}

		out = append(out, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list signals by run: %w", err)
	}

	return out, nil
}
