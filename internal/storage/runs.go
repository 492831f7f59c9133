package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/htc-global/pu-observatory/internal/core/domain"
)

// CreateRun inserts a new run in the running state.
func (db *DB) CreateRun(ctx context.Context, run domain.Run) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO runs (id, workspace_id, specification_id, status, reference_date, lookback_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID,
		run.WorkspaceID,
		run.SpecificationID,
		domain.RunStatusRunning,
		toTimestamptz(run.ReferenceDate),
		toTimestamptz(run.LookbackDate),
		toTimestamptz(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	return nil
}

// FinishRunSuccess marks a run successful, recording where the
// artifact was written and whether it carried the coverage-low verdict.
func (db *DB) FinishRunSuccess(ctx context.Context, runID, artifactPath string, coverageLow bool) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE runs SET status = $2, artifact_path = $3, coverage_low = $4, finished_at = $5
		WHERE id = $1`,
		runID,
		domain.RunStatusSuccess,
		toText(artifactPath),
		coverageLow,
		toTimestamptz(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	return nil
}

// FinishRunFailed marks a run failed with its error message. Failed
// runs keep whatever evidence they persisted; records are append-only
// even for failures.
func (db *DB) FinishRunFailed(ctx context.Context, runID, errorMessage string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE runs SET status = $2, error_message = $3, finished_at = $4
		WHERE id = $1`,
		runID,
		domain.RunStatusFailed,
		toText(errorMessage),
		toTimestamptz(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}

	return nil
}

// LastSuccessfulRun returns the most recent successful run for a
// specification. The second return value is false when none exists.
// Failed runs are excluded on purpose: they do not consume the cadence
// quota, a crashed attempt must not block the retry.
func (db *DB) LastSuccessfulRun(ctx context.Context, specificationID string) (domain.Run, bool, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, workspace_id, specification_id, status, reference_date, lookback_date,
		       COALESCE(artifact_path, ''), COALESCE(error_message, ''), coverage_low, created_at, finished_at
		FROM runs
		WHERE specification_id = $1 AND status = $2
		ORDER BY finished_at DESC
		LIMIT 1`,
		specificationID,
		domain.RunStatusSuccess,
	)

	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Run{}, false, nil
	}

	if err != nil {
		return domain.Run{}, false, fmt.Errorf("last successful run: %w", err)
	}

	return run, true, nil
}

func scanRun(row pgx.Row) (domain.Run, error) {
	var (
		run        domain.Run
		reference  pgtype.Timestamptz
		lookback   pgtype.Timestamptz
		createdAt  pgtype.Timestamptz
		finishedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&run.ID,
		&run.WorkspaceID,
		&run.SpecificationID,
		&run.Status,
		&reference,
		&lookback,
		&run.ArtifactPath,
		&run.ErrorMessage,
		&run.CoverageLow,
		&createdAt,
		&finishedAt,
	)
	if err != nil {
		return domain.Run{}, err
	}

	run.ReferenceDate = fromTimestamptz(reference)
	run.LookbackDate = fromTimestamptz(lookback)
	run.CreatedAt = fromTimestamptz(createdAt)
	run.FinishedAt = fromTimestamptz(finishedAt)

	return run, nil
}
