package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/htc-global/pu-observatory/internal/core/domain"
)

// ErrSpecificationNotFound is returned when the requested specification
// does not exist.
var ErrSpecificationNotFound = errors.New("specification not found")

// GetSpecification loads one report specification. The run path treats
// specifications as read-only; the admin layer owns their lifecycle.
func (db *DB) GetSpecification(ctx context.Context, id string) (domain.Specification, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, workspace_id, name, status, categories, regions, value_chain_links, frequency
		FROM newsletter_specifications
		WHERE id = $1`,
		id,
	)

	var spec domain.Specification

	err := row.Scan(
		&spec.ID,
		&spec.WorkspaceID,
		&spec.Name,
		&spec.Status,
		&spec.Categories,
		&spec.Regions,
		&spec.ValueChainLinks,
		&spec.Frequency,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Specification{}, ErrSpecificationNotFound
	}

	if err != nil {
		return domain.Specification{}, fmt.Errorf("get specification: %w", err)
	}

	return spec, nil
}

// UpsertSpecification registers or updates one specification. Used by
// seed mode.
func (db *DB) UpsertSpecification(ctx context.Context, spec domain.Specification) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO newsletter_specifications (id, workspace_id, name, status, categories, regions, value_chain_links, frequency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			workspace_id = EXCLUDED.workspace_id,
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			categories = EXCLUDED.categories,
			regions = EXCLUDED.regions,
			value_chain_links = EXCLUDED.value_chain_links,
			frequency = EXCLUDED.frequency`,
		spec.ID,
		spec.WorkspaceID,
		spec.Name,
		spec.Status,
		spec.Categories,
		spec.Regions,
		spec.ValueChainLinks,
		spec.Frequency,
	)
	if err != nil {
		return fmt.Errorf("upsert specification: %w", err)
	}

	return nil
}
