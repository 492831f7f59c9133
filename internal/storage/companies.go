package db

import (
	"context"
	"fmt"

	"github.com/htc-global/pu-observatory/internal/core/domain"
)

// ListActiveCompanies returns the tracked companies whose aliases may
// contribute planned queries.
func (db *DB) ListActiveCompanies(ctx context.Context) ([]domain.TrackedCompany, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, aliases, status
		FROM tracked_companies
		WHERE status = 'active'
		ORDER BY name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list active companies: %w", err)
	}
	defer rows.Close()

	var out []domain.TrackedCompany

	for rows.Next() {
		var c domain.TrackedCompany

		if err := rows.Scan(&c.ID, &c.Name, &c.Aliases, &c.Status); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}

		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active companies: %w", err)
	}

	return out, nil
}

// UpsertCompany registers or updates one tracked company. Used by seed
// mode.
func (db *DB) UpsertCompany(ctx context.Context, c domain.TrackedCompany) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO tracked_companies (id, name, aliases, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			aliases = EXCLUDED.aliases,
			status = EXCLUDED.status`,
		c.ID,
		c.Name,
		c.Aliases,
		c.Status,
	)
	if err != nil {
		return fmt.Errorf("upsert company: %w", err)
	}

	return nil
}
