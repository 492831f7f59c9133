package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/htc-global/pu-observatory/internal/core/domain"
)

const (
	logKeySpecifications = "specifications"
	logKeySources        = "sources"
	logKeyCompanies      = "companies"
)

// seedStore is the catalog write surface used by seed mode. The run
// path never writes these tables.
type seedStore interface {
	UpsertSpecification(ctx context.Context, spec domain.Specification) error
	UpsertSource(ctx context.Context, src domain.SourceConfig) error
	UpsertCompany(ctx context.Context, c domain.TrackedCompany) error
}

// seedFile is the JSON layout of a catalog fixture.
type seedFile struct {
	Specifications []domain.Specification  `json:"specifications"`
	Sources        []domain.SourceConfig   `json:"sources"`
	Companies      []domain.TrackedCompany `json:"companies"`
}

// Seed loads the catalog fixture at path and upserts its
// specifications, sources, and tracked companies. Rows match by id, so
// rerunning with the same file is idempotent.
func (a *App) Seed(ctx context.Context, path string) error {
	return seed(ctx, a.database, path, a.logger)
}

func seed(ctx context.Context, store seedStore, path string, logger *zerolog.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var file seedFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	for _, spec := range file.Specifications {
		if err := store.UpsertSpecification(ctx, spec); err != nil {
			return fmt.Errorf("seed specification %s: %w", spec.ID, err)
		}
	}

	for _, src := range file.Sources {
		if err := store.UpsertSource(ctx, src); err != nil {
			return fmt.Errorf("seed source %s: %w", src.ID, err)
		}
	}

	for _, c := range file.Companies {
		if err := store.UpsertCompany(ctx, c); err != nil {
			return fmt.Errorf("seed company %s: %w", c.ID, err)
		}
	}

	logger.Info().
		Int(logKeySpecifications, len(file.Specifications)).
		Int(logKeySources, len(file.Sources)).
		Int(logKeyCompanies, len(file.Companies)).
		Msg("catalog seeded")

	return nil
}
