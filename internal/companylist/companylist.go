// Package companylist supplies the tracked-company aliases used for
// company-scoped queries. The database catalog is authoritative; a
// static JSON file serves as fallback so a fresh deployment can plan
// company queries before the catalog is populated.
package companylist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/htc-global/pu-observatory/internal/core/domain"
)

const (
	logKeyPath      = "path"
	logKeyCompanies = "companies"
)

// Lister is the storage dependency.
type Lister interface {
	ListActiveCompanies(ctx context.Context) ([]domain.TrackedCompany, error)
}

// Directory resolves active company aliases.
type Directory struct {
	store    Lister // nil when running without a catalog
	filePath string
	logger   *zerolog.Logger
}

func New(store Lister, filePath string, logger *zerolog.Logger) *Directory {
	return &Directory{store: store, filePath: filePath, logger: logger}
}

// ActiveAliases returns the flattened alias list of all active
// companies: each company contributes its name plus its aliases,
// case-insensitively deduplicated, in catalog order.
func (d *Directory) ActiveAliases(ctx context.Context) ([]string, error) {
	companies, err := d.load(ctx)
	if err != nil {
		return nil, err
	}

	return flatten(companies), nil
}

func (d *Directory) load(ctx context.Context) ([]domain.TrackedCompany, error) {
	if d.store != nil {
		companies, err := d.store.ListActiveCompanies(ctx)
		if err != nil {
			return nil, fmt.Errorf("list active companies: %w", err)
		}

		if len(companies) > 0 {
			return companies, nil
		}
	}

	if d.filePath == "" {
		return nil, nil
	}

	return d.loadFile()
}

func (d *Directory) loadFile() ([]domain.TrackedCompany, error) {
	data, err := os.ReadFile(d.filePath)
	if err != nil {
		return nil, fmt.Errorf("read company list: %w", err)
	}

	var entries []fileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse company list: %w", err)
	}

	companies := make([]domain.TrackedCompany, 0, len(entries))

	for _, e := range entries {
		status := e.Status
		if status == "" {
			status = "active"
		}

		c := domain.TrackedCompany{Name: e.Name, Aliases: e.Aliases, Status: status}
		if c.Active() {
			companies = append(companies, c)
		}
	}

	d.logger.Debug().
		Str(logKeyPath, d.filePath).
		Int(logKeyCompanies, len(companies)).
		Msg("company list loaded from file")

	return companies, nil
}

type fileEntry struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
	Status  string   `json:"status"`
}

func flatten(companies []domain.TrackedCompany) []string {
	var out []string

	seen := make(map[string]struct{})

	add := func(alias string) {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			return
		}

		key := strings.ToLower(alias)
		if _, dup := seen[key]; dup {
			return
		}

		seen[key] = struct{}{}
		out = append(out, alias)
	}

	for _, c := range companies {
		if !c.Active() {
			continue
		}

		add(c.Name)

		for _, a := range c.Aliases {
			add(a)
		}
	}

	return out
}
