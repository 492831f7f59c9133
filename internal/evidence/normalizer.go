// Package evidence turns raw candidates into persisted, immutable
// evidence records. The normalizer owns the filter order: URL shape,
// meta-snippet rejection, date window, canonical dedup, then optional
// liveness validation. Records that survive are the only citable facts
// in the system; everything downstream references them by id.
package evidence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/htc-global/pu-observatory/internal/core/domain"
	"github.com/htc-global/pu-observatory/internal/plan"
	"github.com/htc-global/pu-observatory/internal/platform/observability"
	"github.com/htc-global/pu-observatory/internal/platform/rundate"
	"github.com/htc-global/pu-observatory/internal/search"
)

// Drop reasons, used as counter keys in the summary and as metric
// labels.
const (
	DropInvalidURL  = "invalid_url"
	DropMetaSnippet = "meta_snippet"
	DropOutOfWindow = "out_of_window"
	DropDuplicate   = "duplicate"
	DropValidation  = "validation"
)

const (
	defaultMaxSearchResults = 10

	phaseSources   = "sources"
	phaseSearch    = "search"
	phaseNormalize = "normalize"

	searchStatusOK    = "ok"
	searchStatusEmpty = "empty"

	logKeyRunID    = "run_id"
	logKeySource   = "source"
	logKeyQueryID  = "query_id"
	logKeyReason   = "reason"
	logKeyCount    = "count"
	logKeyInserted = "inserted"
)

// SourceCatalog lists the registered sources to collect from.
type SourceCatalog interface {
	ListEnabledSources(ctx context.Context) ([]domain.SourceConfig, error)
}

// AliasDirectory supplies company aliases for the query plan. It is
// consulted only when the specification opts in to company tracking.
type AliasDirectory interface {
	ActiveAliases(ctx context.Context) ([]string, error)
}

// Store persists evidence records. Inserts are append-only and
// best-effort per record; the returned count is how many actually
// landed.
type Store interface {
	InsertEvidenceRecords(ctx context.Context, records []domain.EvidenceRecord) (int, error)
}

// Fetcher runs the connector for one source.
type Fetcher interface {
	Fetch(ctx context.Context, src domain.SourceConfig) []domain.Candidate
}

// Validator probes a URL for liveness.
type Validator interface {
	Validate(ctx context.Context, rawURL string) Verdict
}

// Summary is the per-run accounting the normalizer hands back to the
// run orchestrator. Counters, never samples: every candidate either
// becomes a record or increments exactly one drop reason.
type Summary struct {
	Plan        []plan.Entry
	FromSources int
	FromSearch  int
	PerSource   map[string]int
	Dropped     map[string]int
	Inserted    int

	SourcesElapsed time.Duration
	SearchElapsed  time.Duration
}

// Normalizer drives one run's collection and filtering.
type Normalizer struct {
	catalog   SourceCatalog
	aliases   AliasDirectory
	fetcher   Fetcher
	provider  search.Provider
	validator Validator // nil disables liveness validation
	store     Store

	maxSearchResults int
	logger           *zerolog.Logger
}

// NewNormalizer wires the collection pipeline. A nil provider degrades
// to no web search, a nil validator stores records as not_checked.
func NewNormalizer(
	catalog SourceCatalog,
	aliases AliasDirectory,
	fetcher Fetcher,
	provider search.Provider,
	validator Validator,
	store Store,
	maxSearchResults int,
	logger *zerolog.Logger,
) *Normalizer {
	if provider == nil {
		provider = search.Noop{}
	}

	if maxSearchResults <= 0 {
		maxSearchResults = defaultMaxSearchResults
	}

	return &Normalizer{
		catalog:          catalog,
		aliases:          aliases,
		fetcher:          fetcher,
		provider:         provider,
		validator:        validator,
		store:            store,
		maxSearchResults: maxSearchResults,
		logger:           logger,
	}
}

// Collect runs the full ingestion for one run: plan, fetch, search,
// filter, persist. Upstream trouble (a dead feed, a failing search
// query, an empty catalog) never fails the run; only a storage error
// does. A run with zero candidates is legal and produces an empty
// report downstream.
func (n *Normalizer) Collect(ctx context.Context, run domain.Run, spec domain.Specification, window rundate.Window) (Summary, error) {
	summary := Summary{
		PerSource: make(map[string]int),
		Dropped:   make(map[string]int),
	}

	summary.Plan = plan.Build(n.planSpec(ctx, spec))

	started := time.Now()
	fromSources := n.collectSources(ctx)
	summary.SourcesElapsed = time.Since(started)

	observability.PhaseDurationSeconds.WithLabelValues(phaseSources).Observe(summary.SourcesElapsed.Seconds())

	started = time.Now()
	fromSearch := n.collectSearch(ctx, summary.Plan, window)
	summary.SearchElapsed = time.Since(started)

	observability.PhaseDurationSeconds.WithLabelValues(phaseSearch).Observe(summary.SearchElapsed.Seconds())

	summary.FromSources = len(fromSources)
	summary.FromSearch = len(fromSearch)

	for _, c := range fromSources {
		summary.PerSource[c.SourceName]++
		observability.CandidatesIngested.WithLabelValues(c.SourceName).Inc()
	}

	observability.CandidatesSearched.Add(float64(len(fromSearch)))

	started = time.Now()
	records := n.normalize(ctx, run, append(fromSources, fromSearch...), window, summary.Dropped)

	inserted, err := n.store.InsertEvidenceRecords(ctx, records)

	observability.PhaseDurationSeconds.WithLabelValues(phaseNormalize).Observe(time.Since(started).Seconds())

	summary.Inserted = inserted
	observability.EvidenceInserted.Add(float64(inserted))

	for reason, count := range summary.Dropped {
		observability.CandidatesDropped.WithLabelValues(reason).Add(float64(count))
	}

	n.logger.Info().
		Str(logKeyRunID, run.ID).
		Int(logKeyCount, summary.FromSources+summary.FromSearch).
		Int(logKeyInserted, inserted).
		Msg("evidence collection done")

	if err != nil {
		return summary, fmt.Errorf("insert evidence records: %w", err)
	}

	return summary, nil
}

// planSpec extracts planner inputs. The alias directory is consulted
// only when the category scope opts in; a directory failure degrades
// to a plan without company queries.
func (n *Normalizer) planSpec(ctx context.Context, spec domain.Specification) plan.Spec {
	out := plan.Spec{
		Regions:         spec.Regions,
		Categories:      spec.Categories,
		ValueChainLinks: spec.ValueChainLinks,
	}

	if !plan.WantsCompanyQueries(spec.Categories) || n.aliases == nil {
		return out
	}

	aliases, err := n.aliases.ActiveAliases(ctx)
	if err != nil {
		n.logger.Warn().Err(err).Msg("alias directory unavailable, planning without company queries")
		return out
	}

	out.CompanyAliases = aliases

	return out
}

// collectSources fans out over the catalog, one goroutine per source.
// Results keep catalog order regardless of completion order, so runs
// stay reproducible.
func (n *Normalizer) collectSources(ctx context.Context) []domain.Candidate {
	sources, err := n.catalog.ListEnabledSources(ctx)
	if err != nil {
		n.logger.Warn().Err(err).Msg("source catalog unavailable, collecting from search only")
		return nil
	}

	results := make([][]domain.Candidate, len(sources))

	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)

		go func(i int, src domain.SourceConfig) {
			defer wg.Done()

			results[i] = n.fetcher.Fetch(ctx, src)
		}(i, src)
	}

	wg.Wait()

	var out []domain.Candidate
	for _, r := range results {
		out = append(out, r...)
	}

	return out
}

// collectSearch runs every planned query through the provider. The
// provider handles its own pacing; ordering follows the plan.
func (n *Normalizer) collectSearch(ctx context.Context, entries []plan.Entry, window rundate.Window) []domain.Candidate {
	results := make([][]domain.Candidate, len(entries))

	var wg sync.WaitGroup

	for i, e := range entries {
		wg.Add(1)

		go func(i int, e plan.Entry) {
			defer wg.Done()

			results[i] = n.provider.Search(ctx, search.Query{ID: e.QueryID, Text: e.QueryText}, n.maxSearchResults, window)
		}(i, e)
	}

	wg.Wait()

	var out []domain.Candidate

	for i, r := range results {
		status := searchStatusOK
		if len(r) == 0 {
			status = searchStatusEmpty
		}

		observability.SearchQueries.WithLabelValues(status).Inc()

		n.logger.Debug().
			Str(logKeyQueryID, entries[i].QueryID).
			Int(logKeyCount, len(r)).
			Msg("query executed")

		out = append(out, r...)
	}

	return out
}

// normalize applies the filter chain in order and materializes the
// survivors as records. Filter order matters: cheap structural checks
// first, network validation last so rejected candidates never cost a
// request.
func (n *Normalizer) normalize(ctx context.Context, run domain.Run, candidates []domain.Candidate, window rundate.Window, dropped map[string]int) []domain.EvidenceRecord {
	seen := make(map[string]struct{}, len(candidates))
	records := make([]domain.EvidenceRecord, 0, len(candidates))

	for _, c := range candidates {
		if !IsAbsoluteHTTP(c.URL) {
			dropped[DropInvalidURL]++
			continue
		}

		if IsMetaSnippet(c.Title) || IsMetaSnippet(c.Snippet) {
			dropped[DropMetaSnippet]++
			continue
		}

		if !rundate.InRange(c.PublishedAt, window) {
			dropped[DropOutOfWindow]++
			continue
		}

		canonical := Canonicalize(c.URL)

		key := DedupKey(canonical, c.Title)
		if _, dup := seen[key]; dup {
			dropped[DropDuplicate]++
			continue
		}

		seen[key] = struct{}{}

		status := domain.ValidationNotChecked

		var httpStatus int

		if n.validator != nil {
			verdict := n.validator.Validate(ctx, canonical)
			observability.URLValidations.WithLabelValues(verdict.Status).Inc()

			// Only verified-live links are citable. 3xx and 403
			// verdicts are classified for the drop accounting but do
			// not survive.
			if verdict.Status != domain.ValidationValid2xx {
				dropped[DropValidation]++

				n.logger.Debug().
					Str(logKeySource, c.SourceName).
					Str(logKeyReason, verdict.Status).
					Msg("candidate failed validation")

				continue
			}

			status = verdict.Status
			httpStatus = verdict.HTTPStatus
		}

		records = append(records, domain.EvidenceRecord{
			ID:               uuid.NewString(),
			RunID:            run.ID,
			WorkspaceID:      run.WorkspaceID,
			SpecificationID:  run.SpecificationID,
			URL:              c.URL,
			CanonicalURL:     canonical,
			Title:            c.Title,
			Snippet:          c.Snippet,
			PublishedAt:      c.PublishedAt,
			SourceID:         c.SourceID,
			SourceName:       c.SourceName,
			QueryID:          c.QueryID,
			QueryText:        c.QueryText,
			ValidationStatus: status,
			HTTPStatus:       httpStatus,
			CreatedAt:        time.Now().UTC(),
		})
	}

	return records
}
