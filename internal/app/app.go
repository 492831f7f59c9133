// Package app provides the application bootstrap and run orchestration.
//
// The App type wires together all dependencies and exposes the
// operational modes:
//
//   - Generate mode: one evidence-collection run for a specification,
//     producing the persisted evidence, signals, and report artifact
//   - Schedule mode: the generate flow on a ticker behind the cadence gate
//   - Seed mode: load a catalog fixture into the store
//   - HTTP mode: health, readiness, and metrics endpoints
//
// A generation run walks a fixed sequence: load the specification,
// enforce its cadence, open a run, collect and normalize evidence,
// extract signals, render the report, finalize. Failures after the run
// row exists mark the run failed but keep the evidence already
// persisted.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/htc-global/pu-observatory/internal/companylist"
	"github.com/htc-global/pu-observatory/internal/core/domain"
	"github.com/htc-global/pu-observatory/internal/evidence"
	"github.com/htc-global/pu-observatory/internal/extract"
	"github.com/htc-global/pu-observatory/internal/ingest/connectors"
	"github.com/htc-global/pu-observatory/internal/platform/config"
	"github.com/htc-global/pu-observatory/internal/platform/observability"
	"github.com/htc-global/pu-observatory/internal/platform/rundate"
	"github.com/htc-global/pu-observatory/internal/platform/worker"
	"github.com/htc-global/pu-observatory/internal/report"
	"github.com/htc-global/pu-observatory/internal/search"
	db "github.com/htc-global/pu-observatory/internal/storage"
)

// ErrRunSkipped is returned when the specification's cadence quota for
// the period is already consumed.
var ErrRunSkipped = errors.New("run skipped: cadence quota consumed")

// ErrSpecificationInactive is returned when the specification is not
// in the active state.
var ErrSpecificationInactive = errors.New("specification is not active")

const (
	specStatusActive = "active"

	artifactFileMode = 0o644
	artifactDirMode  = 0o755

	logKeyRunID       = "run_id"
	logKeySpecID      = "specification_id"
	logKeyWindowDays  = "window_days"
	logKeyInserted    = "inserted"
	logKeySignals     = "signals"
	logKeyArtifact    = "artifact"
	logKeyCoverageLow = "coverage_low"
)

// App holds the application dependencies and provides methods to run
// different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger

	normalizer *evidence.Normalizer
	extractor  *extract.Extractor
	writer     *report.Writer
}

// New creates a new App instance and wires the pipeline components.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	fetcher := connectors.New(nil, cfg.Ingest.FetchTimeout, logger)

	var provider search.Provider = search.Noop{}
	if cfg.Search.OpenAIAPIKey != "" {
		provider = search.NewOpenAI(search.OpenAIConfig{
			APIKey:  cfg.Search.OpenAIAPIKey,
			Model:   cfg.Search.Model,
			Timeout: cfg.Search.Timeout,
			RPS:     cfg.Search.RPS,
		}, logger)
	}

	var validator evidence.Validator
	if cfg.Validation.Enabled {
		validator = evidence.NewURLValidator(nil, cfg.Validation.Timeout, cfg.Validation.RPS)
	}

	aliases := companylist.New(database, cfg.Generation.CompanyListPath, logger)

	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
		normalizer: evidence.NewNormalizer(
			database,
			aliases,
			fetcher,
			provider,
			validator,
			database,
			cfg.Search.MaxResults,
			logger,
		),
		extractor: extract.New(database, logger),
		writer:    report.NewWriter(logger),
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	server := observability.NewServer(a.database, a.cfg.HealthPort, a.logger)

	if err := server.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server: %w", err)
	}

	return nil
}

// RunScheduler periodically attempts generation for a specification.
// The cadence gate makes the tick idempotent: a tick inside the quota
// period is a cheap no-op, so the interval only bounds how quickly a
// due run starts.
func (a *App) RunScheduler(ctx context.Context, specificationID string) error {
	return worker.TickerLoop(ctx, worker.TickerConfig{
		Name:       "generation-scheduler",
		Interval:   a.cfg.Generation.Tick,
		RunOnStart: true,
		Logger:     a.logger,
		OnTick: func(ctx context.Context) {
			err := a.GenerateOnce(ctx, specificationID, false)
			if err != nil && !errors.Is(err, ErrRunSkipped) {
				a.logger.Error().Err(err).Str(logKeySpecID, specificationID).Msg("scheduled generation failed")
			}
		},
	})
}

// GenerateOnce executes one generation run for a specification. Force
// bypasses the cadence gate; everything else is identical.
func (a *App) GenerateOnce(ctx context.Context, specificationID string, force bool) error {
	spec, err := a.database.GetSpecification(ctx, specificationID)
	if err != nil {
		return fmt.Errorf("load specification: %w", err)
	}

	if spec.Status != specStatusActive {
		return ErrSpecificationInactive
	}

	if !force {
		if err := a.enforceCadence(ctx, spec); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	window := a.window(spec, now)

	run := domain.Run{
		ID:              uuid.NewString(),
		WorkspaceID:     a.workspaceID(spec),
		SpecificationID: spec.ID,
		Status:          domain.RunStatusRunning,
		ReferenceDate:   window.Reference,
		LookbackDate:    window.Lookback,
	}

	if err := a.database.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	a.logger.Info().
		Str(logKeyRunID, run.ID).
		Str(logKeySpecID, spec.ID).
		Int(logKeyWindowDays, window.Days()).
		Msg("run started")

	if err := a.executeRun(ctx, run, spec, window); err != nil {
		observability.RunsTotal.WithLabelValues(domain.RunStatusFailed).Inc()

		if failErr := a.database.FinishRunFailed(ctx, run.ID, err.Error()); failErr != nil {
			a.logger.Error().Err(failErr).Str(logKeyRunID, run.ID).Msg("marking run failed also failed")
		}

		return fmt.Errorf("run %s: %w", run.ID, err)
	}

	observability.RunsTotal.WithLabelValues(domain.RunStatusSuccess).Inc()

	return nil
}

// executeRun is the post-creation phase sequence. Any error here fails
// the run; evidence already persisted stays.
func (a *App) executeRun(ctx context.Context, run domain.Run, spec domain.Specification, window rundate.Window) error {
	summary, err := a.normalizer.Collect(ctx, run, spec, window)
	if err != nil {
		return fmt.Errorf("collect evidence: %w", err)
	}

	records, err := a.database.ListEvidenceByRun(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("load evidence: %w", err)
	}

	extracted := a.extractor.Run(ctx, run, records)

	signals, err := a.database.ListSignalsByRun(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("load signals: %w", err)
	}

	result := a.writer.Write(spec, window, records, signals)

	artifactPath, err := a.writeArtifact(run.ID, result.Content)
	if err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}

	if err := a.database.FinishRunSuccess(ctx, run.ID, artifactPath, result.CoverageLow); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	a.logger.Info().
		Str(logKeyRunID, run.ID).
		Int(logKeyInserted, summary.Inserted).
		Int(logKeySignals, extracted.SignalsCreated).
		Bool(logKeyCoverageLow, result.CoverageLow).
		Str(logKeyArtifact, artifactPath).
		Msg("run finished")

	return nil
}

// enforceCadence applies the frequency quota against the last
// successful run. Daily allows one success per UTC calendar day;
// weekly and monthly require the full window to elapse. Failed runs
// never consume quota.
func (a *App) enforceCadence(ctx context.Context, spec domain.Specification) error {
	last, found, err := a.database.LastSuccessfulRun(ctx, spec.ID)
	if err != nil {
		return fmt.Errorf("check cadence: %w", err)
	}

	if !found {
		return nil
	}

	now := time.Now().UTC()

	switch spec.Frequency {
	case rundate.CadenceDaily:
		if sameUTCDay(last.FinishedAt, now) {
			return ErrRunSkipped
		}
	case rundate.CadenceWeekly:
		if now.Sub(last.FinishedAt) < 7*24*time.Hour {
			return ErrRunSkipped
		}
	default:
		if now.Sub(last.FinishedAt) < 30*24*time.Hour {
			return ErrRunSkipped
		}
	}

	return nil
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()

	return ay == by && am == bm && ad == bd
}

func (a *App) window(spec domain.Specification, reference time.Time) rundate.Window {
	if a.cfg.Generation.LookbackDays > 0 {
		return rundate.FromDays(a.cfg.Generation.LookbackDays, reference)
	}

	return rundate.FromCadence(spec.Frequency, reference)
}

func (a *App) workspaceID(spec domain.Specification) string {
	if spec.WorkspaceID != "" {
		return spec.WorkspaceID
	}

	return a.cfg.Generation.WorkspaceID
}

func (a *App) writeArtifact(runID, content string) (string, error) {
	dir := a.cfg.Generation.ArtifactDir
	if err := os.MkdirAll(dir, artifactDirMode); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	path := filepath.Join(dir, runID+".md")
	if err := os.WriteFile(path, []byte(content), artifactFileMode); err != nil {
		return "", fmt.Errorf("write artifact file: %w", err)
	}

	return path, nil
}
