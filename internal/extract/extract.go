// Package extract derives structured signals from persisted evidence
// records. Extraction is deliberately mechanical: one signal per
// record, classified as "other" with a neutral confidence, plus an
// occurrence row joining the signal back to its record and run. The
// occurrence indirection is what lets several records corroborate one
// signal later without a schema change.
package extract

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/htc-global/pu-observatory/internal/core/domain"
	"github.com/htc-global/pu-observatory/internal/platform/observability"
	"github.com/htc-global/pu-observatory/internal/taxonomy"
)

const (
	maxTitleLength   = 500
	maxSummaryLength = 2000

	untitled = "Untitled"

	defaultConfidence = 3

	logKeyRunID    = "run_id"
	logKeyRecordID = "record_id"
	logKeySignals  = "signals"
	logKeyFailed   = "failed"
)

// Store persists a signal together with its occurrence row. The two
// land atomically or not at all.
type Store interface {
	InsertSignalWithOccurrence(ctx context.Context, s domain.Signal, o domain.SignalOccurrence) error
}

// Summary is the extraction accounting for one run.
type Summary struct {
	SignalsCreated     int
	OccurrencesCreated int
	Failed             int
}

// Extractor converts evidence records to signals.
type Extractor struct {
	store  Store
	logger *zerolog.Logger
}

func New(store Store, logger *zerolog.Logger) *Extractor {
	return &Extractor{store: store, logger: logger}
}

// Run extracts one signal per record. Extraction is best-effort per
// record: a failing insert is counted and skipped, never fatal, so a
// single bad row cannot void the run's remaining intelligence.
func (e *Extractor) Run(ctx context.Context, run domain.Run, records []domain.EvidenceRecord) Summary {
	var summary Summary

	now := time.Now().UTC()

	for _, rec := range records {
		if rec.ID == "" {
			summary.Failed++
			continue
		}

		signal := buildSignal(rec, now)

		occurrence := domain.SignalOccurrence{
			ID:               uuid.NewString(),
			SignalID:         signal.ID,
			RunID:            run.ID,
			WorkspaceID:      run.WorkspaceID,
			SpecificationID:  run.SpecificationID,
			EvidenceRecordID: rec.ID,
		}

		if err := e.store.InsertSignalWithOccurrence(ctx, signal, occurrence); err != nil {
			summary.Failed++

			e.logger.Warn().Err(err).
				Str(logKeyRunID, run.ID).
				Str(logKeyRecordID, rec.ID).
				Msg("signal insert failed, skipping record")

			continue
		}

		summary.SignalsCreated++
		summary.OccurrencesCreated++
	}

	observability.SignalsCreated.Add(float64(summary.SignalsCreated))

	e.logger.Info().
		Str(logKeyRunID, run.ID).
		Int(logKeySignals, summary.SignalsCreated).
		Int(logKeyFailed, summary.Failed).
		Msg("signal extraction done")

	return summary
}

func buildSignal(rec domain.EvidenceRecord, now time.Time) domain.Signal {
	title := truncate(rec.Title, maxTitleLength)
	if title == "" {
		title = untitled
	}

	summary := rec.Snippet
	if summary == "" {
		summary = rec.Title
	}

	return domain.Signal{
		ID:           uuid.NewString(),
		CanonicalURL: rec.CanonicalURL,
		Title:        title,
		Summary:      truncate(summary, maxSummaryLength),
		SignalType:   taxonomy.SignalTypeOther,
		Regions:      matchRegions(rec.Title + " " + rec.Snippet),
		Confidence:   defaultConfidence,
		FirstSeenAt:  now,
		LastSeenAt:   now,
	}
}

// matchRegions tags the signal with regions whose keywords appear in
// the text. Order follows the taxonomy region table so tagging is
// deterministic.
func matchRegions(text string) []string {
	t := strings.ToLower(text)

	var out []string

	for _, region := range taxonomy.Regions {
		for _, kw := range taxonomy.RegionKeywords[region] {
			if strings.Contains(t, kw) {
				out = append(out, region)
				break
			}
		}
	}

	return out
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}

	return s
}
