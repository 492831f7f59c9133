// Package report renders the run artifact from persisted evidence.
// The writer is bounded: every URL it emits comes from an evidence
// record passed in, so each claim in the artifact is traceable back to
// a stored row. It never fetches, searches, or invents content.
package report

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/htc-global/pu-observatory/internal/core/domain"
	"github.com/htc-global/pu-observatory/internal/evidence"
	"github.com/htc-global/pu-observatory/internal/platform/observability"
	"github.com/htc-global/pu-observatory/internal/platform/rundate"
	"github.com/htc-global/pu-observatory/internal/taxonomy"
)

// MinEvidenceItems is the coverage floor. Below it no report body is
// rendered: the artifact carries only the coverage-low notice, so a
// thin evidence set never becomes a report.
const MinEvidenceItems = 3

const (
	defaultSection = "Key developments"

	coverageLowNotice = "Note: coverage for this period is low. Fewer than the expected number of verified items were found; interpret the absence of news with caution."

	dateLayout = "2006-01-02"

	logKeyItems    = "items"
	logKeySections = "sections"
)

// Result is the rendered artifact plus its coverage verdict.
type Result struct {
	Content     string
	CoverageLow bool
	ItemsUsed   int
}

// Writer renders reports.
type Writer struct {
	minItems int
	logger   *zerolog.Logger
}

func NewWriter(logger *zerolog.Logger) *Writer {
	return &Writer{minItems: MinEvidenceItems, logger: logger}
}

// Write renders the report for one run. Records are re-filtered on the
// way in: rows persisted before a filter rule existed must not leak
// into new artifacts, so the meta-snippet and window checks apply here
// too, not only at ingestion. Below the coverage floor rendering stops
// at the notice; no evidence lines, signal digest, or summary follow.
func (w *Writer) Write(spec domain.Specification, window rundate.Window, records []domain.EvidenceRecord, signals []domain.Signal) Result {
	usable := filterUsable(records, window)

	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title(spec))
	fmt.Fprintf(&b, "Period: %s to %s\n\n",
		window.Lookback.Format(dateLayout),
		window.Reference.Format(dateLayout),
	)

	if len(usable) < w.minItems {
		b.WriteString(coverageLowNotice)
		b.WriteString("\n")

		observability.ReportsCoverageLow.Inc()

		w.logger.Warn().
			Int(logKeyItems, len(usable)).
			Msg("coverage low, report body withheld")

		return Result{
			Content:     b.String(),
			CoverageLow: true,
			ItemsUsed:   len(usable),
		}
	}

	sections := sectionNames(spec)
	grouped := partition(usable, len(sections))

	for i, name := range sections {
		if len(grouped[i]) == 0 {
			continue
		}

		fmt.Fprintf(&b, "## %s\n\n", name)

		for _, rec := range grouped[i] {
			b.WriteString(formatItem(rec, window))
			b.WriteString("\n")
		}

		b.WriteString("\n")
	}

	b.WriteString(signalAppendix(signals))

	fmt.Fprintf(&b, "---\n\nThis report was assembled from %d verified evidence item(s) collected for this period. Every link above points to a stored source.\n", len(usable))

	w.logger.Info().
		Int(logKeyItems, len(usable)).
		Int(logKeySections, len(sections)).
		Msg("report rendered")

	return Result{
		Content:     b.String(),
		CoverageLow: false,
		ItemsUsed:   len(usable),
	}
}

// signalAppendix renders the extracted-signal digest, grouped by type
// in taxonomy order. Signal lines carry no URLs; the evidence lines
// above are the traceable surface.
func signalAppendix(signals []domain.Signal) string {
	if len(signals) == 0 {
		return ""
	}

	byType := make(map[string][]domain.Signal, len(signals))
	for _, s := range signals {
		byType[s.SignalType] = append(byType[s.SignalType], s)
	}

	var b strings.Builder

	b.WriteString("## Extracted signals\n\n")

	for _, st := range taxonomy.SignalTypes {
		group := byType[st]
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(&b, "### %s\n\n", signalTypeLabel(st))

		for _, s := range group {
			b.WriteString(formatSignal(s))
			b.WriteString("\n")
		}

		b.WriteString("\n")
	}

	return b.String()
}

func formatSignal(s domain.Signal) string {
	line := "- " + s.Title

	if len(s.Regions) > 0 {
		line += " [" + strings.Join(s.Regions, ", ") + "]"
	}

	if len(s.ValueChainLinks) > 0 {
		names := make([]string, 0, len(s.ValueChainLinks))
		for _, id := range s.ValueChainLinks {
			names = append(names, taxonomy.ValueChainLinkName(id))
		}

		line += " (" + strings.Join(names, ", ") + ")"
	}

	return line
}

func signalTypeLabel(id string) string {
	label := strings.ReplaceAll(id, "_", " ")
	if label == "" {
		return label
	}

	return strings.ToUpper(label[:1]) + label[1:]
}

func title(spec domain.Specification) string {
	if spec.Name != "" {
		return spec.Name
	}

	return "Polyurethane Industry Report"
}

// filterUsable re-applies the content filters against stored rows.
// Unparseable dates stay in, matching ingestion: a source that never
// stamps dates should not vanish from reports.
func filterUsable(records []domain.EvidenceRecord, window rundate.Window) []domain.EvidenceRecord {
	out := make([]domain.EvidenceRecord, 0, len(records))

	for _, rec := range records {
		if evidence.IsMetaSnippet(rec.Title) || evidence.IsMetaSnippet(rec.Snippet) {
			continue
		}

		if !rundate.InRange(rec.PublishedAt, window) {
			continue
		}

		out = append(out, rec)
	}

	return out
}

func sectionNames(spec domain.Specification) []string {
	if len(spec.Categories) == 0 {
		return []string{defaultSection}
	}

	names := make([]string, 0, len(spec.Categories))
	for _, id := range spec.Categories {
		names = append(names, taxonomy.CategoryName(id))
	}

	return names
}

// partition deals items across sections round-robin, keeping input
// order within each section. Extraction assigns no category yet, so an
// even spread beats a single overloaded section.
func partition(records []domain.EvidenceRecord, sections int) [][]domain.EvidenceRecord {
	grouped := make([][]domain.EvidenceRecord, sections)

	for i, rec := range records {
		idx := i % sections
		grouped[idx] = append(grouped[idx], rec)
	}

	return grouped
}

// formatItem renders one evidence line. The date is shown only when it
// parses and falls inside the window; a raw garbage date string never
// reaches the artifact.
func formatItem(rec domain.EvidenceRecord, window rundate.Window) string {
	text := rec.Title
	if text == "" {
		text = rec.Snippet
	}

	if text == "" {
		text = rec.CanonicalURL
	}

	source := rec.SourceName
	if source == "" {
		source = "Unknown source"
	}

	parsed := rundate.ParsePublishedAt(rec.PublishedAt)
	if !parsed.IsZero() && rundate.InRange(rec.PublishedAt, window) {
		return fmt.Sprintf("- %s — %s (%s) %s", text, source, parsed.Format(dateLayout), rec.CanonicalURL)
	}

	return fmt.Sprintf("- %s — %s %s", text, source, rec.CanonicalURL)
}
