package report

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/htc-global/pu-observatory/internal/core/domain"
	"github.com/htc-global/pu-observatory/internal/platform/rundate"
	"github.com/htc-global/pu-observatory/internal/taxonomy"
)

func newWriter() *Writer {
	logger := zerolog.Nop()
	return NewWriter(&logger)
}

func testWindow() rundate.Window {
	return rundate.Window{
		Lookback:  time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		Reference: time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
	}
}

func record(url, title, publishedAt string) domain.EvidenceRecord {
	return domain.EvidenceRecord{
		ID:           "id-" + url,
		CanonicalURL: url,
		Title:        title,
		SourceName:   "PU Daily",
		PublishedAt:  publishedAt,
	}
}

var urlPattern = regexp.MustCompile(`https?://\S+`)

func TestWrite_EveryURLTraceable(t *testing.T) {
	records := []domain.EvidenceRecord{
		record("https://a.example.com/1", "Story one", "2026-08-25"),
		record("https://a.example.com/2", "Story two", "2026-08-24"),
		record("https://a.example.com/3", "Story three", ""),
	}

	allowed := make(map[string]struct{})
	for _, r := range records {
		allowed[r.CanonicalURL] = struct{}{}
	}

	got := newWriter().Write(domain.Specification{Name: "Weekly PU Brief"}, testWindow(), records, nil)

	urls := urlPattern.FindAllString(got.Content, -1)
	if len(urls) != 3 {
		t.Fatalf("urls in report = %d, want 3", len(urls))
	}

	for _, u := range urls {
		if _, ok := allowed[u]; !ok {
			t.Errorf("report contains untraceable url %q", u)
		}
	}
}

func TestWrite_CoverageLowStopsRendering(t *testing.T) {
	thin := []domain.EvidenceRecord{
		record("https://a.example.com/1", "Only story", "2026-08-25"),
		record("https://a.example.com/2", "Second story", "2026-08-25"),
	}

	signals := []domain.Signal{
		{Title: "Only story", SignalType: taxonomy.SignalTypeOther},
	}

	got := newWriter().Write(domain.Specification{}, testWindow(), thin, signals)
	if !got.CoverageLow {
		t.Error("CoverageLow = false with 2 items, want true")
	}

	if !strings.Contains(got.Content, "coverage for this period is low") {
		t.Error("coverage notice missing from content")
	}

	// Below the floor nothing but the notice may render: no sections,
	// no evidence lines, no signal digest, no closing summary.
	if strings.Contains(got.Content, "## ") {
		t.Errorf("section rendered despite low coverage:\n%s", got.Content)
	}

	if urls := urlPattern.FindAllString(got.Content, -1); len(urls) != 0 {
		t.Errorf("evidence urls rendered despite low coverage: %v", urls)
	}

	if strings.Contains(got.Content, "assembled from") {
		t.Errorf("closing summary rendered despite low coverage:\n%s", got.Content)
	}

	enough := append(thin, record("https://a.example.com/3", "Third story", "2026-08-25"))

	got = newWriter().Write(domain.Specification{}, testWindow(), enough, nil)
	if got.CoverageLow {
		t.Error("CoverageLow = true with 3 items, want false")
	}

	if strings.Contains(got.Content, "coverage for this period is low") {
		t.Error("coverage notice present with sufficient items")
	}

	if !strings.Contains(got.Content, "a.example.com/3") {
		t.Errorf("evidence lines missing with sufficient items:\n%s", got.Content)
	}
}

func TestWrite_RoundRobinSections(t *testing.T) {
	spec := domain.Specification{
		Categories: []string{taxonomy.CategoryCapacity, taxonomy.CategoryMAndA},
	}

	records := []domain.EvidenceRecord{
		record("https://a.example.com/1", "First", "2026-08-25"),
		record("https://a.example.com/2", "Second", "2026-08-25"),
		record("https://a.example.com/3", "Third", "2026-08-25"),
		record("https://a.example.com/4", "Fourth", "2026-08-25"),
	}

	got := newWriter().Write(spec, testWindow(), records, nil)

	capacityIdx := strings.Index(got.Content, "## "+taxonomy.CategoryName(taxonomy.CategoryCapacity))
	mnaIdx := strings.Index(got.Content, "## "+taxonomy.CategoryName(taxonomy.CategoryMAndA))

	if capacityIdx < 0 || mnaIdx < 0 {
		t.Fatalf("section headers missing:\n%s", got.Content)
	}

	capacitySection := got.Content[capacityIdx:mnaIdx]
	if !strings.Contains(capacitySection, "First") || !strings.Contains(capacitySection, "Third") {
		t.Errorf("round-robin misassigned items:\n%s", capacitySection)
	}

	mnaSection := got.Content[mnaIdx:]
	if !strings.Contains(mnaSection, "Second") || !strings.Contains(mnaSection, "Fourth") {
		t.Errorf("round-robin misassigned items:\n%s", mnaSection)
	}
}

func TestWrite_DefaultSectionWithoutCategories(t *testing.T) {
	records := []domain.EvidenceRecord{
		record("https://a.example.com/1", "Story one", "2026-08-25"),
		record("https://a.example.com/2", "Story two", "2026-08-25"),
		record("https://a.example.com/3", "Story three", "2026-08-25"),
	}

	got := newWriter().Write(domain.Specification{}, testWindow(), records, nil)

	if !strings.Contains(got.Content, "## Key developments") {
		t.Errorf("default section missing:\n%s", got.Content)
	}
}

func TestWrite_RefiltersStoredRows(t *testing.T) {
	records := []domain.EvidenceRecord{
		record("https://a.example.com/1", "Real one", "2026-08-25"),
		record("https://a.example.com/2", "Real two", "2026-08-25"),
		record("https://a.example.com/3", "Real three", "2026-08-25"),
		record("https://a.example.com/meta", "Here are the most relevant articles for this topic", "2026-08-25"),
		record("https://a.example.com/old", "Stale story", "2026-07-01"),
	}

	got := newWriter().Write(domain.Specification{}, testWindow(), records, nil)

	if got.ItemsUsed != 3 {
		t.Errorf("ItemsUsed = %d, want 3", got.ItemsUsed)
	}

	if strings.Contains(got.Content, "a.example.com/meta") || strings.Contains(got.Content, "a.example.com/old") {
		t.Errorf("filtered rows leaked into report:\n%s", got.Content)
	}
}

func TestWrite_DateRendering(t *testing.T) {
	records := []domain.EvidenceRecord{
		record("https://a.example.com/dated", "Dated story", "2026-08-25T09:30:00Z"),
		record("https://a.example.com/undated", "Undated story", "sometime last week"),
		record("https://a.example.com/blank", "Blank date", ""),
	}

	got := newWriter().Write(domain.Specification{}, testWindow(), records, nil)

	if !strings.Contains(got.Content, "(2026-08-25) https://a.example.com/dated") {
		t.Errorf("parseable date not rendered:\n%s", got.Content)
	}

	for _, line := range strings.Split(got.Content, "\n") {
		if strings.Contains(line, "undated") || strings.Contains(line, "blank") {
			if strings.Contains(line, "(") {
				t.Errorf("unparseable date rendered: %q", line)
			}
		}
	}
}

func TestWrite_SignalAppendix(t *testing.T) {
	records := []domain.EvidenceRecord{
		record("https://a.example.com/1", "Story one", "2026-08-25"),
		record("https://a.example.com/2", "Story two", "2026-08-25"),
		record("https://a.example.com/3", "Story three", "2026-08-25"),
	}

	signals := []domain.Signal{
		{Title: "Plant expansion announced", SignalType: "capacity_assets", Regions: []string{"China"}},
		{Title: "Background note", SignalType: taxonomy.SignalTypeOther, ValueChainLinks: []string{"system_houses"}},
	}

	got := newWriter().Write(domain.Specification{}, testWindow(), records, signals)

	if !strings.Contains(got.Content, "## Extracted signals") {
		t.Fatalf("signal digest missing:\n%s", got.Content)
	}

	// Groups follow the taxonomy type order, so capacity precedes other.
	capacityIdx := strings.Index(got.Content, "### Capacity assets")
	otherIdx := strings.Index(got.Content, "### Other")

	if capacityIdx < 0 || otherIdx < 0 || capacityIdx > otherIdx {
		t.Errorf("signal groups missing or misordered:\n%s", got.Content)
	}

	if !strings.Contains(got.Content, "- Plant expansion announced [China]") {
		t.Errorf("region tag missing from signal line:\n%s", got.Content)
	}

	if !strings.Contains(got.Content, "- Background note (System houses)") {
		t.Errorf("value-chain link name missing from signal line:\n%s", got.Content)
	}
}

func TestWrite_EmptyEvidence(t *testing.T) {
	got := newWriter().Write(domain.Specification{Name: "Quiet Week"}, testWindow(), nil, nil)

	if !got.CoverageLow || got.ItemsUsed != 0 {
		t.Errorf("result = %+v, want coverage-low empty report", got)
	}

	if !strings.Contains(got.Content, "# Quiet Week") {
		t.Errorf("title missing:\n%s", got.Content)
	}
}
