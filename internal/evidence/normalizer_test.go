package evidence

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/htc-global/pu-observatory/internal/core/domain"
	"github.com/htc-global/pu-observatory/internal/plan"
	"github.com/htc-global/pu-observatory/internal/platform/rundate"
	"github.com/htc-global/pu-observatory/internal/search"
	"github.com/htc-global/pu-observatory/internal/taxonomy"
)

type fakeCatalog struct {
	sources []domain.SourceConfig
	err     error
}

func (f *fakeCatalog) ListEnabledSources(context.Context) ([]domain.SourceConfig, error) {
	return f.sources, f.err
}

type fakeAliases struct {
	aliases []string
	err     error
	called  bool
}

func (f *fakeAliases) ActiveAliases(context.Context) ([]string, error) {
	f.called = true
	return f.aliases, f.err
}

type fakeFetcher struct {
	bySource map[string][]domain.Candidate
}

func (f *fakeFetcher) Fetch(_ context.Context, src domain.SourceConfig) []domain.Candidate {
	return f.bySource[src.ID]
}

type fakeProvider struct {
	byQuery map[string][]domain.Candidate
}

func (f *fakeProvider) Search(_ context.Context, q search.Query, _ int, _ rundate.Window) []domain.Candidate {
	out := f.byQuery[q.ID]
	for i := range out {
		out[i].QueryID = q.ID
		out[i].QueryText = q.Text
		out[i].SourceName = search.SourceNameWebSearch
	}

	return out
}

type fakeStore struct {
	records []domain.EvidenceRecord
	err     error
}

func (f *fakeStore) InsertEvidenceRecords(_ context.Context, records []domain.EvidenceRecord) (int, error) {
	if f.err != nil {
		return 0, f.err
	}

	f.records = append(f.records, records...)

	return len(records), nil
}

type fakeValidator struct {
	verdicts map[string]Verdict
}

func (f *fakeValidator) Validate(_ context.Context, rawURL string) Verdict {
	if v, ok := f.verdicts[rawURL]; ok {
		return v
	}

	return Verdict{Status: domain.ValidationValid2xx, HTTPStatus: 200}
}

func testWindow() rundate.Window {
	return rundate.Window{
		Lookback:  time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		Reference: time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
	}
}

func testRun() domain.Run {
	return domain.Run{ID: "run-1", WorkspaceID: "ws-1", SpecificationID: "spec-1"}
}

func newTestNormalizer(catalog SourceCatalog, aliases AliasDirectory, fetcher Fetcher, provider search.Provider, validator Validator, store Store) *Normalizer {
	logger := zerolog.Nop()
	return NewNormalizer(catalog, aliases, fetcher, provider, validator, store, 10, &logger)
}

func TestCollect_FilterChain(t *testing.T) {
	catalog := &fakeCatalog{sources: []domain.SourceConfig{
		{ID: "s1", Name: "PU Daily", Type: domain.SourceTypeFeed, Enabled: true},
	}}

	fetcher := &fakeFetcher{bySource: map[string][]domain.Candidate{
		"s1": {
			{URL: "https://news.example.com/a", Title: "MDI plant opens", PublishedAt: "2026-08-25"},
			{URL: "https://news.example.com/b", Title: "Polyol prices rise", PublishedAt: "2026-08-26"},
			{URL: "https://news.example.com/c", Title: "Coverage note", PublishedAt: ""},
			// Same canonical URL and title as the first item, www variant.
			{URL: "https://www.news.example.com/a", Title: "MDI  plant opens", PublishedAt: "2026-08-25"},
			{URL: "https://news.example.com/old", Title: "Old story", PublishedAt: "2026-07-01"},
		},
	}}

	store := &fakeStore{}
	n := newTestNormalizer(catalog, nil, fetcher, nil, nil, store)

	got, err := n.Collect(context.Background(), testRun(), domain.Specification{}, testWindow())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if got.FromSources != 5 || got.Inserted != 3 {
		t.Errorf("from_sources = %d inserted = %d, want 5 and 3", got.FromSources, got.Inserted)
	}

	if got.Dropped[DropDuplicate] != 1 || got.Dropped[DropOutOfWindow] != 1 {
		t.Errorf("dropped = %v", got.Dropped)
	}

	if got.PerSource["PU Daily"] != 5 {
		t.Errorf("per_source = %v", got.PerSource)
	}

	for _, r := range store.records {
		if r.RunID != "run-1" || r.WorkspaceID != "ws-1" || r.SpecificationID != "spec-1" {
			t.Errorf("record scope = %+v", r)
		}

		if r.ValidationStatus != domain.ValidationNotChecked {
			t.Errorf("validation status = %q, want not_checked with no validator", r.ValidationStatus)
		}

		if r.ID == "" || r.CanonicalURL == "" {
			t.Errorf("record missing identity: %+v", r)
		}
	}
}

func TestCollect_AllMetaSnippets(t *testing.T) {
	catalog := &fakeCatalog{sources: []domain.SourceConfig{
		{ID: "s1", Name: "Feed", Type: domain.SourceTypeFeed, Enabled: true},
	}}

	fetcher := &fakeFetcher{bySource: map[string][]domain.Candidate{
		"s1": {
			{URL: "https://a.example.com/1", Title: "Here are the most relevant articles for your request"},
			{URL: "https://a.example.com/2", Title: "OK headline", Snippet: "These are search results for the query polyurethane news"},
		},
	}}

	store := &fakeStore{}
	n := newTestNormalizer(catalog, nil, fetcher, nil, nil, store)

	got, err := n.Collect(context.Background(), testRun(), domain.Specification{}, testWindow())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if got.Inserted != 0 || got.Dropped[DropMetaSnippet] != 2 {
		t.Errorf("inserted = %d dropped = %v, want 0 inserted and 2 meta_snippet", got.Inserted, got.Dropped)
	}
}

func TestCollect_ValidationKeepsOnlyVerifiedLive(t *testing.T) {
	catalog := &fakeCatalog{sources: []domain.SourceConfig{
		{ID: "s1", Name: "Feed", Type: domain.SourceTypeFeed, Enabled: true},
	}}

	fetcher := &fakeFetcher{bySource: map[string][]domain.Candidate{
		"s1": {
			{URL: "https://a.example.com/live", Title: "Live story", PublishedAt: "2026-08-25"},
			{URL: "https://a.example.com/blocked", Title: "Paywalled story", PublishedAt: "2026-08-25"},
			{URL: "https://a.example.com/moved", Title: "Moved story", PublishedAt: "2026-08-25"},
		},
	}}

	validator := &fakeValidator{verdicts: map[string]Verdict{
		"https://a.example.com/blocked": {Status: domain.ValidationRestricted403, HTTPStatus: 403},
		"https://a.example.com/moved":   {Status: domain.ValidationValid3xx, HTTPStatus: 301},
	}}

	store := &fakeStore{}
	n := newTestNormalizer(catalog, nil, fetcher, nil, validator, store)

	got, err := n.Collect(context.Background(), testRun(), domain.Specification{}, testWindow())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if got.Inserted != 1 || got.Dropped[DropValidation] != 2 {
		t.Errorf("inserted = %d dropped = %v, want 1 and 2 validation drops", got.Inserted, got.Dropped)
	}

	r := store.records[0]
	if r.ValidationStatus != domain.ValidationValid2xx || r.HTTPStatus != 200 {
		t.Errorf("record = %+v", r)
	}
}

func TestCollect_PlanWithoutCompanyNewsSkipsAliases(t *testing.T) {
	aliases := &fakeAliases{aliases: []string{"BASF", "Covestro"}}
	store := &fakeStore{}

	n := newTestNormalizer(&fakeCatalog{}, aliases, &fakeFetcher{}, nil, nil, store)

	spec := domain.Specification{
		Categories: []string{taxonomy.CategoryCapacity},
		Regions:    []string{"EMEA", "China"},
	}

	got, err := n.Collect(context.Background(), testRun(), spec, testWindow())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if aliases.called {
		t.Error("alias directory consulted without the company-news category")
	}

	if len(got.Plan) != 3 {
		t.Fatalf("plan size = %d, want 3 (2 regions + 1 category)", len(got.Plan))
	}

	for _, e := range got.Plan {
		if e.Intent == plan.IntentCompany {
			t.Errorf("unexpected company entry %+v", e)
		}
	}
}

func TestCollect_CompanyNewsFetchesAliases(t *testing.T) {
	aliases := &fakeAliases{aliases: []string{"BASF"}}
	store := &fakeStore{}

	n := newTestNormalizer(&fakeCatalog{}, aliases, &fakeFetcher{}, nil, nil, store)

	spec := domain.Specification{Categories: []string{taxonomy.CategoryCompanyNews}}

	got, err := n.Collect(context.Background(), testRun(), spec, testWindow())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if !aliases.called {
		t.Fatal("alias directory not consulted")
	}

	var company int

	for _, e := range got.Plan {
		if e.Intent == plan.IntentCompany {
			company++

			if !strings.Contains(e.QueryText, "BASF") {
				t.Errorf("company query text = %q", e.QueryText)
			}
		}
	}

	if company != 1 {
		t.Errorf("company entries = %d, want 1", company)
	}
}

func TestCollect_SearchCandidatesMerged(t *testing.T) {
	provider := &fakeProvider{byQuery: map[string][]domain.Candidate{
		"cat_capacity": {
			{URL: "https://b.example.com/plant", Title: "New plant announced", PublishedAt: "2026-08-24"},
		},
	}}

	store := &fakeStore{}
	n := newTestNormalizer(&fakeCatalog{}, nil, &fakeFetcher{}, provider, nil, store)

	spec := domain.Specification{Categories: []string{taxonomy.CategoryCapacity}}

	got, err := n.Collect(context.Background(), testRun(), spec, testWindow())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if got.FromSearch != 1 || got.Inserted != 1 {
		t.Errorf("from_search = %d inserted = %d", got.FromSearch, got.Inserted)
	}

	r := store.records[0]
	if r.QueryID != "cat_capacity" || r.SourceName != search.SourceNameWebSearch {
		t.Errorf("record = %+v", r)
	}
}

func TestCollect_SameURLDistinctTitlesKept(t *testing.T) {
	catalog := &fakeCatalog{sources: []domain.SourceConfig{
		{ID: "s1", Name: "Index", Type: domain.SourceTypeCuratedList, Enabled: true},
	}}

	fetcher := &fakeFetcher{bySource: map[string][]domain.Candidate{
		"s1": {
			{URL: "https://index.example.com/news", Title: "Story one"},
			{URL: "https://index.example.com/news", Title: "Story two"},
		},
	}}

	store := &fakeStore{}
	n := newTestNormalizer(catalog, nil, fetcher, nil, nil, store)

	got, err := n.Collect(context.Background(), testRun(), domain.Specification{}, testWindow())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if got.Inserted != 2 {
		t.Errorf("inserted = %d, want 2 (dedup key is url plus title)", got.Inserted)
	}
}

func TestCollect_StoreErrorPropagates(t *testing.T) {
	catalog := &fakeCatalog{sources: []domain.SourceConfig{
		{ID: "s1", Name: "Feed", Type: domain.SourceTypeFeed, Enabled: true},
	}}

	fetcher := &fakeFetcher{bySource: map[string][]domain.Candidate{
		"s1": {{URL: "https://a.example.com/x", Title: "Story"}},
	}}

	store := &fakeStore{err: errors.New("connection refused")}
	n := newTestNormalizer(catalog, nil, fetcher, nil, nil, store)

	if _, err := n.Collect(context.Background(), testRun(), domain.Specification{}, testWindow()); err == nil {
		t.Fatal("expected error from store")
	}
}

func TestCollect_EmptyEverything(t *testing.T) {
	store := &fakeStore{}
	n := newTestNormalizer(&fakeCatalog{}, nil, &fakeFetcher{}, nil, nil, store)

	got, err := n.Collect(context.Background(), testRun(), domain.Specification{}, testWindow())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if got.Inserted != 0 || got.FromSources != 0 || got.FromSearch != 0 {
		t.Errorf("summary = %+v, want all zero", got)
	}
}
