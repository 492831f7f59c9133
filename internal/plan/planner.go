// Package plan builds the deterministic search query plan for a run.
//
// The planner is a pure function of the specification: identical inputs
// produce an identical ordered plan, which is what makes runs
// reproducible and plan output cacheable. There is deliberately no
// generic fallback query: an unscoped query would pull citations from
// outside the requester's selected scope.
package plan

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/htc-global/pu-observatory/internal/taxonomy"
)

// Input caps, applied by truncation rather than error.
const (
	maxRegions         = 8
	maxCategories      = 10
	maxValueChainLinks = 4
	maxCompanyAliases  = 15

	// MaxQueries is the hard cap on the whole plan.
	MaxQueries = 30

	minAliasLength = 2

	companyIDSpace = 1_000_000
)

// Intent labels.
const (
	IntentCompany = "company"

	intentRegionPrefix     = "region:"
	intentCategoryPrefix   = "category:"
	intentValueChainPrefix = "value_chain:"
)

// Entry is one planned query.
type Entry struct {
	QueryID   string
	QueryText string
	Intent    string
}

// Spec carries the planner inputs extracted from a specification.
type Spec struct {
	Regions         []string
	Categories      []string
	ValueChainLinks []string
	CompanyAliases  []string
}

// WantsCompanyQueries reports whether the category scope opts in to
// entity tracking. Company-alias search is tied to the company-news
// category; without it the alias list is not even fetched.
func WantsCompanyQueries(categories []string) bool {
	for _, c := range categories {
		if c == taxonomy.CategoryCompanyNews {
			return true
		}
	}

	return false
}

// Build produces the ordered query plan for a spec. Emission order is
// fixed: regions, categories, value-chain links, company aliases.
// Duplicate (query_id, normalized text) pairs are suppressed.
func Build(spec Spec) []Entry {
	b := newBuilder()

	for _, r := range truncate(spec.Regions, maxRegions) {
		b.add(
			"region_"+strings.ReplaceAll(r, " ", "_"),
			fmt.Sprintf("%s %s news", taxonomy.ScopePhrase, r),
			intentRegionPrefix+r,
		)
	}

	for _, cat := range truncate(spec.Categories, maxCategories) {
		tokens, ok := taxonomy.CategoryQueryTokens[cat]
		if !ok {
			tokens = taxonomy.ScopePhrase
		}

		b.add("cat_"+cat, tokens, intentCategoryPrefix+cat)
	}

	for _, vcl := range truncate(spec.ValueChainLinks, maxValueChainLinks) {
		b.add(
			"vcl_"+vcl,
			fmt.Sprintf("%s %s", taxonomy.ScopePhrase, strings.ReplaceAll(vcl, "_", " ")),
			intentValueChainPrefix+vcl,
		)
	}

	for _, alias := range truncate(spec.CompanyAliases, maxCompanyAliases) {
		alias = strings.TrimSpace(alias)
		if len(alias) < minAliasLength {
			continue
		}

		b.add(
			companyQueryID(alias),
			fmt.Sprintf("%s %s news", alias, taxonomy.ScopePhrase),
			IntentCompany,
		)
	}

	return b.entries
}

// companyQueryID derives a stable six-digit id from the alias. FNV-32a
// is stable across processes, unlike a seeded runtime hash, so re-runs
// of the same alias list reproduce the same plan.
func companyQueryID(alias string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(alias))

	return fmt.Sprintf("company_%d", h.Sum32()%companyIDSpace)
}

type builder struct {
	entries []Entry
	seen    map[string]struct{}
}

func newBuilder() *builder {
	return &builder{
		entries: make([]Entry, 0, MaxQueries),
		seen:    make(map[string]struct{}),
	}
}

func (b *builder) add(id, text, intent string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	key := id + "\x00" + strings.ToLower(text)
	if _, dup := b.seen[key]; dup || len(b.entries) >= MaxQueries {
		return
	}

	b.seen[key] = struct{}{}
	b.entries = append(b.entries, Entry{QueryID: id, QueryText: text, Intent: intent})
}

func truncate(in []string, limit int) []string {
	if len(in) > limit {
		return in[:limit]
	}

	return in
}
