package plan

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestBuild_Deterministic(t *testing.T) {
	spec := Spec{
		Regions:         []string{"EMEA", "China"},
		Categories:      []string{"capacity", "m_and_a"},
		ValueChainLinks: []string{"raw_materials"},
		CompanyAliases:  []string{"BASF", "Covestro", "Wanhua"},
	}

	first := Build(spec)
	second := Build(spec)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("plan not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}

	if len(first) != 8 {
		t.Fatalf("plan length = %d, want 8", len(first))
	}
}

func TestBuild_Order(t *testing.T) {
	spec := Spec{
		Regions:        []string{"EMEA"},
		Categories:     []string{"capacity"},
		CompanyAliases: []string{"BASF"},
	}

	entries := Build(spec)
	if len(entries) != 3 {
		t.Fatalf("plan length = %d, want 3", len(entries))
	}

	if entries[0].QueryID != "region_EMEA" {
		t.Errorf("entry 0 id = %q, want region_EMEA", entries[0].QueryID)
	}

	if entries[1].QueryID != "cat_capacity" {
		t.Errorf("entry 1 id = %q, want cat_capacity", entries[1].QueryID)
	}

	if !strings.HasPrefix(entries[2].QueryID, "company_") {
		t.Errorf("entry 2 id = %q, want company_ prefix", entries[2].QueryID)
	}

	if entries[2].Intent != IntentCompany {
		t.Errorf("entry 2 intent = %q, want %q", entries[2].Intent, IntentCompany)
	}
}

func TestBuild_EmptySpecYieldsNoFallback(t *testing.T) {
	if entries := Build(Spec{}); len(entries) != 0 {
		t.Errorf("empty spec produced %d entries, want 0 (no generic fallback)", len(entries))
	}
}

func TestBuild_NoCompanyEntriesWithoutAliases(t *testing.T) {
	spec := Spec{
		Regions:    []string{"EMEA", "China"},
		Categories: []string{"capacity", "sustainability"},
	}

	for _, e := range Build(spec) {
		if e.Intent == IntentCompany {
			t.Errorf("unexpected company entry %+v", e)
		}
	}

	if got := len(Build(spec)); got != 4 {
		t.Errorf("plan length = %d, want region+category entries only (4)", got)
	}
}

func TestBuild_TruncatesInputs(t *testing.T) {
	var regions []string
	for i := 0; i < 20; i++ {
		regions = append(regions, fmt.Sprintf("Region %d", i))
	}

	entries := Build(Spec{Regions: regions})
	if len(entries) != maxRegions {
		t.Errorf("plan length = %d, want %d (regions truncated)", len(entries), maxRegions)
	}
}

func TestBuild_HardCap(t *testing.T) {
	spec := Spec{}
	for i := 0; i < 20; i++ {
		spec.Regions = append(spec.Regions, fmt.Sprintf("R%d", i))
		spec.Categories = append(spec.Categories, fmt.Sprintf("c%d", i))
		spec.CompanyAliases = append(spec.CompanyAliases, fmt.Sprintf("Company %d", i))
	}

	if entries := Build(spec); len(entries) > MaxQueries {
		t.Errorf("plan length = %d, exceeds cap %d", len(entries), MaxQueries)
	}
}

func TestBuild_SuppressesDuplicates(t *testing.T) {
	spec := Spec{CompanyAliases: []string{"BASF", "BASF", " BASF"}}

	entries := Build(spec)
	if len(entries) != 1 {
		t.Errorf("plan length = %d, want 1 (duplicates suppressed)", len(entries))
	}
}

func TestBuild_SkipsShortAliases(t *testing.T) {
	spec := Spec{CompanyAliases: []string{"", " ", "X", "OK"}}

	entries := Build(spec)
	if len(entries) != 1 {
		t.Fatalf("plan length = %d, want 1", len(entries))
	}

	if !strings.Contains(entries[0].QueryText, "OK") {
		t.Errorf("surviving entry = %+v, want alias OK", entries[0])
	}
}

func TestCompanyQueryID_Stable(t *testing.T) {
	a := companyQueryID("Wanhua Chemical")
	b := companyQueryID("Wanhua Chemical")

	if a != b {
		t.Errorf("company id not stable: %q vs %q", a, b)
	}

	if a == companyQueryID("BASF") {
		t.Error("distinct aliases mapped to the same id")
	}
}

func TestWantsCompanyQueries(t *testing.T) {
	if WantsCompanyQueries([]string{"capacity", "sustainability"}) {
		t.Error("entity tracking reported without company_news category")
	}

	if !WantsCompanyQueries([]string{"capacity", "company_news"}) {
		t.Error("entity tracking not reported with company_news category")
	}
}
