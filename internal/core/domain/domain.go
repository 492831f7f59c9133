// Package domain defines the core types shared across the evidence
// pipeline: candidates, evidence records, signals, runs, and the
// specification/source inputs consumed from the admin layer.
package domain

import "time"

// Run status values.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// URL validation status values, stored on evidence records.
const (
	ValidationValid2xx      = "valid_2xx"
	ValidationValid3xx      = "valid_3xx"
	ValidationRestricted403 = "restricted_403"
	ValidationErrorOther    = "error_other"
	ValidationNotChecked    = "not_checked"
)

// Candidate is a raw, unvalidated article reference produced by a
// connector or the search provider. It has no identity of its own
// until the normalizer canonicalizes it.
type Candidate struct {
	URL         string
	Title       string
	Snippet     string
	PublishedAt string // raw, as the source reported it; may be empty or garbage
	SourceName  string
	SourceID    string
	QueryID     string
	QueryText   string
}

// EvidenceRecord is a candidate that survived the normalizer filters,
// persisted for exactly one run. Records are append-only: never
// mutated or deleted after insertion.
type EvidenceRecord struct {
	ID               string
	RunID            string
	WorkspaceID      string
	SpecificationID  string
	URL              string
	CanonicalURL     string
	Title            string
	Snippet          string
	PublishedAt      string
	SourceID         string
	SourceName       string
	QueryID          string
	QueryText        string
	ValidationStatus string
	HTTPStatus       int
	CreatedAt        time.Time
}

// Signal is a lightweight structured fact derived from one evidence
// record. Occurrences allow many records to back one signal later
// without redesign; today the mapping is one-to-one.
type Signal struct {
	ID              string
	CanonicalURL    string
	Title           string
	Summary         string
	SignalType      string
	Companies       []string
	Regions         []string
	ValueChainLinks []string
	Confidence      int
	FirstSeenAt     time.Time
	LastSeenAt      time.Time
}

// SignalOccurrence links a signal to the evidence record and run that
// produced it.
type SignalOccurrence struct {
	ID               string
	SignalID         string
	RunID            string
	WorkspaceID      string
	SpecificationID  string
	EvidenceRecordID string
}

// Run is the unit of generation. It owns the date window; all evidence
// records, signals, and the rendered artifact are scoped to it.
type Run struct {
	ID              string
	WorkspaceID     string
	SpecificationID string
	Status          string
	ReferenceDate   time.Time
	LookbackDate    time.Time
	ArtifactPath    string
	ErrorMessage    string
	CoverageLow     bool
	CreatedAt       time.Time
	FinishedAt      time.Time
}

// Specification is the read-only report configuration from the admin
// layer.
type Specification struct {
	ID              string
	WorkspaceID     string
	Name            string
	Status          string
	Categories      []string
	Regions         []string
	ValueChainLinks []string
	Frequency       string
}

// Source type discriminators for SourceConfig.
const (
	SourceTypeFeed        = "feed"
	SourceTypeSitemap     = "sitemap"
	SourceTypeCuratedList = "curated_list"
)

// SourceConfig describes one registered source from the catalog. The
// Type field selects which variant fields are meaningful; connectors
// dispatch on it and ignore the rest.
type SourceConfig struct {
	ID      string
	Name    string
	Type    string
	Enabled bool

	// Feed variant.
	FeedURL string

	// Sitemap variant.
	SitemapURL string

	// Curated list variant.
	ListURL   string
	BaseURL   string
	Selectors *ListSelectors
}

// ListSelectors are admin-curated extraction rules for a curated-list
// page. Zero values fall back to connector defaults.
type ListSelectors struct {
	Item     string `json:"item_selector"`
	Link     string `json:"link_selector"`
	Title    string `json:"title_selector"`
	Date     string `json:"date_selector"`
	DateAttr string `json:"date_attr"`
	MaxItems int    `json:"max_items"`
}

// TrackedCompany is one entry of the entity alias list.
type TrackedCompany struct {
	ID      string
	Name    string
	Aliases []string
	Status  string
}

// Active reports whether the company should contribute alias queries.
func (c TrackedCompany) Active() bool {
	return c.Status == "active"
}
