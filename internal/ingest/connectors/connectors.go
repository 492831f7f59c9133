// Package connectors turns registered external sources into flat lists
// of raw candidates.
//
// Every connector follows the same contract: a per-call timeout, a
// result cap, and a hard failure boundary. Network, parse, or timeout
// problems yield an empty list, never a partial or corrupt one and
// never a panic or error past Fetch. Connectors share no state with
// each other; each call is self-contained.
package connectors

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/htc-global/pu-observatory/internal/core/domain"
)

const (
	defaultFetchTimeout = 8 * time.Second

	maxFeedItems        = 100
	maxSitemapURLs      = 200
	defaultMaxListItems = 50
	maxListItems        = 100

	maxSnippetLength = 300

	userAgent = "Mozilla/5.0 (compatible; PU-Observatory/2.0)"

	logKeySource = "source"
	logKeyType   = "type"
	logKeyItems  = "items"
)

// Fetcher dispatches source configs to the matching connector. The
// HTTP client is injected so tests control the transport and the
// caller owns its lifetime.
type Fetcher struct {
	httpClient *http.Client
	timeout    time.Duration
	logger     *zerolog.Logger
}

// New creates a Fetcher. A nil client gets a default one with the
// fetch timeout applied.
func New(client *http.Client, timeout time.Duration, logger *zerolog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	return &Fetcher{httpClient: client, timeout: timeout, logger: logger}
}

// Fetch runs the connector for one source. Disabled sources and
// unknown types contribute nothing.
func (f *Fetcher) Fetch(ctx context.Context, src domain.SourceConfig) []domain.Candidate {
	if !src.Enabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var out []domain.Candidate

	switch src.Type {
	case domain.SourceTypeFeed:
		out = f.fetchFeed(ctx, src)
	case domain.SourceTypeSitemap:
		out = f.fetchSitemap(ctx, src)
	case domain.SourceTypeCuratedList:
		out = f.fetchCuratedList(ctx, src)
	default:
		f.logger.Warn().
			Str(logKeySource, src.Name).
			Str(logKeyType, src.Type).
			Msg("unknown source type, skipping")

		return nil
	}

	f.logger.Debug().
		Str(logKeySource, src.Name).
		Str(logKeyType, src.Type).
		Int(logKeyItems, len(out)).
		Msg("source fetched")

	return tagSource(out, src)
}

func tagSource(items []domain.Candidate, src domain.SourceConfig) []domain.Candidate {
	for i := range items {
		items[i].SourceID = src.ID
		items[i].SourceName = src.Name
	}

	return items
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent)

	return f.httpClient.Do(req)
}

// resolveURL resolves a possibly-relative href against the source base
// and returns it only when the result is absolute http(s).
func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if base != "" && !ref.IsAbs() {
		b, err := url.Parse(base)
		if err != nil {
			return ""
		}

		ref = b.ResolveReference(ref)
	}

	if ref.Scheme != "http" && ref.Scheme != "https" || ref.Host == "" {
		return ""
	}

	return ref.String()
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// cleanSnippet strips markup and collapses whitespace, truncating to
// the snippet cap.
func cleanSnippet(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if len(s) > maxSnippetLength {
		s = s[:maxSnippetLength] + "..."
	}

	return s
}
