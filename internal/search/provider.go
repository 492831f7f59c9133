// Package search wraps the hosted web-search capability behind a
// narrow provider interface. Providers return the same raw candidate
// shape as the source connectors and never fail a run: any error
// yields an empty result.
package search

import (
	"context"

	"github.com/htc-global/pu-observatory/internal/core/domain"
	"github.com/htc-global/pu-observatory/internal/platform/rundate"
)

// SourceNameWebSearch labels candidates produced by a search provider.
const SourceNameWebSearch = "web_search"

// Query is one planned query handed to a provider.
type Query struct {
	ID   string
	Text string
}

// Provider executes a single search query. The window is passed so the
// provider can state the caller's notion of "recent" explicitly; a
// provider must never substitute its own idea of the current date.
type Provider interface {
	Search(ctx context.Context, q Query, maxResults int, window rundate.Window) []domain.Candidate
}

// Noop is a provider that finds nothing. Used when no search backend
// is configured; the pipeline then runs on connector evidence alone.
type Noop struct{}

// Search implements Provider.
func (Noop) Search(_ context.Context, _ Query, _ int, _ rundate.Window) []domain.Candidate {
	return nil
}
