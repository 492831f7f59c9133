package connectors

import (
	"context"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/htc-global/pu-observatory/internal/core/domain"
)

// fetchFeed pulls an RSS/Atom feed and maps entries to candidates.
func (f *Fetcher) fetchFeed(ctx context.Context, src domain.SourceConfig) []domain.Candidate {
	if src.FeedURL == "" {
		return nil
	}

	parser := gofeed.NewParser()
	parser.Client = f.httpClient
	parser.UserAgent = userAgent

	feed, err := parser.ParseURLWithContext(src.FeedURL, ctx)
	if err != nil {
		f.logger.Warn().Err(err).Str(logKeySource, src.Name).Msg("feed fetch failed")
		return nil
	}

	items := feed.Items
	if len(items) > maxFeedItems {
		items = items[:maxFeedItems]
	}

	out := make([]domain.Candidate, 0, len(items))

	for _, item := range items {
		link := resolveURL(feed.Link, item.Link)
		if link == "" {
			continue
		}

		out = append(out, domain.Candidate{
			URL:         link,
			Title:       strings.TrimSpace(item.Title),
			Snippet:     feedSnippet(item),
			PublishedAt: feedDate(item),
		})
	}

	return out
}

// feedDate returns the entry date as YYYY-MM-DD, preferring published
// over updated, or empty when the feed exposes neither.
func feedDate(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.Format("2006-01-02")
	}

	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.Format("2006-01-02")
	}

	return ""
}

// feedSnippet prefers the description, falling back to content then
// title, stripped of markup.
func feedSnippet(item *gofeed.Item) string {
	for _, s := range []string{item.Description, item.Content, item.Title} {
		if cleaned := cleanSnippet(s); cleaned != "" {
			return cleaned
		}
	}

	return ""
}
