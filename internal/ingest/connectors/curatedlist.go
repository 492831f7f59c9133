package connectors

import (
	"context"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/htc-global/pu-observatory/internal/core/domain"
)

// Curated-list defaults when the admin supplied no selector rules.
const (
	defaultItemSelector  = "article, .news-item, li"
	defaultLinkSelector  = "a"
	defaultTitleSelector = "a"
	defaultDateSelector  = "time"
	defaultDateAttr      = "datetime"
)

const maxListBody = 10 * 1024 * 1024 // 10MB

// fetchCuratedList pulls an admin-curated HTML list page and extracts
// items using the source's selector rules.
func (f *Fetcher) fetchCuratedList(ctx context.Context, src domain.SourceConfig) []domain.Candidate {
	if src.ListURL == "" {
		return nil
	}

	resp, err := f.get(ctx, src.ListURL)
	if err != nil {
		f.logger.Warn().Err(err).Str(logKeySource, src.Name).Msg("curated list fetch failed")
		return nil
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	root, err := html.Parse(io.LimitReader(resp.Body, maxListBody))
	if err != nil {
		f.logger.Warn().Err(err).Str(logKeySource, src.Name).Msg("curated list parse failed")
		return nil
	}

	sel := normalizeSelectors(src.Selectors)
	base := src.BaseURL
	if base == "" {
		base = src.ListURL
	}

	out := make([]domain.Candidate, 0, sel.MaxItems)

	for _, item := range selectAll(root, sel.Item, sel.MaxItems) {
		link := selectFirst(item, sel.Link)
		if link == nil {
			continue
		}

		resolved := resolveURL(base, attr(link, "href"))
		if resolved == "" {
			continue
		}

		title := link
		if el := selectFirst(item, sel.Title); el != nil {
			title = el
		}

		out = append(out, domain.Candidate{
			URL:         resolved,
			Title:       strings.TrimSpace(textContent(title)),
			PublishedAt: listDate(item, sel),
		})
	}

	return out
}

func normalizeSelectors(s *domain.ListSelectors) domain.ListSelectors {
	out := domain.ListSelectors{
		Item:     defaultItemSelector,
		Link:     defaultLinkSelector,
		Title:    defaultTitleSelector,
		Date:     defaultDateSelector,
		DateAttr: defaultDateAttr,
		MaxItems: defaultMaxListItems,
	}

	if s == nil {
		return out
	}

	if s.Item != "" {
		out.Item = s.Item
	}

	if s.Link != "" {
		out.Link = s.Link
	}

	if s.Title != "" {
		out.Title = s.Title
	}

	if s.Date != "" {
		out.Date = s.Date
	}

	if s.DateAttr != "" {
		out.DateAttr = s.DateAttr
	}

	if s.MaxItems > 0 {
		out.MaxItems = s.MaxItems
	}

	if out.MaxItems > maxListItems {
		out.MaxItems = maxListItems
	}

	return out
}

// listDate reads the configured date attribute (or text) of the date
// element, keeping only a leading YYYY-MM-DD.
func listDate(item *html.Node, sel domain.ListSelectors) string {
	el := selectFirst(item, sel.Date)
	if el == nil {
		return ""
	}

	raw := attr(el, sel.DateAttr)
	if raw == "" {
		raw = textContent(el)
	}

	raw = strings.TrimSpace(raw)
	if len(raw) >= 10 && isoDatePrefix.MatchString(raw) {
		return raw[:10]
	}

	return ""
}
