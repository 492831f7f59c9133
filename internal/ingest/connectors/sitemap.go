package connectors

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/htc-global/pu-observatory/internal/core/domain"
)

// Sitemaps usually expose only URLs and a lastmod; title and snippet
// stay empty and survive downstream filtering under the no-date
// benefit-of-the-doubt rule.

const maxSitemapBody = 10 * 1024 * 1024 // 10MB

type sitemapURL struct {
	Loc             string `xml:"loc"`
	LastMod         string `xml:"lastmod"`
	PublicationDate string `xml:"news>publication_date"`
}

type sitemapDoc struct {
	XMLName xml.Name     `xml:""`
	URLs    []sitemapURL `xml:"url"`
	// A sitemap index nests child sitemaps instead of URLs.
	Sitemaps []sitemapURL `xml:"sitemap"`
}

var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// fetchSitemap pulls a sitemap (or the first child of a sitemap index)
// and maps its URL entries to candidates.
func (f *Fetcher) fetchSitemap(ctx context.Context, src domain.SourceConfig) []domain.Candidate {
	if src.SitemapURL == "" {
		return nil
	}

	doc := f.loadSitemap(ctx, src, src.SitemapURL)
	if doc == nil {
		return nil
	}

	// Index documents carry no URLs themselves; descend one level.
	if len(doc.URLs) == 0 && len(doc.Sitemaps) > 0 {
		child := strings.TrimSpace(doc.Sitemaps[0].Loc)
		if child == "" {
			return nil
		}

		if doc = f.loadSitemap(ctx, src, child); doc == nil {
			return nil
		}
	}

	out := make([]domain.Candidate, 0, len(doc.URLs))

	for _, entry := range doc.URLs {
		link := resolveURL("", entry.Loc)
		if link == "" {
			continue
		}

		out = append(out, domain.Candidate{
			URL:         link,
			PublishedAt: sitemapDate(entry),
		})

		if len(out) >= maxSitemapURLs {
			break
		}
	}

	return out
}

func (f *Fetcher) loadSitemap(ctx context.Context, src domain.SourceConfig, rawURL string) *sitemapDoc {
	resp, err := f.get(ctx, rawURL)
	if err != nil {
		f.logger.Warn().Err(err).Str(logKeySource, src.Name).Msg("sitemap fetch failed")
		return nil
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSitemapBody))
	if err != nil {
		return nil
	}

	var doc sitemapDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		f.logger.Warn().Err(err).Str(logKeySource, src.Name).Msg("sitemap parse failed")
		return nil
	}

	return &doc
}

// sitemapDate extracts a YYYY-MM-DD date from the news publication
// date or lastmod, whichever is present and well-formed.
func sitemapDate(entry sitemapURL) string {
	for _, raw := range []string{entry.PublicationDate, entry.LastMod} {
		s := strings.TrimSpace(raw)
		if len(s) >= 10 && isoDatePrefix.MatchString(s) {
			return s[:10]
		}
	}

	return ""
}
