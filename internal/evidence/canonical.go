package evidence

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

const wwwPrefix = "www."

var duplicateSlashes = regexp.MustCompile(`/+`)

// Canonicalize normalizes a URL into the form used as the dedup key
// component: lower-case scheme and host, www. stripped, duplicate path
// slashes collapsed, trailing slash stripped except at root, fragment
// dropped, query string kept (it can select distinct content).
// Canonicalization is idempotent. Non-http(s) input comes back
// unchanged; the caller drops those earlier.
func Canonicalize(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if !IsAbsoluteHTTP(rawURL) {
		return rawURL
	}

	p, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	host := strings.ToLower(p.Host)
	host = strings.TrimPrefix(host, wwwPrefix)

	path := p.EscapedPath()
	if path == "" {
		path = "/"
	}

	path = duplicateSlashes.ReplaceAllString(path, "/")
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}

	canonical := strings.ToLower(p.Scheme) + "://" + host + path
	if p.RawQuery != "" {
		canonical += "?" + p.RawQuery
	}

	return canonical
}

// IsAbsoluteHTTP reports whether the raw URL is absolute http(s).
func IsAbsoluteHTTP(rawURL string) bool {
	return strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
}

var titleCaser = cases.Fold()

// NormalizeTitle folds case and collapses whitespace for the title
// half of the dedup key. An empty title normalizes to the empty
// string, which acts as its own key value (sitemap entries).
func NormalizeTitle(title string) string {
	return titleCaser.String(strings.Join(strings.Fields(title), " "))
}

// DedupKey builds the normalizer's deduplication key. The key is the
// pair (canonical URL, normalized title), not the URL alone: one URL
// (a rolling index page) can legitimately back several distinct titled
// items.
func DedupKey(canonicalURL, title string) string {
	return canonicalURL + "\x00" + NormalizeTitle(title)
}
