package connectors

import (
	"strings"

	"golang.org/x/net/html"
)

// Minimal selector support for curated-list extraction rules. The
// grammar is a comma list of simple selectors: `tag`, `.class`, or
// `tag.class`. That covers every rule the source catalog has needed;
// anything richer belongs in an admin-side scraping tool, not here.

type simpleSelector struct {
	tag   string
	class string
}

func parseSelector(expr string) []simpleSelector {
	parts := strings.Split(expr, ",")
	out := make([]simpleSelector, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var s simpleSelector
		if i := strings.IndexByte(part, '.'); i >= 0 {
			s.tag = part[:i]
			s.class = part[i+1:]
		} else {
			s.tag = part
		}

		out = append(out, s)
	}

	return out
}

func (s simpleSelector) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}

	if s.tag != "" && n.Data != s.tag {
		return false
	}

	if s.class != "" && !hasClass(n, s.class) {
		return false
	}

	return true
}

func matchesAny(n *html.Node, sels []simpleSelector) bool {
	for _, s := range sels {
		if s.matches(n) {
			return true
		}
	}

	return false
}

// selectAll collects up to limit matching elements in document order.
// Matched elements are not descended into, so nested `li` items do not
// double-count.
func selectAll(root *html.Node, expr string, limit int) []*html.Node {
	sels := parseSelector(expr)

	var out []*html.Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if limit > 0 && len(out) >= limit {
			return
		}

		if matchesAny(n, sels) {
			out = append(out, n)
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return out
}

// selectFirst returns the first descendant matching the selector, or
// nil.
func selectFirst(root *html.Node, expr string) *html.Node {
	sels := parseSelector(expr)

	var found *html.Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}

		if n != root && matchesAny(n, sels) {
			found = n
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return found
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}

		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}

	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(strings.Fields(b.String()), " ")
}
