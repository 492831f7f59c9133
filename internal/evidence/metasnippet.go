package evidence

import (
	"regexp"
	"strings"
)

// Meta-snippet patterns: phrases a search engine uses to describe its
// own result set rather than a real headline or summary. The table is
// versioned by the unit tests, one test case per pattern, so a new
// pattern lands together with proof of what it catches.
var metaSnippetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Here are (several |the most )?(relevant and )?factual`),
	regexp.MustCompile(`(?i)^Here are the most relevant`),
	regexp.MustCompile(`(?i)search results (for the query |related to )`),
	regexp.MustCompile(`(?i)presented as titles?`),
	regexp.MustCompile(`(?i)including (article|titles?)`),
	regexp.MustCompile(`(?i)each with the title and a brief snippet`),
	regexp.MustCompile(`(?i)short snippets?,? and (their )?source URLs`),
	regexp.MustCompile(`(?i)in other words,.*?used in`),
}

// Texts shorter than this cannot plausibly be engine preamble; real
// headlines are short, preamble is not.
const minMetaSnippetLength = 20

// IsMetaSnippet reports whether the text looks like search-result
// preamble instead of an actual headline or article summary.
func IsMetaSnippet(text string) bool {
	t := strings.TrimSpace(text)
	if len(t) < minMetaSnippetLength {
		return false
	}

	for _, p := range metaSnippetPatterns {
		if p.MatchString(t) {
			return true
		}
	}

	return false
}
