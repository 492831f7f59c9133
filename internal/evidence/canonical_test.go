package evidence

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTPS://Example.COM/News", "https://example.com/News"},
		{"strips www", "https://www.example.com/a", "https://example.com/a"},
		{"collapses duplicate slashes", "https://example.com//a///b", "https://example.com/a/b"},
		{"strips trailing slash", "https://example.com/a/", "https://example.com/a"},
		{"keeps root slash", "https://example.com/", "https://example.com/"},
		{"adds root slash", "https://example.com", "https://example.com/"},
		{"drops fragment", "https://example.com/a#section", "https://example.com/a"},
		{"keeps query", "https://example.com/a?id=7", "https://example.com/a?id=7"},
		{"trims whitespace", "  https://example.com/a  ", "https://example.com/a"},
		{"non-http unchanged", "ftp://example.com/a", "ftp://example.com/a"},
		{"relative unchanged", "/news/item", "/news/item"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonicalize(tt.in); got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"HTTPS://WWW.Example.com//news/item/?q=1#frag",
		"http://example.com",
		"https://example.com/a/b/c/",
	}

	for _, in := range inputs {
		once := Canonicalize(in)
		if twice := Canonicalize(once); twice != once {
			t.Errorf("Canonicalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BASF Expands  MDI\tCapacity", "basf expands mdi capacity"},
		{"  spaced  ", "spaced"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDedupKey(t *testing.T) {
	a := DedupKey("https://example.com/a", "Title One")
	b := DedupKey("https://example.com/a", "title  one")

	if a != b {
		t.Errorf("keys for equivalent titles differ: %q vs %q", a, b)
	}

	c := DedupKey("https://example.com/a", "Title Two")
	if a == c {
		t.Error("distinct titles on one URL must produce distinct keys")
	}

	// An index page URL with no title is still a single key.
	d := DedupKey("https://example.com/news", "")
	e := DedupKey("https://example.com/news", "  ")

	if d != e {
		t.Errorf("empty and blank titles should collapse to one key: %q vs %q", d, e)
	}
}
