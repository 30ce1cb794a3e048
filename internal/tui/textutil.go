package tui

import (
	"html"
	"strings"
)

// truncateEnd shortens s to at most limit characters, appending an
// ellipsis if truncation occurs. Handles negative or tiny limits.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	return string(r[:limit-1]) + "…"
}

// truncateMiddle shortens s to at most limit characters by preserving
// the start and end with a single ellipsis in the middle. Useful for
// URLs where both ends carry meaning.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	n := len(r)
	if n <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	keep := limit - 1
	left := keep / 2
	right := keep - left
	if left <= 0 {
		return "…" + string(r[n-right:])
	}
	if right <= 0 {
		return string(r[:left]) + "…"
	}
	return string(r[:left]) + "…" + string(r[n-right:])
}

var htmlBreaks = strings.NewReplacer(
	"<p>", "\n\n",
	"<P>", "\n\n",
	"<br>", "\n",
	"<br/>", "\n",
	"<br />", "\n",
)

// htmlToPlain flattens the HTML fragments the item API returns for
// text posts into plain paragraphs for the detail view.
func htmlToPlain(s string) string {
	if s == "" {
		return ""
	}
	s = htmlBreaks.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	s = html.UnescapeString(b.String())
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(s)
}
