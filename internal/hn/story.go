package hn

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const itemPageURL = "https://news.ycombinator.com/item?id=%d"

// Story is a single Hacker News item as returned by the /item endpoint.
// URL is empty for text-only posts (Ask HN, polls); Text carries their
// HTML body.
type Story struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	By          string `json:"by"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Time        int64  `json:"time"`
	URL         string `json:"url,omitempty"`
	Text        string `json:"text,omitempty"`
	Type        string `json:"type,omitempty"`
}

// PageURL is the address the open action uses: the story link, or the
// HN item page for text-only posts.
func (s *Story) PageURL() string {
	if s.URL != "" {
		return s.URL
	}
	return s.CommentsURL()
}

func (s *Story) CommentsURL() string {
	return fmt.Sprintf(itemPageURL, s.ID)
}

// Domain returns the story link's host without a www. prefix, or "" for
// text-only posts.
func (s *Story) Domain() string {
	if s.URL == "" {
		return ""
	}
	u, err := url.Parse(s.URL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func (s *Story) Posted() time.Time {
	return time.Unix(s.Time, 0)
}

// Age renders the story's age relative to now, coarsening with distance.
func (s *Story) Age(now time.Time) string {
	d := now.Sub(s.Posted())
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours())/24)
	}
}
