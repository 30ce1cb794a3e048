package storage

import (
	"time"
)

// StoryRecord is the persisted read-state for a story: when it was seen
// in a fetch and whether the user opened it. Only metadata is kept here;
// stories themselves are always re-fetched, never served from disk.
type StoryRecord struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	By        string    `json:"by"`
	Score     int       `json:"score"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Opened    bool      `json:"opened"`
	OpenedAt  time.Time `json:"opened_at"`
}
