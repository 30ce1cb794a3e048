package search

import "github.com/pders01/hkrnws/internal/hn"

// Searcher defines the minimal search API used by the TUI.
type Searcher interface {
	Search(query string, limit int) ([]*Result, error)
}

// UpdateListener can be implemented by search engines that maintain
// an index and want to be told when a fresh story set arrives.
type UpdateListener interface {
	OnStoriesUpdated(stories []*hn.Story)
}

// DebugStatser provides lightweight stats for visibility/debugging.
// Implemented by engines that can report index doc counts, etc.
type DebugStatser interface {
	DocCount() (int, error)
}

// NewSearcher returns the default engine. It prefers the in-memory Bleve
// index and falls back to the lightweight scorer if the index cannot be
// built.
func NewSearcher() Searcher {
	if eng, err := NewBleveEngine(); err == nil {
		return eng
	}
	return NewEngine()
}
