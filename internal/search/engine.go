package search

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/pders01/hkrnws/internal/hn"
)

// Result represents a search match with relevance scoring
type Result struct {
	Story   *hn.Story
	Score   float64
	Matches []Match
}

// Match represents where text was found
type Match struct {
	Field  string // "title", "by", "domain", "url"
	Text   string // matched text snippet
	Weight float64
}

// Engine provides intelligent search over the current story set without
// heavy indexing
type Engine struct {
	mu      sync.RWMutex
	stories []*hn.Story
}

// NewEngine creates a new search engine
func NewEngine() *Engine {
	return &Engine{}
}

// OnStoriesUpdated replaces the searchable story set.
func (e *Engine) OnStoriesUpdated(stories []*hn.Story) {
	e.mu.Lock()
	e.stories = append([]*hn.Story(nil), stories...)
	e.mu.Unlock()
}

// Search performs intelligent search across the current stories
func (e *Engine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	e.mu.RLock()
	stories := e.stories
	e.mu.RUnlock()

	var results []*Result
	for _, story := range stories {
		if result := e.searchStory(story, terms); result != nil {
			results = append(results, result)
		}
	}

	// Sort by relevance score (highest first)
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	// Limit results
	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// searchStory searches within a story's metadata
func (e *Engine) searchStory(story *hn.Story, terms []string) *Result {
	var matches []Match
	var totalScore float64

	// Search title (highest weight)
	if titleScore := e.scoreField(story.Title, terms, 4.0); titleScore > 0 {
		matches = append(matches, Match{
			Field:  "title",
			Text:   story.Title,
			Weight: titleScore,
		})
		totalScore += titleScore
	}

	// Search author (medium weight)
	if byScore := e.scoreField(story.By, terms, 2.0); byScore > 0 {
		matches = append(matches, Match{
			Field:  "by",
			Text:   story.By,
			Weight: byScore,
		})
		totalScore += byScore
	}

	// Search domain (low weight)
	if domainScore := e.scoreField(story.Domain(), terms, 1.0); domainScore > 0 {
		matches = append(matches, Match{
			Field:  "domain",
			Text:   story.Domain(),
			Weight: domainScore,
		})
		totalScore += domainScore
	}

	// Search URL (lowest weight)
	if urlScore := e.scoreField(story.URL, terms, 0.5); urlScore > 0 {
		matches = append(matches, Match{
			Field:  "url",
			Text:   truncate(story.URL, 100),
			Weight: urlScore,
		})
		totalScore += urlScore
	}

	if totalScore > 0 {
		// Boost well-scored stories slightly so ties resolve toward
		// what the front page ranks up
		totalScore *= 1.0 + popularityBoost(story.Score)
		return &Result{
			Story:   story,
			Score:   totalScore,
			Matches: matches,
		}
	}

	return nil
}

// scoreField calculates relevance score for a field
func (e *Engine) scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		termLower := strings.ToLower(term)

		// Exact phrase match (highest score)
		if strings.Contains(lower, termLower) {
			score += 2.0
			matchedTerms++
		}

		// Word boundary matches (medium score)
		for _, word := range words {
			wordLower := strings.ToLower(word)
			if wordLower == termLower {
				score += 1.5
				matchedTerms++
			} else if strings.HasPrefix(wordLower, termLower) || strings.HasSuffix(wordLower, termLower) {
				score += 1.0
				matchedTerms++
			} else if strings.Contains(wordLower, termLower) {
				score += 0.5
				matchedTerms++
			}
		}
	}

	// Boost score if multiple terms match
	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	// Apply TF-IDF-like scoring
	if len(words) > 0 {
		tf := float64(matchedTerms) / float64(len(words))
		score *= 1.0 + math.Log(1.0+tf)
	}

	return score * weight
}

// tokenize breaks text into searchable terms
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			if term := current.String(); len(term) > 1 { // Skip single chars
				terms = append(terms, term)
			}
			current.Reset()
		}
	}

	if current.Len() > 1 {
		terms = append(terms, current.String())
	}

	return terms
}

// truncate limits text length with ellipsis
func truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen-1] + "…"
}

// popularityBoost gives slight preference to stories with more points.
// Capped so text relevance still dominates the ordering.
func popularityBoost(points int) float64 {
	if points <= 0 {
		return 0
	}
	boost := math.Log10(float64(points)) / 20.0
	if boost > 0.15 {
		boost = 0.15
	}
	return boost
}
