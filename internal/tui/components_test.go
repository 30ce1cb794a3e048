package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/pders01/hkrnws/internal/hn"
)

func TestWindowStart(t *testing.T) {
	tests := []struct {
		name    string
		top     int
		cursor  int
		visible int
		want    int
	}{
		{"cursor inside window", 0, 3, 10, 0},
		{"cursor below window", 0, 12, 10, 3},
		{"cursor above window", 5, 2, 10, 2},
		{"cursor at window edge", 0, 9, 10, 0},
		{"cursor just past edge", 0, 10, 10, 1},
		{"tiny window", 0, 4, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := windowStart(tt.top, tt.cursor, tt.visible); got != tt.want {
				t.Errorf("windowStart(%d, %d, %d) = %d, want %d", tt.top, tt.cursor, tt.visible, got, tt.want)
			}
		})
	}
}

func TestRenderStoryRow(t *testing.T) {
	story := &hn.Story{
		ID:          42,
		Title:       "A story about Go",
		By:          "gopher",
		Score:       256,
		Descendants: 57,
		Time:        time.Now().Add(-2 * time.Hour).Unix(),
		URL:         "https://go.dev/blog/something",
	}

	row := renderStoryRow(story, 3, false, false, 100, 100, time.Now())
	if !strings.Contains(row, "A story about Go") {
		t.Errorf("expected title in row, got: %s", row)
	}
	if !strings.Contains(row, "256 points") {
		t.Errorf("expected points in row, got: %s", row)
	}
	if !strings.Contains(row, "go.dev") {
		t.Errorf("expected domain in row, got: %s", row)
	}
	if !strings.Contains(row, "57 comments") {
		t.Errorf("expected comment count in row, got: %s", row)
	}
	if lines := strings.Count(row, "\n"); lines != 1 {
		t.Errorf("expected a two-line row, got %d newlines", lines)
	}

	selected := renderStoryRow(story, 3, true, false, 100, 100, time.Now())
	if !strings.Contains(selected, "▸") {
		t.Errorf("expected selection marker, got: %s", selected)
	}
}
