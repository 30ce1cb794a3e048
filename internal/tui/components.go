package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/hkrnws/internal/hn"
)

// renderHeader returns a consistently styled header with an optional
// muted subtitle.
func renderHeader(title, subtitle string, width int) string {
	title = truncateEnd(title, width-2)
	subtitle = truncateEnd(subtitle, width-2)
	rows := []string{HeaderStyle.Render(title)}
	if subtitle != "" {
		rows = append(rows, renderMuted(subtitle))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// renderCentered centers the provided content within the given box.
func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// renderMuted renders text in muted color (utility wrapper).
func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

// renderHelp renders help/instructional text consistently.
func renderHelp(text string) string {
	return HelpStyle.Render(text)
}

// clipLine hard-truncates a rendered line so it never wraps. Row height
// math in the list views depends on one line staying one line.
func clipLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

// renderStoryRow renders one story as a two-line entry: rank and title,
// then a muted meta line with domain, points, author and age.
func renderStoryRow(s *hn.Story, rank int, selected, opened bool, width, maxTitle int, now time.Time) string {
	avail := width - 6
	if maxTitle > 0 && maxTitle < avail {
		avail = maxTitle
	}
	title := truncateEnd(s.Title, avail)

	titleStyle := StoryTitleStyle
	switch {
	case selected:
		titleStyle = SelectedItemStyle
	case opened:
		titleStyle = ReadItemStyle
	}

	prefix := fmt.Sprintf("%3d. ", rank)
	if selected {
		prefix = "  ▸  "
	}

	meta := fmt.Sprintf("%d points by %s • %s", s.Score, s.By, s.Age(now))
	if s.Descendants > 0 {
		meta += fmt.Sprintf(" • %d comments", s.Descendants)
	}
	if d := s.Domain(); d != "" {
		meta = d + " • " + meta
	}

	line1 := clipLine(RankStyle.Render(prefix)+titleStyle.Render(title), width)
	line2 := clipLine("     "+TimeStyle.Render(truncateEnd(meta, width-6)), width)
	return line1 + "\n" + line2
}

// windowStart slides a list window so the cursor stays visible.
func windowStart(top, cursor, visible int) int {
	if visible < 1 {
		visible = 1
	}
	if cursor < top {
		top = cursor
	}
	if cursor >= top+visible {
		top = cursor - visible + 1
	}
	if top < 0 {
		top = 0
	}
	return top
}
