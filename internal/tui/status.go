package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// StatusKind indicates severity for status bar messages.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

func statusStyle(kind StatusKind) lipgloss.Style {
	switch kind {
	case StatusSuccess:
		return StatusSuccessStyle
	case StatusWarn:
		return StatusWarnStyle
	case StatusError:
		return StatusErrorStyle
	default:
		return StatusInfoStyle
	}
}

// Canonical short status messages used across the app.
const (
	MsgRefreshing = "Refreshing…"
	MsgOpening    = "Opening in browser…"
	MsgOpened     = "Opened in browser"
	MsgNoResults  = "No results"
)

func MsgResultsCount(n int) string {
	if n == 0 {
		return MsgNoResults
	}
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgFetchSummary(count, total, docCount int) string {
	base := fmt.Sprintf("Loaded %d stories", count)
	if total > count {
		base = fmt.Sprintf("Loaded %d/%d stories", count, total)
	}
	if docCount >= 0 {
		base += fmt.Sprintf(" • idx: %d docs", docCount)
	}
	return base
}

func MsgIndexedCount(n int) string {
	if n == 1 {
		return "1 story indexed"
	}
	return fmt.Sprintf("%d stories indexed", n)
}
