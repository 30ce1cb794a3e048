package tui

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/pders01/hkrnws/internal/fetch"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// userMessage converts a fetch failure into the short line shown in the
// error view. Known failure classes get friendlier wording than %v.
func userMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, fetch.ErrNoStories):
		return "No stories available right now"
	case errors.Is(err, context.Canceled):
		return "Fetch was cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "Hacker News took too long to respond"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Hacker News took too long to respond"
	}
	return err.Error()
}
