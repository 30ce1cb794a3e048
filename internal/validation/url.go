package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// StoryURLValidator checks story links before they are handed to the
// system browser.
type StoryURLValidator struct {
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

// NewStoryURLValidator creates a new validator with secure defaults
func NewStoryURLValidator() *StoryURLValidator {
	return &StoryURLValidator{
		MaxLength: 2048, // Reasonable URL length limit
	}
}

// ValidateAndNormalize validates a story URL and returns the normalized
// version. Only http and https links may reach the browser; every other
// scheme (javascript:, file:, data:, ...) is rejected.
func (v *StoryURLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}

	// Basic character sanitization. The URL ends up as an argument to the
	// opener command, which on Windows goes through a shell.
	if strings.ContainsAny(input, "<>\"'`") {
		return "", fmt.Errorf("URL contains invalid characters")
	}
	for _, r := range input {
		if r < 32 || r == 127 {
			return "", fmt.Errorf("URL contains control characters")
		}
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	// Add protocol only when none was given (default to HTTPS). Checking
	// the parsed scheme first keeps javascript:foo from being smuggled
	// through as a hostname.
	if parsedURL.Scheme == "" {
		parsedURL, err = url.Parse("https://" + input)
		if err != nil {
			return "", fmt.Errorf("invalid URL format: %w", err)
		}
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", fmt.Errorf("URL must use http or https protocol")
	}

	if parsedURL.Host == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}

	if parsedURL.User != nil {
		return "", fmt.Errorf("URLs with embedded credentials are not permitted")
	}

	return parsedURL.String(), nil
}
