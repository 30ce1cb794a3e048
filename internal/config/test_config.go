package config

import "time"

// TestConfig returns a config suitable for testing; callers that need a
// real database should point Database.Path at a temp directory.
func TestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:    "",
			Timeout: 1 * time.Second,
		},
		Fetch: FetchConfig{
			StoryLimit:  5,
			FanOut:      2,
			HTTPTimeout: 5 * time.Second,
		},
		UI:      defaultConfig().UI,
		Browser: defaultConfig().Browser,
		Keys:    defaultConfig().Keys,
		Logging: LoggingConfig{Level: "off"},
	}
}
