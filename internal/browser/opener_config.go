package browser

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

//go:embed openers.toml
var openersTOML []byte

// OpenerDefinition defines how a browser opener should be invoked
type OpenerDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	Args        []string `toml:"args,omitempty"`
	ArgsDarwin  []string `toml:"args_darwin,omitempty"`
	ArgsLinux   []string `toml:"args_linux,omitempty"`
	ArgsWindows []string `toml:"args_windows,omitempty"`
}

// OpenersConfig holds all opener definitions
type OpenersConfig struct {
	Openers map[string]OpenerDefinition `toml:"openers"`
}

// OpenerRegistry manages opener definitions
type OpenerRegistry struct {
	openers map[string]OpenerDefinition
}

// NewOpenerRegistry creates a registry from the embedded TOML
func NewOpenerRegistry() (*OpenerRegistry, error) {
	var config OpenersConfig
	if err := toml.Unmarshal(openersTOML, &config); err != nil {
		return nil, fmt.Errorf("parsing openers.toml: %w", err)
	}

	registry := &OpenerRegistry{
		openers: config.Openers,
	}

	// Try to load user's custom opener definitions
	registry.loadUserConfig()

	return registry, nil
}

// loadUserConfig loads custom opener definitions from user's config directory
func (r *OpenerRegistry) loadUserConfig() {
	// Try common config locations
	configPaths := []string{
		"~/.config/hkrnws/openers.toml",
		"./openers.toml",
	}

	for _, path := range configPaths {
		if len(path) >= 2 && path[:2] == "~/" {
			if home, err := os.UserHomeDir(); err == nil {
				path = filepath.Join(home, path[2:])
			}
		}

		if data, err := os.ReadFile(path); err == nil {
			var userConfig OpenersConfig
			if err := toml.Unmarshal(data, &userConfig); err == nil {
				// Merge user config (overrides built-in)
				for name, def := range userConfig.Openers {
					r.openers[name] = def
				}
			}
		}
	}
}

// GetCommand builds the command for a specific opener
func (r *OpenerRegistry) GetCommand(name, url string) (*exec.Cmd, error) {
	opener, exists := r.openers[name]
	if !exists {
		// If the opener is not defined, use it with no special args
		return exec.Command(name, url), nil
	}

	// Check if the opener supports this platform
	supportsPlatform := false
	for _, p := range opener.Platforms {
		if p == runtime.GOOS {
			supportsPlatform = true
			break
		}
	}

	if !supportsPlatform {
		return nil, fmt.Errorf("%s not supported on %s", name, runtime.GOOS)
	}

	// Build the command with appropriate args
	args := r.getArgs(&opener)
	args = append(args, url)

	return exec.Command(name, args...), nil
}

// getArgs returns the appropriate args for the current platform
func (r *OpenerRegistry) getArgs(opener *OpenerDefinition) []string {
	if opener == nil {
		return nil
	}

	// Check for platform-specific args first
	switch runtime.GOOS {
	case "darwin":
		if len(opener.ArgsDarwin) > 0 {
			return opener.ArgsDarwin
		}
	case "linux":
		if len(opener.ArgsLinux) > 0 {
			return opener.ArgsLinux
		}
	case "windows":
		if len(opener.ArgsWindows) > 0 {
			return opener.ArgsWindows
		}
	}

	// Fall back to generic args
	return opener.Args
}
