package browser

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pders01/hkrnws/internal/config"
)

// Launcher opens story URLs in the user's browser.
type Launcher struct {
	command  string
	registry *OpenerRegistry
}

func NewLauncher(cfg *config.Config) *Launcher {
	registry, err := NewOpenerRegistry()
	if err != nil {
		// Continue with basic functionality if opener definitions can't be loaded
		registry = &OpenerRegistry{openers: make(map[string]OpenerDefinition)}
	}

	command := cfg.Browser.Command
	if command == "" {
		command = findCommand(candidatesForOS(runtime.GOOS)...)
	}
	if command == "" {
		command = defaultOpener()
	}

	return &Launcher{
		command:  command,
		registry: registry,
	}
}

// Command reports the opener the launcher resolved at construction.
func (l *Launcher) Command() string {
	return l.command
}

// Open launches the browser detached. It returns once the process has
// started; the TUI never waits for the browser to exit.
func (l *Launcher) Open(url string) error {
	if l.command == "" {
		return fmt.Errorf("no application found to open URL")
	}

	cmd, err := l.registry.GetCommand(l.command, url)
	if err != nil {
		cmd = exec.Command(l.command, url)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.command, err)
	}

	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

// candidatesForOS lists openers to probe for, most preferred first.
func candidatesForOS(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"open"}
	case "linux":
		return []string{"xdg-open", "sensible-browser", "x-www-browser", "google-chrome", "chromium", "firefox"}
	case "windows":
		return []string{"cmd"}
	default:
		return []string{"xdg-open"}
	}
}

func defaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "cmd"
	default:
		return "xdg-open"
	}
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
