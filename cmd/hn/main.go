package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/hkrnws/internal/config"
	"github.com/pders01/hkrnws/internal/debuglog"
	"github.com/pders01/hkrnws/internal/fetch"
	"github.com/pders01/hkrnws/internal/hn"
	"github.com/pders01/hkrnws/internal/storage"
	"github.com/pders01/hkrnws/internal/tui"
	"github.com/pders01/hkrnws/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	flagConfig   string
	flagDB       string
	flagLogLevel string
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:           "hn",
	Short:         "Browse Hacker News top stories in the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", tui.AppName, Version)
		fmt.Println(tui.Tagline)
		fmt.Println("github.com/pders01/hkrnws")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a default config file",
	Run: func(cmd *cobra.Command, args []string) {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to locate home directory: %v\n", err)
			os.Exit(1)
		}
		configFile := filepath.Join(home, ".config", "hkrnws", "config.toml")

		if err := config.GenerateDefaultConfig(configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated default configuration at: %s\n", configFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to configuration file")
	rootCmd.Flags().StringVar(&flagDB, "db", "", "path to database file (overrides config)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error, off (overrides config)")
	rootCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "skip startup banner")

	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(versionCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if !flagQuiet {
		tui.ShowBanner(Version)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Flags win over config file values
	if flagDB != "" {
		cfg.Database.Path = flagDB
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}

	if err := setupLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer debuglog.Close()

	dbPath, err := resolveDBPath(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("resolving database path: %w", err)
	}
	if _, err := validation.NewPermissivePathHandler().EnsureSecureDirectory(filepath.Dir(dbPath)); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	store, err := storage.NewStore(dbPath, cfg.Database.Timeout)
	if err != nil {
		return fmt.Errorf("opening database %s: %w", dbPath, err)
	}
	defer store.Close()

	if pruned, err := store.Prune(time.Now().Add(-storage.DefaultRetention)); err != nil {
		debuglog.Warnf("history prune failed: %v", err)
	} else if pruned > 0 {
		debuglog.Debugf("pruned %d stale history records", pruned)
	}

	client := hn.NewClient()
	client.SetTimeout(cfg.Fetch.HTTPTimeout)
	fetcher := fetch.NewWithLimits(client, cfg.Fetch.StoryLimit, cfg.Fetch.FanOut)

	debuglog.Infof("starting %s %s (stories=%d fan_out=%d db=%s)",
		tui.AppName, Version, cfg.Fetch.StoryLimit, cfg.Fetch.FanOut, dbPath)

	app := tui.NewApp(cfg, store, fetcher)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}

// setupLogging wires the configured level and log file. A failure here
// never stops startup; the caller downgrades it to a warning.
func setupLogging(cfg *config.Config) error {
	level := debuglog.ParseLogLevel(cfg.Logging.Level)
	if level == debuglog.LevelOff {
		return debuglog.Setup(level)
	}

	logPath := cfg.Logging.Path
	if logPath != "" {
		resolved, err := resolveLogPath(logPath)
		if err != nil {
			return err
		}
		logPath = resolved
	}
	return debuglog.Setup(level, logPath)
}

// resolveDBPath validates the configured database location. The default
// application directories pass the strict validator; anywhere else falls
// through to the permissive one, which still rejects traversal sequences
// and control characters.
func resolveDBPath(path string) (string, error) {
	if resolved, err := validation.NewSecurePathHandler().GetSecureDBPath(path); err == nil {
		return resolved, nil
	}
	return validation.NewPermissivePathHandler().GetSecureDBPath(path)
}

func resolveLogPath(path string) (string, error) {
	if resolved, err := validation.NewSecurePathHandler().GetSecureLogPath(path); err == nil {
		return resolved, nil
	}
	return validation.NewPermissivePathHandler().GetSecureLogPath(path)
}
