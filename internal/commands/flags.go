package commands

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/sift/internal/core/config"
	"github.com/colonyops/sift/internal/core/terminal"
	"github.com/colonyops/sift/pkg/executil"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// NewTerminal replaces the tcell backend. Nil means the real terminal,
	// which also requires a controlling TTY.
	NewTerminal func() terminal.Terminal

	// Exec runs the message editor. Nil means a real executor attached to
	// the controlling TTY.
	Exec executil.Executor
}

// config returns the loaded configuration, or defaults when no Before hook
// ran.
func (f *Flags) config() *config.Config {
	if f.Config != nil {
		return f.Config
	}
	cfg := config.DefaultConfig()
	return &cfg
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "sift", "config.yaml")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/sift/sift.log
// On Linux: $XDG_STATE_HOME/sift/sift.log (defaults to ~/.local/state/sift/sift.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "sift", "sift.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "sift", "sift.log")
	}

	return filepath.Join(home, ".local", "state", "sift", "sift.log")
}
