// Package config handles configuration loading and validation for sift.
package config

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Theme          string            `yaml:"theme"`
	Editor         string            `yaml:"editor"`          // command for the commit message; falls back to $VISUAL, $EDITOR, vi
	Mouse          bool              `yaml:"mouse"`           // capture clicks and the wheel
	StartCollapsed bool              `yaml:"start_collapsed"` // fold every file when a session opens
	Layout         LayoutConfig      `yaml:"layout"`
	Keybindings    map[string]string `yaml:"keybindings"` // key name to action name; "none" unbinds
}

// LayoutConfig controls column geometry and text handling.
type LayoutConfig struct {
	MaxContentWidth int  `yaml:"max_content_width"`
	MinColumnWidth  int  `yaml:"min_column_width"`
	ContextLines    int  `yaml:"context_lines"`
	AmbiguousWide   bool `yaml:"ambiguous_wide"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Theme: "tokyo-night",
		Mouse: true,
		Layout: LayoutConfig{
			MaxContentWidth: 120,
			MinColumnWidth:  20,
			ContextLines:    3,
		},
		Keybindings: map[string]string{},
	}
}

// Load reads configuration from the given path. If configPath is empty or
// doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.Keybindings = mergeKeybindings(DefaultConfig().Keybindings, cfg.Keybindings)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for options a config file blanked out.
// context_lines may legitimately be 0 and is left alone.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
	if c.Layout.MaxContentWidth == 0 {
		c.Layout.MaxContentWidth = defaults.Layout.MaxContentWidth
	}
	if c.Layout.MinColumnWidth == 0 {
		c.Layout.MinColumnWidth = defaults.Layout.MinColumnWidth
	}
}

// mergeKeybindings merges user keybindings into defaults.
// User keybindings override defaults for the same key.
func mergeKeybindings(defaults, user map[string]string) map[string]string {
	result := make(map[string]string, len(defaults)+len(user))
	maps.Copy(result, defaults)
	maps.Copy(result, user)
	return result
}

// EditorCommand resolves the commit message editor: the config value, then
// $VISUAL, then $EDITOR, then vi.
func (c *Config) EditorCommand() string {
	for _, v := range []string{c.Editor, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if v != "" {
			return v
		}
	}
	return "vi"
}
