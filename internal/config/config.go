package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/TimelordUK/hexdd/internal/fault"
)

// Config holds all application configuration
type Config struct {
	Display     DisplayConfig    `toml:"display"`
	Theme       ThemeConfig      `toml:"theme"`
	Keybindings KeybindingConfig `toml:"keybindings"`
}

// DisplayConfig holds the startup display options
type DisplayConfig struct {
	Base        string `toml:"base"`         // hex, dec or oct
	RowWidth    int    `toml:"row_width"`    // bytes per row, 0 = auto
	VisibleRows int    `toml:"visible_rows"` // 0 = terminal height
}

// ThemeConfig defines colors for the byte grid and status bar
type ThemeConfig struct {
	Offset        string `toml:"offset"`
	Cursor        string `toml:"cursor"`
	Modified      string `toml:"modified"`
	Editing       string `toml:"editing"`
	StatusBar     string `toml:"status_bar"`
	StatusBarText string `toml:"status_bar_text"`
	Message       string `toml:"message"`
}

// KeybindingConfig allows customizing keybindings
type KeybindingConfig struct {
	Quit         []string `toml:"quit"`
	Left         []string `toml:"left"`
	Right        []string `toml:"right"`
	Up           []string `toml:"up"`
	Down         []string `toml:"down"`
	PageUp       []string `toml:"page_up"`
	PageDown     []string `toml:"page_down"`
	Top          []string `toml:"top"`
	Bottom       []string `toml:"bottom"`
	Goto         []string `toml:"goto"`
	Edit         []string `toml:"edit"`
	Commit       []string `toml:"commit"`
	Cancel       []string `toml:"cancel"`
	CycleBase    []string `toml:"cycle_base"`
	WiderRows    []string `toml:"wider_rows"`
	NarrowerRows []string `toml:"narrower_rows"`
	Undo         []string `toml:"undo"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			Base:     "hex",
			RowWidth: 16,
		},
		Theme: ThemeConfig{
			Offset:        "240", // Dark gray
			Cursor:        "226", // Yellow
			Modified:      "167", // Soft red
			Editing:       "214", // Orange
			StatusBar:     "236",
			StatusBarText: "252",
			Message:       "203",
		},
		Keybindings: KeybindingConfig{
			Quit:         []string{"q", "ctrl+c"},
			Left:         []string{"left", "h"},
			Right:        []string{"right", "l"},
			Up:           []string{"up", "k"},
			Down:         []string{"down", "j"},
			PageUp:       []string{"pgup", "ctrl+u"},
			PageDown:     []string{"pgdown", "ctrl+d", " "},
			Top:          []string{"home", "g"},
			Bottom:       []string{"end", "G"},
			Goto:         []string{":"},
			Edit:         []string{"e", "enter"},
			Commit:       []string{"enter"},
			Cancel:       []string{"esc"},
			CycleBase:    []string{"b"},
			WiderRows:    []string{"+", "="},
			NarrowerRows: []string{"-"},
			Undo:         []string{"u"},
		},
	}
}

// Validate rejects values that can never be displayed
func (c *Config) Validate() error {
	if c.Display.RowWidth < 0 {
		return fmt.Errorf("row_width %d: %w", c.Display.RowWidth, fault.ErrInvalidConfig)
	}
	if c.Display.VisibleRows < 0 {
		return fmt.Errorf("visible_rows %d: %w", c.Display.VisibleRows, fault.ErrInvalidConfig)
	}
	return nil
}

// Load loads config from file, falling back to defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Try to load from config file
	configPath := getConfigPath()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", configPath, err, fault.ErrInvalidConfig)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	return cfg, nil
}

// Save saves config to file
func Save(cfg *Config) error {
	configPath := getConfigPath()
	if configPath == "" {
		return nil
	}

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// getConfigPath returns the config file path
func getConfigPath() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hexdd", "config.toml")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "hexdd", "config.toml")
}

// GetConfigPath exports the config path for user reference
func GetConfigPath() string {
	return getConfigPath()
}
