// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sylvim/inkblock/internal/logger"
)

// Config holds the application's combined configuration.
type Config struct {
	Logger logger.Config `toml:"logger"` // Logger settings under [logger]
	Engine EngineConfig  `toml:"engine"` // Editing-engine settings under [engine]
	UI     UIConfig      `toml:"ui"`     // Host UI settings under [ui]
}

// UIConfig holds host UI settings.
type UIConfig struct {
	ThemeFile string `toml:"theme_file"` // Optional TOML theme overlay
}

// EngineConfig holds editing-engine settings.
type EngineConfig struct {
	HistoryDepth    int  `toml:"history_depth"`     // Undo/redo stack capacity
	EditDebounceMS  int  `toml:"edit_debounce_ms"`  // Delay before a character edit snapshots
	SanitizeDepth   int  `toml:"sanitize_depth"`    // Max recursion depth for pasted markup
	SystemClipboard bool `toml:"system_clipboard"`  // Mirror plain text to the OS clipboard
	ScrollMargin    int  `toml:"scroll_margin"`     // Blocks kept visible around the active one
}

// EditDebounce returns the debounce delay as a duration.
func (c EngineConfig) EditDebounce() time.Duration {
	return time.Duration(c.EditDebounceMS) * time.Millisecond
}

var (
	loadedConfig *Config
	loadOnce     sync.Once
	loadErr      error
)

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.Config{
			LogLevel:    "info",
			LogFilePath: "",
		},
		Engine: EngineConfig{
			HistoryDepth:    DefaultHistoryDepth,
			EditDebounceMS:  int(DefaultEditDebounce / time.Millisecond),
			SanitizeDepth:   DefaultSanitizeDepth,
			SystemClipboard: DefaultSystemClipboard,
			ScrollMargin:    DefaultScrollMargin,
		},
	}
}

// loadFromFile attempts to load configuration from a TOML file. A missing
// file is not an error.
func loadFromFile(filePath string) (*Config, error) {
	// Booleans can't distinguish "absent" from "false" after decoding, so
	// they are pre-seeded with their defaults.
	cfg := &Config{Engine: EngineConfig{SystemClipboard: DefaultSystemClipboard}}
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("error checking config file '%s': %w", filePath, err)
	}

	metadata, err := toml.DecodeFile(filePath, cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	if len(metadata.Undecoded()) > 0 {
		logger.Warnf("Config file '%s': Unrecognized keys: %v", filePath, metadata.Undecoded())
	}
	return cfg, nil
}

// validate checks config values and resets invalid ones to defaults.
func (c *Config) validate() {
	defaults := NewDefaultConfig()

	if c.Engine.HistoryDepth <= 0 {
		c.Engine.HistoryDepth = defaults.Engine.HistoryDepth
	}
	if c.Engine.EditDebounceMS <= 0 {
		c.Engine.EditDebounceMS = defaults.Engine.EditDebounceMS
	}
	if c.Engine.SanitizeDepth <= 0 {
		c.Engine.SanitizeDepth = defaults.Engine.SanitizeDepth
	}
	if c.Engine.ScrollMargin < 0 {
		c.Engine.ScrollMargin = defaults.Engine.ScrollMargin
	}
	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}
}

// LoadConfig orchestrates loading defaults, file, applying flags, and
// validation. It should be called only once, typically from main.
func LoadConfig(configFilePath string, flags *Flags) (*Config, error) {
	loadOnce.Do(func() {
		cfg := NewDefaultConfig()

		effectivePath := configFilePath
		if effectivePath == "" {
			configDir, err := os.UserConfigDir()
			if err == nil {
				effectivePath = filepath.Join(configDir, ConfigDirName, DefaultConfigFileName)
			}
		}

		if effectivePath != "" {
			fileCfg, err := loadFromFile(effectivePath)
			if err != nil {
				loadErr = err
			} else if fileCfg != nil {
				if fileCfg.Logger.LogLevel != "" {
					cfg.Logger = fileCfg.Logger
				}
				if fileCfg.Engine.HistoryDepth > 0 {
					cfg.Engine.HistoryDepth = fileCfg.Engine.HistoryDepth
				}
				if fileCfg.Engine.EditDebounceMS > 0 {
					cfg.Engine.EditDebounceMS = fileCfg.Engine.EditDebounceMS
				}
				if fileCfg.Engine.SanitizeDepth > 0 {
					cfg.Engine.SanitizeDepth = fileCfg.Engine.SanitizeDepth
				}
				if fileCfg.Engine.ScrollMargin >= 0 {
					cfg.Engine.ScrollMargin = fileCfg.Engine.ScrollMargin
				}
				cfg.Engine.SystemClipboard = fileCfg.Engine.SystemClipboard
				if fileCfg.UI.ThemeFile != "" {
					cfg.UI.ThemeFile = fileCfg.UI.ThemeFile
				}
			}
		}

		if flags != nil {
			flags.ApplyOverrides(cfg)
		}

		cfg.validate()
		loadedConfig = cfg
	})

	return loadedConfig, loadErr
}

// Get returns the loaded application configuration. Panics if LoadConfig
// wasn't called.
func Get() *Config {
	if loadedConfig == nil {
		panic("config.Get() called before config.LoadConfig()")
	}
	return loadedConfig
}
