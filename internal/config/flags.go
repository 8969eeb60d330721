// internal/config/flags.go
package config

import "flag"

// Flags holds command-line overrides for the configuration.
type Flags struct {
	ConfigFile      string
	LogFile         string
	LogLevel        string
	ThemeFile       string
	HistoryDepth    int
	SystemClipboard bool

	clipboardSet bool
}

// RegisterFlags wires the flag definitions onto the default flag set.
// flag.Parse must be called by the caller afterwards.
func RegisterFlags() *Flags {
	f := &Flags{}
	flag.StringVar(&f.ConfigFile, "config", "", "Path to config file (default: user config dir)")
	flag.StringVar(&f.LogFile, "logfile", "", "Path to write log file (default: stderr if set in config)")
	flag.StringVar(&f.LogLevel, "loglevel", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&f.ThemeFile, "theme", "", "Path to a TOML theme file")
	flag.IntVar(&f.HistoryDepth, "history", 0, "Undo/redo stack capacity")
	flag.BoolVar(&f.SystemClipboard, "system-clipboard", DefaultSystemClipboard, "Mirror copied text to the OS clipboard")
	return f
}

// Parse parses the command line and records which flags were set.
func (f *Flags) Parse() {
	flag.Parse()
	flag.Visit(func(fl *flag.Flag) {
		if fl.Name == "system-clipboard" {
			f.clipboardSet = true
		}
	})
}

// ApplyOverrides applies any set flags on top of cfg.
func (f *Flags) ApplyOverrides(cfg *Config) {
	if f.LogFile != "" {
		cfg.Logger.LogFilePath = f.LogFile
	}
	if f.LogLevel != "" {
		cfg.Logger.LogLevel = f.LogLevel
	}
	if f.ThemeFile != "" {
		cfg.UI.ThemeFile = f.ThemeFile
	}
	if f.HistoryDepth > 0 {
		cfg.Engine.HistoryDepth = f.HistoryDepth
	}
	if f.clipboardSet {
		cfg.Engine.SystemClipboard = f.SystemClipboard
	}
}
