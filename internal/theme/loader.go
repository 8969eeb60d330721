// internal/theme/loader.go
package theme

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/gdamore/tcell/v2"

	"github.com/sylvim/inkblock/internal/logger"
)

// fileTheme is the TOML shape of a user theme file.
type fileTheme struct {
	Name   string               `toml:"name"`
	Dark   bool                 `toml:"dark"`
	Styles map[string]fileStyle `toml:"styles"`
}

// fileStyle is one style entry. Colors are hex ("#rrggbb") or tcell color
// names; empty keeps the base theme's value.
type fileStyle struct {
	FG        string `toml:"fg"`
	BG        string `toml:"bg"`
	Bold      bool   `toml:"bold"`
	Italic    bool   `toml:"italic"`
	Underline bool   `toml:"underline"`
	Reverse   bool   `toml:"reverse"`
}

// LoadFromFile reads a TOML theme file and overlays it on the built-in
// theme, so a user file only needs to name the styles it changes.
func LoadFromFile(path string) (*Theme, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("theme file '%s': %w", path, err)
	}

	var ft fileTheme
	metadata, err := toml.DecodeFile(path, &ft)
	if err != nil {
		return nil, fmt.Errorf("failed to parse theme file '%s': %w", path, err)
	}
	if len(metadata.Undecoded()) > 0 {
		logger.Warnf("Theme file '%s': Unrecognized keys: %v", path, metadata.Undecoded())
	}

	t := &Theme{
		Name:   ft.Name,
		IsDark: ft.Dark,
		Styles: make(map[string]tcell.Style, len(InkDark.Styles)),
	}
	if t.Name == "" {
		t.Name = path
	}
	for name, style := range InkDark.Styles {
		t.Styles[name] = style
	}

	for name, fs := range ft.Styles {
		base, ok := t.Styles[name]
		if !ok {
			base = t.GetStyle("Default")
		}
		t.Styles[name] = applyFileStyle(base, fs)
	}

	logger.Infof("Loaded theme '%s' from %s (%d style overrides)", t.Name, path, len(ft.Styles))
	return t, nil
}

func applyFileStyle(base tcell.Style, fs fileStyle) tcell.Style {
	style := base
	if fs.FG != "" {
		style = style.Foreground(parseColor(fs.FG))
	}
	if fs.BG != "" {
		style = style.Background(parseColor(fs.BG))
	}
	style = style.Bold(fs.Bold).Italic(fs.Italic).Underline(fs.Underline).Reverse(fs.Reverse)
	return style
}

func parseColor(s string) tcell.Color {
	c := tcell.GetColor(s)
	if c == tcell.ColorDefault && s != "default" {
		logger.Warnf("Theme: unknown color %q, using default", s)
	}
	return c
}
