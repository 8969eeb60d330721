// internal/theme/theme.go
package theme

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/sylvim/inkblock/internal/logger"
)

// Theme maps style names to tcell styles.
type Theme struct {
	Name   string
	IsDark bool
	Styles map[string]tcell.Style
}

// GetStyle resolves a style name, falling back to the base name before the
// first dot, then to "Default".
func (t *Theme) GetStyle(name string) tcell.Style {
	if style, ok := t.Styles[name]; ok {
		return style
	}

	if dotIndex := strings.Index(name, "."); dotIndex != -1 {
		baseName := name[:dotIndex]
		if style, ok := t.Styles[baseName]; ok {
			logger.Debugf("Theme '%s': Style '%s' not found, using base '%s'", t.Name, name, baseName)
			return style
		}
	}

	if defStyle, ok := t.Styles["Default"]; ok {
		if name != "Default" {
			logger.Debugf("Theme '%s': Style '%s' not found, falling back to 'Default'", t.Name, name)
		}
		return defStyle
	}

	logger.Warnf("Theme '%s': Style '%s' and 'Default' style not found, using tcell default.", t.Name, name)
	return tcell.StyleDefault
}

// --- Ink Dark Theme Definition ---

var InkDark Theme

func init() {
	// --- Palette for Ink Dark ---
	ikBackground := tcell.NewHexColor(0x2a2f38) // Muted dark blue/grey (status bar BG)
	ikForeground := tcell.NewHexColor(0xc5cdd9) // Soft off-white (body text)
	ikDim := tcell.NewHexColor(0x5c6370)        // Muted grey (markers, decoration)
	ikYellow := tcell.NewHexColor(0xe5c07b)     // Soft yellow (headings)
	ikGreen := tcell.NewHexColor(0x98c379)      // Soft green (code)
	ikCyan := tcell.NewHexColor(0x56b6c2)       // Soft cyan (links, embeds)
	ikBlue := tcell.NewHexColor(0x61afef)       // Soft blue (drag placeholder)
	ikMagenta := tcell.NewHexColor(0xc678dd)    // Soft magenta (captions)

	baseStyle := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(ikForeground)

	InkDark = Theme{
		Name:   "Ink Dark",
		IsDark: true,
		Styles: map[string]tcell.Style{
			// --- UI elements ---
			"Default":     baseStyle,
			"Selection":   baseStyle.Reverse(true),
			"Placeholder": baseStyle.Foreground(ikBlue).Bold(true),
			"DragSource":  baseStyle.Foreground(ikDim),

			"StatusBar":        tcell.StyleDefault.Background(ikBackground).Foreground(ikForeground),
			"StatusBarMessage": tcell.StyleDefault.Background(ikBackground).Foreground(ikForeground).Bold(true),

			// --- Block content ---
			"Heading":    baseStyle.Foreground(ikYellow).Bold(true),
			"Quote":      baseStyle.Foreground(ikDim).Italic(true),
			"Code":       baseStyle.Foreground(ikGreen),
			"CodeHeader": baseStyle.Foreground(ikDim),
			"Marker":     baseStyle.Foreground(ikDim),
			"Checked":    baseStyle.Foreground(ikGreen),
			"Divider":    baseStyle.Foreground(ikDim),
			"Caption":    baseStyle.Foreground(ikMagenta).Italic(true),
			"Link":       baseStyle.Foreground(ikCyan).Underline(true),
			"Meta":       baseStyle.Foreground(ikDim).Italic(true),
		},
	}

	CurrentTheme = &InkDark
}

var CurrentTheme *Theme

func GetCurrentTheme() *Theme {
	if CurrentTheme == nil {
		CurrentTheme = &InkDark
	}
	return CurrentTheme
}

func SetCurrentTheme(theme *Theme) {
	if theme != nil {
		CurrentTheme = theme
		logger.Infof("Theme switched to: %s", theme.Name)
	}
}
