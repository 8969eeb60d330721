// Package clipboard implements the copy/cut/paste boundary. Every copy
// writes two parallel renditions, canonical markup and plain text, so
// pasting into a foreign host degrades gracefully to plain text.
package clipboard

import (
	"github.com/atotto/clipboard"

	"github.com/sylvim/inkblock/internal/block"
	"github.com/sylvim/inkblock/internal/logger"
	"github.com/sylvim/inkblock/internal/markup"
)

// Manager holds the rich register and its plain-text twin. The plain
// twin is mirrored to the OS clipboard when enabled; the rich rendition
// stays in-process, keyed to the twin so external clipboard changes are
// detected.
type Manager struct {
	system bool
	rich   string // Canonical markup (text/html twin)
	plain  string // text/plain twin
}

// NewManager creates a clipboard manager. system controls mirroring to
// the OS clipboard.
func NewManager(system bool) *Manager {
	return &Manager{system: system}
}

// Write serializes blocks into both clipboard formats. Selection content
// always re-serializes through the canonical serializer, so raw internal
// markup is never exposed externally.
func (m *Manager) Write(blocks []*block.Node) {
	m.rich = markup.Export(blocks)
	m.plain = markup.ExportPlain(blocks)
	if m.system {
		if err := clipboard.WriteAll(m.plain); err != nil {
			logger.Warnf("Clipboard: system write failed: %v", err)
		}
	}
	logger.DebugTagf("clipboard", "Wrote %d block(s), %d markup bytes", len(blocks), len(m.rich))
}

// Read returns the best available paste content. rich is true when the
// content is canonical markup from this editor's own register; false
// means plain external text. The rich register is used only while the
// system clipboard still matches its plain twin; once a foreign app
// wrote the clipboard, its text wins.
func (m *Manager) Read() (content string, rich bool) {
	if m.system {
		sys, err := clipboard.ReadAll()
		if err != nil {
			logger.Warnf("Clipboard: system read failed: %v", err)
		} else {
			if sys == m.plain && m.rich != "" {
				return m.rich, true
			}
			if sys != "" {
				return sys, false
			}
		}
	}
	if m.rich != "" {
		return m.rich, true
	}
	return m.plain, false
}

// Empty reports whether nothing has been copied yet.
func (m *Manager) Empty() bool {
	return m.rich == "" && m.plain == ""
}
