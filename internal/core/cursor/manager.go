// Package cursor addresses carets independently of the host's native
// caret primitive, so positions survive being captured into a history
// entry and restored after the underlying blocks were wholesale-replaced.
package cursor

import (
	"github.com/sylvim/inkblock/internal/block"
	"github.com/sylvim/inkblock/internal/logger"
	"github.com/sylvim/inkblock/internal/types"
	"github.com/sylvim/inkblock/internal/utils"
)

// Surface is the narrow cursor-provider contract the host rendering
// surface implements. The engine makes no assumption about the rendering
// technology beyond it.
type Surface interface {
	// Caret reports the block containing the native caret, the grapheme
	// offset within that block's primary editable region, and whether
	// the native selection is collapsed. ok is false when the caret sits
	// outside the document.
	Caret() (id types.BlockID, offset int, collapsed bool, ok bool)
	// SetCaret places the caret. Returns false if the block cannot take
	// focus.
	SetCaret(id types.BlockID, offset int) bool
	// FocusFirst focuses the first available editable region.
	FocusFirst()
}

// DocumentInterface is what the cursor manager needs from the document.
type DocumentInterface interface {
	ByID(id types.BlockID) (*block.Node, bool)
	First() *block.Node
}

// Manager captures and restores caret positions.
type Manager struct {
	surface Surface
	doc     DocumentInterface
}

// NewManager creates a cursor manager.
func NewManager(surface Surface, doc DocumentInterface) *Manager {
	return &Manager{surface: surface, doc: doc}
}

// Capture reads the current caret as a block-relative position. Returns
// nil when no enclosing block exists (caret outside the document).
func (m *Manager) Capture() *types.CursorPosition {
	id, offset, collapsed, ok := m.surface.Caret()
	if !ok {
		return nil
	}
	n, exists := m.doc.ByID(id)
	if !exists {
		logger.DebugTagf("cursor", "Caret block %s not in document", id)
		return nil
	}
	return &types.CursorPosition{
		Block:     id,
		Offset:    utils.ClampOffset(n.PlainText(), offset),
		Collapsed: collapsed,
	}
}

// Restore places the caret at a previously captured position. A missing
// target block (deleted by an intervening swap) falls back to focusing
// the first available editable region; a stale offset clamps to the
// content length.
func (m *Manager) Restore(pos *types.CursorPosition) {
	if pos == nil {
		m.surface.FocusFirst()
		return
	}
	n, ok := m.doc.ByID(pos.Block)
	if !ok {
		logger.DebugTagf("cursor", "Restore target %s missing, focusing first block", pos.Block)
		m.surface.FocusFirst()
		return
	}
	offset := utils.ClampOffset(n.PlainText(), pos.Offset)
	if !m.surface.SetCaret(pos.Block, offset) {
		m.surface.FocusFirst()
	}
}
