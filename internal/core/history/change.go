// Package history provides undo/redo over full-document snapshots with
// exact cursor and selection restoration.
package history

import "github.com/sylvim/inkblock/internal/types"

// DefaultMaxDepth bounds each of the undo and redo stacks.
const DefaultMaxDepth = 50

// Entry is one recorded state: a serialized document plus the interaction
// state captured alongside it.
type Entry struct {
	Snapshot  string                // Full serialized document
	Cursor    *types.CursorPosition // Caret at capture time, nil if none
	Selection []types.BlockID       // Multi-block selection, in document order
}
