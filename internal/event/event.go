// internal/event/event.go
package event

import "github.com/sylvim/inkblock/internal/types"

// Type identifies the kind of event.
type Type int

// Define specific event types.
const (
	TypeUnknown Type = iota

	// Document events
	TypeBlockInserted    // Fired after a block is added to the document
	TypeBlockRemoved     // Fired after a block is removed
	TypeBlockMoved       // Fired after a block (or group) changes position
	TypeBlockUpdated     // Fired after a block's payload changes
	TypeBlockTransformed // Fired after a block changes type
	TypeDocumentReplaced // Fired after a wholesale swap (undo/redo/load)

	// Interaction events
	TypeCursorMoved      // Fired when the caret position changes
	TypeSelectionChanged // Fired when the multi-block selection set changes

	// Application lifecycle events
	TypeAppReady
	TypeAppQuit
)

// Event is the structure passed through the event bus.
type Event struct {
	Type Type
	Data interface{}
}

// BlockData identifies the block an event concerns.
type BlockData struct {
	ID types.BlockID
}

// BlockMovedData describes a reorder, including atomic group moves.
type BlockMovedData struct {
	IDs []types.BlockID // In document order
}

// BlockTransformedData carries the old and new type tags.
type BlockTransformedData struct {
	ID       types.BlockID
	OldType  string
	NewType  string
}

// DocumentReplacedData marks a full-state swap.
type DocumentReplacedData struct{}

// CursorMovedData contains the new caret position.
type CursorMovedData struct {
	Position types.CursorPosition
}

// SelectionChangedData carries the selected ids in document order.
type SelectionChangedData struct {
	IDs []types.BlockID
}

// AppQuitData could contain exit code or reason later.
type AppQuitData struct{}

// AppReadyData could contain initial config or state later.
type AppReadyData struct{}
