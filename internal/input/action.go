// internal/input/action.go
package input

// Action represents a command or operation to be performed by the editor.
type Action int

// The set of possible editor actions.
const (
	// --- Meta actions ---
	ActionUnknown Action = iota
	ActionQuit
	ActionSave

	// --- Caret movement ---
	ActionMoveUp
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionMoveHome // Beginning of block text
	ActionMoveEnd  // End of block text
	ActionPageUp
	ActionPageDown

	// --- Text manipulation ---
	ActionInsertRune // Requires Rune argument
	ActionSplitBlock // Enter: new paragraph after the current block
	ActionDeleteCharForward
	ActionDeleteCharBackward

	// --- Block structure ---
	ActionMoveBlockUp   // Alt+Up
	ActionMoveBlockDown // Alt+Down
	ActionDeleteBlock   // Ctrl+D
	ActionCycleType     // Ctrl+T: cycle the block's type

	// --- Selection ---
	ActionToggleSelect // Ctrl+B: toggle current block in the selection
	ActionEscape       // Clear selection / cancel drag

	// --- History ---
	ActionUndo
	ActionRedo

	// --- Clipboard ---
	ActionCopy
	ActionCut
	ActionPaste
)

// ActionEvent represents a decoded input event resulting in an action.
type ActionEvent struct {
	Action Action
	Rune   rune // Used for ActionInsertRune
}
