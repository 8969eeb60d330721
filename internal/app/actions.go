// internal/app/actions.go
package app

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/sylvim/inkblock/internal/block"
	"github.com/sylvim/inkblock/internal/input"
	"github.com/sylvim/inkblock/internal/logger"
	"github.com/sylvim/inkblock/internal/types"
	"github.com/sylvim/inkblock/internal/utils"
)

// typeCycle is the Ctrl+T rotation through the text-bearing block types.
var typeCycle = []string{
	block.TypeParagraph,
	block.TypeHeading,
	block.TypeQuote,
	block.TypeCode,
	block.TypeList,
	block.TypeChecklist,
}

var quitOnce sync.Once

// handleKeyEvent decodes a key event and performs the resulting action.
// Returns whether a redraw is needed.
func (a *App) handleKeyEvent(ev *tcell.EventKey) bool {
	action := a.inputProcessor.ProcessEvent(ev)

	switch action.Action {
	case input.ActionQuit:
		quitOnce.Do(func() { close(a.quit) })
		return false
	case input.ActionSave:
		a.editor.History().Flush()
		a.saveDocument()
		return true

	case input.ActionEscape:
		if a.editor.Drag().Active() {
			a.editor.Drag().Cancel()
			a.mouse = mouseState{}
			return true
		}
		a.editor.Selection().Clear()
		return true

	case input.ActionUndo:
		if !a.editor.Undo() {
			a.statusBar.SetTemporaryMessage("Nothing to undo")
		}
		return true
	case input.ActionRedo:
		if !a.editor.Redo() {
			a.statusBar.SetTemporaryMessage("Nothing to redo")
		}
		return true

	case input.ActionCopy:
		if a.editor.Copy() {
			a.statusBar.SetTemporaryMessage("Copied")
		}
		return true
	case input.ActionCut:
		if a.editor.Cut() {
			a.statusBar.SetTemporaryMessage("Cut")
		}
		return true
	case input.ActionPaste:
		if !a.editor.Paste() {
			a.statusBar.SetTemporaryMessage("Clipboard is empty")
		}
		return true

	case input.ActionToggleSelect:
		if id, _, _, ok := a.view.Caret(); ok {
			a.editor.Selection().Toggle(id)
		}
		return true
	case input.ActionDeleteBlock:
		a.deleteAtCaret()
		return true
	case input.ActionCycleType:
		a.cycleBlockType()
		return true
	case input.ActionMoveBlockUp:
		return a.moveCaretBlock(types.DirUp)
	case input.ActionMoveBlockDown:
		return a.moveCaretBlock(types.DirDown)

	case input.ActionMoveUp:
		return a.moveCaretVertically(-1)
	case input.ActionMoveDown:
		return a.moveCaretVertically(1)
	case input.ActionMoveLeft:
		return a.moveCaretHorizontally(-1)
	case input.ActionMoveRight:
		return a.moveCaretHorizontally(1)
	case input.ActionMoveHome:
		return a.moveCaretToEdge(false)
	case input.ActionMoveEnd:
		return a.moveCaretToEdge(true)
	case input.ActionPageUp:
		_, height := a.view.ViewportBounds()
		a.view.ScrollBy(-height)
		return true
	case input.ActionPageDown:
		_, height := a.view.ViewportBounds()
		a.view.ScrollBy(height)
		return true

	case input.ActionInsertRune:
		return a.insertRune(action.Rune)
	case input.ActionSplitBlock:
		return a.splitAtCaret()
	case input.ActionDeleteCharBackward:
		return a.deleteBackward()
	case input.ActionDeleteCharForward:
		return a.deleteForward()
	}

	return false
}

// --- text editing ---

func (a *App) insertRune(r rune) bool {
	id, offset, _, ok := a.view.Caret()
	if !ok {
		return false
	}
	n, exists := a.editor.Document().ByID(id)
	if !exists {
		return false
	}

	before, after := utils.GraphemeSplit(n.PlainText(), offset)
	if !a.editor.SetBlockText(id, before+string(r)+after) {
		return false
	}
	a.view.SetCaret(id, utils.GraphemeCount(before+string(r)))
	return true
}

func (a *App) deleteBackward() bool {
	id, offset, _, ok := a.view.Caret()
	if !ok {
		return false
	}
	n, exists := a.editor.Document().ByID(id)
	if !exists {
		return false
	}

	if offset == 0 {
		// Backspace at block start merges into the predecessor.
		return a.editor.MergeWithPrevious(id)
	}

	text := n.PlainText()
	before, _ := utils.GraphemeSplit(text, offset-1)
	_, after := utils.GraphemeSplit(text, offset)
	if !a.editor.SetBlockText(id, before+after) {
		return false
	}
	a.view.SetCaret(id, offset-1)
	return true
}

func (a *App) deleteForward() bool {
	id, offset, _, ok := a.view.Caret()
	if !ok {
		return false
	}
	doc := a.editor.Document()
	n, exists := doc.ByID(id)
	if !exists {
		return false
	}

	text := n.PlainText()
	if offset >= utils.GraphemeCount(text) {
		// Delete at block end merges the successor into this block.
		if next, ok := doc.At(doc.IndexOf(id) + 1); ok {
			return a.editor.MergeWithPrevious(next.ID)
		}
		return false
	}

	before, _ := utils.GraphemeSplit(text, offset)
	_, after := utils.GraphemeSplit(text, offset+1)
	if !a.editor.SetBlockText(id, before+after) {
		return false
	}
	a.view.SetCaret(id, offset)
	return true
}

func (a *App) splitAtCaret() bool {
	id, offset, _, ok := a.view.Caret()
	if !ok {
		return false
	}
	if _, err := a.editor.SplitBlock(id, offset); err != nil {
		logger.Warnf("App: split failed: %v", err)
		return false
	}
	return true
}

// --- block structure ---

func (a *App) deleteAtCaret() {
	if a.editor.Selection().Count() > 0 {
		a.editor.DeleteSelection()
		a.view.FocusFirst()
		return
	}

	id, _, _, ok := a.view.Caret()
	if !ok {
		return
	}
	doc := a.editor.Document()
	idx := doc.IndexOf(id)
	if !a.editor.DeleteBlock(id) {
		return
	}
	if idx >= doc.Len() {
		idx = doc.Len() - 1
	}
	if n, ok := doc.At(idx); ok {
		a.view.SetCaret(n.ID, 0)
	}
}

func (a *App) cycleBlockType() {
	id, _, _, ok := a.view.Caret()
	if !ok {
		return
	}
	n, exists := a.editor.Document().ByID(id)
	if !exists {
		return
	}

	next := typeCycle[0]
	for i, t := range typeCycle {
		if t == n.Type {
			next = typeCycle[(i+1)%len(typeCycle)]
			break
		}
	}
	if err := a.editor.TransformBlock(id, next, nil); err != nil {
		logger.Warnf("App: transform failed: %v", err)
		return
	}
	a.statusBar.SetTemporaryMessage("Block is now %s", next)
}

func (a *App) moveCaretBlock(dir types.Direction) bool {
	id, _, _, ok := a.view.Caret()
	if !ok {
		return false
	}
	return a.editor.MoveBlock(id, dir)
}

// --- caret movement ---

func (a *App) moveCaretVertically(delta int) bool {
	id, offset, _, ok := a.view.Caret()
	if !ok {
		a.view.FocusFirst()
		return true
	}
	doc := a.editor.Document()
	n, exists := doc.At(doc.IndexOf(id) + delta)
	if !exists {
		return false
	}
	a.view.SetCaret(n.ID, offset)
	return true
}

func (a *App) moveCaretHorizontally(delta int) bool {
	id, offset, _, ok := a.view.Caret()
	if !ok {
		a.view.FocusFirst()
		return true
	}
	doc := a.editor.Document()
	n, exists := doc.ByID(id)
	if !exists {
		return false
	}

	next := offset + delta
	if next < 0 {
		// Cross into the previous block's end.
		prev, ok := doc.At(doc.IndexOf(id) - 1)
		if !ok {
			return false
		}
		a.view.SetCaret(prev.ID, utils.GraphemeCount(prev.PlainText()))
		return true
	}
	if next > utils.GraphemeCount(n.PlainText()) {
		// Cross into the next block's start.
		after, ok := doc.At(doc.IndexOf(id) + 1)
		if !ok {
			return false
		}
		a.view.SetCaret(after.ID, 0)
		return true
	}
	a.view.SetCaret(id, next)
	return true
}

func (a *App) moveCaretToEdge(end bool) bool {
	id, _, _, ok := a.view.Caret()
	if !ok {
		return false
	}
	n, exists := a.editor.Document().ByID(id)
	if !exists {
		return false
	}
	offset := 0
	if end {
		offset = utils.GraphemeCount(n.PlainText())
	}
	a.view.SetCaret(id, offset)
	return true
}
