// internal/app/mouse.go
package app

import (
	"github.com/gdamore/tcell/v2"

	"github.com/sylvim/inkblock/internal/types"
)

// mouseState tracks a button-1 gesture from press to release, so a press
// only becomes a drag once the pointer actually moves off its start row.
type mouseState struct {
	pressed      bool
	pressedBlock types.BlockID
	pressX       int
	pressY       int
	dragging     bool
}

// handleMouseEvent routes pointer input: wheel scrolling, Ctrl+click
// selection toggling, plain clicks for caret placement, and press-drag-
// release block reordering. Returns whether a redraw is needed.
func (a *App) handleMouseEvent(ev *tcell.EventMouse) bool {
	x, y := ev.Position()
	buttons := ev.Buttons()

	if buttons&tcell.WheelUp != 0 {
		a.view.ScrollBy(-2)
		return true
	}
	if buttons&tcell.WheelDown != 0 {
		a.view.ScrollBy(2)
		return true
	}

	held := buttons&tcell.Button1 != 0
	switch {
	case held && !a.mouse.pressed:
		return a.mousePress(x, y, ev.Modifiers())
	case held && a.mouse.pressed:
		return a.mouseMove(y)
	case !held && a.mouse.pressed:
		return a.mouseRelease(x, y)
	}
	return false
}

func (a *App) mousePress(x, y int, mods tcell.ModMask) bool {
	under := a.view.HitTest(y)

	if mods&tcell.ModCtrl != 0 {
		// Ctrl+click toggles block membership; it never starts a drag.
		if under != types.None {
			a.editor.Selection().Toggle(under)
		}
		return true
	}

	a.mouse = mouseState{
		pressed:      true,
		pressedBlock: under,
		pressX:       x,
		pressY:       y,
	}
	return false
}

func (a *App) mouseMove(y int) bool {
	if !a.mouse.dragging {
		if a.mouse.pressedBlock == types.None || y == a.mouse.pressY {
			return false
		}
		if !a.editor.Drag().Start(a.mouse.pressedBlock) {
			return false
		}
		a.mouse.dragging = true
	}
	a.editor.Drag().Hover(y)
	return true
}

func (a *App) mouseRelease(x, y int) bool {
	dragging := a.mouse.dragging
	a.mouse = mouseState{}

	if dragging {
		if !a.editor.Drag().Release() {
			a.statusBar.SetTemporaryMessage("Drop cancelled")
		}
		return true
	}
	return a.view.ClickAt(x, y)
}
