// Package dragdrop reorders blocks through pointer-driven gestures,
// including atomic group moves of a multi-block selection: the group
// moves as a unit or not at all.
package dragdrop

import (
	"sync"
	"time"

	"github.com/sylvim/inkblock/internal/logger"
	"github.com/sylvim/inkblock/internal/types"
)

// scrollInterval is the repeat rate of the auto-scroll timer.
const scrollInterval = 80 * time.Millisecond

// edgeMargin is how close to a container edge the pointer must be, in
// rows, before auto-scroll starts.
const edgeMargin = 2

// Metric describes one rendered block's vertical geometry, supplied by
// the host surface.
type Metric struct {
	ID     types.BlockID
	Top    int
	Height int
}

// Mid returns the block's vertical midpoint.
func (m Metric) Mid() int {
	return m.Top + m.Height/2
}

// Geometry is the host-surface contract for hover scanning and
// auto-scroll.
type Geometry interface {
	// BlockMetrics returns the rendered blocks top-to-bottom.
	BlockMetrics() []Metric
	// ViewportBounds returns the visible vertical range.
	ViewportBounds() (top, height int)
	// ScrollBy scrolls the container by the given number of rows.
	ScrollBy(rows int)
}

// EditorInterface defines what the drag engine needs from the editor.
type EditorInterface interface {
	// SelectionIDs returns the multi-selection in document order.
	SelectionIDs() []types.BlockID
	IndexOf(id types.BlockID) int
	BlockCount() int
	// RecordStructural pushes an immediate history snapshot of the
	// current (pre-move) state.
	RecordStructural()
	// MoveGroup moves ids as one unit to precede the block at target.
	MoveGroup(ids []types.BlockID, target int) bool
}

// Session is one live drag gesture.
type Session struct {
	IDs         []types.BlockID // Dragged blocks in original document order
	Placeholder int             // Insert-before index in document order
	Valid       bool            // False once the gesture is doomed
}

// Manager runs drag sessions.
type Manager struct {
	editor EditorInterface
	geo    Geometry

	session *Session

	scrollMu  sync.Mutex
	scrollDir int
	scrollT   *time.Timer
}

// NewManager creates a drag manager.
func NewManager(editor EditorInterface, geo Geometry) *Manager {
	return &Manager{editor: editor, geo: geo}
}

// Active reports whether a drag session is live.
func (m *Manager) Active() bool {
	return m.session != nil
}

// Session returns a copy of the live session for rendering the
// placeholder, or nil.
func (m *Manager) Session() *Session {
	if m.session == nil {
		return nil
	}
	c := *m.session
	c.IDs = append([]types.BlockID(nil), m.session.IDs...)
	return &c
}

// Start begins a gesture on the block under the pointer. If that block
// belongs to a multi-selection with more than one member, every selected
// block is dragged, reordered to match current document order. The
// placeholder starts immediately after the last dragged block.
func (m *Manager) Start(under types.BlockID) bool {
	if m.session != nil {
		return false
	}
	idx := m.editor.IndexOf(under)
	if idx < 0 {
		return false
	}

	ids := []types.BlockID{under}
	if sel := m.editor.SelectionIDs(); len(sel) > 1 {
		for _, id := range sel {
			if id == under {
				ids = sel // Already in document order
				break
			}
		}
	}

	last := m.editor.IndexOf(ids[len(ids)-1])
	m.session = &Session{
		IDs:         ids,
		Placeholder: last + 1,
		Valid:       true,
	}
	logger.DebugTagf("drag", "Started drag of %d block(s)", len(ids))
	return true
}

// Hover updates the placeholder from the pointer's vertical position:
// the drop target is the first non-dragged block whose midpoint lies
// below the pointer (insert before it); absent such a block, insertion
// is after the last non-dragged block.
func (m *Manager) Hover(pointerY int) {
	if m.session == nil {
		return
	}

	dragged := make(map[types.BlockID]bool, len(m.session.IDs))
	for _, id := range m.session.IDs {
		dragged[id] = true
	}

	target := m.editor.BlockCount()
	for _, metric := range m.geo.BlockMetrics() {
		if dragged[metric.ID] {
			continue
		}
		if metric.Mid() > pointerY {
			target = m.editor.IndexOf(metric.ID)
			break
		}
	}
	m.session.Placeholder = target

	m.autoScroll(pointerY)
}

// autoScroll arms the repeating scroll timer when the pointer nears a
// container edge, and cancels it on direction change or when the pointer
// moves away.
func (m *Manager) autoScroll(pointerY int) {
	top, height := m.geo.ViewportBounds()
	dir := 0
	if pointerY < top+edgeMargin {
		dir = -1
	} else if pointerY >= top+height-edgeMargin {
		dir = 1
	}

	m.scrollMu.Lock()
	defer m.scrollMu.Unlock()
	if dir == m.scrollDir {
		return
	}
	// Direction change (or leaving the edge): cancel before re-arming.
	if m.scrollT != nil {
		m.scrollT.Stop()
		m.scrollT = nil
	}
	m.scrollDir = dir
	if dir != 0 {
		m.armScrollLocked(dir)
	}
}

func (m *Manager) armScrollLocked(dir int) {
	m.scrollT = time.AfterFunc(scrollInterval, func() {
		m.scrollMu.Lock()
		live := m.session != nil && m.scrollDir == dir
		if live {
			m.armScrollLocked(dir)
		}
		m.scrollMu.Unlock()
		if live {
			m.geo.ScrollBy(dir)
		}
	})
}

// Release ends the gesture and applies the move. For a multi-block drag
// whose placeholder lands inside the dragged run's span (non-dragged
// content would end up interleaved within the group), the gesture
// cancels with no mutation and no history entry. Otherwise all
// dragged blocks move as a unit, in original relative order, to
// immediately precede the placeholder. Returns whether the document
// changed.
func (m *Manager) Release() bool {
	s := m.session
	if s == nil {
		return false
	}

	ids := s.IDs
	target := s.Placeholder

	// The placeholder is transient: clear the session before any
	// snapshot is recorded so it can never be captured in history.
	m.reset()

	min, max := m.span(ids)
	if min < 0 {
		return false // A dragged block vanished mid-gesture
	}

	if len(ids) > 1 && target > min && target <= max {
		logger.DebugTagf("drag", "Cancelled: drop at %d would split dragged run [%d,%d]", target, min, max)
		return false
	}

	contiguous := max-min+1 == len(ids)
	if contiguous && target >= min && target <= max+1 {
		return false // Identity move; leave document and history alone
	}

	m.editor.RecordStructural()
	if !m.editor.MoveGroup(ids, target) {
		return false
	}
	logger.DebugTagf("drag", "Moved %d block(s) before index %d", len(ids), target)
	return true
}

// Cancel aborts the gesture, resetting all transient state and leaving
// the tree unchanged.
func (m *Manager) Cancel() {
	if m.session == nil {
		return
	}
	logger.DebugTagf("drag", "Cancelled drag")
	m.reset()
}

func (m *Manager) reset() {
	m.session = nil
	m.scrollMu.Lock()
	if m.scrollT != nil {
		m.scrollT.Stop()
		m.scrollT = nil
	}
	m.scrollDir = 0
	m.scrollMu.Unlock()
}

// span returns the lowest and highest document indexes of ids, or
// (-1, -1) when any id is unknown.
func (m *Manager) span(ids []types.BlockID) (int, int) {
	min, max := -1, -1
	for _, id := range ids {
		i := m.editor.IndexOf(id)
		if i < 0 {
			return -1, -1
		}
		if min < 0 || i < min {
			min = i
		}
		if i > max {
			max = i
		}
	}
	return min, max
}
