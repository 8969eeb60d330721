package history

import (
	"sync"
	"time"

	"github.com/sylvim/inkblock/internal/logger"
	"github.com/sylvim/inkblock/internal/utils"
)

// DefaultDebounce is how long after the last character-level edit a
// deferred snapshot fires.
const DefaultDebounce = time.Second

// EditorInterface defines the methods the history manager needs from the
// editor.
type EditorInterface interface {
	// CaptureEntry serializes the live document and interaction state.
	CaptureEntry() Entry
	// ApplyEntry replaces the live document from a snapshot. It must not
	// touch interaction state; that is restored separately.
	ApplyEntry(e Entry) error
	// RestoreInteraction restores cursor/selection from an entry. The
	// manager calls it strictly after ApplyEntry succeeded, since
	// restoration depends on the target blocks existing.
	RestoreInteraction(e Entry)
}

// Manager handles the undo/redo stacks. Structural edits record
// immediately; character-level edits coalesce through a single debounce
// slot. The pre-burst state is captured once, at the first edit of a
// burst, and held until the timer fires or another operation promotes it
// onto the stack, so the timer goroutine never reads the live document.
type Manager struct {
	mutex    sync.Mutex
	editor   EditorInterface
	undo     []Entry
	redo     []Entry
	pending  *Entry // Pre-burst state awaiting its debounced push
	maxDepth int
	debounce utils.Debouncer
	delay    time.Duration
}

// NewManager creates a history manager.
func NewManager(editor EditorInterface, maxDepth int, delay time.Duration) *Manager {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Manager{
		editor:   editor,
		undo:     make([]Entry, 0, maxDepth),
		redo:     make([]Entry, 0, maxDepth),
		maxDepth: maxDepth,
		delay:    delay,
	}
}

// RecordStructural captures the live state immediately. Structural
// operations call this before mutating, so one operation is one undo
// step; a pending text-burst entry is pushed first, never merged.
func (m *Manager) RecordStructural() {
	m.debounce.Cancel()
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.pushPendingLocked()
	m.push(m.editor.CaptureEntry())
}

// RecordTextEdit opens or extends a text burst. The editor calls this
// before mutating, so the first call of a burst captures the pre-edit
// state; later calls within the window only reset the timer. The timer
// pushes the held entry without touching the document.
func (m *Manager) RecordTextEdit() {
	m.mutex.Lock()
	if m.pending == nil {
		entry := m.editor.CaptureEntry()
		m.pending = &entry
	}
	m.mutex.Unlock()

	m.debounce.Debounce(m.delay, func() {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		m.pushPendingLocked()
	})
}

// pushPendingLocked promotes the held pre-burst entry onto the undo
// stack. Caller holds the mutex.
func (m *Manager) pushPendingLocked() {
	if m.pending == nil {
		return
	}
	m.push(*m.pending)
	m.pending = nil
}

// push appends an entry, deduplicating against the stack top, bounding
// the stack and clearing redo. Caller holds the mutex.
func (m *Manager) push(e Entry) {
	if top, ok := m.top(); ok && top.Snapshot == e.Snapshot {
		logger.DebugTagf("history", "Skipped duplicate snapshot push")
		return
	}
	m.undo = append(m.undo, e)
	if len(m.undo) > m.maxDepth {
		m.undo = m.undo[len(m.undo)-m.maxDepth:]
	}
	m.redo = m.redo[:0]
	logger.DebugTagf("history", "Recorded snapshot. Undo depth: %d", len(m.undo))
}

func (m *Manager) top() (Entry, bool) {
	if len(m.undo) == 0 {
		return Entry{}, false
	}
	return m.undo[len(m.undo)-1], true
}

// Undo reverts to the most recent recorded state. A no-op on an empty
// stack. Returns whether a state change happened.
func (m *Manager) Undo() bool {
	m.debounce.Cancel()
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// An open text burst undoes first: its pre-burst entry becomes the
	// stack top before the pop.
	m.pushPendingLocked()

	if len(m.undo) == 0 {
		logger.DebugTagf("history", "Nothing to undo")
		return false
	}

	live := m.editor.CaptureEntry()
	entry := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]

	if err := m.editor.ApplyEntry(entry); err != nil {
		// Snapshot did not apply; put it back and leave the document as
		// it was. No partial-failure state exists.
		logger.Errorf("History: undo apply failed: %v", err)
		m.undo = append(m.undo, entry)
		return false
	}

	m.redo = append(m.redo, live)
	if len(m.redo) > m.maxDepth {
		m.redo = m.redo[len(m.redo)-m.maxDepth:]
	}

	m.editor.RestoreInteraction(entry)
	logger.DebugTagf("history", "Undo applied. Depths: undo=%d redo=%d", len(m.undo), len(m.redo))
	return true
}

// Redo reapplies the most recently undone state. Symmetric to Undo.
func (m *Manager) Redo() bool {
	m.debounce.Cancel()
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Typing since the last undo forks history; promoting the burst
	// entry clears the redo branch, as any fresh edit does.
	m.pushPendingLocked()

	if len(m.redo) == 0 {
		logger.DebugTagf("history", "Nothing to redo")
		return false
	}

	live := m.editor.CaptureEntry()
	entry := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]

	if err := m.editor.ApplyEntry(entry); err != nil {
		logger.Errorf("History: redo apply failed: %v", err)
		m.redo = append(m.redo, entry)
		return false
	}

	m.undo = append(m.undo, live)
	if len(m.undo) > m.maxDepth {
		m.undo = m.undo[len(m.undo)-m.maxDepth:]
	}

	m.editor.RestoreInteraction(entry)
	logger.DebugTagf("history", "Redo applied. Depths: undo=%d redo=%d", len(m.undo), len(m.redo))
	return true
}

// Flush pushes any held text-burst entry now.
func (m *Manager) Flush() {
	m.debounce.Cancel()
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.pushPendingLocked()
}

// CanUndo returns true if there is a state to revert to.
func (m *Manager) CanUndo() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.undo) > 0
}

// CanRedo returns true if there is an undone state to reapply.
func (m *Manager) CanRedo() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.redo) > 0
}

// Depths returns the current undo and redo stack sizes.
func (m *Manager) Depths() (int, int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.undo), len(m.redo)
}

// Clear resets both stacks and cancels any pending capture. Call on
// document load and teardown.
func (m *Manager) Clear() {
	m.debounce.Cancel()
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.undo = m.undo[:0]
	m.redo = m.redo[:0]
	m.pending = nil
	logger.DebugTagf("history", "Cleared")
}
