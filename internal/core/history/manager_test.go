package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sylvim/inkblock/internal/types"
)

// fakeEditor is a minimal state holder: its "document" is one string.
type fakeEditor struct {
	state    string
	cursor   *types.CursorPosition
	restored []Entry
	applyErr error
}

func (f *fakeEditor) CaptureEntry() Entry {
	return Entry{Snapshot: f.state, Cursor: f.cursor}
}

func (f *fakeEditor) ApplyEntry(e Entry) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.state = e.Snapshot
	return nil
}

func (f *fakeEditor) RestoreInteraction(e Entry) {
	f.restored = append(f.restored, e)
}

func newTestManager(f *fakeEditor, depth int) *Manager {
	return NewManager(f, depth, time.Hour) // Debounce never fires on its own
}

func TestUndoRedoRoundTrip(t *testing.T) {
	f := &fakeEditor{state: "one"}
	m := newTestManager(f, 10)

	m.RecordStructural()
	f.state = "two"

	require.True(t, m.Undo())
	assert.Equal(t, "one", f.state)
	require.True(t, m.Redo())
	assert.Equal(t, "two", f.state)
}

func TestUndoEmptyStack(t *testing.T) {
	f := &fakeEditor{state: "one"}
	m := newTestManager(f, 10)

	assert.False(t, m.Undo())
	assert.Equal(t, "one", f.state)
}

func TestStackBounded(t *testing.T) {
	f := &fakeEditor{}
	m := newTestManager(f, 50)

	for i := 0; i < 100; i++ {
		f.state = fmt.Sprintf("state-%d", i)
		m.RecordStructural()
	}

	undoDepth, _ := m.Depths()
	assert.Equal(t, 50, undoDepth)

	// 50 undos reach the oldest retained state; the 51st is a no-op.
	for i := 0; i < 50; i++ {
		require.True(t, m.Undo(), "undo %d", i)
	}
	assert.Equal(t, "state-50", f.state)
	assert.False(t, m.Undo())
	assert.Equal(t, "state-50", f.state)
}

func TestPushDeduplicatesTop(t *testing.T) {
	f := &fakeEditor{state: "same"}
	m := newTestManager(f, 10)

	m.RecordStructural()
	m.RecordStructural()

	undoDepth, _ := m.Depths()
	assert.Equal(t, 1, undoDepth)
}

func TestNewRecordClearsRedo(t *testing.T) {
	f := &fakeEditor{state: "one"}
	m := newTestManager(f, 10)

	m.RecordStructural()
	f.state = "two"
	require.True(t, m.Undo())
	assert.True(t, m.CanRedo())

	// A fresh edit forks history; the redo branch is gone.
	m.RecordStructural()
	f.state = "three"
	assert.False(t, m.CanRedo())
}

func TestTextEditDebounceCoalesces(t *testing.T) {
	f := &fakeEditor{state: "blank"}
	m := NewManager(f, 10, 20*time.Millisecond)

	for i := 0; i < 5; i++ {
		m.RecordTextEdit()
		f.state = fmt.Sprintf("typing-%d", i)
	}

	undoDepth, _ := m.Depths()
	assert.Equal(t, 0, undoDepth, "no snapshot before the debounce fires")

	require.Eventually(t, func() bool {
		d, _ := m.Depths()
		return d == 1
	}, time.Second, 5*time.Millisecond, "coalesced into a single snapshot")

	// The one entry is the state before the burst began.
	require.True(t, m.Undo())
	assert.Equal(t, "blank", f.state)
}

func TestUndoRevertsOpenTextBurst(t *testing.T) {
	f := &fakeEditor{state: "blank"}
	m := newTestManager(f, 10)

	m.RecordTextEdit()
	f.state = "Hello"

	// Undo before the debounce fires still reverts the burst.
	require.True(t, m.Undo())
	assert.Equal(t, "blank", f.state)
	require.True(t, m.Redo())
	assert.Equal(t, "Hello", f.state)
}

func TestStructuralPromotesPendingTextEdit(t *testing.T) {
	f := &fakeEditor{state: "one"}
	m := NewManager(f, 10, 20*time.Millisecond)

	m.RecordTextEdit()
	f.state = "two"
	m.RecordStructural()
	f.state = "three"

	// The burst entry and the structural entry stay separate steps, and
	// the cancelled timer must not add a third.
	time.Sleep(60 * time.Millisecond)
	undoDepth, _ := m.Depths()
	require.Equal(t, 2, undoDepth)

	require.True(t, m.Undo())
	assert.Equal(t, "two", f.state)
	require.True(t, m.Undo())
	assert.Equal(t, "one", f.state)
}

func TestRedoAfterTypingForksHistory(t *testing.T) {
	f := &fakeEditor{state: "one"}
	m := newTestManager(f, 10)

	m.RecordStructural()
	f.state = "two"
	require.True(t, m.Undo())
	require.True(t, m.CanRedo())

	m.RecordTextEdit()
	f.state = "one more"

	assert.False(t, m.Redo(), "typing since the undo discards the redo branch")
	assert.Equal(t, "one more", f.state)
	assert.False(t, m.CanRedo())
}

func TestFlushForcesPendingCapture(t *testing.T) {
	f := &fakeEditor{state: "before"}
	m := NewManager(f, 10, time.Hour)

	m.RecordTextEdit()
	f.state = "after"
	m.Flush()

	undoDepth, _ := m.Depths()
	require.Equal(t, 1, undoDepth)
	require.True(t, m.Undo())
	assert.Equal(t, "before", f.state)
}

func TestUndoRestoresInteractionAfterApply(t *testing.T) {
	f := &fakeEditor{state: "one", cursor: &types.CursorPosition{Block: "b1", Offset: 4, Collapsed: true}}
	m := newTestManager(f, 10)

	m.RecordStructural()
	f.state = "two"
	f.cursor = &types.CursorPosition{Block: "b2", Offset: 0, Collapsed: true}

	require.True(t, m.Undo())
	require.Len(t, f.restored, 1)
	require.NotNil(t, f.restored[0].Cursor)
	assert.Equal(t, types.BlockID("b1"), f.restored[0].Cursor.Block)
	assert.Equal(t, 4, f.restored[0].Cursor.Offset)
}

func TestUndoApplyFailureLeavesStateIntact(t *testing.T) {
	f := &fakeEditor{state: "one"}
	m := newTestManager(f, 10)

	m.RecordStructural()
	f.state = "two"
	f.applyErr = fmt.Errorf("snapshot rejected")

	assert.False(t, m.Undo())
	assert.Equal(t, "two", f.state)
	assert.True(t, m.CanUndo(), "failed entry stays on the stack")
	assert.Empty(t, f.restored)
}

func TestClearResetsBothStacks(t *testing.T) {
	f := &fakeEditor{state: "one"}
	m := newTestManager(f, 10)

	m.RecordStructural()
	f.state = "two"
	require.True(t, m.Undo())

	m.Clear()
	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo())
}
