package cursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sylvim/inkblock/internal/block"
	"github.com/sylvim/inkblock/internal/types"
)

// fakeSurface is a scriptable cursor surface.
type fakeSurface struct {
	id        types.BlockID
	offset    int
	collapsed bool
	ok        bool

	setFails     bool
	setCalls     []types.CursorPosition
	focusedFirst int
}

func (f *fakeSurface) Caret() (types.BlockID, int, bool, bool) {
	return f.id, f.offset, f.collapsed, f.ok
}

func (f *fakeSurface) SetCaret(id types.BlockID, offset int) bool {
	if f.setFails {
		return false
	}
	f.setCalls = append(f.setCalls, types.CursorPosition{Block: id, Offset: offset})
	f.id, f.offset = id, offset
	return true
}

func (f *fakeSurface) FocusFirst() {
	f.focusedFirst++
}

// fakeDoc holds a couple of text blocks.
type fakeDoc struct {
	blocks map[types.BlockID]*block.Node
	first  *block.Node
}

func newFakeDoc(texts map[types.BlockID]string) *fakeDoc {
	d := &fakeDoc{blocks: make(map[types.BlockID]*block.Node)}
	for id, text := range texts {
		n := &block.Node{ID: id, Type: block.TypeParagraph, Payload: &block.TextPayload{Text: text}}
		d.blocks[id] = n
		if d.first == nil {
			d.first = n
		}
	}
	return d
}

func (d *fakeDoc) ByID(id types.BlockID) (*block.Node, bool) {
	n, ok := d.blocks[id]
	return n, ok
}

func (d *fakeDoc) First() *block.Node { return d.first }

func TestCaptureReturnsPosition(t *testing.T) {
	doc := newFakeDoc(map[types.BlockID]string{"b1": "hello"})
	surface := &fakeSurface{id: "b1", offset: 3, collapsed: true, ok: true}
	m := NewManager(surface, doc)

	pos := m.Capture()
	require.NotNil(t, pos)
	assert.Equal(t, types.BlockID("b1"), pos.Block)
	assert.Equal(t, 3, pos.Offset)
	assert.True(t, pos.Collapsed)
}

func TestCaptureOutsideDocumentIsNil(t *testing.T) {
	doc := newFakeDoc(map[types.BlockID]string{"b1": "hello"})

	surface := &fakeSurface{ok: false}
	assert.Nil(t, NewManager(surface, doc).Capture())

	// The surface reports a block the document no longer has.
	surface = &fakeSurface{id: "gone", offset: 0, collapsed: true, ok: true}
	assert.Nil(t, NewManager(surface, doc).Capture())
}

func TestCaptureClampsStaleOffset(t *testing.T) {
	doc := newFakeDoc(map[types.BlockID]string{"b1": "abc"})
	surface := &fakeSurface{id: "b1", offset: 40, collapsed: true, ok: true}

	pos := NewManager(surface, doc).Capture()
	require.NotNil(t, pos)
	assert.Equal(t, 3, pos.Offset)
}

func TestRestorePlacesCaret(t *testing.T) {
	doc := newFakeDoc(map[types.BlockID]string{"b1": "hello"})
	surface := &fakeSurface{}
	m := NewManager(surface, doc)

	m.Restore(&types.CursorPosition{Block: "b1", Offset: 2, Collapsed: true})
	require.Len(t, surface.setCalls, 1)
	assert.Equal(t, types.CursorPosition{Block: "b1", Offset: 2}, surface.setCalls[0])
	assert.Zero(t, surface.focusedFirst)
}

func TestRestoreClampsOffset(t *testing.T) {
	doc := newFakeDoc(map[types.BlockID]string{"b1": "ab"})
	surface := &fakeSurface{}
	m := NewManager(surface, doc)

	m.Restore(&types.CursorPosition{Block: "b1", Offset: 99, Collapsed: true})
	require.Len(t, surface.setCalls, 1)
	assert.Equal(t, 2, surface.setCalls[0].Offset)
}

func TestRestoreMissingBlockFocusesFirst(t *testing.T) {
	doc := newFakeDoc(map[types.BlockID]string{"b1": "hello"})
	surface := &fakeSurface{}
	m := NewManager(surface, doc)

	m.Restore(&types.CursorPosition{Block: "gone", Offset: 0, Collapsed: true})
	assert.Equal(t, 1, surface.focusedFirst)
	assert.Empty(t, surface.setCalls)
}

func TestRestoreNilFocusesFirst(t *testing.T) {
	doc := newFakeDoc(map[types.BlockID]string{"b1": "hello"})
	surface := &fakeSurface{}
	m := NewManager(surface, doc)

	m.Restore(nil)
	assert.Equal(t, 1, surface.focusedFirst)
}

func TestRestoreSurfaceRefusalFallsBack(t *testing.T) {
	doc := newFakeDoc(map[types.BlockID]string{"b1": "hello"})
	surface := &fakeSurface{setFails: true}
	m := NewManager(surface, doc)

	m.Restore(&types.CursorPosition{Block: "b1", Offset: 0, Collapsed: true})
	assert.Equal(t, 1, surface.focusedFirst)
}
