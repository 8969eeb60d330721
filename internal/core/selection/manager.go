// Package selection tracks the explicit multi-block selection set,
// orthogonal to the caret: a document has either an active caret or an
// active multi-selection, never a meaningful combination of both.
package selection

import (
	"github.com/sylvim/inkblock/internal/event"
	"github.com/sylvim/inkblock/internal/logger"
	"github.com/sylvim/inkblock/internal/types"
)

// DocumentInterface is what the selection manager needs to order ids.
type DocumentInterface interface {
	IndexOf(id types.BlockID) int
	Order() []types.BlockID
}

// Manager owns the selection set.
type Manager struct {
	doc    DocumentInterface
	events *event.Manager
	set    map[types.BlockID]struct{}
}

// NewManager creates a selection manager.
func NewManager(doc DocumentInterface, events *event.Manager) *Manager {
	return &Manager{
		doc:    doc,
		events: events,
		set:    make(map[types.BlockID]struct{}),
	}
}

// Toggle flips membership of a block, as the modifier gesture does.
// Unknown ids are ignored.
func (m *Manager) Toggle(id types.BlockID) {
	if m.doc.IndexOf(id) < 0 {
		return
	}
	if _, ok := m.set[id]; ok {
		delete(m.set, id)
	} else {
		m.set[id] = struct{}{}
	}
	m.dispatch()
}

// Add includes a block in the selection.
func (m *Manager) Add(id types.BlockID) {
	if m.doc.IndexOf(id) < 0 {
		return
	}
	if _, ok := m.set[id]; ok {
		return
	}
	m.set[id] = struct{}{}
	m.dispatch()
}

// Remove drops a block from the selection. Deleted blocks must be
// removed so the set never references dead ids.
func (m *Manager) Remove(id types.BlockID) {
	if _, ok := m.set[id]; !ok {
		return
	}
	delete(m.set, id)
	m.dispatch()
}

// Clear empties the selection.
func (m *Manager) Clear() {
	if len(m.set) == 0 {
		return
	}
	logger.DebugTagf("selection", "Cleared %d selected blocks", len(m.set))
	m.set = make(map[types.BlockID]struct{})
	m.dispatch()
}

// Has reports membership.
func (m *Manager) Has(id types.BlockID) bool {
	_, ok := m.set[id]
	return ok
}

// Count returns the selection size.
func (m *Manager) Count() int {
	return len(m.set)
}

// Active reports whether a multi-block selection is in effect.
func (m *Manager) Active() bool {
	return len(m.set) > 0
}

// IDs returns the selected ids reordered to match current document
// order, not selection order.
func (m *Manager) IDs() []types.BlockID {
	out := make([]types.BlockID, 0, len(m.set))
	for _, id := range m.doc.Order() {
		if _, ok := m.set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (m *Manager) dispatch() {
	if m.events != nil {
		m.events.Dispatch(event.TypeSelectionChanged, event.SelectionChangedData{IDs: m.IDs()})
	}
}
