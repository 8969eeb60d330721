// Package document maintains the ordered tree of content blocks: an arena
// of nodes addressed by stable ids plus an ordered id sequence. Every
// operation is synchronous and leaves the document renderable and
// consistent before returning.
package document

import (
	"fmt"

	"github.com/sylvim/inkblock/internal/block"
	"github.com/sylvim/inkblock/internal/event"
	"github.com/sylvim/inkblock/internal/logger"
	"github.com/sylvim/inkblock/internal/types"
)

// Document is an ordered sequence of blocks. It always contains at least
// one block; deleting the last one clears its content instead.
type Document struct {
	registry *block.Registry
	events   *event.Manager
	order    []types.BlockID
	arena    map[types.BlockID]*block.Node
}

// New creates a document seeded with one empty block of the registry's
// fallback type.
func New(registry *block.Registry, events *event.Manager) *Document {
	d := &Document{
		registry: registry,
		events:   events,
		arena:    make(map[types.BlockID]*block.Node),
	}
	seed, _ := registry.Construct(registry.Fallback(), nil)
	d.order = append(d.order, seed.ID)
	d.arena[seed.ID] = seed
	return d
}

// Registry returns the type registry this document constructs through.
func (d *Document) Registry() *block.Registry {
	return d.registry
}

// Len returns the number of blocks.
func (d *Document) Len() int {
	return len(d.order)
}

// Order returns the block ids in document order. The slice is a copy.
func (d *Document) Order() []types.BlockID {
	out := make([]types.BlockID, len(d.order))
	copy(out, d.order)
	return out
}

// Blocks returns the live nodes in document order.
func (d *Document) Blocks() []*block.Node {
	out := make([]*block.Node, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.arena[id])
	}
	return out
}

// ByID returns the node with the given id.
func (d *Document) ByID(id types.BlockID) (*block.Node, bool) {
	n, ok := d.arena[id]
	return n, ok
}

// IndexOf returns the position of id in document order, or -1.
func (d *Document) IndexOf(id types.BlockID) int {
	for i, cur := range d.order {
		if cur == id {
			return i
		}
	}
	return -1
}

// First returns the first block.
func (d *Document) First() *block.Node {
	return d.arena[d.order[0]]
}

// At returns the node at the given index.
func (d *Document) At(i int) (*block.Node, bool) {
	if i < 0 || i >= len(d.order) {
		return nil, false
	}
	return d.arena[d.order[i]], true
}

// InsertAfter constructs a block of the named type and inserts it after
// the block with id after. A zero after id appends at the end. An
// unregistered type falls back to the default type; the node is inserted
// either way and ErrNotRegistered is surfaced to the caller.
func (d *Document) InsertAfter(typeName string, after types.BlockID, data block.Data) (*block.Node, error) {
	n, constructErr := d.registry.Construct(typeName, data)
	if n == nil {
		return nil, constructErr
	}

	pos := len(d.order)
	if after != types.None {
		if i := d.IndexOf(after); i >= 0 {
			pos = i + 1
		}
	}

	d.order = append(d.order, "")
	copy(d.order[pos+1:], d.order[pos:])
	d.order[pos] = n.ID
	d.arena[n.ID] = n

	logger.DebugTagf("document", "Inserted %s block %s at index %d", n.Type, n.ID, pos)
	d.dispatch(event.TypeBlockInserted, event.BlockData{ID: n.ID})
	return n, constructErr
}

// Delete removes the block with the given id. Deleting the sole remaining
// block clears its content instead; the document never becomes empty.
// Returns false if the id does not exist.
func (d *Document) Delete(id types.BlockID) bool {
	i := d.IndexOf(id)
	if i < 0 {
		return false
	}

	if len(d.order) == 1 {
		// Last-block guarantee: clear, never remove. The id survives.
		n := d.arena[id]
		fallback, err := d.registry.Lookup(d.registry.Fallback())
		if err != nil {
			logger.Errorf("Document: fallback type missing on last-block clear: %v", err)
			return false
		}
		n.Type = fallback.Name()
		n.Payload = fallback.Construct(nil)
		logger.DebugTagf("document", "Cleared sole remaining block %s", id)
		d.dispatch(event.TypeBlockUpdated, event.BlockData{ID: id})
		return true
	}

	d.order = append(d.order[:i], d.order[i+1:]...)
	delete(d.arena, id)
	logger.DebugTagf("document", "Deleted block %s (index %d)", id, i)
	d.dispatch(event.TypeBlockRemoved, event.BlockData{ID: id})
	return true
}

// Move swaps the block with its adjacent sibling in the given direction.
// Returns false if the move would leave the document (no-op).
func (d *Document) Move(id types.BlockID, dir types.Direction) bool {
	i := d.IndexOf(id)
	if i < 0 {
		return false
	}
	j := i + int(dir)
	if j < 0 || j >= len(d.order) {
		return false
	}
	d.order[i], d.order[j] = d.order[j], d.order[i]
	d.dispatch(event.TypeBlockMoved, event.BlockMovedData{IDs: []types.BlockID{id}})
	return true
}

// MoveGroup moves the given blocks, in their current document order, to
// immediately precede the block currently at index target (len(order)
// appends at the end). The group moves as one unit. Returns false if any
// id is unknown or the target is out of range.
func (d *Document) MoveGroup(ids []types.BlockID, target int) bool {
	if len(ids) == 0 || target < 0 || target > len(d.order) {
		return false
	}
	moving := make(map[types.BlockID]bool, len(ids))
	for _, id := range ids {
		if d.IndexOf(id) < 0 {
			return false
		}
		moving[id] = true
	}

	// Anchor is the first non-moving block at or after target; the group
	// lands immediately before it (or at the end if there is none).
	var anchor types.BlockID = types.None
	for i := target; i < len(d.order); i++ {
		if !moving[d.order[i]] {
			anchor = d.order[i]
			break
		}
	}

	// Extract the group in document order, keep the rest.
	group := make([]types.BlockID, 0, len(ids))
	rest := make([]types.BlockID, 0, len(d.order)-len(ids))
	for _, id := range d.order {
		if moving[id] {
			group = append(group, id)
		} else {
			rest = append(rest, id)
		}
	}

	insert := len(rest)
	if anchor != types.None {
		for i, id := range rest {
			if id == anchor {
				insert = i
				break
			}
		}
	}

	next := make([]types.BlockID, 0, len(d.order))
	next = append(next, rest[:insert]...)
	next = append(next, group...)
	next = append(next, rest[insert:]...)
	d.order = next

	logger.DebugTagf("document", "Moved group of %d blocks before index %d", len(group), insert)
	d.dispatch(event.TypeBlockMoved, event.BlockMovedData{IDs: group})
	return true
}

// Transform changes the block's type in place via the registry's
// reinterpret path, carrying content where meaningful. The id is stable
// across the transform.
func (d *Document) Transform(id types.BlockID, newType string, data block.Data) error {
	n, ok := d.arena[id]
	if !ok {
		return fmt.Errorf("transform: no block with id %s", id)
	}
	oldType := n.Type
	if err := d.registry.Reinterpret(n, newType, data); err != nil {
		return err
	}
	d.dispatch(event.TypeBlockTransformed, event.BlockTransformedData{
		ID: id, OldType: oldType, NewType: n.Type,
	})
	return nil
}

// Update applies a partial data patch to a block's payload.
func (d *Document) Update(id types.BlockID, partial block.Data) error {
	n, ok := d.arena[id]
	if !ok {
		return fmt.Errorf("update: no block with id %s", id)
	}
	if err := d.registry.Update(n, partial); err != nil {
		return err
	}
	d.dispatch(event.TypeBlockUpdated, event.BlockData{ID: id})
	return nil
}

// Replace swaps the whole document content for the given nodes, as undo,
// redo and load do. An empty replacement seeds one empty fallback block
// to preserve the last-block guarantee.
func (d *Document) Replace(nodes []*block.Node) {
	d.order = d.order[:0]
	d.arena = make(map[types.BlockID]*block.Node, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		d.order = append(d.order, n.ID)
		d.arena[n.ID] = n
	}
	if len(d.order) == 0 {
		seed, _ := d.registry.Construct(d.registry.Fallback(), nil)
		d.order = append(d.order, seed.ID)
		d.arena[seed.ID] = seed
	}
	d.dispatch(event.TypeDocumentReplaced, event.DocumentReplacedData{})
}

func (d *Document) dispatch(t event.Type, data interface{}) {
	if d.events != nil {
		d.events.Dispatch(t, data)
	}
}
