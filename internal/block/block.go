// Package block defines the block data model and the type registry that
// maps a type tag to its construct/extract/update/reinterpret behavior.
package block

import (
	"github.com/google/uuid"

	"github.com/sylvim/inkblock/internal/types"
)

// Data is the loosely typed payload exchange format used by construct,
// extract and update. Keys are type-specific; missing keys mean "leave
// unchanged" on update and "use the zero value" on construct.
type Data map[string]any

// Str reads a string field, tolerating absence and wrong types.
func (d Data) Str(key string) string {
	if d == nil {
		return ""
	}
	if v, ok := d[key].(string); ok {
		return v
	}
	return ""
}

// Int reads an integer field. TOML/JSON decoding may deliver numbers as
// int, int64 or float64; all are accepted.
func (d Data) Int(key string) int {
	if d == nil {
		return 0
	}
	switch v := d[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Bool reads a boolean field.
func (d Data) Bool(key string) bool {
	if d == nil {
		return false
	}
	if v, ok := d[key].(bool); ok {
		return v
	}
	return false
}

// Strings reads a string-slice field, accepting []string or []any.
func (d Data) Strings(key string) []string {
	if d == nil {
		return nil
	}
	switch v := d[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Has reports whether the key is present at all.
func (d Data) Has(key string) bool {
	if d == nil {
		return false
	}
	_, ok := d[key]
	return ok
}

// Payload is the live, mutable content of a block. Each registered type
// supplies its own payload implementation.
type Payload interface {
	// PrimaryText returns the content of the block's primary editable
	// region. Types without one (divider, image) return "".
	PrimaryText() string
	// SetPrimaryText replaces the primary editable region's content.
	SetPrimaryText(s string)
	// Clone returns a deep copy, used by snapshots and drag previews.
	Clone() Payload
}

// Type is the four-operation behavior contract every block type supplies.
// Externally registered types implement the same interface as built-ins;
// the engine does not distinguish between them.
type Type interface {
	// Name returns the type tag, e.g. "paragraph".
	Name() string
	// Construct builds a payload from initial data. It must tolerate nil
	// or partial data and must never panic.
	Construct(initial Data) Payload
	// Extract returns the payload's content as data.
	Extract(p Payload) Data
	// Update applies a partial data patch to the payload in place.
	Update(p Payload, partial Data)
	// Carry returns the data carried over when this payload is
	// reinterpreted as the target type. Returning nil means nothing
	// meaningful survives and the target starts empty.
	Carry(p Payload, target string) Data
}

// Node is one live block: stable identity, current type tag, payload.
type Node struct {
	ID      types.BlockID
	Type    string
	Payload Payload
}

// NewID mints a globally unique block id. Ids are never reused.
func NewID() types.BlockID {
	return types.BlockID(uuid.NewString())
}

// PlainText returns the node's primary editable text.
func (n *Node) PlainText() string {
	if n == nil || n.Payload == nil {
		return ""
	}
	return n.Payload.PrimaryText()
}

// Clone deep-copies the node, keeping the same id.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	var p Payload
	if n.Payload != nil {
		p = n.Payload.Clone()
	}
	return &Node{ID: n.ID, Type: n.Type, Payload: p}
}
