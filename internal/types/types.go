// internal/types/types.go
package types

// BlockID uniquely identifies a block for the lifetime of a document.
// Ids are minted once and never reused, even after the block is deleted.
type BlockID string

// None is the zero BlockID, used where "no block" is a valid answer.
const None BlockID = ""

// CursorPosition addresses a caret inside a block's primary editable
// region. Offset is a grapheme-cluster count, not a byte or rune count,
// so it survives serialization round-trips of multi-byte text.
type CursorPosition struct {
	Block     BlockID
	Offset    int
	Collapsed bool
}

// Direction is a relative move for block reordering.
type Direction int

const (
	DirUp   Direction = -1
	DirDown Direction = 1
)
