// internal/core/editor.go
package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sylvim/inkblock/internal/block"
	"github.com/sylvim/inkblock/internal/core/clipboard"
	"github.com/sylvim/inkblock/internal/core/cursor"
	"github.com/sylvim/inkblock/internal/core/dragdrop"
	"github.com/sylvim/inkblock/internal/core/history"
	"github.com/sylvim/inkblock/internal/core/selection"
	"github.com/sylvim/inkblock/internal/document"
	"github.com/sylvim/inkblock/internal/event"
	"github.com/sylvim/inkblock/internal/logger"
	"github.com/sylvim/inkblock/internal/markup"
	"github.com/sylvim/inkblock/internal/media"
	"github.com/sylvim/inkblock/internal/sanitize"
	"github.com/sylvim/inkblock/internal/types"
	"github.com/sylvim/inkblock/internal/utils"
)

// graphemeLen counts user-perceived characters, matching cursor offsets.
func graphemeLen(s string) int {
	return utils.GraphemeCount(s)
}

// Options configures a new editor. Zero values get sensible defaults;
// Surface and Geometry may be nil for headless use.
type Options struct {
	Registry        *block.Registry
	Events          *event.Manager
	Surface         cursor.Surface
	Geometry        dragdrop.Geometry
	Uploader        media.Uploader
	Previews        media.PreviewFetcher
	HistoryDepth    int
	EditDebounce    time.Duration
	SanitizeDepth   int
	SystemClipboard bool
	// Scheduler defers a callback until after the current turn of
	// control; cursor restoration after undo/redo goes through it. Nil
	// runs callbacks inline.
	Scheduler func(func())
}

// Editor is the engine facade: it owns the document tree and every
// manager, and is the single entry point for gestures. All operations
// run synchronously to completion; structural mutations never
// interleave.
type Editor struct {
	registry  *block.Registry
	doc       *document.Document
	events    *event.Manager
	history   *history.Manager
	cursor    *cursor.Manager
	selection *selection.Manager
	clipboard *clipboard.Manager
	drag      *dragdrop.Manager
	sanitizer *sanitize.Sanitizer
	uploader  media.Uploader
	previews  *media.PreviewCache
	surface   cursor.Surface
	scheduler func(func())
}

// NewEditor creates an editor instance. Each instance owns its own
// registry; independent editors never share type tables.
func NewEditor(opts Options) *Editor {
	registry := opts.Registry
	if registry == nil {
		registry = block.NewBuiltinRegistry()
	}
	events := opts.Events
	if events == nil {
		events = event.NewManager()
	}
	surface := opts.Surface
	if surface == nil {
		surface = nullSurface{}
	}
	uploader := opts.Uploader
	if uploader == nil {
		uploader = media.NopUploader{}
	}
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = func(fn func()) { fn() }
	}

	e := &Editor{
		registry:  registry,
		events:    events,
		surface:   surface,
		uploader:  uploader,
		previews:  media.NewPreviewCache(opts.Previews),
		sanitizer: sanitize.New(opts.SanitizeDepth),
		clipboard: clipboard.NewManager(opts.SystemClipboard),
		scheduler: scheduler,
	}
	e.doc = document.New(registry, events)
	e.cursor = cursor.NewManager(surface, e.doc)
	e.selection = selection.NewManager(e.doc, events)
	e.history = history.NewManager(e, opts.HistoryDepth, opts.EditDebounce)

	geo := opts.Geometry
	if geo == nil {
		geo = nullGeometry{}
	}
	e.drag = dragdrop.NewManager(e, geo)
	return e
}

// Document returns the live document tree.
func (e *Editor) Document() *document.Document { return e.doc }

// Registry returns the block type registry.
func (e *Editor) Registry() *block.Registry { return e.registry }

// History returns the history manager.
func (e *Editor) History() *history.Manager { return e.history }

// Selection returns the multi-block selection manager.
func (e *Editor) Selection() *selection.Manager { return e.selection }

// Cursor returns the cursor manager.
func (e *Editor) Cursor() *cursor.Manager { return e.cursor }

// Drag returns the drag-and-drop manager.
func (e *Editor) Drag() *dragdrop.Manager { return e.drag }

// Events returns the event bus.
func (e *Editor) Events() *event.Manager { return e.events }

// Close tears the engine down: pending debounce cancelled, live drag
// aborted.
func (e *Editor) Close() {
	e.drag.Cancel()
	e.history.Clear()
}

// --- history.EditorInterface ---

// CaptureEntry serializes the live document plus interaction state.
func (e *Editor) CaptureEntry() history.Entry {
	return history.Entry{
		Snapshot:  markup.Snapshot(e.doc.Blocks()),
		Cursor:    e.cursor.Capture(),
		Selection: e.selection.IDs(),
	}
}

// ApplyEntry replaces the live document from a snapshot.
func (e *Editor) ApplyEntry(entry history.Entry) error {
	nodes, err := markup.LoadSnapshot(e.registry, entry.Snapshot)
	if err != nil {
		return err
	}
	e.doc.Replace(nodes)
	return nil
}

// RestoreInteraction restores cursor and selection, deferred until after
// the state swap has fully settled.
func (e *Editor) RestoreInteraction(entry history.Entry) {
	e.scheduler(func() {
		e.selection.Clear()
		for _, id := range entry.Selection {
			e.selection.Add(id)
		}
		e.cursor.Restore(entry.Cursor)
	})
}

// --- dragdrop.EditorInterface ---

// SelectionIDs returns the multi-selection in document order.
func (e *Editor) SelectionIDs() []types.BlockID { return e.selection.IDs() }

// IndexOf returns a block's position in document order.
func (e *Editor) IndexOf(id types.BlockID) int { return e.doc.IndexOf(id) }

// BlockCount returns the number of blocks.
func (e *Editor) BlockCount() int { return e.doc.Len() }

// RecordStructural pushes an immediate history snapshot.
func (e *Editor) RecordStructural() { e.history.RecordStructural() }

// MoveGroup moves blocks as one unit to precede the given index.
func (e *Editor) MoveGroup(ids []types.BlockID, target int) bool {
	return e.doc.MoveGroup(ids, target)
}

// --- structural operations (each one undo step) ---

// InsertAfter inserts a new block of the named type after the given
// block (zero id appends). An unregistered type falls back to the
// default type; ErrNotRegistered is surfaced alongside the usable node.
func (e *Editor) InsertAfter(typeName string, after types.BlockID, data block.Data) (*block.Node, error) {
	e.history.RecordStructural()
	return e.doc.InsertAfter(typeName, after, data)
}

// DeleteBlock removes a block, clearing instead when it is the last one.
func (e *Editor) DeleteBlock(id types.BlockID) bool {
	if _, ok := e.doc.ByID(id); !ok {
		return false
	}
	e.history.RecordStructural()
	ok := e.doc.Delete(id)
	if ok {
		e.selection.Remove(id)
	}
	return ok
}

// MoveBlock swaps a block with its adjacent sibling.
func (e *Editor) MoveBlock(id types.BlockID, dir types.Direction) bool {
	i := e.doc.IndexOf(id)
	if i < 0 {
		return false
	}
	if j := i + int(dir); j < 0 || j >= e.doc.Len() {
		return false
	}
	e.history.RecordStructural()
	return e.doc.Move(id, dir)
}

// TransformBlock changes a block's type in place, carrying content where
// meaningful. The block id is stable across the transform.
func (e *Editor) TransformBlock(id types.BlockID, newType string, data block.Data) error {
	if _, ok := e.doc.ByID(id); !ok {
		return e.doc.Transform(id, newType, data) // Produces the not-found error
	}
	if !e.registry.Has(newType) {
		// Unregistered target: caller-visible error, document untouched.
		_, err := e.registry.Lookup(newType)
		logger.Warnf("Transform: %v", err)
		return err
	}
	e.history.RecordStructural()
	return e.doc.Transform(id, newType, data)
}

// UpdateBlock applies a partial payload patch as one undo step.
func (e *Editor) UpdateBlock(id types.BlockID, partial block.Data) error {
	if _, ok := e.doc.ByID(id); !ok {
		return e.doc.Update(id, partial)
	}
	e.history.RecordStructural()
	return e.doc.Update(id, partial)
}

// DeleteSelection removes every selected block as a single undo step.
func (e *Editor) DeleteSelection() bool {
	ids := e.selection.IDs()
	if len(ids) == 0 {
		return false
	}
	e.history.RecordStructural()
	for _, id := range ids {
		e.doc.Delete(id)
	}
	e.selection.Clear()
	return true
}

// MergeWithPrevious merges a block into its predecessor, as backspace at
// block start does: the predecessor gains this block's text and the
// block is destroyed, all in one undo step. The caret lands at the
// junction.
func (e *Editor) MergeWithPrevious(id types.BlockID) bool {
	i := e.doc.IndexOf(id)
	if i <= 0 {
		return false
	}
	cur, _ := e.doc.ByID(id)
	prev, _ := e.doc.At(i - 1)

	e.history.RecordStructural()

	prevText := prev.PlainText()
	prev.Payload.SetPrimaryText(prevText + cur.PlainText())
	e.doc.Delete(id)
	e.selection.Remove(id)

	e.cursor.Restore(&types.CursorPosition{
		Block:     prev.ID,
		Offset:    graphemeLen(prevText),
		Collapsed: true,
	})
	return true
}

// SplitBlock splits a block's primary text at a grapheme offset: the
// block keeps the text before the split and a new default-type block with
// the remainder is inserted after it, all as one undo step. The caret
// lands at the start of the new block.
func (e *Editor) SplitBlock(id types.BlockID, offset int) (*block.Node, error) {
	n, ok := e.doc.ByID(id)
	if !ok {
		return nil, fmt.Errorf("split: no block with id %s", id)
	}

	e.history.RecordStructural()

	before, after := utils.GraphemeSplit(n.PlainText(), offset)
	n.Payload.SetPrimaryText(before)
	e.events.Dispatch(event.TypeBlockUpdated, event.BlockData{ID: id})

	fresh, err := e.doc.InsertAfter(e.registry.Fallback(), id, block.Data{"text": after})
	if fresh != nil {
		e.cursor.Restore(&types.CursorPosition{Block: fresh.ID, Offset: 0, Collapsed: true})
	}
	return fresh, err
}

// SetBlockText replaces a block's primary editable text. This is the
// character-level path: snapshots coalesce through the history debounce
// rather than recording immediately.
func (e *Editor) SetBlockText(id types.BlockID, text string) bool {
	n, ok := e.doc.ByID(id)
	if !ok {
		return false
	}
	e.history.RecordTextEdit()
	n.Payload.SetPrimaryText(text)
	e.events.Dispatch(event.TypeBlockUpdated, event.BlockData{ID: id})
	return true
}

// Undo reverts the most recent recorded state.
func (e *Editor) Undo() bool { return e.history.Undo() }

// Redo reapplies the most recently undone state.
func (e *Editor) Redo() bool { return e.history.Redo() }

// --- clipboard operations ---

// copyTargets is the selection in document order, or the caret block.
func (e *Editor) copyTargets() []*block.Node {
	ids := e.selection.IDs()
	if len(ids) == 0 {
		if pos := e.cursor.Capture(); pos != nil {
			ids = []types.BlockID{pos.Block}
		}
	}
	nodes := make([]*block.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := e.doc.ByID(id); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Copy writes the selection (or caret block) to the clipboard in both
// formats.
func (e *Editor) Copy() bool {
	targets := e.copyTargets()
	if len(targets) == 0 {
		return false
	}
	e.clipboard.Write(targets)
	return true
}

// Cut copies then removes the affected blocks as one undo step.
func (e *Editor) Cut() bool {
	targets := e.copyTargets()
	if len(targets) == 0 {
		return false
	}
	e.clipboard.Write(targets)
	e.history.RecordStructural()
	for _, n := range targets {
		e.doc.Delete(n.ID)
		e.selection.Remove(n.ID)
	}
	return true
}

// Paste inserts the best available clipboard content at the caret.
func (e *Editor) Paste() bool {
	content, rich := e.clipboard.Read()
	if content == "" {
		return false
	}
	if rich {
		return e.PasteMarkup(content)
	}
	return e.PasteText(content)
}

// PasteMarkup sanitizes external markup, classifies the result into
// blocks and inserts them at the caret. An empty block left behind at
// the paste point is discarded. One undo step.
func (e *Editor) PasteMarkup(input string) bool {
	nodes := e.sanitizer.Blocks(e.registry, input)
	return e.insertPasted(nodes)
}

// PasteText inserts plain text as one paragraph per blank-line group.
func (e *Editor) PasteText(text string) bool {
	return e.insertPasted(sanitize.PlainBlocks(e.registry, text))
}

func (e *Editor) insertPasted(nodes []*block.Node) bool {
	if len(nodes) == 0 {
		return false
	}

	after := types.None
	var anchor *block.Node
	if pos := e.cursor.Capture(); pos != nil {
		after = pos.Block
		anchor, _ = e.doc.ByID(after)
	}

	e.history.RecordStructural()

	blocks := e.doc.Blocks()
	insert := len(blocks)
	if after != types.None {
		if i := e.doc.IndexOf(after); i >= 0 {
			insert = i + 1
		}
	}
	next := make([]*block.Node, 0, len(blocks)+len(nodes))
	next = append(next, blocks[:insert]...)
	next = append(next, nodes...)
	next = append(next, blocks[insert:]...)
	e.doc.Replace(next)

	// Discard a left-behind empty block at the paste point.
	if anchor != nil && anchor.Type == e.registry.Fallback() && anchor.PlainText() == "" && e.doc.Len() > len(nodes) {
		e.doc.Delete(anchor.ID)
	}

	e.cursor.Restore(&types.CursorPosition{
		Block:     nodes[len(nodes)-1].ID,
		Offset:    graphemeLen(nodes[len(nodes)-1].PlainText()),
		Collapsed: true,
	})
	logger.DebugTagf("core", "Pasted %d block(s)", len(nodes))
	return true
}

// --- media operations ---

// InsertImage uploads a file through the injected collaborator and
// inserts an image block with the stored descriptor. Upload failures
// come back typed (media.ErrConfig and friends) and are never retried
// here.
func (e *Editor) InsertImage(ctx context.Context, file io.Reader, name string, after types.BlockID, progress media.ProgressFunc) (*block.Node, error) {
	res, err := e.uploader.Upload(ctx, file, name, progress)
	if err != nil {
		return nil, err
	}
	return e.InsertAfter(block.TypeImage, after, block.Data{
		"url":    res.URL,
		"width":  res.Width,
		"height": res.Height,
	})
}

// InsertEmbed inserts a link embed, enriched with preview metadata when
// the injected fetcher delivers any; a missing preview degrades to a
// plain link.
func (e *Editor) InsertEmbed(ctx context.Context, url string, after types.BlockID) (*block.Node, error) {
	data := block.Data{"url": url}
	if preview := e.previews.Fetch(ctx, url); preview != nil {
		data["title"] = preview.Title
		data["description"] = preview.Description
	}
	return e.InsertAfter(block.TypeEmbed, after, data)
}

// --- load/export ---

// LoadMarkup replaces the document from canonical markup, minting fresh
// ids, and resets history.
func (e *Editor) LoadMarkup(input string) error {
	nodes, err := markup.Load(e.registry, input)
	if err != nil {
		return err
	}
	e.doc.Replace(nodes)
	e.history.Clear()
	return nil
}

// ExportMarkup serializes the document to the canonical dialect,
// stripped of all internal decoration.
func (e *Editor) ExportMarkup() string {
	return markup.Export(e.doc.Blocks())
}

// ExportPlain serializes the document as plain text.
func (e *Editor) ExportPlain() string {
	return markup.ExportPlain(e.doc.Blocks())
}

// --- null host implementations for headless use ---

type nullSurface struct{}

func (nullSurface) Caret() (types.BlockID, int, bool, bool)  { return types.None, 0, true, false }
func (nullSurface) SetCaret(id types.BlockID, off int) bool  { return true }
func (nullSurface) FocusFirst()                              {}

type nullGeometry struct{}

func (nullGeometry) BlockMetrics() []dragdrop.Metric { return nil }
func (nullGeometry) ViewportBounds() (int, int)      { return 0, 0 }
func (nullGeometry) ScrollBy(rows int)               {}
