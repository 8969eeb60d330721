package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sylvim/inkblock/internal/block"
	"github.com/sylvim/inkblock/internal/media"
	"github.com/sylvim/inkblock/internal/types"
)

// fakeSurface is a scriptable caret host for headless editor tests.
type fakeSurface struct {
	id           types.BlockID
	offset       int
	ok           bool
	focusedFirst int
}

func (f *fakeSurface) Caret() (types.BlockID, int, bool, bool) {
	return f.id, f.offset, true, f.ok
}

func (f *fakeSurface) SetCaret(id types.BlockID, offset int) bool {
	f.id, f.offset, f.ok = id, offset, true
	return true
}

func (f *fakeSurface) FocusFirst() {
	f.focusedFirst++
}

func (f *fakeSurface) place(id types.BlockID, offset int) {
	f.id, f.offset, f.ok = id, offset, true
}

// newTestEditor builds a headless editor with an hour-long debounce so
// text-edit snapshots only record when a test flushes them.
func newTestEditor(t *testing.T) (*Editor, *fakeSurface) {
	t.Helper()
	surface := &fakeSurface{}
	e := NewEditor(Options{
		Surface:         surface,
		EditDebounce:    time.Hour,
		SystemClipboard: false,
	})
	t.Cleanup(e.Close)
	return e, surface
}

func loadParagraphs(t *testing.T, e *Editor, texts ...string) []*block.Node {
	t.Helper()
	var b strings.Builder
	for _, text := range texts {
		b.WriteString("<p>" + text + "</p>")
	}
	require.NoError(t, e.LoadMarkup(b.String()))
	blocks := e.Document().Blocks()
	require.Len(t, blocks, len(texts))
	return blocks
}

func TestNewEditorSeedsOneBlock(t *testing.T) {
	e, _ := newTestEditor(t)

	require.Equal(t, 1, e.Document().Len())
	first := e.Document().First()
	assert.Equal(t, e.Registry().Fallback(), first.Type)
	assert.Empty(t, first.PlainText())

	undo, redo := e.History().Depths()
	assert.Zero(t, undo)
	assert.Zero(t, redo)
}

func TestInsertUndoRedoRestoresCursor(t *testing.T) {
	e, surface := newTestEditor(t)
	blocks := loadParagraphs(t, e, "hello", "world")
	surface.place(blocks[0].ID, 3)

	fresh, err := e.InsertAfter(block.TypeHeading, blocks[0].ID, block.Data{"text": "Title"})
	require.NoError(t, err)
	require.Equal(t, 3, e.Document().Len())
	surface.place(fresh.ID, 5)

	require.True(t, e.Undo())
	assert.Equal(t, 2, e.Document().Len())
	// Snapshots preserve block identity, so the caret returns to the
	// exact pre-insert position.
	assert.Equal(t, blocks[0].ID, surface.id)
	assert.Equal(t, 3, surface.offset)

	require.True(t, e.Redo())
	assert.Equal(t, 3, e.Document().Len())
}

func TestUndoRestoresSelection(t *testing.T) {
	e, _ := newTestEditor(t)
	blocks := loadParagraphs(t, e, "a", "b", "c")

	e.Selection().Add(blocks[0].ID)
	e.Selection().Add(blocks[2].ID)
	require.True(t, e.DeleteSelection())
	require.Equal(t, 1, e.Document().Len())
	assert.False(t, e.Selection().Active())

	require.True(t, e.Undo())
	require.Equal(t, 3, e.Document().Len())
	assert.True(t, e.Selection().Has(blocks[0].ID))
	assert.True(t, e.Selection().Has(blocks[2].ID))
	assert.Equal(t, 2, e.Selection().Count())
}

func TestDeleteLastBlockClearsAndUndoes(t *testing.T) {
	e, _ := newTestEditor(t)
	blocks := loadParagraphs(t, e, "only one")
	id := blocks[0].ID

	require.True(t, e.DeleteBlock(id))
	require.Equal(t, 1, e.Document().Len())
	survivor := e.Document().First()
	assert.Equal(t, id, survivor.ID, "last-block delete keeps the id")
	assert.Empty(t, survivor.PlainText())

	require.True(t, e.Undo())
	restored := e.Document().First()
	assert.Equal(t, id, restored.ID)
	assert.Equal(t, "only one", restored.PlainText())
}

func TestTransformUnknownTargetLeavesDocument(t *testing.T) {
	e, _ := newTestEditor(t)
	blocks := loadParagraphs(t, e, "text")

	err := e.TransformBlock(blocks[0].ID, "wobble", nil)
	require.ErrorIs(t, err, block.ErrNotRegistered)
	assert.Equal(t, block.TypeParagraph, e.Document().First().Type)

	undo, _ := e.History().Depths()
	assert.Zero(t, undo, "a refused transform records nothing")
}

func TestTransformKeepsIDOneUndoStep(t *testing.T) {
	e, _ := newTestEditor(t)
	blocks := loadParagraphs(t, e, "headline")
	id := blocks[0].ID

	require.NoError(t, e.TransformBlock(id, block.TypeHeading, nil))
	n, ok := e.Document().ByID(id)
	require.True(t, ok)
	assert.Equal(t, block.TypeHeading, n.Type)
	assert.Equal(t, "headline", n.PlainText())

	require.True(t, e.Undo())
	n, ok = e.Document().ByID(id)
	require.True(t, ok)
	assert.Equal(t, block.TypeParagraph, n.Type)
}

func TestMergeWithPrevious(t *testing.T) {
	e, surface := newTestEditor(t)
	blocks := loadParagraphs(t, e, "Hello", "world")

	require.True(t, e.MergeWithPrevious(blocks[1].ID))
	require.Equal(t, 1, e.Document().Len())
	merged := e.Document().First()
	assert.Equal(t, blocks[0].ID, merged.ID)
	assert.Equal(t, "Helloworld", merged.PlainText())
	// Caret sits at the junction.
	assert.Equal(t, blocks[0].ID, surface.id)
	assert.Equal(t, 5, surface.offset)

	require.True(t, e.Undo())
	require.Equal(t, 2, e.Document().Len())
	assert.Equal(t, "Hello", e.Document().First().PlainText())
}

func TestMergeFirstBlockRefused(t *testing.T) {
	e, _ := newTestEditor(t)
	blocks := loadParagraphs(t, e, "a", "b")

	assert.False(t, e.MergeWithPrevious(blocks[0].ID))
	undo, _ := e.History().Depths()
	assert.Zero(t, undo)
}

func TestSplitBlock(t *testing.T) {
	e, surface := newTestEditor(t)
	blocks := loadParagraphs(t, e, "onetwo")

	fresh, err := e.SplitBlock(blocks[0].ID, 3)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	require.Equal(t, 2, e.Document().Len())
	assert.Equal(t, "one", e.Document().First().PlainText())
	assert.Equal(t, "two", fresh.PlainText())
	assert.Equal(t, fresh.ID, surface.id)
	assert.Zero(t, surface.offset)

	// The truncation and the insert revert as a single step.
	require.True(t, e.Undo())
	require.Equal(t, 1, e.Document().Len())
	assert.Equal(t, "onetwo", e.Document().First().PlainText())
}

func TestSetBlockTextDebouncesThroughFlush(t *testing.T) {
	e, _ := newTestEditor(t)
	blocks := loadParagraphs(t, e, "start")
	id := blocks[0].ID

	require.True(t, e.SetBlockText(id, "draft one"))
	undo, _ := e.History().Depths()
	assert.Zero(t, undo, "character edits do not record immediately")

	e.History().Flush()
	undo, _ = e.History().Depths()
	require.Equal(t, 1, undo)

	require.True(t, e.SetBlockText(id, "draft two"))
	require.True(t, e.Undo())
	n, _ := e.Document().ByID(id)
	assert.Equal(t, "draft one", n.PlainText())

	require.True(t, e.Redo())
	n, _ = e.Document().ByID(id)
	assert.Equal(t, "draft two", n.PlainText())
}

func TestUndoRevertsTextBurst(t *testing.T) {
	e, _ := newTestEditor(t)
	id := e.Document().First().ID

	require.True(t, e.SetBlockText(id, "Hello"))
	e.History().Flush()

	require.True(t, e.Undo())
	n, ok := e.Document().ByID(id)
	require.True(t, ok, "the empty block keeps its identity through undo")
	assert.Empty(t, n.PlainText())

	require.True(t, e.Redo())
	n, _ = e.Document().ByID(id)
	assert.Equal(t, "Hello", n.PlainText())
}

func TestUndoStepsBackThroughBurstAndInsert(t *testing.T) {
	e, _ := newTestEditor(t)
	id := e.Document().First().ID

	require.True(t, e.SetBlockText(id, "Hello"))
	_, err := e.InsertAfter(block.TypeHeading, id, block.Data{"text": "Title"})
	require.NoError(t, err)

	// First undo removes the insert, second reverts the typing burst.
	require.True(t, e.Undo())
	require.Equal(t, 1, e.Document().Len())
	n, _ := e.Document().ByID(id)
	assert.Equal(t, "Hello", n.PlainText())

	require.True(t, e.Undo())
	n, ok := e.Document().ByID(id)
	require.True(t, ok)
	assert.Empty(t, n.PlainText())

	assert.False(t, e.Undo(), "nothing predates the first burst")
}

func TestMoveBlockAtBoundaryRefused(t *testing.T) {
	e, _ := newTestEditor(t)
	blocks := loadParagraphs(t, e, "a", "b")

	assert.False(t, e.MoveBlock(blocks[0].ID, types.DirUp))
	assert.False(t, e.MoveBlock(blocks[1].ID, types.DirDown))
	undo, _ := e.History().Depths()
	assert.Zero(t, undo, "refused moves record nothing")

	require.True(t, e.MoveBlock(blocks[0].ID, types.DirDown))
	assert.Equal(t, blocks[1].ID, e.Document().First().ID)
}

func TestCopyPasteDuplicatesSelection(t *testing.T) {
	e, surface := newTestEditor(t)
	blocks := loadParagraphs(t, e, "alpha", "omega")

	e.Selection().Add(blocks[0].ID)
	require.True(t, e.Copy())
	e.Selection().Clear()

	surface.place(blocks[1].ID, 5)
	require.True(t, e.Paste())

	docBlocks := e.Document().Blocks()
	require.Len(t, docBlocks, 3)
	assert.Equal(t, "alpha", docBlocks[2].PlainText())
	// Pasting mints a fresh identity for the clone.
	assert.NotEqual(t, blocks[0].ID, docBlocks[2].ID)
	// Caret lands at the end of the pasted block.
	assert.Equal(t, docBlocks[2].ID, surface.id)
	assert.Equal(t, 5, surface.offset)
}

func TestCutThenPasteRestoresContent(t *testing.T) {
	e, _ := newTestEditor(t)
	blocks := loadParagraphs(t, e, "a", "b", "c")

	e.Selection().Add(blocks[0].ID)
	e.Selection().Add(blocks[1].ID)
	require.True(t, e.Cut())
	require.Equal(t, 1, e.Document().Len())
	assert.Equal(t, "c", e.Document().First().PlainText())

	// No caret: pasted blocks append at the end.
	require.True(t, e.Paste())
	docBlocks := e.Document().Blocks()
	require.Len(t, docBlocks, 3)
	assert.Equal(t, "a", docBlocks[1].PlainText())
	assert.Equal(t, "b", docBlocks[2].PlainText())
}

func TestCopyWithoutTargetsRefused(t *testing.T) {
	e, _ := newTestEditor(t)

	// No selection and no caret.
	assert.False(t, e.Copy())
	assert.False(t, e.Cut())
}

func TestPasteTextDiscardsEmptyAnchor(t *testing.T) {
	e, surface := newTestEditor(t)
	anchor := e.Document().First()
	surface.place(anchor.ID, 0)

	require.True(t, e.PasteText("hello\n\nworld"))
	docBlocks := e.Document().Blocks()
	require.Len(t, docBlocks, 2)
	assert.Equal(t, "hello", docBlocks[0].PlainText())
	assert.Equal(t, "world", docBlocks[1].PlainText())
	for _, n := range docBlocks {
		assert.NotEqual(t, anchor.ID, n.ID, "the empty paste anchor is discarded")
	}
}

func TestPasteMarkupSanitizesInput(t *testing.T) {
	e, surface := newTestEditor(t)
	blocks := loadParagraphs(t, e, "existing")
	surface.place(blocks[0].ID, 0)

	require.True(t, e.PasteMarkup(`<h2 onclick="x()">Title</h2><script>bad()</script><div>body</div>`))
	docBlocks := e.Document().Blocks()
	require.Len(t, docBlocks, 3)
	assert.Equal(t, block.TypeHeading, docBlocks[1].Type)
	assert.Equal(t, "Title", docBlocks[1].PlainText())
	assert.Equal(t, block.TypeParagraph, docBlocks[2].Type)
	assert.Equal(t, "body", docBlocks[2].PlainText())
}

func TestPasteEmptyContentRefused(t *testing.T) {
	e, _ := newTestEditor(t)

	assert.False(t, e.Paste(), "nothing copied yet")
	assert.False(t, e.PasteText("   \n  "))
	undo, _ := e.History().Depths()
	assert.Zero(t, undo)
}

// fakeUploader returns a canned result or error.
type fakeUploader struct {
	result *media.UploadResult
	err    error
}

func (f *fakeUploader) Upload(ctx context.Context, file io.Reader, name string, progress media.ProgressFunc) (*media.UploadResult, error) {
	return f.result, f.err
}

func TestInsertImageUploadsAndInserts(t *testing.T) {
	surface := &fakeSurface{}
	e := NewEditor(Options{
		Surface: surface,
		Uploader: &fakeUploader{result: &media.UploadResult{
			URL: "https://cdn.example.com/pic.png", Width: 640, Height: 480,
		}},
		SystemClipboard: false,
	})
	t.Cleanup(e.Close)
	blocks := loadParagraphs(t, e, "before")

	n, err := e.InsertImage(context.Background(), strings.NewReader("bytes"), "pic.png", blocks[0].ID, nil)
	require.NoError(t, err)
	img, ok := n.Payload.(*block.ImagePayload)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/pic.png", img.URL)
	assert.Equal(t, 640, img.Width)
	assert.Equal(t, 480, img.Height)
}

func TestInsertImageUploadFailure(t *testing.T) {
	e := NewEditor(Options{
		Surface:         &fakeSurface{},
		Uploader:        &fakeUploader{err: media.ErrTooLarge},
		SystemClipboard: false,
	})
	t.Cleanup(e.Close)
	loadParagraphs(t, e, "before")

	_, err := e.InsertImage(context.Background(), strings.NewReader("bytes"), "big.png", types.None, nil)
	require.ErrorIs(t, err, media.ErrTooLarge)
	assert.Equal(t, 1, e.Document().Len(), "failed uploads insert nothing")
	undo, _ := e.History().Depths()
	assert.Zero(t, undo)
}

func TestInsertImageWithoutUploader(t *testing.T) {
	e, _ := newTestEditor(t)

	_, err := e.InsertImage(context.Background(), strings.NewReader("x"), "x.png", types.None, nil)
	assert.ErrorIs(t, err, media.ErrConfig)
}

// fakePreviews answers every url with the same metadata.
type fakePreviews struct {
	preview *media.Preview
	err     error
}

func (f *fakePreviews) FetchPreview(ctx context.Context, url string) (*media.Preview, error) {
	return f.preview, f.err
}

func TestInsertEmbedEnrichedByPreview(t *testing.T) {
	e := NewEditor(Options{
		Surface: &fakeSurface{},
		Previews: &fakePreviews{preview: &media.Preview{
			Title: "Example", Description: "A site",
		}},
		SystemClipboard: false,
	})
	t.Cleanup(e.Close)

	n, err := e.InsertEmbed(context.Background(), "https://example.com", types.None)
	require.NoError(t, err)
	embed, ok := n.Payload.(*block.EmbedPayload)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", embed.URL)
	assert.Equal(t, "Example", embed.Title)
	assert.Equal(t, "A site", embed.Description)
}

func TestInsertEmbedDegradesToPlainLink(t *testing.T) {
	e := NewEditor(Options{
		Surface:         &fakeSurface{},
		Previews:        &fakePreviews{err: errors.New("provider down")},
		SystemClipboard: false,
	})
	t.Cleanup(e.Close)

	n, err := e.InsertEmbed(context.Background(), "https://example.com", types.None)
	require.NoError(t, err)
	embed, ok := n.Payload.(*block.EmbedPayload)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", embed.URL)
	assert.Empty(t, embed.Title)
}

func TestLoadMarkupClearsHistory(t *testing.T) {
	e, _ := newTestEditor(t)
	_, err := e.InsertAfter(block.TypeHeading, types.None, block.Data{"text": "h"})
	require.NoError(t, err)
	undo, _ := e.History().Depths()
	require.Equal(t, 1, undo)

	require.NoError(t, e.LoadMarkup("<p>fresh</p>"))
	undo, redo := e.History().Depths()
	assert.Zero(t, undo)
	assert.Zero(t, redo)
	assert.False(t, e.Undo(), "loaded documents start with no past")
	assert.Equal(t, "fresh", e.Document().First().PlainText())
}

func TestExportRoundTripThroughEditor(t *testing.T) {
	e, _ := newTestEditor(t)
	loadParagraphs(t, e, "one", "two")

	out := e.ExportMarkup()
	assert.Equal(t, "<p>one</p><p>two</p>", out)
	assert.Equal(t, "one\n\ntwo", e.ExportPlain())
}

func TestDeferredRestoreUsesScheduler(t *testing.T) {
	surface := &fakeSurface{}
	var queue []func()
	e := NewEditor(Options{
		Surface:         surface,
		SystemClipboard: false,
		Scheduler:       func(fn func()) { queue = append(queue, fn) },
	})
	t.Cleanup(e.Close)
	blocks := loadParagraphs(t, e, "hello")
	surface.place(blocks[0].ID, 2)

	fresh, err := e.InsertAfter(block.TypeHeading, blocks[0].ID, block.Data{"text": "h"})
	require.NoError(t, err)
	surface.place(fresh.ID, 1)
	require.True(t, e.Undo())

	// Restoration waits for the host to drain its queue.
	assert.Equal(t, fresh.ID, surface.id)
	require.Len(t, queue, 1)
	queue[0]()
	assert.Equal(t, blocks[0].ID, surface.id)
	assert.Equal(t, 2, surface.offset)
}
