// internal/tui/view.go
package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/sylvim/inkblock/internal/block"
	"github.com/sylvim/inkblock/internal/config"
	"github.com/sylvim/inkblock/internal/core"
	"github.com/sylvim/inkblock/internal/core/dragdrop"
	"github.com/sylvim/inkblock/internal/theme"
	"github.com/sylvim/inkblock/internal/types"
	"github.com/sylvim/inkblock/internal/utils"
)

// gutterWidth is the left column used for the selection marker.
const gutterWidth = 2

// viewRow is one rendered terminal row of a block.
type viewRow struct {
	id           types.BlockID
	prefix       string
	prefixStyle  string
	content      string
	contentStyle string

	// editable rows map their content onto the block's primary text;
	// startOffset is the grapheme offset of the row's first cluster.
	editable    bool
	startOffset int
}

// View lays the block document out as terminal rows and hosts the caret.
// It is the engine's cursor surface and drag geometry provider.
type View struct {
	tui          *TUI
	editor       *core.Editor
	activeTheme  *theme.Theme
	scrollMargin int

	scroll      int // First document row visible
	caretBlock  types.BlockID
	caretOffset int
	followCaret bool

	rows       []viewRow
	rowStarts  map[types.BlockID]int
	metrics    []dragdrop.Metric
	viewHeight int
}

// NewView creates a view. Bind must be called before the first render.
func NewView(tuiManager *TUI, activeTheme *theme.Theme, scrollMargin int) *View {
	return &View{
		tui:          tuiManager,
		activeTheme:  activeTheme,
		scrollMargin: scrollMargin,
		rowStarts:    make(map[types.BlockID]int),
	}
}

// Bind attaches the editor. Separate from construction because the editor
// itself is constructed with this view as its surface.
func (v *View) Bind(editor *core.Editor) {
	v.editor = editor
	if first := editor.Document().First(); first != nil {
		v.caretBlock = first.ID
	}
}

// SetTheme swaps the active theme.
func (v *View) SetTheme(t *theme.Theme) {
	if t != nil {
		v.activeTheme = t
	}
}

// --- cursor.Surface ---

// Caret reports the caret block and grapheme offset. The terminal host has
// no intra-block text selection, so the caret is always collapsed.
func (v *View) Caret() (types.BlockID, int, bool, bool) {
	if v.caretBlock == types.None {
		return types.None, 0, true, false
	}
	if _, ok := v.editor.Document().ByID(v.caretBlock); !ok {
		return types.None, 0, true, false
	}
	return v.caretBlock, v.caretOffset, true, true
}

// SetCaret places the caret; the next render scrolls it into view.
func (v *View) SetCaret(id types.BlockID, offset int) bool {
	n, ok := v.editor.Document().ByID(id)
	if !ok {
		return false
	}
	v.caretBlock = id
	v.caretOffset = utils.ClampOffset(n.PlainText(), offset)
	v.followCaret = true
	return true
}

// FocusFirst focuses the first block.
func (v *View) FocusFirst() {
	first := v.editor.Document().First()
	v.caretBlock = first.ID
	v.caretOffset = 0
	v.followCaret = true
}

// --- dragdrop.Geometry ---

// BlockMetrics returns per-block geometry from the last render, in screen
// coordinates.
func (v *View) BlockMetrics() []dragdrop.Metric {
	return v.metrics
}

// ViewportBounds returns the visible row range.
func (v *View) ViewportBounds() (int, int) {
	return 0, v.viewHeight
}

// ScrollBy scrolls the view, clamped to the content.
func (v *View) ScrollBy(rows int) {
	v.scroll += rows
	v.clampScroll()
}

func (v *View) clampScroll() {
	max := len(v.rows) - v.viewHeight
	if max < 0 {
		max = 0
	}
	if v.scroll > max {
		v.scroll = max
	}
	if v.scroll < 0 {
		v.scroll = 0
	}
}

// --- rendering ---

// Render lays out and draws the document above the status bar line.
func (v *View) Render() {
	width, height := v.tui.Size()
	v.viewHeight = height - config.StatusBarHeight
	if v.viewHeight <= 0 || width <= gutterWidth+1 {
		return
	}

	v.layout(width)
	if v.followCaret {
		v.scrollCaretIntoView()
		v.followCaret = false
	}
	v.clampScroll()
	v.buildMetrics()

	screen := v.tui.GetScreen()
	defaultStyle := v.activeTheme.GetStyle("Default")
	selected := v.selectedSet()
	dragged := v.draggedSet()

	for screenY := 0; screenY < v.viewHeight; screenY++ {
		for fillX := 0; fillX < width; fillX++ {
			screen.SetContent(fillX, screenY, ' ', nil, defaultStyle)
		}

		rowIdx := screenY + v.scroll
		if rowIdx < 0 || rowIdx >= len(v.rows) {
			continue
		}
		row := v.rows[rowIdx]

		prefixStyle := v.activeTheme.GetStyle(row.prefixStyle)
		contentStyle := v.activeTheme.GetStyle(row.contentStyle)
		gutter := ' '
		if selected[row.id] {
			gutter = '▌'
			prefixStyle = v.activeTheme.GetStyle("Selection")
			contentStyle = prefixStyle
		} else if dragged[row.id] {
			prefixStyle = v.activeTheme.GetStyle("DragSource")
			contentStyle = prefixStyle
		}

		screen.SetContent(0, screenY, gutter, nil, v.activeTheme.GetStyle("Marker"))
		x := drawString(screen, gutterWidth, screenY, width, row.prefix, prefixStyle)
		drawString(screen, x, screenY, width, row.content, contentStyle)
	}

	v.drawPlaceholder(screen, width)
	v.drawCaret(screen, width)
}

// selectedSet snapshots the selection for styling.
func (v *View) selectedSet() map[types.BlockID]bool {
	ids := v.editor.Selection().IDs()
	set := make(map[types.BlockID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func (v *View) draggedSet() map[types.BlockID]bool {
	session := v.editor.Drag().Session()
	if session == nil {
		return nil
	}
	set := make(map[types.BlockID]bool, len(session.IDs))
	for _, id := range session.IDs {
		set[id] = true
	}
	return set
}

// drawPlaceholder renders the drop indicator line at the insertion
// boundary of a live drag.
func (v *View) drawPlaceholder(screen tcell.Screen, width int) {
	session := v.editor.Drag().Session()
	if session == nil {
		return
	}

	doc := v.editor.Document()
	boundary := len(v.rows) // After the last row
	if session.Placeholder < doc.Len() {
		if n, ok := doc.At(session.Placeholder); ok {
			boundary = v.rowStarts[n.ID]
		}
	}

	y := boundary - v.scroll
	if y >= v.viewHeight {
		y = v.viewHeight - 1
	}
	if y < 0 {
		y = 0
	}
	style := v.activeTheme.GetStyle("Placeholder")
	for x := 0; x < width; x++ {
		screen.SetContent(x, y, '─', nil, style)
	}
}

// drawCaret positions the terminal cursor on the caret's grapheme.
func (v *View) drawCaret(screen tcell.Screen, width int) {
	rowIdx, col, ok := v.caretCell()
	if !ok {
		screen.HideCursor()
		return
	}
	y := rowIdx - v.scroll
	if y < 0 || y >= v.viewHeight {
		screen.HideCursor()
		return
	}
	if col >= width {
		col = width - 1
	}
	screen.ShowCursor(col, y)
}

// caretCell resolves the caret to a document row and column.
func (v *View) caretCell() (rowIdx, col int, ok bool) {
	if v.caretBlock == types.None {
		return 0, 0, false
	}
	start, exists := v.rowStarts[v.caretBlock]
	if !exists {
		return 0, 0, false
	}

	// Last editable row whose start offset does not exceed the caret.
	best := -1
	for i := start; i < len(v.rows) && v.rows[i].id == v.caretBlock; i++ {
		if v.rows[i].editable && v.rows[i].startOffset <= v.caretOffset {
			best = i
		}
	}
	if best < 0 {
		// Blocks without an editable region park the caret at their
		// first row.
		return start, gutterWidth, true
	}

	row := v.rows[best]
	within := v.caretOffset - row.startOffset
	if count := utils.GraphemeCount(row.content); within > count {
		within = count
	}
	before, _ := utils.GraphemeSplit(row.content, within)
	col = gutterWidth + visualWidth(row.prefix) + visualWidth(before)
	return best, col, true
}

// scrollCaretIntoView keeps the caret row within the scroll margin.
func (v *View) scrollCaretIntoView() {
	rowIdx, _, ok := v.caretCell()
	if !ok {
		return
	}
	if top := rowIdx - v.scrollMargin; v.scroll > top {
		v.scroll = top
	}
	if bottom := rowIdx - v.viewHeight + 1 + v.scrollMargin; v.scroll < bottom {
		v.scroll = bottom
	}
}

// --- hit testing ---

// HitTest returns the block at the given screen row, or None.
func (v *View) HitTest(screenY int) types.BlockID {
	rowIdx := screenY + v.scroll
	if rowIdx < 0 || rowIdx >= len(v.rows) {
		return types.None
	}
	return v.rows[rowIdx].id
}

// ClickAt moves the caret to the clicked cell.
func (v *View) ClickAt(x, screenY int) bool {
	rowIdx := screenY + v.scroll
	if rowIdx < 0 || rowIdx >= len(v.rows) {
		return false
	}
	row := v.rows[rowIdx]
	v.caretBlock = row.id
	v.caretOffset = 0
	if row.editable {
		textX := x - gutterWidth - visualWidth(row.prefix)
		v.caretOffset = row.startOffset + graphemeIndexAt(row.content, textX)
	}
	return true
}

// --- layout ---

func (v *View) layout(width int) {
	v.rows = v.rows[:0]
	v.rowStarts = make(map[types.BlockID]int)

	for _, n := range v.editor.Document().Blocks() {
		v.rowStarts[n.ID] = len(v.rows)
		v.rows = append(v.rows, v.blockRows(n, width-gutterWidth)...)
	}
}

// buildMetrics derives drag geometry from the laid-out rows, in screen
// coordinates.
func (v *View) buildMetrics() {
	blocks := v.editor.Document().Blocks()
	v.metrics = v.metrics[:0]
	for i, n := range blocks {
		top := v.rowStarts[n.ID]
		end := len(v.rows)
		if i+1 < len(blocks) {
			end = v.rowStarts[blocks[i+1].ID]
		}
		v.metrics = append(v.metrics, dragdrop.Metric{
			ID:     n.ID,
			Top:    top - v.scroll,
			Height: end - top,
		})
	}
}

// blockRows renders one block into terminal rows.
func (v *View) blockRows(n *block.Node, width int) []viewRow {
	switch p := n.Payload.(type) {
	case *block.HeadingPayload:
		prefix := strings.Repeat("#", p.Level) + " "
		return wrapEditable(n.ID, prefix, "Heading", p.Text, "Heading", width)

	case *block.TextPayload:
		if n.Type == block.TypeQuote {
			return wrapEditable(n.ID, "> ", "Quote", p.Text, "Quote", width)
		}
		return wrapEditable(n.ID, "", "Default", p.Text, "Default", width)

	case *block.ListPayload:
		return v.listRows(n.ID, p, width)

	case *block.ChecklistPayload:
		return v.checklistRows(n.ID, p, width)

	case *block.CodePayload:
		rows := []viewRow{{id: n.ID, prefix: "```" + p.Language, prefixStyle: "CodeHeader"}}
		rows = append(rows, wrapEditable(n.ID, "  ", "Code", p.Text, "Code", width)...)
		rows = append(rows, viewRow{id: n.ID, prefix: "```", prefixStyle: "CodeHeader"})
		return rows

	case *block.DividerPayload:
		rule := strings.Repeat("─", maxInt(1, width-1))
		return []viewRow{{id: n.ID, prefix: rule, prefixStyle: "Divider", editable: true}}

	case *block.TablePayload:
		rows := make([]viewRow, 0, len(p.Rows))
		for _, cells := range p.Rows {
			rows = append(rows, viewRow{
				id:           n.ID,
				prefix:       "│ ",
				prefixStyle:  "Marker",
				content:      strings.Join(cells, " │ "),
				contentStyle: "Default",
			})
		}
		if len(rows) == 0 {
			rows = append(rows, viewRow{id: n.ID, prefix: "│", prefixStyle: "Marker"})
		}
		return rows

	case *block.ImagePayload:
		rows := []viewRow{{
			id: n.ID, prefix: "[image] ", prefixStyle: "Marker",
			content: p.URL, contentStyle: "Link",
		}}
		rows = append(rows, wrapEditable(n.ID, "  ", "Caption", p.Caption, "Caption", width)...)
		return rows

	case *block.EmbedPayload:
		rows := wrapEditable(n.ID, "[embed] ", "Marker", p.URL, "Link", width)
		if p.Title != "" {
			rows = append(rows, viewRow{
				id: n.ID, prefix: "        ", content: p.Title, contentStyle: "Meta",
			})
		}
		return rows

	default:
		return wrapEditable(n.ID, "", "Default", n.PlainText(), "Default", width)
	}
}

func (v *View) listRows(id types.BlockID, p *block.ListPayload, width int) []viewRow {
	if len(p.Items) == 0 {
		return wrapEditable(id, "• ", "Marker", "", "Default", width)
	}
	var rows []viewRow
	for i, item := range p.Items {
		marker := "• "
		if p.Style == block.ListNumbered {
			marker = fmt.Sprintf("%d. ", i+1)
		}
		if i == 0 {
			rows = append(rows, wrapEditable(id, marker, "Marker", item, "Default", width)...)
			continue
		}
		rows = append(rows, viewRow{
			id: id, prefix: marker, prefixStyle: "Marker",
			content: item, contentStyle: "Default",
		})
	}
	return rows
}

func (v *View) checklistRows(id types.BlockID, p *block.ChecklistPayload, width int) []viewRow {
	if len(p.Items) == 0 {
		return wrapEditable(id, "[ ] ", "Marker", "", "Default", width)
	}
	var rows []viewRow
	for i, item := range p.Items {
		marker, style := "[ ] ", "Marker"
		if i < len(p.Checked) && p.Checked[i] {
			marker, style = "[x] ", "Checked"
		}
		if i == 0 {
			rows = append(rows, wrapEditable(id, marker, style, item, "Default", width)...)
			continue
		}
		rows = append(rows, viewRow{
			id: id, prefix: marker, prefixStyle: style,
			content: item, contentStyle: "Default",
		})
	}
	return rows
}

// wrapEditable splits text on newlines and wraps each line by grapheme
// count, tracking the primary-text offset at every row start. Continuation
// rows indent under the prefix.
func wrapEditable(id types.BlockID, prefix, prefixStyle, text, style string, width int) []viewRow {
	capacity := width - visualWidth(prefix)
	if capacity < 1 {
		capacity = 1
	}

	var rows []viewRow
	offset := 0
	for li, line := range strings.Split(text, "\n") {
		if li > 0 {
			offset++ // The newline cluster between lines
		}
		for _, chunk := range chunkGraphemes(line, capacity) {
			pre, preStyle := prefix, prefixStyle
			if len(rows) > 0 {
				pre, preStyle = strings.Repeat(" ", visualWidth(prefix)), "Default"
			}
			rows = append(rows, viewRow{
				id: id, prefix: pre, prefixStyle: preStyle,
				content: chunk, contentStyle: style,
				editable: true, startOffset: offset,
			})
			offset += utils.GraphemeCount(chunk)
		}
	}
	if len(rows) == 0 {
		rows = append(rows, viewRow{
			id: id, prefix: prefix, prefixStyle: prefixStyle,
			editable: true,
		})
	}
	return rows
}

// chunkGraphemes splits a line into chunks of at most capacity grapheme
// clusters. An empty line yields one empty chunk so it still renders.
func chunkGraphemes(line string, capacity int) []string {
	if line == "" {
		return []string{""}
	}
	var chunks []string
	var sb strings.Builder
	count := 0
	gr := uniseg.NewGraphemes(line)
	for gr.Next() {
		if count == capacity {
			chunks = append(chunks, sb.String())
			sb.Reset()
			count = 0
		}
		sb.WriteString(gr.Str())
		count++
	}
	if sb.Len() > 0 {
		chunks = append(chunks, sb.String())
	}
	return chunks
}

// graphemeIndexAt maps a visual column to a grapheme index.
func graphemeIndexAt(s string, col int) int {
	if col <= 0 {
		return 0
	}
	x, idx := 0, 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		if x >= col {
			return idx
		}
		x += gr.Width()
		idx++
	}
	return idx
}

// visualWidth returns the terminal cell width of a string.
func visualWidth(s string) int {
	return uniseg.StringWidth(s)
}

// drawString draws s at (x, y), clipped to the screen width. Returns the
// x position after the last drawn cell.
func drawString(screen tcell.Screen, x, y, width int, s string, style tcell.Style) int {
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		clusterWidth := gr.Width()
		if x+clusterWidth > width {
			break
		}
		runes := gr.Runes()
		if len(runes) > 0 {
			screen.SetContent(x, y, runes[0], runes[1:], style)
			for cw := 1; cw < clusterWidth; cw++ {
				screen.SetContent(x+cw, y, ' ', nil, style)
			}
		}
		x += clusterWidth
	}
	return x
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
