package block

// Built-in block types. They go through the same Register path as
// externally supplied types; nothing in the engine special-cases them.

// TypeParagraph and friends are the built-in type tags.
const (
	TypeParagraph = "paragraph"
	TypeHeading   = "heading"
	TypeQuote     = "quote"
	TypeList      = "list"
	TypeChecklist = "checklist"
	TypeCode      = "code"
	TypeDivider   = "divider"
	TypeTable     = "table"
	TypeImage     = "image"
	TypeEmbed     = "embed"
)

// List styles.
const (
	ListBulleted = "bulleted"
	ListNumbered = "numbered"
)

// NewBuiltinRegistry returns a registry with all built-in types registered
// and paragraph as the fallback.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry(TypeParagraph)
	RegisterBuiltins(r)
	return r
}

// RegisterBuiltins registers the built-in block types on r.
func RegisterBuiltins(r *Registry) {
	r.Register(paragraphType{})
	r.Register(headingType{})
	r.Register(quoteType{})
	r.Register(listType{})
	r.Register(checklistType{})
	r.Register(codeType{})
	r.Register(dividerType{})
	r.Register(tableType{})
	r.Register(imageType{})
	r.Register(embedType{})
}

// textCarry is the shared carry rule for text-bearing types: the primary
// text survives into any other text-bearing target, and becomes the sole
// item of a list-like target.
func textCarry(text, target string) Data {
	switch target {
	case TypeList, TypeChecklist:
		if text == "" {
			return nil
		}
		return Data{"items": []string{text}}
	case TypeParagraph, TypeHeading, TypeQuote, TypeCode:
		return Data{"text": text}
	}
	return nil
}

// --- paragraph ---

// TextPayload backs paragraph and quote blocks.
type TextPayload struct {
	Text string
}

func (p *TextPayload) PrimaryText() string     { return p.Text }
func (p *TextPayload) SetPrimaryText(s string) { p.Text = s }
func (p *TextPayload) Clone() Payload          { c := *p; return &c }

type paragraphType struct{}

func (paragraphType) Name() string { return TypeParagraph }
func (paragraphType) Construct(initial Data) Payload {
	return &TextPayload{Text: initial.Str("text")}
}
func (paragraphType) Extract(p Payload) Data {
	return Data{"text": p.(*TextPayload).Text}
}
func (paragraphType) Update(p Payload, partial Data) {
	if partial.Has("text") {
		p.(*TextPayload).Text = partial.Str("text")
	}
}
func (paragraphType) Carry(p Payload, target string) Data {
	return textCarry(p.(*TextPayload).Text, target)
}

// --- heading ---

// HeadingPayload holds heading text plus level 1-6.
type HeadingPayload struct {
	Text  string
	Level int
}

func (p *HeadingPayload) PrimaryText() string     { return p.Text }
func (p *HeadingPayload) SetPrimaryText(s string) { p.Text = s }
func (p *HeadingPayload) Clone() Payload          { c := *p; return &c }

type headingType struct{}

func (headingType) Name() string { return TypeHeading }
func (headingType) Construct(initial Data) Payload {
	level := initial.Int("level")
	if level < 1 || level > 6 {
		level = 2
	}
	return &HeadingPayload{Text: initial.Str("text"), Level: level}
}
func (headingType) Extract(p Payload) Data {
	h := p.(*HeadingPayload)
	return Data{"text": h.Text, "level": h.Level}
}
func (headingType) Update(p Payload, partial Data) {
	h := p.(*HeadingPayload)
	if partial.Has("text") {
		h.Text = partial.Str("text")
	}
	if partial.Has("level") {
		if l := partial.Int("level"); l >= 1 && l <= 6 {
			h.Level = l
		}
	}
}
func (headingType) Carry(p Payload, target string) Data {
	return textCarry(p.(*HeadingPayload).Text, target)
}

// --- quote ---

type quoteType struct{}

func (quoteType) Name() string { return TypeQuote }
func (quoteType) Construct(initial Data) Payload {
	return &TextPayload{Text: initial.Str("text")}
}
func (quoteType) Extract(p Payload) Data {
	return Data{"text": p.(*TextPayload).Text}
}
func (quoteType) Update(p Payload, partial Data) {
	if partial.Has("text") {
		p.(*TextPayload).Text = partial.Str("text")
	}
}
func (quoteType) Carry(p Payload, target string) Data {
	return textCarry(p.(*TextPayload).Text, target)
}

// --- list ---

// ListPayload holds a bulleted or numbered list. The primary editable
// region is the first item.
type ListPayload struct {
	Style string
	Items []string
}

func (p *ListPayload) PrimaryText() string {
	if len(p.Items) == 0 {
		return ""
	}
	return p.Items[0]
}
func (p *ListPayload) SetPrimaryText(s string) {
	if len(p.Items) == 0 {
		p.Items = []string{s}
		return
	}
	p.Items[0] = s
}
func (p *ListPayload) Clone() Payload {
	c := &ListPayload{Style: p.Style, Items: make([]string, len(p.Items))}
	copy(c.Items, p.Items)
	return c
}

type listType struct{}

func (listType) Name() string { return TypeList }
func (listType) Construct(initial Data) Payload {
	style := initial.Str("style")
	if style != ListNumbered {
		style = ListBulleted
	}
	items := initial.Strings("items")
	if items == nil {
		items = []string{}
	}
	return &ListPayload{Style: style, Items: items}
}
func (listType) Extract(p Payload) Data {
	l := p.(*ListPayload)
	items := make([]string, len(l.Items))
	copy(items, l.Items)
	return Data{"style": l.Style, "items": items}
}
func (listType) Update(p Payload, partial Data) {
	l := p.(*ListPayload)
	if partial.Has("style") {
		if s := partial.Str("style"); s == ListBulleted || s == ListNumbered {
			l.Style = s
		}
	}
	if partial.Has("items") {
		l.Items = partial.Strings("items")
	}
}
func (listType) Carry(p Payload, target string) Data {
	l := p.(*ListPayload)
	switch target {
	case TypeChecklist:
		items := make([]string, len(l.Items))
		copy(items, l.Items)
		return Data{"items": items}
	case TypeList:
		return Data{"items": l.Items, "style": l.Style}
	case TypeParagraph, TypeHeading, TypeQuote, TypeCode:
		// An emptied list's sole remaining item becomes the text; a
		// fuller list joins items on newlines rather than losing them.
		switch len(l.Items) {
		case 0:
			return nil
		case 1:
			return Data{"text": l.Items[0]}
		default:
			return Data{"text": joinLines(l.Items)}
		}
	}
	return nil
}

func joinLines(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += "\n"
		}
		out += item
	}
	return out
}

// --- checklist ---

// ChecklistPayload holds to-do items with done flags.
type ChecklistPayload struct {
	Items   []string
	Checked []bool
}

func (p *ChecklistPayload) PrimaryText() string {
	if len(p.Items) == 0 {
		return ""
	}
	return p.Items[0]
}
func (p *ChecklistPayload) SetPrimaryText(s string) {
	if len(p.Items) == 0 {
		p.Items = []string{s}
		p.Checked = []bool{false}
		return
	}
	p.Items[0] = s
}
func (p *ChecklistPayload) Clone() Payload {
	c := &ChecklistPayload{
		Items:   make([]string, len(p.Items)),
		Checked: make([]bool, len(p.Checked)),
	}
	copy(c.Items, p.Items)
	copy(c.Checked, p.Checked)
	return c
}

type checklistType struct{}

func (checklistType) Name() string { return TypeChecklist }
func (checklistType) Construct(initial Data) Payload {
	items := initial.Strings("items")
	if items == nil {
		items = []string{}
	}
	checked := make([]bool, len(items))
	if raw, ok := initial["checked"].([]bool); ok {
		copy(checked, raw)
	}
	return &ChecklistPayload{Items: items, Checked: checked}
}
func (checklistType) Extract(p Payload) Data {
	c := p.(*ChecklistPayload)
	items := make([]string, len(c.Items))
	checked := make([]bool, len(c.Checked))
	copy(items, c.Items)
	copy(checked, c.Checked)
	return Data{"items": items, "checked": checked}
}
func (checklistType) Update(p Payload, partial Data) {
	c := p.(*ChecklistPayload)
	if partial.Has("items") {
		c.Items = partial.Strings("items")
		checked := make([]bool, len(c.Items))
		copy(checked, c.Checked)
		c.Checked = checked
	}
	if raw, ok := partial["checked"].([]bool); ok && len(raw) == len(c.Items) {
		c.Checked = raw
	}
}
func (checklistType) Carry(p Payload, target string) Data {
	c := p.(*ChecklistPayload)
	switch target {
	case TypeList:
		items := make([]string, len(c.Items))
		copy(items, c.Items)
		return Data{"items": items}
	case TypeParagraph, TypeHeading, TypeQuote, TypeCode:
		switch len(c.Items) {
		case 0:
			return nil
		case 1:
			return Data{"text": c.Items[0]}
		default:
			return Data{"text": joinLines(c.Items)}
		}
	}
	return nil
}

// --- code ---

// CodePayload holds preformatted text and an optional language tag.
type CodePayload struct {
	Text     string
	Language string
}

func (p *CodePayload) PrimaryText() string     { return p.Text }
func (p *CodePayload) SetPrimaryText(s string) { p.Text = s }
func (p *CodePayload) Clone() Payload          { c := *p; return &c }

type codeType struct{}

func (codeType) Name() string { return TypeCode }
func (codeType) Construct(initial Data) Payload {
	return &CodePayload{Text: initial.Str("text"), Language: initial.Str("language")}
}
func (codeType) Extract(p Payload) Data {
	c := p.(*CodePayload)
	return Data{"text": c.Text, "language": c.Language}
}
func (codeType) Update(p Payload, partial Data) {
	c := p.(*CodePayload)
	if partial.Has("text") {
		c.Text = partial.Str("text")
	}
	if partial.Has("language") {
		c.Language = partial.Str("language")
	}
}
func (codeType) Carry(p Payload, target string) Data {
	return textCarry(p.(*CodePayload).Text, target)
}

// --- divider ---

// DividerPayload has no content at all.
type DividerPayload struct{}

func (p *DividerPayload) PrimaryText() string     { return "" }
func (p *DividerPayload) SetPrimaryText(s string) {}
func (p *DividerPayload) Clone() Payload          { return &DividerPayload{} }

type dividerType struct{}

func (dividerType) Name() string                       { return TypeDivider }
func (dividerType) Construct(initial Data) Payload     { return &DividerPayload{} }
func (dividerType) Extract(p Payload) Data             { return Data{} }
func (dividerType) Update(p Payload, partial Data)     {}
func (dividerType) Carry(p Payload, target string) Data { return nil }

// --- table ---

// TablePayload holds rows of cells. The primary editable region is the
// top-left cell.
type TablePayload struct {
	Rows [][]string
}

func (p *TablePayload) PrimaryText() string {
	if len(p.Rows) == 0 || len(p.Rows[0]) == 0 {
		return ""
	}
	return p.Rows[0][0]
}
func (p *TablePayload) SetPrimaryText(s string) {
	if len(p.Rows) == 0 {
		p.Rows = [][]string{{s}}
		return
	}
	if len(p.Rows[0]) == 0 {
		p.Rows[0] = []string{s}
		return
	}
	p.Rows[0][0] = s
}
func (p *TablePayload) Clone() Payload {
	rows := make([][]string, len(p.Rows))
	for i, row := range p.Rows {
		rows[i] = make([]string, len(row))
		copy(rows[i], row)
	}
	return &TablePayload{Rows: rows}
}

type tableType struct{}

func (tableType) Name() string { return TypeTable }
func (tableType) Construct(initial Data) Payload {
	rows := rowsFromData(initial)
	if rows == nil {
		rows = [][]string{{"", ""}, {"", ""}}
	}
	return &TablePayload{Rows: rows}
}
func (tableType) Extract(p Payload) Data {
	t := p.(*TablePayload)
	return Data{"rows": t.Clone().(*TablePayload).Rows}
}
func (tableType) Update(p Payload, partial Data) {
	if rows := rowsFromData(partial); rows != nil {
		p.(*TablePayload).Rows = rows
	}
}
func (tableType) Carry(p Payload, target string) Data { return nil }

func rowsFromData(d Data) [][]string {
	if d == nil {
		return nil
	}
	switch v := d["rows"].(type) {
	case [][]string:
		return v
	case []any:
		rows := make([][]string, 0, len(v))
		for _, raw := range v {
			switch cells := raw.(type) {
			case []string:
				rows = append(rows, cells)
			case []any:
				row := make([]string, 0, len(cells))
				for _, c := range cells {
					if s, ok := c.(string); ok {
						row = append(row, s)
					}
				}
				rows = append(rows, row)
			}
		}
		return rows
	}
	return nil
}

// --- image ---

// ImagePayload references an uploaded or linked image. The caption is the
// primary editable region.
type ImagePayload struct {
	URL     string
	Width   int
	Height  int
	Caption string
}

func (p *ImagePayload) PrimaryText() string     { return p.Caption }
func (p *ImagePayload) SetPrimaryText(s string) { p.Caption = s }
func (p *ImagePayload) Clone() Payload          { c := *p; return &c }

type imageType struct{}

func (imageType) Name() string { return TypeImage }
func (imageType) Construct(initial Data) Payload {
	return &ImagePayload{
		URL:     initial.Str("url"),
		Width:   initial.Int("width"),
		Height:  initial.Int("height"),
		Caption: initial.Str("caption"),
	}
}
func (imageType) Extract(p Payload) Data {
	i := p.(*ImagePayload)
	return Data{"url": i.URL, "width": i.Width, "height": i.Height, "caption": i.Caption}
}
func (imageType) Update(p Payload, partial Data) {
	i := p.(*ImagePayload)
	if partial.Has("url") {
		i.URL = partial.Str("url")
	}
	if partial.Has("width") {
		i.Width = partial.Int("width")
	}
	if partial.Has("height") {
		i.Height = partial.Int("height")
	}
	if partial.Has("caption") {
		i.Caption = partial.Str("caption")
	}
}
func (imageType) Carry(p Payload, target string) Data {
	return textCarry(p.(*ImagePayload).Caption, target)
}

// --- embed ---

// EmbedPayload is a link card: url plus preview metadata. A failed or
// absent preview degrades to a plain link.
type EmbedPayload struct {
	URL         string
	Title       string
	Description string
}

func (p *EmbedPayload) PrimaryText() string     { return p.URL }
func (p *EmbedPayload) SetPrimaryText(s string) { p.URL = s }
func (p *EmbedPayload) Clone() Payload          { c := *p; return &c }

type embedType struct{}

func (embedType) Name() string { return TypeEmbed }
func (embedType) Construct(initial Data) Payload {
	return &EmbedPayload{
		URL:         initial.Str("url"),
		Title:       initial.Str("title"),
		Description: initial.Str("description"),
	}
}
func (embedType) Extract(p Payload) Data {
	e := p.(*EmbedPayload)
	return Data{"url": e.URL, "title": e.Title, "description": e.Description}
}
func (embedType) Update(p Payload, partial Data) {
	e := p.(*EmbedPayload)
	if partial.Has("url") {
		e.URL = partial.Str("url")
	}
	if partial.Has("title") {
		e.Title = partial.Str("title")
	}
	if partial.Has("description") {
		e.Description = partial.Str("description")
	}
}
func (embedType) Carry(p Payload, target string) Data {
	return textCarry(p.(*EmbedPayload).URL, target)
}
