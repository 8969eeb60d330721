package markup

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/sylvim/inkblock/internal/block"
	"github.com/sylvim/inkblock/internal/logger"
	"github.com/sylvim/inkblock/internal/types"
	"github.com/sylvim/inkblock/internal/utils"
)

// Load parses canonical markup and constructs one block per top-level
// node. Inbound block-identifying attributes are always discarded and
// fresh ids minted, so re-importing exported content never collides with
// prior identities.
func Load(registry *block.Registry, input string) ([]*block.Node, error) {
	return load(registry, input, false)
}

// LoadSnapshot is the history-engine flavor of Load: block ids embedded
// in the snapshot are kept so cursor restoration can find its targets.
func LoadSnapshot(registry *block.Registry, input string) ([]*block.Node, error) {
	return load(registry, input, true)
}

func load(registry *block.Registry, input string, keepIDs bool) ([]*block.Node, error) {
	roots, err := ParseFragment(input)
	if err != nil {
		return nil, fmt.Errorf("markup parse failed: %w", err)
	}

	var nodes []*block.Node
	for _, root := range roots {
		typeName, data, ok := Classify(root)
		if !ok {
			// Blank elements are noise on import, but a snapshot must
			// restore empty blocks faithfully, identity included.
			if !keepIDs || root.Type != html.ElementNode || Attr(root, snapshotIDAttr) == "" {
				continue
			}
			typeName, data = block.TypeParagraph, block.Data{"text": TextContent(root)}
		}
		n, constructErr := registry.Construct(typeName, data)
		if n == nil {
			continue
		}
		if constructErr != nil {
			logger.Warnf("Load: %v", constructErr)
		}
		if keepIDs {
			if id := Attr(root, snapshotIDAttr); id != "" {
				n.ID = types.BlockID(id)
			}
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// ParseFragment parses input as body content and returns the top-level
// nodes.
func ParseFragment(input string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	return html.ParseFragment(strings.NewReader(input), ctx)
}

// Classify maps one top-level node to exactly one block type and its
// construction data, using tag and class heuristics. ok is false for
// nodes carrying no content (blank text, comments).
func Classify(n *html.Node) (string, block.Data, bool) {
	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return "", nil, false
		}
		return block.TypeParagraph, block.Data{"text": text}, true
	}
	if n.Type != html.ElementNode {
		return "", nil, false
	}

	tag := strings.ToLower(n.Data)
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		// Heading level from the tag digit.
		level := int(tag[1] - '0')
		return block.TypeHeading, block.Data{"text": TextContent(n), "level": level}, true

	case "ul", "ol":
		items, checked, anyChecked := listItems(n)
		if anyChecked || hasClass(n, "checklist") {
			return block.TypeChecklist, block.Data{"items": items, "checked": checked}, true
		}
		style := block.ListBulleted
		if tag == "ol" {
			style = block.ListNumbered
		}
		return block.TypeList, block.Data{"style": style, "items": items}, true

	case "blockquote":
		return block.TypeQuote, block.Data{"text": TextContent(n)}, true

	case "pre":
		lang := Attr(n, "data-language")
		text := TextContent(n)
		if code := childElement(n, "code"); code != nil {
			text = TextContent(code)
		}
		return block.TypeCode, block.Data{"text": text, "language": lang}, true

	case "hr":
		return block.TypeDivider, nil, true

	case "table":
		return block.TypeTable, block.Data{"rows": tableRows(n)}, true

	case "figure":
		// Media detection by child inspection: an img child means image,
		// an anchor means link embed.
		if img := childElement(n, "img"); img != nil {
			return block.TypeImage, imageData(n, img), true
		}
		if a := childElement(n, "a"); a != nil {
			data := block.Data{"url": Attr(a, "href"), "title": TextContent(a)}
			if cap := childElement(n, "figcaption"); cap != nil {
				data["description"] = TextContent(cap)
			}
			return block.TypeEmbed, data, true
		}
		return block.TypeParagraph, block.Data{"text": TextContent(n)}, true

	case "img":
		return block.TypeImage, imageData(nil, n), true

	case "a":
		return block.TypeEmbed, block.Data{"url": Attr(n, "href"), "title": TextContent(n)}, true

	default:
		text := TextContent(n)
		if strings.TrimSpace(text) == "" {
			return "", nil, false
		}
		return block.TypeParagraph, block.Data{"text": text}, true
	}
}

// TextContent returns the node's text with <br> elements as newlines.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		switch cur.Type {
		case html.TextNode:
			b.WriteString(cur.Data)
		case html.ElementNode:
			if strings.EqualFold(cur.Data, "br") {
				b.WriteString("\n")
				return
			}
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return b.String()
}

// Attr returns the value of the named attribute, or "".
func Attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func childElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && strings.EqualFold(c.Data, tag) {
			return c
		}
		if found := childElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// listItems collects li texts plus checked flags. A list kind is judged
// checklist when any marker (data-checked or a checkbox input) appears.
func listItems(list *html.Node) (items []string, checked []bool, anyMarker bool) {
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || !strings.EqualFold(c.Data, "li") {
			continue
		}
		done := false
		if v := Attr(c, "data-checked"); v != "" {
			anyMarker = true
			done = v == "true"
		}
		if box := childElement(c, "input"); box != nil && strings.EqualFold(Attr(box, "type"), "checkbox") {
			anyMarker = true
			done = done || Attr(box, "checked") != "" || hasAttr(box, "checked")
		}
		items = append(items, strings.TrimSpace(TextContent(c)))
		checked = append(checked, done)
	}
	return items, checked, anyMarker
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return true
		}
	}
	return false
}

func tableRows(table *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, "tr") {
			var row []string
			for c := cur.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode &&
					(strings.EqualFold(c.Data, "td") || strings.EqualFold(c.Data, "th")) {
					row = append(row, strings.TrimSpace(TextContent(c)))
				}
			}
			rows = append(rows, row)
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

func imageData(figure, img *html.Node) block.Data {
	data := block.Data{
		"url":     Attr(img, "src"),
		"caption": Attr(img, "alt"),
	}
	if w := Attr(img, "width"); w != "" {
		data["width"] = atoi(w)
	}
	if h := Attr(img, "height"); h != "" {
		data["height"] = atoi(h)
	}
	if figure != nil {
		if cap := childElement(figure, "figcaption"); cap != nil {
			data["caption"] = utils.CollapseSpace(TextContent(cap))
		}
	}
	return data
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}
