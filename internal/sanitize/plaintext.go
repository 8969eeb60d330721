package sanitize

import (
	"regexp"
	"strings"

	"github.com/sylvim/inkblock/internal/block"
)

var blankLines = regexp.MustCompile(`\n[ \t]*\n+`)

// tabWidth is the expansion applied to pasted tab characters.
const tabWidth = 4

// Paragraphs splits plain text into paragraph strings: one per
// blank-line-delimited group, single line breaks preserved inside a
// group, tabs expanded.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", strings.Repeat(" ", tabWidth))

	var out []string
	for _, group := range blankLines.Split(text, -1) {
		group = strings.Trim(group, "\n")
		if strings.TrimSpace(group) == "" {
			continue
		}
		out = append(out, group)
	}
	return out
}

// PlainBlocks turns plain text into one paragraph block per group.
func PlainBlocks(registry *block.Registry, text string) []*block.Node {
	groups := Paragraphs(text)
	nodes := make([]*block.Node, 0, len(groups))
	for _, group := range groups {
		n, err := registry.Construct(block.TypeParagraph, block.Data{"text": group})
		if n != nil && err == nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}
