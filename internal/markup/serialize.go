// Package markup maps between the live block tree and the canonical
// markup dialect: a constrained HTML subset with a bit-stable block↔tag
// mapping, used for export, clipboard, history snapshots and load.
package markup

import (
	"fmt"
	"html"
	"strings"

	"github.com/sylvim/inkblock/internal/block"
)

// snapshotIDAttr carries block identity inside history snapshots only.
// Export never emits it and Load always discards it.
const snapshotIDAttr = "data-block-id"

// Export serializes blocks to canonical markup, stripped of all host-only
// decoration and identity. Re-importing exported content mints fresh ids.
func Export(blocks []*block.Node) string {
	var b strings.Builder
	for _, n := range blocks {
		writeBlock(&b, n, false)
	}
	return b.String()
}

// Snapshot serializes blocks for the history engine. It is the canonical
// dialect plus per-block identity so that cursor restoration can find its
// target after an undo/redo swap.
func Snapshot(blocks []*block.Node) string {
	var b strings.Builder
	for _, n := range blocks {
		writeBlock(&b, n, true)
	}
	return b.String()
}

// ExportPlain renders blocks as plain text, one blank line between
// blocks, for the text/plain clipboard twin.
func ExportPlain(blocks []*block.Node) string {
	parts := make([]string, 0, len(blocks))
	for _, n := range blocks {
		parts = append(parts, plainBlock(n))
	}
	return strings.Join(parts, "\n\n")
}

func plainBlock(n *block.Node) string {
	switch p := n.Payload.(type) {
	case *block.ListPayload:
		lines := make([]string, len(p.Items))
		for i, item := range p.Items {
			if p.Style == block.ListNumbered {
				lines[i] = fmt.Sprintf("%d. %s", i+1, item)
			} else {
				lines[i] = "- " + item
			}
		}
		return strings.Join(lines, "\n")
	case *block.ChecklistPayload:
		lines := make([]string, len(p.Items))
		for i, item := range p.Items {
			box := "[ ]"
			if i < len(p.Checked) && p.Checked[i] {
				box = "[x]"
			}
			lines[i] = box + " " + item
		}
		return strings.Join(lines, "\n")
	case *block.TablePayload:
		lines := make([]string, len(p.Rows))
		for i, row := range p.Rows {
			lines[i] = strings.Join(row, "\t")
		}
		return strings.Join(lines, "\n")
	case *block.DividerPayload:
		return "---"
	case *block.ImagePayload:
		if p.Caption != "" {
			return p.Caption + " (" + p.URL + ")"
		}
		return p.URL
	case *block.EmbedPayload:
		if p.Title != "" {
			return p.Title + " (" + p.URL + ")"
		}
		return p.URL
	default:
		return n.PlainText()
	}
}

func writeBlock(b *strings.Builder, n *block.Node, withID bool) {
	id := ""
	if withID {
		id = fmt.Sprintf(` %s=%q`, snapshotIDAttr, string(n.ID))
	}

	switch p := n.Payload.(type) {
	case *block.HeadingPayload:
		tag := fmt.Sprintf("h%d", p.Level)
		fmt.Fprintf(b, "<%s%s>%s</%s>", tag, id, inlineText(p.Text), tag)
	case *block.ListPayload:
		tag := "ul"
		if p.Style == block.ListNumbered {
			tag = "ol"
		}
		fmt.Fprintf(b, "<%s%s>", tag, id)
		for _, item := range p.Items {
			fmt.Fprintf(b, "<li>%s</li>", inlineText(item))
		}
		fmt.Fprintf(b, "</%s>", tag)
	case *block.ChecklistPayload:
		fmt.Fprintf(b, `<ul class="checklist"%s>`, id)
		for i, item := range p.Items {
			checked := "false"
			if i < len(p.Checked) && p.Checked[i] {
				checked = "true"
			}
			fmt.Fprintf(b, `<li data-checked="%s">%s</li>`, checked, inlineText(item))
		}
		b.WriteString("</ul>")
	case *block.CodePayload:
		// The code block's canonical re-encoding: text re-escaped and
		// minimally wrapped, language carried on the pre element.
		fmt.Fprintf(b, `<pre data-language=%q%s><code>%s</code></pre>`,
			p.Language, id, html.EscapeString(p.Text))
	case *block.DividerPayload:
		fmt.Fprintf(b, "<hr%s>", id)
	case *block.TablePayload:
		fmt.Fprintf(b, "<table%s>", id)
		for _, row := range p.Rows {
			b.WriteString("<tr>")
			for _, cell := range row {
				fmt.Fprintf(b, "<td>%s</td>", inlineText(cell))
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</table>")
	case *block.ImagePayload:
		fmt.Fprintf(b, "<figure%s>", id)
		fmt.Fprintf(b, `<img src=%q alt=%q`, p.URL, p.Caption)
		if p.Width > 0 {
			fmt.Fprintf(b, ` width="%d"`, p.Width)
		}
		if p.Height > 0 {
			fmt.Fprintf(b, ` height="%d"`, p.Height)
		}
		b.WriteString(">")
		if p.Caption != "" {
			fmt.Fprintf(b, "<figcaption>%s</figcaption>", inlineText(p.Caption))
		}
		b.WriteString("</figure>")
	case *block.EmbedPayload:
		fmt.Fprintf(b, `<figure class="embed"%s><a href=%q>%s</a>`,
			id, p.URL, inlineText(orDefault(p.Title, p.URL)))
		if p.Description != "" {
			fmt.Fprintf(b, "<figcaption>%s</figcaption>", inlineText(p.Description))
		}
		b.WriteString("</figure>")
	default:
		tag := "p"
		if n.Type == block.TypeQuote {
			tag = "blockquote"
		}
		fmt.Fprintf(b, "<%s%s>%s</%s>", tag, id, inlineText(n.PlainText()), tag)
	}
}

// inlineText escapes text for element content, turning embedded newlines
// into <br> so single line breaks round-trip.
func inlineText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = html.EscapeString(line)
	}
	return strings.Join(lines, "<br>")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
