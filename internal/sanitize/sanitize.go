// Package sanitize normalizes untrusted external markup into a safe,
// bounded-depth vocabulary before it can enter the document. Text passes
// through, comments drop, elements are renamed/whitelisted/unwrapped, and
// every attribute and inline style is checked against allow-lists.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/sylvim/inkblock/internal/block"
	"github.com/sylvim/inkblock/internal/logger"
	"github.com/sylvim/inkblock/internal/markup"
)

// DefaultMaxDepth bounds recursion into pasted markup; subtrees nested
// deeper collapse to plain text.
const DefaultMaxDepth = 10

// renameTags canonicalizes deprecated or generic tags before the
// whitelist check.
var renameTags = map[string]string{
	"div":    "p",
	"center": "p",
	"b":      "strong",
	"i":      "em",
	"strike": "del",
	"s":      "del",
	"font":   "span",
}

// allowedTags is the whitelisted vocabulary. Anything else is unwrapped
// (children promoted) or dropped when empty.
var allowedTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "blockquote": true,
	"pre": true, "code": true, "hr": true, "br": true,
	"table": true, "thead": true, "tbody": true, "tr": true, "td": true, "th": true,
	"figure": true, "figcaption": true, "img": true,
	"a": true, "strong": true, "em": true, "del": true, "u": true, "span": true,
	"input": true,
}

// droppedTags are removed together with their children; their content is
// never promoted.
var droppedTags = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true,
	"embed": true, "applet": true, "meta": true, "link": true,
	"head": true, "title": true, "base": true, "xml": true,
	"noscript": true, "svg": true, "math": true, "template": true,
}

// globalAttrs are allowed on every whitelisted element.
var globalAttrs = map[string]bool{"class": true, "id": true}

// tagAttrs is the per-tag attribute allow-list.
var tagAttrs = map[string]map[string]bool{
	"a":     {"href": true, "title": true, "target": true},
	"img":   {"src": true, "alt": true, "width": true, "height": true},
	"pre":   {"data-language": true},
	"td":    {"colspan": true, "rowspan": true},
	"th":    {"colspan": true, "rowspan": true},
	"ol":    {"start": true},
	"li":    {"data-checked": true},
	"input": {"type": true, "checked": true, "disabled": true},
}

// safeStyles is the small inline-style property set that survives.
var safeStyles = map[string]bool{
	"color": true, "background-color": true, "text-align": true,
	"font-weight": true, "font-style": true, "text-decoration": true,
}

// safeSchemes are the URL schemes allowed on href/src.
var safeSchemes = map[string]bool{
	"http": true, "https": true, "mailto": true, "tel": true, "ftp": true,
}

// Sanitizer holds the pipeline configuration.
type Sanitizer struct {
	maxDepth int
}

// New creates a sanitizer with the given recursion bound. Non-positive
// values use the default.
func New(maxDepth int) *Sanitizer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Sanitizer{maxDepth: maxDepth}
}

// Fragment sanitizes a markup fragment and returns the safe rendition.
// Sanitizing already-sanitized output is a fixed point.
func (s *Sanitizer) Fragment(input string) string {
	roots, err := markup.ParseFragment(input)
	if err != nil {
		// The html5 parser recovers from almost anything; a hard error
		// means the input is not usable as markup at all.
		logger.Warnf("Sanitize: parse failed, treating input as text: %v", err)
		return escapeText(input)
	}

	var b strings.Builder
	for _, root := range roots {
		stripArtifacts(root)
		for _, clean := range s.walk(root, 1) {
			if err := html.Render(&b, clean); err != nil {
				logger.Errorf("Sanitize: render failed: %v", err)
			}
		}
	}
	return b.String()
}

// Blocks sanitizes input and classifies the result into block nodes
// through registry construction. Runs of inline content coalesce into
// one paragraph each.
func (s *Sanitizer) Blocks(registry *block.Registry, input string) []*block.Node {
	clean := s.Fragment(input)
	roots, err := markup.ParseFragment(clean)
	if err != nil {
		return nil
	}

	var out []*block.Node
	var inlineRun []*html.Node
	flush := func() {
		if len(inlineRun) == 0 {
			return
		}
		text := strings.TrimSpace(runText(inlineRun))
		inlineRun = nil
		if text == "" {
			return
		}
		n, cErr := registry.Construct(block.TypeParagraph, block.Data{"text": text})
		if n != nil {
			out = append(out, n)
		}
		if cErr != nil {
			logger.Warnf("Sanitize: %v", cErr)
		}
	}

	for _, root := range roots {
		if isBlockLevel(root) {
			flush()
			typeName, data, ok := markup.Classify(root)
			if !ok {
				continue
			}
			n, cErr := registry.Construct(typeName, data)
			if n != nil {
				out = append(out, n)
			}
			if cErr != nil {
				logger.Warnf("Sanitize: %v", cErr)
			}
			continue
		}
		inlineRun = append(inlineRun, root)
	}
	flush()
	return out
}

// walk returns the sanitized replacement nodes for n. All returned nodes
// are freshly allocated and parentless.
func (s *Sanitizer) walk(n *html.Node, depth int) []*html.Node {
	switch n.Type {
	case html.TextNode:
		return []*html.Node{{Type: html.TextNode, Data: n.Data}}
	case html.CommentNode, html.DoctypeNode:
		return nil
	case html.ElementNode:
		// Handled below.
	default:
		return nil
	}

	tag := strings.ToLower(n.Data)
	if droppedTags[tag] {
		return nil
	}

	// Depth bound: beyond it the subtree collapses to plain text.
	if depth > s.maxDepth {
		text := markup.TextContent(n)
		if strings.TrimSpace(text) == "" {
			return nil
		}
		logger.DebugTagf("sanitize", "Depth bound hit at <%s>, flattening to text", tag)
		return []*html.Node{{Type: html.TextNode, Data: text}}
	}

	if renamed, ok := renameTags[tag]; ok {
		tag = renamed
	}

	if !allowedTags[tag] {
		// Non-whitelisted: unwrap by promoting sanitized children, or
		// drop entirely when there is nothing underneath.
		var promoted []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			promoted = append(promoted, s.walk(c, depth)...)
		}
		return promoted
	}

	clean := &html.Node{Type: html.ElementNode, Data: tag}
	clean.Attr = s.sanitizeAttrs(tag, n.Attr)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		for _, cc := range s.walk(c, depth+1) {
			clean.AppendChild(cc)
		}
	}
	return []*html.Node{clean}
}

func (s *Sanitizer) sanitizeAttrs(tag string, attrs []html.Attribute) []html.Attribute {
	var out []html.Attribute
	perTag := tagAttrs[tag]
	for _, a := range attrs {
		key := strings.ToLower(a.Key)

		// Event-handler-named attributes are stripped unconditionally.
		if strings.HasPrefix(key, "on") {
			continue
		}
		if key == "style" {
			if v := filterStyle(a.Val); v != "" {
				out = append(out, html.Attribute{Key: "style", Val: v})
			}
			continue
		}
		if !globalAttrs[key] && (perTag == nil || !perTag[key]) {
			continue
		}
		if (key == "href" || key == "src") && !SafeURL(a.Val) {
			continue
		}
		out = append(out, html.Attribute{Key: key, Val: a.Val})
	}
	return out
}

// SafeURL reports whether a URL is free of script-executing and unsafe
// data schemes. Relative URLs are safe.
func SafeURL(raw string) bool {
	// Strip control characters and whitespace that browsers ignore when
	// resolving a scheme.
	var b strings.Builder
	for _, r := range raw {
		if r > 0x20 {
			b.WriteRune(r)
		}
	}
	u := strings.ToLower(b.String())

	colon := strings.IndexByte(u, ':')
	if colon < 0 {
		return true // Relative
	}
	if i := strings.IndexAny(u, "/?#"); i >= 0 && i < colon {
		return true // Path component before any colon; still relative
	}
	scheme := u[:colon]
	if safeSchemes[scheme] {
		return true
	}
	if scheme == "data" {
		rest := u[colon+1:]
		for _, prefix := range []string{"image/png", "image/gif", "image/jpeg", "image/webp"} {
			if strings.HasPrefix(rest, prefix) {
				return true
			}
		}
	}
	return false
}

// filterStyle keeps only safe properties and rejects values that embed
// executable or remote-fetch constructs.
func filterStyle(style string) string {
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(parts[0]))
		val := strings.TrimSpace(parts[1])
		if !safeStyles[prop] {
			continue
		}
		lower := strings.ToLower(val)
		if strings.Contains(lower, "url(") ||
			strings.Contains(lower, "expression") ||
			strings.Contains(lower, "javascript:") ||
			strings.Contains(lower, "vbscript:") ||
			strings.Contains(lower, "data:") {
			continue
		}
		kept = append(kept, prop+": "+val)
	}
	return strings.Join(kept, "; ")
}

// stripArtifacts is the pre-pass removing known office/export-tool
// debris before the structural walk: namespaced attributes, Mso classes,
// export-tool marker ids.
func stripArtifacts(n *html.Node) {
	if n.Type == html.ElementNode {
		var kept []html.Attribute
		for _, a := range n.Attr {
			key := strings.ToLower(a.Key)
			if strings.Contains(key, ":") || strings.HasPrefix(key, "xmlns") || strings.HasPrefix(key, "mso-") {
				continue
			}
			if key == "class" && strings.HasPrefix(a.Val, "Mso") {
				continue
			}
			if key == "id" && strings.HasPrefix(a.Val, "docs-internal-guid") {
				continue
			}
			kept = append(kept, a)
		}
		n.Attr = kept
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		stripArtifacts(c)
	}
}

func isBlockLevel(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch strings.ToLower(n.Data) {
	case "p", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol",
		"blockquote", "pre", "hr", "table", "figure":
		return true
	}
	return false
}

// runText renders a run of inline nodes as text.
func runText(run []*html.Node) string {
	var b strings.Builder
	for _, n := range run {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			continue
		}
		b.WriteString(markup.TextContent(n))
	}
	return b.String()
}

func escapeText(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return replacer.Replace(s)
}
