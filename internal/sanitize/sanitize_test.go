package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sylvim/inkblock/internal/block"
)

func TestFragmentRenamesAndStripsHandlers(t *testing.T) {
	s := New(0)

	got := s.Fragment(`<div onclick="x()"><b>hi</b></div>`)
	assert.Equal(t, "<p><strong>hi</strong></p>", got)
}

func TestFragmentDropsScriptWithChildren(t *testing.T) {
	s := New(0)

	got := s.Fragment(`<p>keep</p><script>alert("nope")</script><style>p{}</style>`)
	assert.Equal(t, "<p>keep</p>", got)
}

func TestFragmentUnwrapsUnknownTags(t *testing.T) {
	s := New(0)

	got := s.Fragment(`<article><p>inner</p></article>`)
	assert.Equal(t, "<p>inner</p>", got)
}

func TestFragmentStripsUnsafeSchemes(t *testing.T) {
	s := New(0)

	got := s.Fragment(`<a href="javascript:alert(1)">x</a>`)
	assert.NotContains(t, got, "javascript")
	assert.Contains(t, got, "<a>x</a>")

	got = s.Fragment(`<a href="https://example.com">ok</a>`)
	assert.Contains(t, got, `href="https://example.com"`)
}

func TestFragmentStripsEmbeddedControlChars(t *testing.T) {
	s := New(0)

	got := s.Fragment("<a href=\"java\tscript:alert(1)\">x</a>")
	assert.NotContains(t, got, "script:alert")
}

func TestFragmentFiltersInlineStyle(t *testing.T) {
	s := New(0)

	got := s.Fragment(`<span style="color: red; position: fixed; background-image: url(http://evil)">x</span>`)
	assert.Contains(t, got, "color: red")
	assert.NotContains(t, got, "position")
	assert.NotContains(t, got, "url(")
}

func TestFragmentStripsOfficeArtifacts(t *testing.T) {
	s := New(0)

	got := s.Fragment(`<p class="MsoNormal" xmlns:w="urn:x" id="docs-internal-guid-abc">text</p>`)
	assert.Equal(t, "<p>text</p>", got)
}

func TestFragmentDepthBoundFlattensToText(t *testing.T) {
	s := New(3)

	deep := strings.Repeat("<ul><li>", 8) + "buried" + strings.Repeat("</li></ul>", 8)
	got := s.Fragment(deep)
	assert.Contains(t, got, "buried")
	// Nesting beyond the bound collapsed; at most 3 levels survive.
	assert.LessOrEqual(t, strings.Count(got, "<ul>"), 3)
}

func TestFragmentIdempotent(t *testing.T) {
	s := New(0)

	inputs := []string{
		`<div onclick="x()"><b>hi</b></div>`,
		`<article><h1 style="color:red">title</h1><script>x</script></article>`,
		`<ul><li data-checked="true">done</li></ul>`,
		`plain text & <i>markup</i>`,
	}
	for _, input := range inputs {
		once := s.Fragment(input)
		twice := s.Fragment(once)
		assert.Equal(t, once, twice, "input: %s", input)
	}
}

func TestSafeURL(t *testing.T) {
	assert.True(t, SafeURL("https://example.com/a"))
	assert.True(t, SafeURL("mailto:me@example.com"))
	assert.True(t, SafeURL("/relative/path"))
	assert.True(t, SafeURL("page.html"))
	assert.True(t, SafeURL("data:image/png;base64,AAAA"))

	assert.False(t, SafeURL("javascript:alert(1)"))
	assert.False(t, SafeURL("JaVaScRiPt:alert(1)"))
	assert.False(t, SafeURL("vbscript:x"))
	assert.False(t, SafeURL("data:text/html,<script>"))
	assert.False(t, SafeURL(" java\nscript:alert(1)"))
}

func TestBlocksClassifiesStructure(t *testing.T) {
	s := New(0)
	r := block.NewBuiltinRegistry()

	nodes := s.Blocks(r, `<h2>Title</h2><div>body text</div><ul><li>a</li><li>b</li></ul>`)
	require.Len(t, nodes, 3)

	assert.Equal(t, block.TypeHeading, nodes[0].Type)
	assert.Equal(t, "Title", nodes[0].PlainText())
	assert.Equal(t, block.TypeParagraph, nodes[1].Type)
	assert.Equal(t, "body text", nodes[1].PlainText())
	assert.Equal(t, block.TypeList, nodes[2].Type)
	list, ok := nodes[2].Payload.(*block.ListPayload)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, list.Items)
}

func TestBlocksCoalescesInlineRuns(t *testing.T) {
	s := New(0)
	r := block.NewBuiltinRegistry()

	nodes := s.Blocks(r, `loose <strong>inline</strong> text<p>real paragraph</p>`)
	require.Len(t, nodes, 2)
	assert.Equal(t, "loose inline text", nodes[0].PlainText())
	assert.Equal(t, "real paragraph", nodes[1].PlainText())
}

func TestBlocksEmptyInput(t *testing.T) {
	s := New(0)
	r := block.NewBuiltinRegistry()

	assert.Empty(t, s.Blocks(r, ""))
	assert.Empty(t, s.Blocks(r, "   \n  "))
}

func TestPlainBlocksSplitsOnBlankLines(t *testing.T) {
	r := block.NewBuiltinRegistry()

	nodes := PlainBlocks(r, "first para\nstill first\n\nsecond para\r\n\r\nthird")
	require.Len(t, nodes, 3)
	assert.Equal(t, "first para\nstill first", nodes[0].PlainText())
	assert.Equal(t, "second para", nodes[1].PlainText())
	assert.Equal(t, "third", nodes[2].PlainText())
	for _, n := range nodes {
		assert.Equal(t, block.TypeParagraph, n.Type)
	}
}

func TestParagraphsExpandsTabs(t *testing.T) {
	paras := Paragraphs("col\ttab")
	require.Len(t, paras, 1)
	assert.NotContains(t, paras[0], "\t")
}
