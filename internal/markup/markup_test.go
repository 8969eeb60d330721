package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sylvim/inkblock/internal/block"
)

// buildDoc assembles one block of every built-in type.
func buildDoc(t *testing.T) []*block.Node {
	t.Helper()
	r := block.NewBuiltinRegistry()

	specs := []struct {
		typeName string
		data     block.Data
	}{
		{block.TypeParagraph, block.Data{"text": "plain & <escaped>"}},
		{block.TypeHeading, block.Data{"text": "Title", "level": 3}},
		{block.TypeQuote, block.Data{"text": "said so"}},
		{block.TypeList, block.Data{"style": block.ListNumbered, "items": []string{"one", "two"}}},
		{block.TypeChecklist, block.Data{"items": []string{"done", "todo"}, "checked": []bool{true, false}}},
		{block.TypeCode, block.Data{"text": "if a < b {\n\treturn\n}", "language": "go"}},
		{block.TypeDivider, nil},
		{block.TypeTable, block.Data{"rows": [][]string{{"a", "b"}, {"c", "d"}}}},
		{block.TypeImage, block.Data{"url": "https://example.com/x.png", "width": 80, "caption": "a caption"}},
		{block.TypeEmbed, block.Data{"url": "https://example.com", "title": "Example"}},
	}

	nodes := make([]*block.Node, 0, len(specs))
	for _, spec := range specs {
		n, err := r.Construct(spec.typeName, spec.data)
		require.NoError(t, err)
		nodes = append(nodes, n)
	}
	return nodes
}

func TestExportLoadRoundTrip(t *testing.T) {
	r := block.NewBuiltinRegistry()
	original := buildDoc(t)

	loaded, err := Load(r, Export(original))
	require.NoError(t, err)
	require.Len(t, loaded, len(original))

	for i, n := range loaded {
		assert.Equal(t, original[i].Type, n.Type, "block %d type", i)
		assert.Equal(t, original[i].PlainText(), n.PlainText(), "block %d text", i)
		// Export discards identity; loading mints fresh ids.
		assert.NotEqual(t, original[i].ID, n.ID, "block %d id", i)
	}
}

func TestExportIsStable(t *testing.T) {
	r := block.NewBuiltinRegistry()
	original := buildDoc(t)

	first := Export(original)
	loaded, err := Load(r, first)
	require.NoError(t, err)
	assert.Equal(t, first, Export(loaded), "export -> load -> export is bit-stable")
}

func TestExportOmitsSnapshotIDs(t *testing.T) {
	assert.NotContains(t, Export(buildDoc(t)), snapshotIDAttr)
}

func TestSnapshotRoundTripKeepsIDs(t *testing.T) {
	r := block.NewBuiltinRegistry()
	original := buildDoc(t)

	snap := Snapshot(original)
	assert.Contains(t, snap, snapshotIDAttr)

	loaded, err := LoadSnapshot(r, snap)
	require.NoError(t, err)
	require.Len(t, loaded, len(original))
	for i, n := range loaded {
		assert.Equal(t, original[i].ID, n.ID, "block %d id", i)
		assert.Equal(t, original[i].Type, n.Type, "block %d type", i)
	}
}

func TestSnapshotKeepsEmptyBlocks(t *testing.T) {
	r := block.NewBuiltinRegistry()
	n, err := r.Construct(block.TypeParagraph, nil)
	require.NoError(t, err)

	loaded, err := LoadSnapshot(r, Snapshot([]*block.Node{n}))
	require.NoError(t, err)
	require.Len(t, loaded, 1, "history snapshots restore empty blocks")
	assert.Equal(t, n.ID, loaded[0].ID)
	assert.Empty(t, loaded[0].PlainText())

	// On plain import the same empty paragraph is noise and is dropped.
	imported, err := Load(r, Export([]*block.Node{n}))
	require.NoError(t, err)
	assert.Empty(t, imported)
}

func TestHeadingLevelsRoundTrip(t *testing.T) {
	r := block.NewBuiltinRegistry()
	for level := 1; level <= 6; level++ {
		n, err := r.Construct(block.TypeHeading, block.Data{"text": "t", "level": level})
		require.NoError(t, err)

		loaded, err := Load(r, Export([]*block.Node{n}))
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		h, ok := loaded[0].Payload.(*block.HeadingPayload)
		require.True(t, ok)
		assert.Equal(t, level, h.Level)
	}
}

func TestChecklistStateRoundTrips(t *testing.T) {
	r := block.NewBuiltinRegistry()
	n, err := r.Construct(block.TypeChecklist, block.Data{
		"items": []string{"a", "b", "c"}, "checked": []bool{true, false, true},
	})
	require.NoError(t, err)

	loaded, err := Load(r, Export([]*block.Node{n}))
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	p, ok := loaded[0].Payload.(*block.ChecklistPayload)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, p.Items)
	assert.Equal(t, []bool{true, false, true}, p.Checked)
}

func TestCodePreservesVerbatimText(t *testing.T) {
	r := block.NewBuiltinRegistry()
	source := "for i := 0; i < n; i++ {\n\tsum += \"<tag>\"\n}"
	n, err := r.Construct(block.TypeCode, block.Data{"text": source, "language": "go"})
	require.NoError(t, err)

	loaded, err := Load(r, Export([]*block.Node{n}))
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	p, ok := loaded[0].Payload.(*block.CodePayload)
	require.True(t, ok)
	assert.Equal(t, source, p.Text)
	assert.Equal(t, "go", p.Language)
}

func TestNewlinesBecomeBreaks(t *testing.T) {
	r := block.NewBuiltinRegistry()
	n, err := r.Construct(block.TypeParagraph, block.Data{"text": "line one\nline two"})
	require.NoError(t, err)

	out := Export([]*block.Node{n})
	assert.Contains(t, out, "line one<br")

	loaded, err := Load(r, out)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "line one\nline two", loaded[0].PlainText())
}

func TestLoadUnknownElementFallsBack(t *testing.T) {
	r := block.NewBuiltinRegistry()

	loaded, err := Load(r, "<section>free text</section>")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, block.TypeParagraph, loaded[0].Type)
	assert.Equal(t, "free text", loaded[0].PlainText())
}

func TestExportPlainRendering(t *testing.T) {
	r := block.NewBuiltinRegistry()

	list, err := r.Construct(block.TypeList, block.Data{"style": block.ListNumbered, "items": []string{"x", "y"}})
	require.NoError(t, err)
	check, err := r.Construct(block.TypeChecklist, block.Data{"items": []string{"done"}, "checked": []bool{true}})
	require.NoError(t, err)
	hr, err := r.Construct(block.TypeDivider, nil)
	require.NoError(t, err)

	got := ExportPlain([]*block.Node{list, check, hr})
	assert.Equal(t, "1. x\n2. y\n\n[x] done\n\n---", got)
}
