package blocks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const textractSample = `{
  "DocumentMetadata": {"Pages": 1},
  "Blocks": [
    {"Id": "page-1", "BlockType": "PAGE", "Page": 1, "Relationships": [{"Type": "CHILD", "Ids": ["title", "list", "fig", "tbl-layout", "tbl"]}]},
    {"Id": "title", "BlockType": "LAYOUT_TITLE", "Page": 1,
     "Geometry": {"BoundingBox": {"Width": 0.5, "Height": 0.05, "Left": 0.1, "Top": 0.05}},
     "Relationships": [{"Type": "CHILD", "Ids": ["l1"]}]},
    {"Id": "l1", "BlockType": "LINE", "Text": "Annual Report", "Page": 1,
     "Relationships": [{"Type": "CHILD", "Ids": ["w1", "w2"]}]},
    {"Id": "w1", "BlockType": "WORD", "Text": "Annual", "Page": 1},
    {"Id": "w2", "BlockType": "WORD", "Text": "Report", "Page": 1},
    {"Id": "list", "BlockType": "LAYOUT_LIST", "Page": 1, "Relationships": [{"Type": "CHILD", "Ids": ["item"]}]},
    {"Id": "item", "BlockType": "LAYOUT_TEXT", "Page": 1, "Relationships": [{"Type": "CHILD", "Ids": ["l1"]}]},
    {"Id": "fig", "BlockType": "LAYOUT_FIGURE", "Page": 1},
    {"Id": "tbl-layout", "BlockType": "LAYOUT_TABLE", "Page": 1},
    {"Id": "kv", "BlockType": "LAYOUT_KEY_VALUE", "Page": 1},
    {"Id": "tbl", "BlockType": "TABLE", "Page": 1,
     "Relationships": [{"Type": "CHILD", "Ids": ["c1"]}, {"Type": "MERGED_CELL", "Ids": ["m1"]}]},
    {"Id": "c1", "BlockType": "CELL", "Page": 1, "RowIndex": 1, "ColumnIndex": 2, "RowSpan": 2, "ColumnSpan": 1,
     "Relationships": [{"Type": "CHILD", "Ids": ["w1"]}]},
    {"Id": "m1", "BlockType": "MERGED_CELL", "Page": 1}
  ]
}`

func TestParseTextract(t *testing.T) {
	g, err := ParseTextract([]byte(textractSample))
	require.NoError(t, err)
	assert.Equal(t, 13, g.Len())

	title, ok := g.Block("title")
	require.True(t, ok)
	assert.Equal(t, KindLayout, title.Kind)
	assert.Equal(t, LayoutGeneric, title.Layout)
	assert.Equal(t, "LAYOUT_TITLE", title.Type)
	require.NotNil(t, title.Box)
	assert.InDelta(t, 0.1, title.Box.Left, 1e-9)
	assert.Equal(t, []string{"l1"}, title.Children)

	line, _ := g.Block("l1")
	assert.Equal(t, KindLine, line.Kind)
	assert.Equal(t, "Annual Report", line.Text)
	assert.Nil(t, line.Box)

	fig, _ := g.Block("fig")
	assert.True(t, fig.IsLayout(LayoutFigure))

	kv, _ := g.Block("kv")
	assert.Equal(t, LayoutOther, kv.Layout)

	tbl, _ := g.Block("tbl")
	assert.Equal(t, KindTable, tbl.Kind)
	assert.Equal(t, []string{"c1"}, tbl.Children, "only CHILD relationships become children")

	cell, _ := g.Block("c1")
	assert.Equal(t, KindCell, cell.Kind)
	rs, cs := cell.Spans()
	assert.Equal(t, 2, rs)
	assert.Equal(t, 1, cs)

	merged, _ := g.Block("m1")
	assert.Equal(t, KindOther, merged.Kind)

	page, _ := g.Block("page-1")
	assert.Equal(t, KindPage, page.Kind)
}

func TestTopLevelLayouts(t *testing.T) {
	g, err := ParseTextract([]byte(textractSample))
	require.NoError(t, err)

	var ids []string
	for _, b := range g.TopLevelLayouts() {
		ids = append(ids, b.ID)
	}
	// "item" is nested under the list layout; PAGE parents do not count.
	assert.Equal(t, []string{"title", "list", "fig", "tbl-layout", "kv"}, ids)

	assert.Len(t, g.Tables(), 1)
	assert.Len(t, g.Figures(), 1)
}

func TestParseTextractRejectsMultipleChildGroups(t *testing.T) {
	data := `{"Blocks": [{"Id": "a", "BlockType": "LAYOUT_TEXT",
	  "Relationships": [{"Type": "CHILD", "Ids": ["b"]}, {"Type": "CHILD", "Ids": ["c"]}]}]}`
	_, err := ParseTextract([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one CHILD")
}

func TestParseTextractRejectsDuplicates(t *testing.T) {
	data := `{"Blocks": [{"Id": "a", "BlockType": "LINE"}, {"Id": "a", "BlockType": "LINE"}]}`
	_, err := ParseTextract([]byte(data))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateBlock))
}

func TestParseTextractInvalidJSON(t *testing.T) {
	_, err := ParseTextract([]byte(`{"Blocks": [`))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	g, err := ParseTextract([]byte(textractSample))
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	require.NoError(t, g.Add(&Block{ID: "broken", Kind: KindLayout, Children: []string{"nowhere"}}))
	err = g.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingBlock))

	var missing *MissingBlockError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "nowhere", missing.ID)
	assert.Equal(t, "broken", missing.Parent)
}

func TestValidateDetectsCycle(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(&Block{ID: "r", Kind: KindLayout, Children: []string{"a"}}))
	require.NoError(t, g.Add(&Block{ID: "a", Kind: KindLayout, Children: []string{"b", "l"}}))
	require.NoError(t, g.Add(&Block{ID: "b", Kind: KindLayout, Children: []string{"a"}}))
	require.NoError(t, g.Add(&Block{ID: "l", Kind: KindLine, Text: "text"}))

	err := g.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycle))

	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, "a", cycle.ID)
	assert.Equal(t, "b", cycle.Parent)
}

func TestValidateSelfReference(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(&Block{ID: "r", Kind: KindLayout, Children: []string{"r"}}))
	assert.True(t, errors.Is(g.Validate(), ErrCycle))
}

func TestValidateDeepChain(t *testing.T) {
	g := NewGraph()
	const depth = 20000
	for i := 0; i < depth; i++ {
		b := &Block{ID: fmt.Sprintf("n%d", i), Kind: KindLayout}
		if i+1 < depth {
			b.Children = []string{fmt.Sprintf("n%d", i+1)}
		}
		require.NoError(t, g.Add(b))
	}
	assert.NoError(t, g.Validate())
}

func TestGraphAdd(t *testing.T) {
	g := NewGraph()
	assert.Error(t, g.Add(nil))
	assert.Error(t, g.Add(&Block{Kind: KindLine}))
	require.NoError(t, g.Add(&Block{ID: "x", Kind: KindLine}))
	assert.Len(t, g.Blocks(), 1)
}

func TestLoadTextract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(textractSample), 0644))

	g, err := LoadTextract(path)
	require.NoError(t, err)
	assert.Equal(t, 13, g.Len())

	_, err = LoadTextract(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "layout", KindLayout.String())
	assert.Equal(t, "cell", KindCell.String())
	assert.Equal(t, "page-number", LayoutPageNumber.String())
	assert.Equal(t, "other", LayoutOther.String())
}
