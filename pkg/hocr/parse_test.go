package hocr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/docsift/pkg/blocks"
	"github.com/gardar/docsift/pkg/linearize"
)

const sampleHOCR = `<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="en" lang="en">
<head>
  <title></title>
  <meta http-equiv="Content-Type" content="text/html;charset=utf-8"/>
  <meta name="ocr-system" content="tesseract 5.3.0"/>
</head>
<body>
  <div class="ocr_page" id="page_1" title="image &quot;scan.png&quot;; bbox 0 0 1000 2000; ppageno 0">
    <div class="ocr_header" id="hdr_1" title="bbox 100 20 900 60">
      <span class="ocr_line" id="line_hdr" title="bbox 100 20 900 60">
        <span class="ocrx_word" id="word_h1" title="bbox 100 20 300 60; x_wconf 96">ACME</span>
        <span class="ocrx_word" id="word_h2" title="bbox 320 20 500 60; x_wconf 95">Corp</span>
      </span>
    </div>
    <div class="ocr_carea" id="block_1" title="bbox 100 100 900 400">
      <p class="ocr_par" id="par_1" title="bbox 100 100 900 400">
        <span class="ocr_line" id="line_1" title="bbox 100 100 900 150; baseline 0 -5">
          <span class="ocrx_word" id="word_1" title="bbox 100 100 250 150; x_wconf 93">Hello</span>
          <span class="ocrx_word" id="word_2" title="bbox 270 100 450 150; x_wconf 91"><strong>world</strong></span>
        </span>
        <span class="ocr_line" id="line_2" title="bbox 100 200 900 250">
          <span class="ocrx_word" id="word_3" title="bbox 100 200 300 250">Second</span>
          <span class="ocrx_word" id="word_4" title="bbox 320 200 500 250">line</span>
        </span>
      </p>
    </div>
    <div class="ocr_float" id="float_1" title="bbox 500 1000 900 1400">
      <span class="ocr_caption" id="cap_1" title="bbox 550 1100 850 1150">Figure caption</span>
    </div>
    <div class="ocr_carea" id="block_2" title="bbox 100 1000 900 1500">
      <span class="ocr_line" id="line_3" title="bbox 600 1200 800 1250">
        <span class="ocrx_word" id="word_5" title="bbox 600 1200 800 1250">inside</span>
      </span>
      <span class="ocr_line" id="line_4" title="bbox 100 1450 400 1500">
        <span class="ocrx_word" id="word_6" title="bbox 100 1450 400 1500">outside</span>
      </span>
    </div>
    <span class="ocr_line" id="line_5" title="bbox 100 1900 200 1950">
      <span class="ocrx_word" id="word_7" title="bbox 100 1900 200 1950">7</span>
    </span>
  </div>
  <div class="ocr_page" id="page_2" title="bbox 0 0 1000 1000">
    <div class="ocr_carea" id="block_3" title="bbox 0 0 1000 1000">
      <span class="ocrx_word" id="word_8" title="bbox 10 10 100 50">loose</span>
      <span class="ocrx_word" id="word_9" title="bbox 110 10 200 50">words</span>
    </div>
  </div>
</body>
</html>`

func TestParseGraphStructure(t *testing.T) {
	g, err := ParseGraph([]byte(sampleHOCR))
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	var ids []string
	for _, region := range g.TopLevelLayouts() {
		ids = append(ids, region.ID)
	}
	require.Len(t, ids, 6)
	assert.Equal(t, []string{"hdr_1", "block_1", "float_1", "block_2"}, ids[:4])

	hdr, _ := g.Block("hdr_1")
	assert.Equal(t, blocks.LayoutHeader, hdr.Layout)
	assert.Equal(t, 1, hdr.Page)

	block, _ := g.Block("block_1")
	assert.Equal(t, []string{"par_1"}, block.Children)

	par, _ := g.Block("par_1")
	assert.Equal(t, blocks.KindLayout, par.Kind)
	assert.Equal(t, []string{"line_1", "line_2"}, par.Children)

	line, _ := g.Block("line_1")
	assert.Equal(t, blocks.KindLine, line.Kind)
	assert.Equal(t, "Hello world", line.Text)
	assert.Equal(t, []string{"word_1", "word_2"}, line.Children)
	require.NotNil(t, line.Box)
	assert.InDelta(t, 0.1, line.Box.Left, 1e-9)
	assert.InDelta(t, 0.05, line.Box.Top, 1e-9)
	assert.InDelta(t, 0.8, line.Box.Width, 1e-9)
	assert.InDelta(t, 0.025, line.Box.Height, 1e-9)

	fig, _ := g.Block("float_1")
	assert.Equal(t, blocks.LayoutFigure, fig.Layout)

	caption, _ := g.Block("cap_1")
	assert.Equal(t, "Figure caption", caption.Text)

	pageLine := g.TopLevelLayouts()[4]
	assert.Equal(t, []string{"line_5"}, pageLine.Children, "page-level lines get their own region")

	loose := g.TopLevelLayouts()[5]
	assert.Equal(t, "block_3", loose.ID)
	assert.Equal(t, 2, loose.Page)
	require.Len(t, loose.Children, 1)
	run, _ := g.Block(loose.Children[0])
	assert.Equal(t, blocks.KindLine, run.Kind)
	assert.Equal(t, "loose words", run.Text)
	require.NotNil(t, run.Box)
	assert.InDelta(t, 0.01, run.Box.Left, 1e-9)
	assert.InDelta(t, 0.19, run.Box.Width, 1e-9)
}

func TestParseGraphLinearizes(t *testing.T) {
	g, err := ParseGraph([]byte(sampleHOCR))
	require.NoError(t, err)

	opts := linearize.DefaultOptions()
	opts.ExcludePageHeader = true
	res, err := linearize.Linearize(g, opts)
	require.NoError(t, err)

	assert.Equal(t, "Hello world\nSecond line\n\noutside\n\n7\n\n", res.Pages[1])
	assert.Equal(t, "loose words\n\n", res.Pages[2])
}

func TestParseGraphDuplicateIDs(t *testing.T) {
	data := `<html><body>
<div class="ocr_page" title="bbox 0 0 100 100">
  <span class="ocr_line" id="dup"><span class="ocrx_word" id="dup">a</span></span>
  <span class="ocr_line" id="dup">b</span>
</div></body></html>`

	g, err := ParseGraph([]byte(data))
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	var texts []string
	for _, region := range g.TopLevelLayouts() {
		line, ok := g.Block(region.Children[0])
		require.True(t, ok)
		texts = append(texts, line.Text)
	}
	assert.Equal(t, []string{"a", "b"}, texts)
}

func TestParseGraphWithoutPageBox(t *testing.T) {
	data := `<html><body><div class="ocr_page"><span class="ocr_line" title="bbox 1 2 3 4">text</span></div></body></html>`

	g, err := ParseGraph([]byte(data))
	require.NoError(t, err)
	region := g.TopLevelLayouts()[0]
	line, _ := g.Block(region.Children[0])
	assert.Equal(t, "text", line.Text)
	assert.Nil(t, line.Box)
}

func TestParseGraphNoPages(t *testing.T) {
	_, err := ParseGraph([]byte(`<html><body><p>plain</p></body></html>`))
	assert.Error(t, err)
}

func TestParseGraphLatin1(t *testing.T) {
	src := `<html><head><meta http-equiv="Content-Type" content="text/html; charset=iso-8859-1"/></head>
<body><div class="ocr_page" title="bbox 0 0 10 10"><span class="ocr_line">Reykjavík</span></div></body></html>`
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(src))
	require.NoError(t, err)

	g, err := ParseGraph(encoded)
	require.NoError(t, err)
	region := g.TopLevelLayouts()[0]
	line, _ := g.Block(region.Children[0])
	assert.Equal(t, "Reykjavík", line.Text)
}

func TestDetectCharset(t *testing.T) {
	assert.Equal(t, "utf-8", detectCharset([]byte(`<meta charset="UTF-8">`)))
	assert.Equal(t, "windows-1252", detectCharset([]byte(`content="text/html; charset=windows-1252"`)))
	assert.Equal(t, "utf-8", detectCharset([]byte(`<html></html>`)))
}

func TestParseTitle(t *testing.T) {
	props := ParseTitle("bbox 100 200 300 400; x_wconf 95;; baseline 0.01 -3")
	assert.Equal(t, []string{"100", "200", "300", "400"}, props["bbox"])
	assert.Equal(t, []string{"95"}, props["x_wconf"])
	assert.Equal(t, []string{"0.01", "-3"}, props["baseline"])

	_, ok := parseBBox("bbox 1 2 three 4")
	assert.False(t, ok)
}

func TestLoadGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.hocr")
	require.NoError(t, os.WriteFile(path, []byte(sampleHOCR), 0644))

	g, err := LoadGraph(path)
	require.NoError(t, err)
	assert.Len(t, g.TopLevelLayouts(), 6)

	_, err = LoadGraph(filepath.Join(t.TempDir(), "missing.hocr"))
	assert.Error(t, err)
}
