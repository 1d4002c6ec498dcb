package hocr

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/docsift/pkg/blocks"
	"github.com/gardar/docsift/pkg/geometry"
)

// regionClasses maps hOCR region classes to layout types
var regionClasses = map[string]blocks.LayoutType{
	"ocr_carea":  blocks.LayoutGeneric,
	"ocr_par":    blocks.LayoutGeneric,
	"ocr_block":  blocks.LayoutGeneric,
	"ocr_header": blocks.LayoutHeader,
	"ocr_footer": blocks.LayoutFooter,
	"ocr_pageno": blocks.LayoutPageNumber,
	"ocr_float":  blocks.LayoutFigure,
	"ocr_image":  blocks.LayoutFigure,
	"ocr_photo":  blocks.LayoutFigure,
	"ocr_table":  blocks.LayoutTable,
}

// lineClasses are the hOCR classes that hold one line of text
var lineClasses = map[string]bool{
	"ocr_line":      true,
	"ocrx_line":     true,
	"ocr_caption":   true,
	"ocr_textfloat": true,
}

// charsets maps declared charsets to decoders. Other non UTF-8 charsets are
// decoded as ISO 8859-1.
var charsets = map[string]*charmap.Charmap{
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"latin-1":      charmap.ISO8859_1,
	"iso-8859-2":   charmap.ISO8859_2,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1250": charmap.Windows1250,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

// LoadGraph reads an hOCR file into a block graph
func LoadGraph(path string) (*blocks.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hOCR file: %w", err)
	}
	g, err := ParseGraph(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hOCR file %s: %w", path, err)
	}
	return g, nil
}

// ParseGraph converts raw hOCR data into a block graph. Every ocr_page
// element becomes one page, numbered from 1 in document order.
func ParseGraph(data []byte) (*blocks.Graph, error) {
	decoded, err := decode(data)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		return nil, err
	}

	var pages []*html.Node
	var findPages func(*html.Node)
	findPages = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocr_page") {
			pages = append(pages, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findPages(c)
		}
	}
	findPages(doc)

	if len(pages) == 0 {
		return nil, fmt.Errorf("no ocr_page elements found in hOCR data")
	}

	b := &graphBuilder{graph: blocks.NewGraph(), used: make(map[string]bool)}
	for i, page := range pages {
		if err := b.page(page, i+1); err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	return b.graph, nil
}

// decode converts data to UTF-8 according to its declared charset
func decode(data []byte) ([]byte, error) {
	enc := detectCharset(data)
	if enc == "utf-8" || enc == "utf8" {
		return data, nil
	}

	cm, ok := charsets[enc]
	if !ok {
		cm = charmap.ISO8859_1
	}
	decoded, err := cm.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", enc, err)
	}
	return decoded, nil
}

// detectCharset returns the lower-cased charset declared in the document
// head, defaulting to utf-8
func detectCharset(data []byte) string {
	head := data
	if len(head) > 4096 {
		head = head[:4096]
	}
	content := strings.ToLower(string(head))

	i := strings.Index(content, "charset=")
	if i < 0 {
		return "utf-8"
	}
	rest := strings.TrimLeft(content[i+len("charset="):], `"' `)
	if end := strings.IndexAny(rest, "\"'; />"); end >= 0 {
		rest = rest[:end]
	}
	if rest == "" {
		return "utf-8"
	}
	return rest
}

// graphBuilder accumulates the blocks of every page. Blocks of the current
// page are kept pending until the page is complete so that page-level lines
// can be wrapped in regions without losing document order.
type graphBuilder struct {
	graph   *blocks.Graph
	used    map[string]bool
	counter int

	num     int      // current page number
	pageBox pixelBox // current page bbox
	hasPage bool     // whether the page declares a bbox
	pending []*blocks.Block
	byID    map[string]*blocks.Block
}

func (b *graphBuilder) page(n *html.Node, num int) error {
	b.num = num
	b.pageBox, b.hasPage = parseBBox(attr(n, "title"))
	b.pending = nil
	b.byID = make(map[string]*blocks.Block)

	// Lines and stray words directly on the page get a region of their own.
	wrappers := make(map[string]*blocks.Block)
	for _, id := range b.groupWords(b.children(n)) {
		child := b.byID[id]
		if child.Kind != blocks.KindLine {
			continue
		}
		wrappers[id] = &blocks.Block{
			ID:       b.newID("", "region"),
			Kind:     blocks.KindLayout,
			Layout:   blocks.LayoutGeneric,
			Type:     "ocr_line",
			Box:      child.Box,
			Page:     num,
			Children: []string{id},
		}
	}

	for _, blk := range b.pending {
		if wrapper, ok := wrappers[blk.ID]; ok {
			if err := b.graph.Add(wrapper); err != nil {
				return err
			}
		}
		if err := b.graph.Add(blk); err != nil {
			return err
		}
	}
	return nil
}

func (b *graphBuilder) add(blk *blocks.Block) string {
	b.pending = append(b.pending, blk)
	b.byID[blk.ID] = blk
	return blk.ID
}

// children converts the element children of n and returns the ids of the
// blocks that belong directly to n. Unclassified elements are transparent.
func (b *graphBuilder) children(n *html.Node) []string {
	var ids []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			ids = append(ids, b.node(c)...)
		}
	}
	return ids
}

func (b *graphBuilder) node(n *html.Node) []string {
	if hasClass(n, "ocrx_word") {
		return []string{b.word(n)}
	}
	if classIn(n, lineClasses) != "" {
		return []string{b.line(n)}
	}
	for _, class := range strings.Fields(attr(n, "class")) {
		if layout, ok := regionClasses[class]; ok {
			return []string{b.region(n, class, layout)}
		}
	}
	return b.children(n)
}

func (b *graphBuilder) region(n *html.Node, class string, layout blocks.LayoutType) string {
	return b.add(&blocks.Block{
		ID:       b.newID(attr(n, "id"), "region"),
		Kind:     blocks.KindLayout,
		Layout:   layout,
		Type:     class,
		Box:      b.box(n),
		Page:     b.num,
		Children: b.groupWords(b.children(n)),
	})
}

func (b *graphBuilder) line(n *html.Node) string {
	var texts, wordIDs []string
	for _, id := range b.children(n) {
		w := b.byID[id]
		if w.Kind != blocks.KindWord {
			continue
		}
		wordIDs = append(wordIDs, id)
		if w.Text != "" {
			texts = append(texts, w.Text)
		}
	}

	text := strings.Join(texts, " ")
	if len(wordIDs) == 0 {
		text = strings.Join(strings.Fields(textContent(n)), " ")
	}

	return b.add(&blocks.Block{
		ID:       b.newID(attr(n, "id"), "line"),
		Kind:     blocks.KindLine,
		Type:     classIn(n, lineClasses),
		Text:     text,
		Box:      b.box(n),
		Page:     b.num,
		Children: wordIDs,
	})
}

func (b *graphBuilder) word(n *html.Node) string {
	return b.add(&blocks.Block{
		ID:   b.newID(attr(n, "id"), "word"),
		Kind: blocks.KindWord,
		Type: "ocrx_word",
		Text: strings.Join(strings.Fields(textContent(n)), " "),
		Box:  b.box(n),
		Page: b.num,
	})
}

// groupWords replaces every run of consecutive word ids with a synthesized
// line holding their text
func (b *graphBuilder) groupWords(ids []string) []string {
	var result, run []string

	flush := func() {
		if len(run) == 0 {
			return
		}
		var texts []string
		var boxes []*geometry.Box
		for _, id := range run {
			w := b.byID[id]
			if w.Text != "" {
				texts = append(texts, w.Text)
			}
			boxes = append(boxes, w.Box)
		}
		result = append(result, b.add(&blocks.Block{
			ID:       b.newID("", "line"),
			Kind:     blocks.KindLine,
			Type:     "word_run",
			Text:     strings.Join(texts, " "),
			Box:      union(boxes),
			Page:     b.num,
			Children: run,
		}))
		run = nil
	}

	for _, id := range ids {
		if b.byID[id].Kind == blocks.KindWord {
			run = append(run, id)
			continue
		}
		flush()
		result = append(result, id)
	}
	flush()
	return result
}

// newID returns the element id when it is present and unused, otherwise a
// generated id
func (b *graphBuilder) newID(id, kind string) string {
	if id != "" && !b.used[id] {
		b.used[id] = true
		return id
	}
	for {
		b.counter++
		generated := fmt.Sprintf("p%d-%s-%d", b.num, kind, b.counter)
		if !b.used[generated] {
			b.used[generated] = true
			return generated
		}
	}
}

func (b *graphBuilder) box(n *html.Node) *geometry.Box {
	if !b.hasPage {
		return nil
	}
	bbox, ok := parseBBox(attr(n, "title"))
	if !ok {
		return nil
	}
	return bbox.normalize(b.pageBox)
}

// union returns the smallest box covering every non-nil box
func union(boxes []*geometry.Box) *geometry.Box {
	var out *geometry.Box
	for _, bx := range boxes {
		if bx == nil {
			continue
		}
		if out == nil {
			c := *bx
			out = &c
			continue
		}
		u := geometry.NewBoxFromCorners(
			min(out.Left, bx.Left),
			min(out.Top, bx.Top),
			max(out.Right(), bx.Right()),
			max(out.Bottom(), bx.Bottom()),
		)
		out = &u
	}
	return out
}

// textContent gets all text from a node and its children
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
		sb.WriteString(" ")
	}
	return sb.String()
}

// attr returns the value of a specific attribute from a node
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// classIn returns the first class of n present in set
func classIn(n *html.Node, set map[string]bool) string {
	for _, c := range strings.Fields(attr(n, "class")) {
		if set[c] {
			return c
		}
	}
	return ""
}
