package gdocai

import (
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/docsift/pkg/blocks"
)

// figureTypes are the visual element types treated as figures
var figureTypes = map[string]bool{
	"image":   true,
	"figure":  true,
	"photo":   true,
	"chart":   true,
	"diagram": true,
}

// GraphFromProto converts a Document AI response into a block graph.
//
// Per page, blocks become top-level generic regions, paragraphs become
// regions nested in the block whose text range contains them, and lines
// become Line blocks nested in their paragraph. Tables become a table layout
// region holding the table's lines plus a structural table with the same box.
// Blocks and paragraphs inside a table are left to the table. Elements not
// contained in any parent become top-level regions of their own. Top-level
// regions are ordered by their position in the document text.
func GraphFromProto(doc *documentaipb.Document) (*blocks.Graph, error) {
	if doc == nil {
		return nil, fmt.Errorf("no document provided")
	}

	g := blocks.NewGraph()
	for i, page := range doc.Pages {
		num := int(page.PageNumber)
		if num < 1 {
			num = i + 1
		}

		pb := &pageBuilder{doc: doc, page: page, num: num}
		pb.build()
		if err := pb.addTo(g); err != nil {
			return nil, fmt.Errorf("page %d: %w", num, err)
		}
	}
	return g, nil
}

// element is a converted block together with its text range
type element struct {
	block   *blocks.Block
	span    textSpan
	claimed bool // nested under another element
}

// pageBuilder converts one page
type pageBuilder struct {
	doc  *documentaipb.Document
	page *documentaipb.Document_Page
	num  int

	regions     []*element      // top-level regions
	descendants []*blocks.Block // everything else, added after the regions
}

func (pb *pageBuilder) id(kind string, i int) string {
	return fmt.Sprintf("p%d-%s-%d", pb.num, kind, i)
}

func (pb *pageBuilder) build() {
	dim := pb.page.Dimension

	lines := make([]*element, 0, len(pb.page.Lines))
	for i, line := range pb.page.Lines {
		lines = append(lines, &element{
			block: &blocks.Block{
				ID:   pb.id("line", i),
				Kind: blocks.KindLine,
				Type: "line",
				Text: strings.TrimSpace(textFromLayout(line.Layout, pb.doc.Text)),
				Box:  boxFromLayout(line.Layout, dim),
				Page: pb.num,
			},
			span: spanOf(line.Layout),
		})
	}

	tables := pb.tables(lines)

	paragraphs := make([]*element, 0, len(pb.page.Paragraphs))
	for i, para := range pb.page.Paragraphs {
		span := spanOf(para.Layout)
		if insideAny(span, tables) {
			continue
		}
		paragraphs = append(paragraphs, &element{
			block: &blocks.Block{
				ID:       pb.id("paragraph", i),
				Kind:     blocks.KindLayout,
				Layout:   blocks.LayoutGeneric,
				Type:     "paragraph",
				Box:      boxFromLayout(para.Layout, dim),
				Page:     pb.num,
				Children: claim(span, lines),
			},
			span: span,
		})
	}

	for i, block := range pb.page.Blocks {
		span := spanOf(block.Layout)
		if insideAny(span, tables) {
			continue
		}
		children := claim(span, paragraphs)
		if len(children) == 0 {
			children = claim(span, lines)
		}
		pb.regions = append(pb.regions, &element{
			block: &blocks.Block{
				ID:       pb.id("block", i),
				Kind:     blocks.KindLayout,
				Layout:   blocks.LayoutGeneric,
				Type:     "block",
				Box:      boxFromLayout(block.Layout, dim),
				Page:     pb.num,
				Children: children,
			},
			span: span,
		})
	}

	for _, para := range paragraphs {
		if para.claimed {
			pb.descendants = append(pb.descendants, para.block)
		} else {
			pb.regions = append(pb.regions, para)
		}
	}

	for _, line := range lines {
		pb.descendants = append(pb.descendants, line.block)
		if line.claimed {
			continue
		}
		pb.regions = append(pb.regions, &element{
			block: &blocks.Block{
				ID:       line.block.ID + "-region",
				Kind:     blocks.KindLayout,
				Layout:   blocks.LayoutGeneric,
				Type:     "line",
				Box:      line.block.Box,
				Page:     pb.num,
				Children: []string{line.block.ID},
			},
			span: line.span,
		})
	}

	pb.regions = append(pb.regions, tables...)
	pb.figures()

	sort.SliceStable(pb.regions, func(i, j int) bool {
		return pb.regions[i].span.sortKey() < pb.regions[j].span.sortKey()
	})
}

// tables converts the page tables. Each table yields a layout region that
// claims the lines inside it and a structural table with positioned cells.
func (pb *pageBuilder) tables(lines []*element) []*element {
	dim := pb.page.Dimension
	var regions []*element

	for t, table := range pb.page.Tables {
		regionID := pb.id("table", t)
		span := spanOf(table.Layout)
		box := boxFromLayout(table.Layout, dim)

		regions = append(regions, &element{
			block: &blocks.Block{
				ID:       regionID,
				Kind:     blocks.KindLayout,
				Layout:   blocks.LayoutTable,
				Type:     "table",
				Box:      box,
				Page:     pb.num,
				Children: claim(span, lines),
			},
			span: span,
		})

		structural := &blocks.Block{
			ID:   regionID + "-grid",
			Kind: blocks.KindTable,
			Type: "table",
			Box:  box,
			Page: pb.num,
		}

		rows := make([]*documentaipb.Document_Page_Table_TableRow, 0, len(table.HeaderRows)+len(table.BodyRows))
		rows = append(rows, table.HeaderRows...)
		rows = append(rows, table.BodyRows...)

		occupied := make(map[[2]int]bool)
		cellNum := 0
		for r, row := range rows {
			rowIndex := r + 1
			col := 1
			for _, cell := range row.Cells {
				for occupied[[2]int{rowIndex, col}] {
					col++
				}
				rowSpan, colSpan := int(cell.RowSpan), int(cell.ColSpan)
				if rowSpan < 1 {
					rowSpan = 1
				}
				if colSpan < 1 {
					colSpan = 1
				}
				for dr := 0; dr < rowSpan; dr++ {
					for dc := 0; dc < colSpan; dc++ {
						occupied[[2]int{rowIndex + dr, col + dc}] = true
					}
				}

				cellID := fmt.Sprintf("%s-cell-%d", regionID, cellNum)
				cellNum++

				cellBlock := &blocks.Block{
					ID:          cellID,
					Kind:        blocks.KindCell,
					Type:        "table_cell",
					Box:         boxFromLayout(cell.Layout, dim),
					Page:        pb.num,
					RowIndex:    rowIndex,
					ColumnIndex: col,
					RowSpan:     rowSpan,
					ColumnSpan:  colSpan,
				}
				if text := strings.Join(strings.Fields(textFromLayout(cell.Layout, pb.doc.Text)), " "); text != "" {
					wordID := cellID + "-text"
					cellBlock.Children = []string{wordID}
					pb.descendants = append(pb.descendants, &blocks.Block{
						ID:   wordID,
						Kind: blocks.KindWord,
						Type: "cell_text",
						Text: text,
						Page: pb.num,
					})
				}

				structural.Children = append(structural.Children, cellID)
				pb.descendants = append(pb.descendants, cellBlock)
				col += colSpan
			}
		}
		pb.descendants = append(pb.descendants, structural)
	}
	return regions
}

// figures converts image-like visual elements into figure regions
func (pb *pageBuilder) figures() {
	for i, ve := range pb.page.VisualElements {
		if !figureTypes[strings.ToLower(ve.Type)] {
			continue
		}
		pb.regions = append(pb.regions, &element{
			block: &blocks.Block{
				ID:     pb.id("figure", i),
				Kind:   blocks.KindLayout,
				Layout: blocks.LayoutFigure,
				Type:   ve.Type,
				Box:    boxFromLayout(ve.Layout, pb.page.Dimension),
				Page:   pb.num,
			},
			span: spanOf(ve.Layout),
		})
	}
}

func (pb *pageBuilder) addTo(g *blocks.Graph) error {
	for _, region := range pb.regions {
		if err := g.Add(region.block); err != nil {
			return err
		}
	}
	for _, b := range pb.descendants {
		if err := g.Add(b); err != nil {
			return err
		}
	}
	return nil
}

// claim returns the ids of the unclaimed candidates inside parent and marks
// them claimed
func claim(parent textSpan, candidates []*element) []string {
	var ids []string
	for _, c := range candidates {
		if c.claimed || !c.span.within(parent) {
			continue
		}
		c.claimed = true
		ids = append(ids, c.block.ID)
	}
	return ids
}

func insideAny(span textSpan, regions []*element) bool {
	for _, r := range regions {
		if span.within(r.span) {
			return true
		}
	}
	return false
}
