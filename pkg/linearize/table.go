package linearize

import (
	"strings"

	"github.com/gardar/docsift/pkg/blocks"
	"github.com/gardar/docsift/pkg/geometry"
)

// cellKey addresses a grid position, both indices 1-based
type cellKey struct {
	row, col int
}

// tableGrid is the dense view of a structural table after span expansion
type tableGrid struct {
	cells  map[cellKey]string
	maxRow int
	maxCol int
}

func newTableGrid() *tableGrid {
	return &tableGrid{cells: make(map[cellKey]string)}
}

// place writes text at every position covered by the cell's spans.
// Overlapping spans are last-write-wins.
func (t *tableGrid) place(rowIndex, colIndex, rowSpan, colSpan int, text string) {
	for r := rowIndex; r < rowIndex+rowSpan; r++ {
		for c := colIndex; c < colIndex+colSpan; c++ {
			t.cells[cellKey{r, c}] = text
		}
	}
	if last := rowIndex + rowSpan - 1; last > t.maxRow {
		t.maxRow = last
	}
	if last := colIndex + colSpan - 1; last > t.maxCol {
		t.maxCol = last
	}
}

// rows renders rows 1..maxRow and columns 1..maxCol, empty string for holes
func (t *tableGrid) rows() [][]string {
	result := make([][]string, 0, t.maxRow)
	for r := 1; r <= t.maxRow; r++ {
		row := make([]string, t.maxCol)
		for c := 1; c <= t.maxCol; c++ {
			row[c-1] = t.cells[cellKey{r, c}]
		}
		result = append(result, row)
	}
	return result
}

// findTable returns the first structural table on the region's page whose box
// matches the region's box within tolerance. Tables without a page are
// candidates on every page.
func findTable(g *blocks.Graph, region *blocks.Block, page int, tolerance float64) *blocks.Block {
	for _, t := range g.Tables() {
		if t.Page != 0 && t.Page != page {
			continue
		}
		if geometry.BoxesMatch(region.Box, t.Box, tolerance) {
			return t
		}
	}
	return nil
}

// buildGrid expands the cells of a structural table into a grid
func buildGrid(g *blocks.Graph, table *blocks.Block) (*tableGrid, error) {
	grid := newTableGrid()
	for _, id := range table.Children {
		cell, ok := g.Block(id)
		if !ok {
			return nil, &blocks.MissingBlockError{ID: id, Parent: table.ID}
		}
		if cell.Kind != blocks.KindCell {
			continue
		}

		text, err := cellText(g, cell)
		if err != nil {
			return nil, err
		}
		rowSpan, colSpan := cell.Spans()
		grid.place(cell.RowIndex, cell.ColumnIndex, rowSpan, colSpan, text)
	}
	return grid, nil
}

// cellText joins the text of the cell's own line and word children with spaces
func cellText(g *blocks.Graph, cell *blocks.Block) (string, error) {
	var parts []string
	for _, id := range cell.Children {
		child, ok := g.Block(id)
		if !ok {
			return "", &blocks.MissingBlockError{ID: id, Parent: cell.ID}
		}
		if child.HasText() {
			parts = append(parts, child.Text)
		}
	}
	return strings.Join(parts, " "), nil
}

// renderTable reconstructs a structural table as formatted text
func renderTable(g *blocks.Graph, table *blocks.Block, format string) (string, error) {
	grid, err := buildGrid(g, table)
	if err != nil {
		return "", err
	}
	return FormatTable(grid.rows(), format), nil
}
