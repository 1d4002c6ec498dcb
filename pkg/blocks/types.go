package blocks

import (
	"github.com/gardar/docsift/pkg/geometry"
)

// Kind is the tag of a block in the OCR graph
type Kind int

const (
	KindOther  Kind = iota // Anything the linearizer does not interpret
	KindLayout             // Layout region, see LayoutType
	KindLine               // Line of text
	KindWord               // Single word, child of a line or cell
	KindTable              // Structural table, children are cells
	KindCell               // Table cell
	KindPage               // Page container
)

func (k Kind) String() string {
	switch k {
	case KindLayout:
		return "layout"
	case KindLine:
		return "line"
	case KindWord:
		return "word"
	case KindTable:
		return "table"
	case KindCell:
		return "cell"
	case KindPage:
		return "page"
	default:
		return "other"
	}
}

// LayoutType is the subtype of a layout region
type LayoutType int

const (
	LayoutGeneric LayoutType = iota
	LayoutHeader
	LayoutFooter
	LayoutPageNumber
	LayoutFigure
	LayoutTable
	LayoutOther
)

func (t LayoutType) String() string {
	switch t {
	case LayoutGeneric:
		return "generic"
	case LayoutHeader:
		return "header"
	case LayoutFooter:
		return "footer"
	case LayoutPageNumber:
		return "page-number"
	case LayoutFigure:
		return "figure"
	case LayoutTable:
		return "table"
	default:
		return "other"
	}
}

// Block is a node in the OCR graph.
// Blocks reference their children by id; ownership lives in the Graph.
type Block struct {
	ID          string        // Unique within a document
	Kind        Kind          // Block tag
	Layout      LayoutType    // Layout subtype, only meaningful for KindLayout
	Type        string        // Source discriminator, e.g. LAYOUT_TEXT or ocr_par
	Text        string        // Text content of Line and Word blocks
	Box         *geometry.Box // Normalized bounding box, nil when absent
	Page        int           // 1-based page number, 0 when absent
	Children    []string      // Ordered child ids
	RowIndex    int           // 1-based row of a cell
	ColumnIndex int           // 1-based column of a cell
	RowSpan     int           // Rows covered by a cell, 0 means 1
	ColumnSpan  int           // Columns covered by a cell, 0 means 1
}

// IsLayout reports whether b is a layout region of type t
func (b *Block) IsLayout(t LayoutType) bool {
	return b.Kind == KindLayout && b.Layout == t
}

// HasText reports whether the block carries line or word text
func (b *Block) HasText() bool {
	return b.Kind == KindLine || b.Kind == KindWord
}

// Spans returns the row and column span of a cell, defaulting to 1
func (b *Block) Spans() (rowSpan, columnSpan int) {
	rowSpan, columnSpan = b.RowSpan, b.ColumnSpan
	if rowSpan < 1 {
		rowSpan = 1
	}
	if columnSpan < 1 {
		columnSpan = 1
	}
	return rowSpan, columnSpan
}
