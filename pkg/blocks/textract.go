package blocks

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gardar/docsift/pkg/geometry"
)

// textractDocument is the subset of a Textract analysis response we read
type textractDocument struct {
	Blocks []textractBlock `json:"Blocks"`
}

type textractBlock struct {
	ID            string                 `json:"Id"`
	BlockType     string                 `json:"BlockType"`
	Text          string                 `json:"Text,omitempty"`
	Page          int                    `json:"Page,omitempty"`
	Geometry      *textractGeometry      `json:"Geometry,omitempty"`
	Relationships []textractRelationship `json:"Relationships,omitempty"`
	RowIndex      int                    `json:"RowIndex,omitempty"`
	ColumnIndex   int                    `json:"ColumnIndex,omitempty"`
	RowSpan       int                    `json:"RowSpan,omitempty"`
	ColumnSpan    int                    `json:"ColumnSpan,omitempty"`
}

type textractGeometry struct {
	BoundingBox *textractBoundingBox `json:"BoundingBox,omitempty"`
}

type textractBoundingBox struct {
	Width  float64 `json:"Width"`
	Height float64 `json:"Height"`
	Left   float64 `json:"Left"`
	Top    float64 `json:"Top"`
}

type textractRelationship struct {
	Type string   `json:"Type"`
	Ids  []string `json:"Ids"`
}

// layoutTypes maps Textract LAYOUT_* discriminators to layout subtypes.
// Unlisted LAYOUT_* values become LayoutOther.
var layoutTypes = map[string]LayoutType{
	"LAYOUT_TEXT":           LayoutGeneric,
	"LAYOUT_TITLE":          LayoutGeneric,
	"LAYOUT_SECTION_HEADER": LayoutGeneric,
	"LAYOUT_LIST":           LayoutGeneric,
	"LAYOUT_HEADER":         LayoutHeader,
	"LAYOUT_FOOTER":         LayoutFooter,
	"LAYOUT_PAGE_NUMBER":    LayoutPageNumber,
	"LAYOUT_FIGURE":         LayoutFigure,
	"LAYOUT_TABLE":          LayoutTable,
}

// LoadTextract reads a Textract JSON file from disk and builds a Graph
func LoadTextract(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := ParseTextract(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return g, nil
}

// ParseTextract builds a Graph from a Textract response with a top-level
// "Blocks" list. Only CHILD relationships become children; a block with more
// than one CHILD group is rejected.
func ParseTextract(data []byte) (*Graph, error) {
	var doc textractDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid block JSON: %w", err)
	}

	g := NewGraph()
	for i, raw := range doc.Blocks {
		b, err := blockFromTextract(raw)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		if err := g.Add(b); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func blockFromTextract(raw textractBlock) (*Block, error) {
	b := &Block{
		ID:          raw.ID,
		Type:        raw.BlockType,
		Page:        raw.Page,
		RowIndex:    raw.RowIndex,
		ColumnIndex: raw.ColumnIndex,
		RowSpan:     raw.RowSpan,
		ColumnSpan:  raw.ColumnSpan,
	}

	switch {
	case strings.HasPrefix(raw.BlockType, "LAYOUT"):
		b.Kind = KindLayout
		layout, ok := layoutTypes[raw.BlockType]
		if !ok {
			layout = LayoutOther
		}
		b.Layout = layout
	case raw.BlockType == "LINE":
		b.Kind = KindLine
		b.Text = raw.Text
	case raw.BlockType == "WORD":
		b.Kind = KindWord
		b.Text = raw.Text
	case raw.BlockType == "TABLE":
		b.Kind = KindTable
	case raw.BlockType == "CELL":
		b.Kind = KindCell
	case raw.BlockType == "PAGE":
		b.Kind = KindPage
	default:
		b.Kind = KindOther
	}

	if raw.Geometry != nil && raw.Geometry.BoundingBox != nil {
		bb := raw.Geometry.BoundingBox
		b.Box = &geometry.Box{
			Left:   bb.Left,
			Top:    bb.Top,
			Width:  bb.Width,
			Height: bb.Height,
		}
	}

	groups := 0
	for _, rel := range raw.Relationships {
		if rel.Type != "CHILD" {
			continue
		}
		groups++
		if groups > 1 {
			return nil, fmt.Errorf("block %s has more than one CHILD relationship", raw.ID)
		}
		b.Children = append([]string(nil), rel.Ids...)
	}

	return b, nil
}
