package gdocai

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/gardar/docsift/pkg/geometry"
)

// LoadDocumentJSON reads a Document AI response saved as JSON
func LoadDocumentJSON(path string) (*documentaipb.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	doc, err := ParseDocumentJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", path, err)
	}
	return doc, nil
}

// ParseDocumentJSON decodes a Document AI response. Both a bare Document and
// a ProcessResponse wrapping one under "document" are accepted.
func ParseDocumentJSON(data []byte) (*documentaipb.Document, error) {
	opts := protojson.UnmarshalOptions{DiscardUnknown: true}

	var resp documentaipb.ProcessResponse
	if err := opts.Unmarshal(data, &resp); err == nil && resp.GetDocument() != nil {
		return resp.GetDocument(), nil
	}

	doc := &documentaipb.Document{}
	if err := opts.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ToJSON converts various types to a pretty-printed JSON string
// It handles both protocol buffer messages and regular Go structs
func ToJSON(data interface{}) (string, error) {
	switch v := data.(type) {
	case proto.Message:
		jsonData, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(jsonData), nil

	default:
		jsonData, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(jsonData), nil
	}
}

// textFromLayout extracts text from a layout's text anchor segments
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout == nil {
		return ""
	}
	return textFromAnchor(layout.TextAnchor, fullText)
}

func textFromAnchor(anchor *documentaipb.Document_TextAnchor, fullText string) string {
	if anchor == nil {
		return ""
	}
	runes := []rune(fullText)
	result := strings.Builder{}
	totalRunes := len(runes)

	for _, seg := range anchor.TextSegments {
		start := int(seg.StartIndex)
		end := int(seg.EndIndex)
		if start < 0 {
			start = 0
		}
		if end > totalRunes {
			end = totalRunes
		}
		if start > end {
			start = end
		}
		result.WriteString(string(runes[start:end]))
	}
	return result.String()
}

// textSpan is the first text anchor segment of a layout element
type textSpan struct {
	start, end int64
	ok         bool
}

func spanOf(layout *documentaipb.Document_Page_Layout) textSpan {
	if layout == nil || layout.TextAnchor == nil || len(layout.TextAnchor.TextSegments) == 0 {
		return textSpan{}
	}
	seg := layout.TextAnchor.TextSegments[0]
	return textSpan{start: seg.StartIndex, end: seg.EndIndex, ok: true}
}

// within reports whether s lies inside parent
func (s textSpan) within(parent textSpan) bool {
	return s.ok && parent.ok && s.start >= parent.start && s.end <= parent.end
}

// sortKey orders elements without a text anchor after anchored ones
func (s textSpan) sortKey() int64 {
	if !s.ok {
		return math.MaxInt64
	}
	return s.start
}

// boxFromLayout converts a layout's bounding polygon to a normalized box
func boxFromLayout(layout *documentaipb.Document_Page_Layout, dim *documentaipb.Document_Page_Dimension) *geometry.Box {
	if layout == nil {
		return nil
	}
	return boxFromPoly(layout.BoundingPoly, dim)
}

// boxFromPoly returns the normalized box enclosing a polygon. Pixel vertices
// are normalized by the page dimension when no normalized vertices exist.
func boxFromPoly(poly *documentaipb.BoundingPoly, dim *documentaipb.Document_Page_Dimension) *geometry.Box {
	if poly == nil {
		return nil
	}

	var xs, ys []float64
	switch {
	case len(poly.NormalizedVertices) > 0:
		for _, v := range poly.NormalizedVertices {
			xs = append(xs, float64(v.X))
			ys = append(ys, float64(v.Y))
		}
	case len(poly.Vertices) > 0 && dim != nil && dim.Width > 0 && dim.Height > 0:
		for _, v := range poly.Vertices {
			xs = append(xs, float64(v.X)/float64(dim.Width))
			ys = append(ys, float64(v.Y)/float64(dim.Height))
		}
	default:
		return nil
	}

	minX, maxX := xs[0], xs[0]
	for _, x := range xs[1:] {
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
	}
	minY, maxY := ys[0], ys[0]
	for _, y := range ys[1:] {
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}

	box := geometry.NewBoxFromCorners(minX, minY, maxX, maxY)
	return &box
}
