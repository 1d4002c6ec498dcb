// Package geometry provides bounding box helpers for normalized OCR page
// coordinates (0.0-1.0, origin at the top-left corner of the page).
//
// Main Functions:
//
// - BoxesMatch: Near-equality of two boxes within a tolerance
// - Contains: Strict containment of one box inside another
// - Index: Spatial index answering "is this box inside any indexed box"
package geometry

import (
	"fmt"
	"math"
)

// DefaultTolerance is the tolerance used to pair a layout table region with
// its structural table when no explicit link exists between them.
const DefaultTolerance = 0.1

// Box is an axis aligned rectangle in normalized page coordinates
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewBoxFromCorners creates a box from its top-left and bottom-right corners
func NewBoxFromCorners(x1, y1, x2, y2 float64) Box {
	left := math.Min(x1, x2)
	top := math.Min(y1, y2)
	return Box{
		Left:   left,
		Top:    top,
		Width:  math.Abs(x2 - x1),
		Height: math.Abs(y2 - y1),
	}
}

// Right returns the right edge X coordinate
func (b Box) Right() float64 {
	return b.Left + b.Width
}

// Bottom returns the bottom edge Y coordinate
func (b Box) Bottom() float64 {
	return b.Top + b.Height
}

func (b Box) String() string {
	return fmt.Sprintf("box(left=%.4f top=%.4f width=%.4f height=%.4f)", b.Left, b.Top, b.Width, b.Height)
}

// BoxesMatch reports whether width, height, left and top of a and b each
// differ by no more than tolerance. A nil box never matches.
func BoxesMatch(a, b *Box, tolerance float64) bool {
	if a == nil || b == nil {
		return false
	}
	return math.Abs(a.Width-b.Width) <= tolerance &&
		math.Abs(a.Height-b.Height) <= tolerance &&
		math.Abs(a.Left-b.Left) <= tolerance &&
		math.Abs(a.Top-b.Top) <= tolerance
}

// Contains reports whether inner lies entirely within outer.
// Edges are compared without tolerance; touching edges count as inside.
func Contains(inner, outer *Box) bool {
	if inner == nil || outer == nil {
		return false
	}
	return inner.Left >= outer.Left &&
		inner.Top >= outer.Top &&
		inner.Right() <= outer.Right() &&
		inner.Bottom() <= outer.Bottom()
}
