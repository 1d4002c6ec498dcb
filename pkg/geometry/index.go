package geometry

import (
	"github.com/tidwall/rtree"
)

// Index is a spatial index over boxes. The zero value is ready to use.
type Index struct {
	tree  rtree.RTreeG[Box]
	count int
}

// Insert adds a box to the index. Nil boxes are ignored.
func (ix *Index) Insert(b *Box) {
	if b == nil {
		return
	}
	ix.tree.Insert(
		[2]float64{b.Left, b.Top},
		[2]float64{b.Right(), b.Bottom()},
		*b,
	)
	ix.count++
}

// Len returns the number of indexed boxes
func (ix *Index) Len() int {
	return ix.count
}

// AnyContains reports whether inner lies entirely within at least one indexed box.
func (ix *Index) AnyContains(inner *Box) bool {
	if inner == nil || ix.count == 0 {
		return false
	}

	found := false
	// Every container intersects inner, so an intersection search gives the candidates.
	ix.tree.Search(
		[2]float64{inner.Left, inner.Top},
		[2]float64{inner.Right(), inner.Bottom()},
		func(_, _ [2]float64, outer Box) bool {
			if Contains(inner, &outer) {
				found = true
				return false
			}
			return true
		},
	)
	return found
}
