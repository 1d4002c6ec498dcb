// Package blocks implements the in-memory OCR block graph consumed by the
// linearizer.
//
// A Graph is an arena of Blocks keyed by id. Blocks reference their children
// by id only, so shared or repeated references never create ownership cycles.
// The Graph also keeps the order in which blocks were added, which is the
// document order of the source payload; nothing in this module depends on map
// iteration order.
//
// Key Types:
//
// - Block: A node tagged with Kind (layout, line, word, table, cell, page)
// - Graph: The id -> block arena with document order
//
// Main Functions:
//
// - ParseTextract / LoadTextract: Build a Graph from Textract-style block JSON
// - Graph.TopLevelLayouts: Layout regions that start a traversal
// - Graph.Validate: Check that every child reference resolves
package blocks

import (
	"fmt"
)

// Graph is an id -> block arena that preserves document order
type Graph struct {
	blocks map[string]*Block
	order  []string
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		blocks: make(map[string]*Block),
	}
}

// Add appends a block to the graph in document order
func (g *Graph) Add(b *Block) error {
	if b == nil {
		return fmt.Errorf("cannot add nil block")
	}
	if b.ID == "" {
		return fmt.Errorf("block of kind %s has no id", b.Kind)
	}
	if _, exists := g.blocks[b.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateBlock, b.ID)
	}
	g.blocks[b.ID] = b
	g.order = append(g.order, b.ID)
	return nil
}

// Block looks up a block by id
func (g *Graph) Block(id string) (*Block, bool) {
	b, ok := g.blocks[id]
	return b, ok
}

// Len returns the number of blocks in the graph
func (g *Graph) Len() int {
	return len(g.order)
}

// Blocks returns all blocks in document order
func (g *Graph) Blocks() []*Block {
	result := make([]*Block, 0, len(g.order))
	for _, id := range g.order {
		result = append(result, g.blocks[id])
	}
	return result
}

// TopLevelLayouts returns the layout regions that are not a child of another
// layout region, in document order. Page containers do not count as parents.
func (g *Graph) TopLevelLayouts() []*Block {
	nested := make(map[string]bool)
	for _, id := range g.order {
		b := g.blocks[id]
		if b.Kind != KindLayout {
			continue
		}
		for _, child := range b.Children {
			nested[child] = true
		}
	}

	var result []*Block
	for _, id := range g.order {
		b := g.blocks[id]
		if b.Kind == KindLayout && !nested[id] {
			result = append(result, b)
		}
	}
	return result
}

// Tables returns the structural table blocks in document order
func (g *Graph) Tables() []*Block {
	return g.filter(func(b *Block) bool { return b.Kind == KindTable })
}

// Figures returns the figure layout regions in document order
func (g *Graph) Figures() []*Block {
	return g.filter(func(b *Block) bool { return b.IsLayout(LayoutFigure) })
}

func (g *Graph) filter(keep func(*Block) bool) []*Block {
	var result []*Block
	for _, id := range g.order {
		if b := g.blocks[id]; keep(b) {
			result = append(result, b)
		}
	}
	return result
}

// Validate checks that every child reference in the graph resolves and that
// no block is its own descendant. The first dangling reference in document
// order is returned as a *MissingBlockError, a cycle as a *CycleError.
func (g *Graph) Validate() error {
	for _, id := range g.order {
		for _, child := range g.blocks[id].Children {
			if _, ok := g.blocks[child]; !ok {
				return &MissingBlockError{ID: child, Parent: id}
			}
		}
	}
	return g.checkAcyclic()
}

// checkAcyclic runs an iterative depth-first search from every block.
// Blocks shared by several parents are fine; only back edges are reported.
func (g *Graph) checkAcyclic() error {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[string]int, len(g.order))

	type frame struct {
		id   string
		next int // index of the next child to visit
	}

	for _, root := range g.order {
		if state[root] != unvisited {
			continue
		}
		state[root] = onPath
		stack := []frame{{id: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.blocks[top.id].Children
			if top.next == len(children) {
				state[top.id] = done
				stack = stack[:len(stack)-1]
				continue
			}

			child := children[top.next]
			top.next++
			switch state[child] {
			case onPath:
				return &CycleError{ID: child, Parent: top.id}
			case unvisited:
				state[child] = onPath
				stack = append(stack, frame{id: child})
			}
		}
	}
	return nil
}
