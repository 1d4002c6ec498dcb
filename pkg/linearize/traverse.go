package linearize

import (
	"github.com/sirupsen/logrus"

	"github.com/gardar/docsift/pkg/blocks"
	"github.com/gardar/docsift/pkg/geometry"
)

// MissingTableMessage is the warning emitted for a layout table that has no
// matching structural table
const MissingTableMessage = "layout table without matching structural data - enable structural-table extraction for complete output"

// Warning is a recoverable problem found while linearizing
type Warning struct {
	Page    int    // Page of the region that produced the warning
	BlockID string // Offending block
	Message string
}

// walker holds the read-only state shared by every traversal of one document
type walker struct {
	graph    *blocks.Graph
	opts     Options
	figures  map[int]*geometry.Index // figure boxes per page
	log      logrus.FieldLogger
	warnings []Warning
}

func newWalker(g *blocks.Graph, opts Options) *walker {
	w := &walker{
		graph:   g,
		opts:    opts,
		figures: make(map[int]*geometry.Index),
		log:     opts.logger(),
	}

	if opts.ExcludeFigureText {
		for _, fig := range g.Figures() {
			page := pageOf(fig)
			ix, ok := w.figures[page]
			if !ok {
				ix = &geometry.Index{}
				w.figures[page] = ix
			}
			ix.Insert(fig.Box)
		}
	}
	return w
}

// pageOf returns the block's page, defaulting to 1
func pageOf(b *blocks.Block) int {
	if b.Page < 1 {
		return 1
	}
	return b.Page
}

type stackEntry struct {
	id     string
	parent string
	exit   bool // leaving id, its subtree is done
}

// walk returns the text items reachable from root in declared child order.
// Items are line texts and rendered tables. The traversal uses an explicit
// stack; children are pushed in reverse so the first child is visited first.
// A layout reached again through its own descendants is a *blocks.CycleError.
func (w *walker) walk(root string, page int) ([]string, error) {
	var items []string
	stack := []stackEntry{{id: root}}
	onPath := make(map[string]bool)

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.exit {
			delete(onPath, top.id)
			continue
		}

		b, ok := w.graph.Block(top.id)
		if !ok {
			return nil, &blocks.MissingBlockError{ID: top.id, Parent: top.parent}
		}

		switch b.Kind {
		case blocks.KindLine:
			if w.insideFigure(b, page) {
				continue
			}
			items = append(items, b.Text)

		case blocks.KindLayout:
			if onPath[b.ID] {
				return nil, &blocks.CycleError{ID: b.ID, Parent: top.parent}
			}
			if w.opts.excludes(b) {
				continue
			}
			if b.Layout == blocks.LayoutTable && !w.opts.SkipTable {
				text, handled, err := w.table(b, page)
				if err != nil {
					return nil, err
				}
				if handled {
					items = append(items, text)
					continue
				}
			}
			onPath[b.ID] = true
			stack = append(stack, stackEntry{id: b.ID, exit: true})
			for i := len(b.Children) - 1; i >= 0; i-- {
				stack = append(stack, stackEntry{id: b.Children[i], parent: b.ID})
			}
		}
	}
	return items, nil
}

// insideFigure reports whether a line falls inside a figure on the same page
func (w *walker) insideFigure(line *blocks.Block, page int) bool {
	ix, ok := w.figures[page]
	if !ok {
		return false
	}
	return ix.AnyContains(line.Box)
}

// table renders a layout table region from its structural table. When no
// structural table matches, a warning is recorded and handled is false so the
// caller walks the region as plain text. A matched table without cells is
// also walked as plain text.
func (w *walker) table(region *blocks.Block, page int) (text string, handled bool, err error) {
	structural := findTable(w.graph, region, page, w.opts.TableMatchTolerance)
	if structural == nil {
		w.warn(region, page, MissingTableMessage)
		return "", false, nil
	}

	text, err = renderTable(w.graph, structural, w.opts.TableFormat)
	if err != nil {
		return "", false, err
	}
	if text == "" {
		w.log.WithFields(logrus.Fields{
			"block": region.ID,
			"table": structural.ID,
		}).Debug("structural table has no cells, using region text")
		return "", false, nil
	}
	return text, true, nil
}

func (w *walker) warn(b *blocks.Block, page int, msg string) {
	w.warnings = append(w.warnings, Warning{Page: page, BlockID: b.ID, Message: msg})
	w.log.WithFields(logrus.Fields{
		"block": b.ID,
		"page":  page,
	}).Warn(msg)
}
