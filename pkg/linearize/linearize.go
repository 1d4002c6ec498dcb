// Package linearize turns an OCR block graph into reading-ordered text.
//
// Every top-level layout region is walked depth-first in its declared child
// order. Lines become text, table regions are rebuilt from their structural
// table (matched by bounding box) and rendered as a formatted grid, and
// figure, header, footer and page number regions can be filtered out.
// The output is grouped by page.
//
// Key Features:
//
// - Iterative traversal, safe for deeply nested layouts
// - Table reconstruction with row and column span expansion
// - Several table styles (grid, simple, plain, pipe, tsv, rounded)
// - Figure text exclusion by bounding box containment
// - Optional page_<n>.txt artifacts per page
//
// Main Functions:
//
// - Linearize: Linearize one document
// - LinearizeAll: Linearize independent documents in parallel
// - WritePages: Write page text files to a directory
package linearize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gardar/docsift/pkg/blocks"
)

// Result holds the linearized text of one document
type Result struct {
	Pages    map[int]string // Page number -> assembled text
	Warnings []Warning      // Recoverable problems, already logged
}

// PageNumbers returns the page numbers in ascending order
func (r *Result) PageNumbers() []int {
	numbers := make([]int, 0, len(r.Pages))
	for n := range r.Pages {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

// Text returns the text of all pages concatenated in page order
func (r *Result) Text() string {
	var builder strings.Builder
	for _, n := range r.PageNumbers() {
		builder.WriteString(r.Pages[n])
	}
	return builder.String()
}

// Linearize walks every top-level layout region of the graph and assembles the
// text per page. Lines of a region are joined with a newline; each region is
// followed by a blank line. A dangling child reference aborts the document.
func Linearize(g *blocks.Graph, opts Options) (*Result, error) {
	if g == nil {
		return nil, fmt.Errorf("no block graph provided")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	w := newWalker(g, opts)
	builders := make(map[int]*strings.Builder)

	for _, region := range g.TopLevelLayouts() {
		if opts.excludes(region) {
			continue
		}

		page := pageOf(region)
		items, err := w.walk(region.ID, page)
		if err != nil {
			return nil, fmt.Errorf("failed to linearize region %s: %w", region.ID, err)
		}

		text := strings.Join(items, "\n")
		if text == "" {
			continue
		}

		builder, ok := builders[page]
		if !ok {
			builder = &strings.Builder{}
			builders[page] = builder
		}
		builder.WriteString(text)
		builder.WriteString("\n\n")
	}

	result := &Result{
		Pages:    make(map[int]string, len(builders)),
		Warnings: w.warnings,
	}
	for page, builder := range builders {
		result.Pages[page] = builder.String()
	}

	opts.logger().WithFields(logrus.Fields{
		"pages":    len(result.Pages),
		"warnings": len(result.Warnings),
	}).Debug("linearized document")

	if opts.SaveOutputPath != "" {
		if err := WritePages(opts.SaveOutputPath, result.Pages); err != nil {
			return nil, fmt.Errorf("failed to save page text: %w", err)
		}
	}

	return result, nil
}
