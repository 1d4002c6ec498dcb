package linearize

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
)

// Supported table formats
const (
	FormatGrid     = "grid"     // Boxed grid with a rule between every row
	FormatSimple   = "simple"   // Dashed rules above and below, space separated columns
	FormatPlain    = "plain"    // Space separated columns, no rules
	FormatPipe     = "pipe"     // Markdown pipe table, first row used as header
	FormatGithub   = "github"   // Alias of pipe
	FormatMarkdown = "markdown" // Alias of pipe
	FormatTSV      = "tsv"      // Tab separated values
	FormatRounded  = "rounded"  // Rounded box drawing border
)

type tableRenderer func(rows [][]string) string

var tableRenderers = map[string]tableRenderer{
	FormatGrid:     renderGrid,
	FormatSimple:   renderSimple,
	FormatPlain:    renderPlain,
	FormatPipe:     renderPipe,
	FormatGithub:   renderPipe,
	FormatMarkdown: renderPipe,
	FormatTSV:      renderTSV,
	FormatRounded:  renderRounded,
}

// TableFormats returns the names of the supported table formats
func TableFormats() []string {
	names := make([]string, 0, len(tableRenderers))
	for name := range tableRenderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatTable renders rows with the named format. Rows are expected to be
// rectangular; an empty row set renders as an empty string.
func FormatTable(rows [][]string, format string) string {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return ""
	}
	render, ok := tableRenderers[format]
	if !ok {
		render = renderGrid
	}
	return render(rows)
}

// columnWidths returns the display width of the widest cell in each column
func columnWidths(rows [][]string) []int {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for j, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[j] {
				widths[j] = w
			}
		}
	}
	return widths
}

// joinPadded pads each cell to its column width and joins them
func joinPadded(row []string, widths []int, sep, prefix, suffix string) string {
	cells := make([]string, len(row))
	for j, cell := range row {
		cells[j] = runewidth.FillRight(cell, widths[j])
	}
	return prefix + strings.Join(cells, sep) + suffix
}

func rule(widths []int, fill, sep, prefix, suffix string, pad int) string {
	parts := make([]string, len(widths))
	for j, w := range widths {
		parts[j] = strings.Repeat(fill, w+pad)
	}
	return prefix + strings.Join(parts, sep) + suffix
}

func renderGrid(rows [][]string) string {
	widths := columnWidths(rows)
	border := rule(widths, "-", "+", "+", "+", 2)

	lines := []string{border}
	for _, row := range rows {
		lines = append(lines, joinPadded(row, widths, " | ", "| ", " |"), border)
	}
	return strings.Join(lines, "\n")
}

func renderSimple(rows [][]string) string {
	widths := columnWidths(rows)
	border := rule(widths, "-", "  ", "", "", 0)

	lines := []string{border}
	for _, row := range rows {
		lines = append(lines, strings.TrimRight(joinPadded(row, widths, "  ", "", ""), " "))
	}
	lines = append(lines, border)
	return strings.Join(lines, "\n")
}

func renderPlain(rows [][]string) string {
	widths := columnWidths(rows)
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.TrimRight(joinPadded(row, widths, "  ", "", ""), " "))
	}
	return strings.Join(lines, "\n")
}

func renderPipe(rows [][]string) string {
	escaped := make([][]string, len(rows))
	for i, row := range rows {
		escaped[i] = make([]string, len(row))
		for j, cell := range row {
			escaped[i][j] = strings.ReplaceAll(cell, "|", `\|`)
		}
	}

	widths := columnWidths(escaped)
	for j := range widths {
		// markdown needs at least three dashes in the delimiter row
		if widths[j] < 3 {
			widths[j] = 3
		}
	}

	lines := []string{
		joinPadded(escaped[0], widths, " | ", "| ", " |"),
		rule(widths, "-", "|", "|", "|", 2),
	}
	for _, row := range escaped[1:] {
		lines = append(lines, joinPadded(row, widths, " | ", "| ", " |"))
	}
	return strings.Join(lines, "\n")
}

func renderTSV(rows [][]string) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.NewReplacer("\t", " ", "\n", " ").Replace(cell)
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return strings.Join(lines, "\n")
}

func renderRounded(rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderRow(true).
		Rows(rows...)
	return t.String()
}
